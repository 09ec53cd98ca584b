package chat

import "time"

// HistoryEntry is one message in the display-oriented view of a
// conversation.
type HistoryEntry struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation mirrors one session's transcript for a UI: it tracks the
// messages to display plus the response style used to tag new user messages.
// It is independent of the model-side History kept in the registry, which
// accumulates rendered prompts rather than what the user typed.
//
// Like History, a Conversation is single-threaded by contract.
type Conversation struct {
	sessionID string
	messages  []Message
	style     ResponseStyle
}

// NewConversation creates an empty conversation for the given session,
// starting in the standard response style.
func NewConversation(sessionID string) *Conversation {
	return &Conversation{
		sessionID: sessionID,
		style:     StyleStandard,
	}
}

// SessionID returns the session this conversation belongs to.
func (c *Conversation) SessionID() string {
	return c.sessionID
}

// AddUserMessage appends a user message tagged with the current response
// style.
func (c *Conversation) AddUserMessage(content string) {
	msg := NewMessage(RoleUser, content)
	msg.Metadata = map[string]any{"response_type": string(c.style)}
	c.messages = append(c.messages, msg)
}

// AddAssistantMessage appends an assistant message with the given metadata.
func (c *Conversation) AddAssistantMessage(content string, metadata map[string]any) {
	msg := NewMessage(RoleAssistant, content)
	msg.Metadata = metadata
	c.messages = append(c.messages, msg)
}

// History returns the conversation as display entries in insertion order.
func (c *Conversation) History() []HistoryEntry {
	entries := make([]HistoryEntry, len(c.messages))
	for i, msg := range c.messages {
		entries[i] = HistoryEntry{
			Role:      msg.Role,
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
		}
	}
	return entries
}

// Messages returns a copy of the underlying messages, metadata included.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len reports the number of messages in the conversation.
func (c *Conversation) Len() int {
	return len(c.messages)
}

// Clear removes all messages. The response style is kept.
func (c *Conversation) Clear() {
	c.messages = nil
}

// SetResponseStyle changes the style used to tag subsequent user messages.
// Existing messages are not retagged.
func (c *Conversation) SetResponseStyle(style ResponseStyle) {
	c.style = style.Normalize()
}

// ResponseStyle returns the style currently applied to new user messages.
func (c *Conversation) ResponseStyle() ResponseStyle {
	return c.style
}
