// Package chat defines the conversation domain: message and request types,
// per-session histories, and the registry that maps session ids to them.
package chat

import "time"

// Role identifies the author of a message.
type Role string

const (
	// RoleSystem is the behavioral preamble role.
	RoleSystem Role = "system"
	// RoleUser is a message from the human.
	RoleUser Role = "user"
	// RoleAssistant is a message from the model.
	RoleAssistant Role = "assistant"
	// RoleTool carries the result of a tool invocation back to the model.
	RoleTool Role = "tool"
)

// Message is a single conversation message. Once appended to a history it is
// never mutated.
type Message struct {
	Role      Role           `json:"role"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewMessage creates a message stamped with the current time.
func NewMessage(role Role, content string) Message {
	return Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}
