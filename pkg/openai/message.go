// Package openai holds wire representations for OpenAI-compatible chat
// completion APIs. The hosted backend marshals these directly; nothing
// above the backend layer should import them.
package openai

// ChatMessage represents a chat message.
type ChatMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	Name       string     `json:"name,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall represents a tool call from the assistant. In streaming deltas
// the call arrives fragmented; Index positions each fragment.
type ToolCall struct {
	Index    *int             `json:"index,omitempty"`
	ID       string           `json:"id,omitempty"`
	Type     string           `json:"type,omitempty"`
	Function ToolCallFunction `json:"function"`
}

// ToolCallFunction represents the function in a tool call. Arguments is a
// JSON-encoded string, possibly partial in streaming deltas.
type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}
