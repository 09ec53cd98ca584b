// Package ollama holds wire representations for the Ollama chat API. The
// local backend marshals these directly; nothing above the backend layer
// should import them.
package ollama

import "encoding/json"

// Message represents a single message in a conversation.
type Message struct {
	Role      string     `json:"role"`                 // "system", "user", "assistant", "tool"
	Content   string     `json:"content"`              // The message content
	Images    []string   `json:"images,omitempty"`     // Optional base64-encoded images (for multimodal)
	ToolCalls []ToolCall `json:"tool_calls,omitempty"` // Tool invocations requested by the assistant
}

// ToolCall is a model-initiated function invocation.
type ToolCall struct {
	Function ToolCallFunction `json:"function"`
}

// ToolCallFunction names the function and carries its arguments as a JSON
// object.
type ToolCallFunction struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}
