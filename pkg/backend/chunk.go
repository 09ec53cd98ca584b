package backend

import "github.com/parleylabs/parley/pkg/chat"

// Kind discriminates the payload carried by a Chunk. Producers emit
// different kinds depending on their wire protocol: the local backend
// streams whole message objects, the hosted backend streams text deltas,
// and the agent streams per-node state updates.
type Kind string

const (
	// KindText carries a raw text fragment in Text.
	KindText Kind = "text"
	// KindMessage carries a complete or partial message object in Message.
	KindMessage Kind = "message"
	// KindModelUpdate carries a node-scoped state update in Update.
	KindModelUpdate Kind = "model_update"
	// KindMessagesUpdate carries a bare list of messages in Update.
	KindMessagesUpdate Kind = "messages_update"
	// KindToolCall carries a tool invocation request in ToolCall.
	KindToolCall Kind = "tool_call"
	// KindError carries a mid-stream failure in Err. The producer closes
	// the channel after emitting it.
	KindError Kind = "error"
	// KindUnknown marks a payload no consumer recognizes. Raw holds it for
	// logging.
	KindUnknown Kind = "unknown"
)

// Chunk is one element of a response stream. Exactly the field named by
// Kind is populated; the rest are zero.
type Chunk struct {
	Kind     Kind
	Text     string
	Message  chat.Message
	Update   *StateUpdate
	ToolCall *ToolCall
	Err      error
	Raw      any
}

// StateUpdate is a node-scoped slice of transcript growth: the node that
// ran and the messages it appended.
type StateUpdate struct {
	Node     string
	Messages []chat.Message
}

// ToolCall is a model request to invoke a named tool with JSON-encoded
// arguments.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// TextChunk wraps a raw text fragment.
func TextChunk(text string) Chunk {
	return Chunk{Kind: KindText, Text: text}
}

// MessageChunk wraps a message object.
func MessageChunk(msg chat.Message) Chunk {
	return Chunk{Kind: KindMessage, Message: msg}
}

// ModelUpdateChunk wraps the messages appended by a named node.
func ModelUpdateChunk(node string, messages []chat.Message) Chunk {
	return Chunk{Kind: KindModelUpdate, Update: &StateUpdate{Node: node, Messages: messages}}
}

// MessagesUpdateChunk wraps a bare list of appended messages.
func MessagesUpdateChunk(messages []chat.Message) Chunk {
	return Chunk{Kind: KindMessagesUpdate, Update: &StateUpdate{Messages: messages}}
}

// ToolCallChunk wraps a tool invocation request.
func ToolCallChunk(call ToolCall) Chunk {
	return Chunk{Kind: KindToolCall, ToolCall: &call}
}

// ErrorChunk wraps a mid-stream failure.
func ErrorChunk(err error) Chunk {
	return Chunk{Kind: KindError, Err: err}
}

// UnknownChunk wraps an unrecognized payload.
func UnknownChunk(raw any) Chunk {
	return Chunk{Kind: KindUnknown, Raw: raw}
}
