// Package backend connects the chatbot to language model providers. Two
// implementations share one interface: Local speaks the Ollama chat API
// over newline-delimited JSON, Hosted speaks the OpenAI-compatible chat
// completions API over server-sent events. Both expose a blocking Invoke
// and a channel-based Stream.
package backend

import (
	"context"

	"github.com/parleylabs/parley/pkg/chat"
)

// Generator produces model output for a message transcript. Stream returns
// a channel the producer closes when the response is complete; the channel
// is finite and cannot be restarted. Cancelling the context stops the
// producer and closes the channel.
type Generator interface {
	Invoke(ctx context.Context, messages []chat.Message, opts Options) (string, error)
	Stream(ctx context.Context, messages []chat.Message, opts Options) (<-chan Chunk, error)
}

// Options carries per-request generation parameters.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Tools       []ToolSpec
}

// ToolSpec advertises a callable tool to the model. Parameters is a JSON
// schema object describing the arguments.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Transcript metadata keys used to round-trip tool exchanges through
// chat.Message.
const (
	metaToolCalls  = "tool_calls"
	metaToolCallID = "tool_call_id"
	metaToolName   = "tool_name"
)

// AssistantToolCallMessage builds the assistant transcript entry recording
// that the model requested the given tool calls.
func AssistantToolCallMessage(content string, calls []ToolCall) chat.Message {
	msg := chat.NewMessage(chat.RoleAssistant, content)
	msg.Metadata = map[string]any{metaToolCalls: calls}
	return msg
}

// ToolResultMessage builds the tool-role transcript entry answering one
// tool call.
func ToolResultMessage(call ToolCall, result string) chat.Message {
	msg := chat.NewMessage(chat.RoleTool, result)
	msg.Metadata = map[string]any{
		metaToolCallID: call.ID,
		metaToolName:   call.Name,
	}
	return msg
}

// toolCallsOf extracts the tool calls recorded on an assistant message, if
// any.
func toolCallsOf(msg chat.Message) []ToolCall {
	if msg.Metadata == nil {
		return nil
	}
	calls, _ := msg.Metadata[metaToolCalls].([]ToolCall)
	return calls
}

// toolCallIDOf extracts the answered call id from a tool-role message.
func toolCallIDOf(msg chat.Message) string {
	if msg.Metadata == nil {
		return ""
	}
	id, _ := msg.Metadata[metaToolCallID].(string)
	return id
}

// toolNameOf extracts the tool name from a tool-role message.
func toolNameOf(msg chat.Message) string {
	if msg.Metadata == nil {
		return ""
	}
	name, _ := msg.Metadata[metaToolName].(string)
	return name
}

// send delivers a chunk unless ctx is done. It reports whether the
// consumer is still listening.
func send(ctx context.Context, ch chan<- Chunk, chunk Chunk) bool {
	select {
	case ch <- chunk:
		return true
	case <-ctx.Done():
		return false
	}
}
