// Package agent runs the search-augmented generation loop: it advertises
// tools to the model backend, executes requested tool calls, and feeds the
// results back until the model produces a final answer.
package agent

import "context"

// Tool is an external capability the model may invoke with a query string.
type Tool interface {
	// Name identifies the tool to the model.
	Name() string

	// Description tells the model when to use the tool.
	Description() string

	// Call executes the tool. Errors are reported back to the model as
	// tool output, not raised to the chat caller.
	Call(ctx context.Context, query string) (string, error)
}
