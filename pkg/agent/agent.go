package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/parleylabs/parley/pkg/backend"
	"github.com/parleylabs/parley/pkg/chat"
)

// defaultMaxIterations bounds how many tool rounds one request may spend
// before the model is forced to answer.
const defaultMaxIterations = 4

// Option configures an Agent.
type Option func(*Agent)

// WithMaxIterations overrides the tool round budget.
func WithMaxIterations(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxIterations = n
		}
	}
}

// Agent drives the model-decides loop: the model may answer directly or
// request tool calls, whose results are appended to the transcript before
// the model runs again.
type Agent struct {
	gen           backend.Generator
	tools         map[string]Tool
	order         []Tool
	maxIterations int
	logger        *zap.Logger
}

// New creates an agent over the given backend and tools.
func New(gen backend.Generator, tools []Tool, logger *zap.Logger, opts ...Option) *Agent {
	a := &Agent{
		gen:           gen,
		tools:         make(map[string]Tool, len(tools)),
		order:         tools,
		maxIterations: defaultMaxIterations,
		logger:        logger,
	}
	for _, tool := range tools {
		a.tools[tool.Name()] = tool
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Stream runs the loop and emits node-scoped updates: a model update per
// completed model turn, a tool call chunk per requested invocation, and a
// messages update carrying tool results. The channel closes after the
// final model turn.
func (a *Agent) Stream(ctx context.Context, messages []chat.Message, opts backend.Options) (<-chan backend.Chunk, error) {
	opts.Tools = a.specs()

	chunks, err := a.gen.Stream(ctx, messages, opts)
	if err != nil {
		return nil, err
	}

	out := make(chan backend.Chunk)
	go a.run(ctx, messages, opts, chunks, out)
	return out, nil
}

func (a *Agent) run(ctx context.Context, messages []chat.Message, opts backend.Options, chunks <-chan backend.Chunk, out chan<- backend.Chunk) {
	defer close(out)

	for round := 0; ; round++ {
		turn := a.consumeTurn(ctx, chunks, out)
		if turn.failed || ctx.Err() != nil {
			return
		}

		if len(turn.calls) == 0 {
			final := chat.NewMessage(chat.RoleAssistant, turn.content)
			sendChunk(ctx, out, backend.ModelUpdateChunk("model", []chat.Message{final}))
			return
		}

		request := backend.AssistantToolCallMessage(turn.content, turn.calls)
		if !sendChunk(ctx, out, backend.ModelUpdateChunk("model", []chat.Message{request})) {
			return
		}

		results := make([]chat.Message, 0, len(turn.calls))
		for _, call := range turn.calls {
			if !sendChunk(ctx, out, backend.ToolCallChunk(call)) {
				return
			}
			results = append(results, a.executeCall(ctx, call))
		}
		if !sendChunk(ctx, out, backend.MessagesUpdateChunk(results)) {
			return
		}

		messages = append(messages, request)
		messages = append(messages, results...)

		if round+1 >= a.maxIterations {
			// Force a final answer once the tool budget is spent
			a.logger.Warn("tool iteration limit reached", zap.Int("max_iterations", a.maxIterations))
			opts.Tools = nil
		}

		var err error
		chunks, err = a.gen.Stream(ctx, messages, opts)
		if err != nil {
			sendChunk(ctx, out, backend.ErrorChunk(err))
			return
		}
	}
}

type turnResult struct {
	content string
	calls   []backend.ToolCall
	failed  bool
}

// consumeTurn drains one backend stream, accumulating assistant content
// and tool call requests. Error chunks are forwarded downstream and end
// the loop; anything unrecognized passes through for the consumer to log.
func (a *Agent) consumeTurn(ctx context.Context, chunks <-chan backend.Chunk, out chan<- backend.Chunk) turnResult {
	var turn turnResult
	var content strings.Builder

	for c := range chunks {
		switch c.Kind {
		case backend.KindText:
			content.WriteString(c.Text)
		case backend.KindMessage:
			content.WriteString(c.Message.Content)
		case backend.KindToolCall:
			if c.ToolCall != nil {
				turn.calls = append(turn.calls, *c.ToolCall)
			}
		case backend.KindError:
			turn.failed = true
			sendChunk(ctx, out, c)
		default:
			if !sendChunk(ctx, out, c) {
				turn.failed = true
				return turn
			}
		}
	}

	turn.content = content.String()
	return turn
}

// executeCall runs one tool call. Failures become tool output so the model
// can react; they never abort the stream.
func (a *Agent) executeCall(ctx context.Context, call backend.ToolCall) chat.Message {
	tool, ok := a.tools[call.Name]
	if !ok {
		a.logger.Warn("model requested unknown tool", zap.String("tool", call.Name))
		return backend.ToolResultMessage(call, fmt.Sprintf("Tool %q is not available.", call.Name))
	}

	query := parseQuery(call.Arguments)
	a.logger.Info("executing tool", zap.String("tool", call.Name), zap.String("query", query))

	result, err := tool.Call(ctx, query)
	if err != nil {
		a.logger.Warn("tool call failed", zap.String("tool", call.Name), zap.Error(err))
		return backend.ToolResultMessage(call, fmt.Sprintf("Tool %s failed: %v", call.Name, err))
	}
	return backend.ToolResultMessage(call, result)
}

// parseQuery extracts the query argument from a tool call's JSON
// arguments, falling back to the raw string when it does not parse.
func parseQuery(arguments string) string {
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return strings.TrimSpace(arguments)
	}
	return args.Query
}

func (a *Agent) specs() []backend.ToolSpec {
	specs := make([]backend.ToolSpec, 0, len(a.order))
	for _, tool := range a.order {
		specs = append(specs, backend.ToolSpec{
			Name:        tool.Name(),
			Description: tool.Description(),
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "The search query",
					},
				},
				"required": []string{"query"},
			},
		})
	}
	return specs
}

func sendChunk(ctx context.Context, ch chan<- backend.Chunk, chunk backend.Chunk) bool {
	select {
	case ch <- chunk:
		return true
	case <-ctx.Done():
		return false
	}
}
