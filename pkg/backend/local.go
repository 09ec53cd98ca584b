package backend

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/parleylabs/parley/pkg/chat"
	"github.com/parleylabs/parley/pkg/ollama"
)

const defaultOllamaHost = "http://localhost:11434"

// LocalConfig configures the Local backend.
type LocalConfig struct {
	Host    string        // Base URL of the Ollama server (default http://localhost:11434)
	Timeout time.Duration // Per-request HTTP timeout (default 5 minutes)
}

// Local generates responses by calling an Ollama-compatible server. Streams
// arrive as newline-delimited JSON; each parsed line is surfaced as a
// message chunk, unparseable lines as unknown chunks.
type Local struct {
	config     LocalConfig
	logger     *zap.Logger
	httpClient *http.Client
}

// NewLocal creates a Local backend.
func NewLocal(config LocalConfig, logger *zap.Logger) *Local {
	if config.Host == "" {
		config.Host = defaultOllamaHost
	}
	if config.Timeout == 0 {
		// Local models can be slow, especially on cold start
		config.Timeout = 5 * time.Minute
	}

	return &Local{
		config: config,
		logger: logger,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Invoke sends a non-streaming chat request and returns the assistant's
// complete reply.
func (l *Local) Invoke(ctx context.Context, messages []chat.Message, opts Options) (string, error) {
	req := l.buildRequest(messages, opts, false)

	reqBody, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, l.config.Host+"/api/chat", bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := l.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama returned %d: %s", httpResp.StatusCode, strings.TrimSpace(string(body)))
	}

	var resp ollama.ChatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	l.logger.Debug("ollama response",
		zap.String("model", resp.Model),
		zap.Int("eval_count", resp.EvalCount),
	)

	return resp.Message.Content, nil
}

// Stream sends a streaming chat request. The returned channel is closed
// when the model finishes, the stream fails, or ctx is cancelled.
func (l *Local) Stream(ctx context.Context, messages []chat.Message, opts Options) (<-chan Chunk, error) {
	req := l.buildRequest(messages, opts, true)

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, l.config.Host+"/api/chat", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := l.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(httpResp.Body)
		httpResp.Body.Close()
		return nil, fmt.Errorf("ollama returned %d: %s", httpResp.StatusCode, strings.TrimSpace(string(body)))
	}

	ch := make(chan Chunk)
	go func() {
		defer close(ch)
		defer httpResp.Body.Close()

		scanner := bufio.NewScanner(httpResp.Body)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}

			var chunk ollama.StreamChunk
			if err := json.Unmarshal(line, &chunk); err != nil {
				l.logger.Warn("failed to parse chunk", zap.Error(err), zap.String("line", string(line)))
				if !send(ctx, ch, UnknownChunk(string(line))) {
					return
				}
				continue
			}

			for _, call := range chunk.Message.ToolCalls {
				tc := ToolCall{
					Name:      call.Function.Name,
					Arguments: string(call.Function.Arguments),
				}
				if !send(ctx, ch, ToolCallChunk(tc)) {
					return
				}
			}

			if chunk.Message.Content != "" {
				msg := chat.Message{
					Role:    chat.Role(chunk.Message.Role),
					Content: chunk.Message.Content,
				}
				if !send(ctx, ch, MessageChunk(msg)) {
					return
				}
			}

			if chunk.Done {
				l.logger.Debug("stream complete",
					zap.String("model", chunk.Model),
					zap.Int("eval_count", chunk.EvalCount),
				)
				return
			}
		}

		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			send(ctx, ch, ErrorChunk(fmt.Errorf("read stream: %w", err)))
		}
	}()

	return ch, nil
}

// buildRequest converts transcript messages and generation options into an
// Ollama chat request.
func (l *Local) buildRequest(messages []chat.Message, opts Options, stream bool) *ollama.ChatRequest {
	req := &ollama.ChatRequest{
		Model:    opts.Model,
		Messages: toOllamaMessages(messages),
		Stream:   &stream,
		Options: &ollama.Options{
			Temperature: ollama.Float(opts.Temperature),
		},
	}
	if opts.MaxTokens > 0 {
		req.Options.NumPredict = ollama.Int(opts.MaxTokens)
	}
	for _, tool := range opts.Tools {
		req.Tools = append(req.Tools, ollama.Tool{
			Type: "function",
			Function: ollama.ToolFunction{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}
	return req
}

func toOllamaMessages(messages []chat.Message) []ollama.Message {
	wire := make([]ollama.Message, 0, len(messages))
	for _, m := range messages {
		wm := ollama.Message{
			Role:    string(m.Role),
			Content: m.Content,
		}
		for _, call := range toolCallsOf(m) {
			args := call.Arguments
			if args == "" {
				args = "{}"
			}
			wm.ToolCalls = append(wm.ToolCalls, ollama.ToolCall{
				Function: ollama.ToolCallFunction{
					Name:      call.Name,
					Arguments: json.RawMessage(args),
				},
			})
		}
		wire = append(wire, wm)
	}
	return wire
}
