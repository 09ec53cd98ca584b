package backend

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/parleylabs/parley/pkg/chat"
	"github.com/parleylabs/parley/pkg/openai"
)

const defaultHostedBaseURL = "https://api.openai.com"

// HostedConfig configures the Hosted backend.
type HostedConfig struct {
	BaseURL string        // Base URL of the API (default https://api.openai.com)
	APIKey  string        // Bearer token, sent when non-empty
	Timeout time.Duration // Per-request HTTP timeout (default 2 minutes)
}

// Hosted generates responses by calling an OpenAI-compatible chat
// completions API. Streams arrive as server-sent events; content deltas
// are surfaced as text chunks and fragmented tool calls are reassembled
// before emission.
type Hosted struct {
	config     HostedConfig
	logger     *zap.Logger
	httpClient *http.Client
}

// NewHosted creates a Hosted backend.
func NewHosted(config HostedConfig, logger *zap.Logger) *Hosted {
	if config.BaseURL == "" {
		config.BaseURL = defaultHostedBaseURL
	}
	config.BaseURL = strings.TrimSuffix(config.BaseURL, "/")
	if config.Timeout == 0 {
		config.Timeout = 2 * time.Minute
	}

	return &Hosted{
		config: config,
		logger: logger,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Invoke sends a non-streaming chat completion request and returns the
// assistant's complete reply.
func (h *Hosted) Invoke(ctx context.Context, messages []chat.Message, opts Options) (string, error) {
	req := h.buildRequest(messages, opts, false)

	var resp openai.ChatCompletionResponse
	if err := h.post(ctx, req, func(body io.Reader) error {
		return json.NewDecoder(body).Decode(&resp)
	}); err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message == nil {
		return "", errors.New("no choices in response")
	}

	h.logger.Debug("chat completion response",
		zap.String("model", resp.Model),
		zap.String("finish_reason", resp.Choices[0].FinishReason),
	)

	return resp.Choices[0].Message.Content, nil
}

// Stream sends a streaming chat completion request. The returned channel
// is closed when the provider sends [DONE], the stream fails, or ctx is
// cancelled.
func (h *Hosted) Stream(ctx context.Context, messages []chat.Message, opts Options) (<-chan Chunk, error) {
	req := h.buildRequest(messages, opts, true)

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.config.BaseURL+"/v1/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	h.setHeaders(httpReq)

	httpResp, err := h.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(httpResp.Body)
		httpResp.Body.Close()
		return nil, apiError(httpResp.StatusCode, body)
	}

	ch := make(chan Chunk)
	go func() {
		defer close(ch)
		defer httpResp.Body.Close()

		var calls toolCallAccumulator
		reader := bufio.NewReader(httpResp.Body)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				if err != io.EOF && ctx.Err() == nil {
					send(ctx, ch, ErrorChunk(fmt.Errorf("read stream: %w", err)))
					return
				}
				break
			}

			line = strings.TrimSpace(line)
			if !strings.HasPrefix(line, "data: ") {
				continue
			}

			data := strings.TrimPrefix(line, "data: ")
			if data == "[DONE]" {
				break
			}

			var chunk openai.StreamChunk
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				h.logger.Warn("failed to parse chunk", zap.Error(err), zap.String("data", data))
				if !send(ctx, ch, UnknownChunk(data)) {
					return
				}
				continue
			}
			if len(chunk.Choices) == 0 || chunk.Choices[0].Delta == nil {
				continue
			}

			delta := chunk.Choices[0].Delta
			for _, tc := range delta.ToolCalls {
				calls.add(tc)
			}
			if delta.Content != "" {
				if !send(ctx, ch, TextChunk(delta.Content)) {
					return
				}
			}
		}

		// Fragmented tool calls are complete once the stream ends
		for _, call := range calls.done() {
			if !send(ctx, ch, ToolCallChunk(call)) {
				return
			}
		}
	}()

	return ch, nil
}

// post sends a JSON request to the chat completions endpoint and hands the
// response body to read.
func (h *Hosted) post(ctx context.Context, req *openai.ChatCompletionRequest, read func(io.Reader) error) error {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.config.BaseURL+"/v1/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	h.setHeaders(httpReq)

	httpResp, err := h.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(httpResp.Body)
		return apiError(httpResp.StatusCode, body)
	}

	if err := read(httpResp.Body); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func (h *Hosted) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if h.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.config.APIKey)
	}
}

// buildRequest converts transcript messages and generation options into a
// chat completion request.
func (h *Hosted) buildRequest(messages []chat.Message, opts Options, stream bool) *openai.ChatCompletionRequest {
	req := &openai.ChatCompletionRequest{
		Model:       opts.Model,
		Messages:    toOpenAIMessages(messages),
		Temperature: openai.Float(opts.Temperature),
		Stream:      stream,
	}
	if opts.MaxTokens > 0 {
		req.MaxTokens = openai.Int(opts.MaxTokens)
	}
	for _, tool := range opts.Tools {
		req.Tools = append(req.Tools, openai.Tool{
			Type: "function",
			Function: openai.ToolFunction{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}
	return req
}

func toOpenAIMessages(messages []chat.Message) []openai.ChatMessage {
	wire := make([]openai.ChatMessage, 0, len(messages))
	for _, m := range messages {
		wm := openai.ChatMessage{
			Role:    string(m.Role),
			Content: m.Content,
		}
		for _, call := range toolCallsOf(m) {
			wm.ToolCalls = append(wm.ToolCalls, openai.ToolCall{
				ID:   call.ID,
				Type: "function",
				Function: openai.ToolCallFunction{
					Name:      call.Name,
					Arguments: call.Arguments,
				},
			})
		}
		if m.Role == chat.RoleTool {
			wm.ToolCallID = toolCallIDOf(m)
			wm.Name = toolNameOf(m)
		}
		wire = append(wire, wm)
	}
	return wire
}

// apiError builds an error from a non-200 response, preferring the
// structured message when the body parses.
func apiError(status int, body []byte) error {
	var errResp openai.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != nil {
		return fmt.Errorf("api returned %d: %s", status, errResp.Error.Message)
	}
	return fmt.Errorf("api returned %d: %s", status, strings.TrimSpace(string(body)))
}

// toolCallAccumulator reassembles tool calls that arrive fragmented across
// streaming deltas, keyed by their delta index.
type toolCallAccumulator struct {
	calls []ToolCall
}

func (a *toolCallAccumulator) add(tc openai.ToolCall) {
	idx := 0
	if tc.Index != nil {
		idx = *tc.Index
	}
	for len(a.calls) <= idx {
		a.calls = append(a.calls, ToolCall{})
	}
	if tc.ID != "" {
		a.calls[idx].ID = tc.ID
	}
	if tc.Function.Name != "" {
		a.calls[idx].Name = tc.Function.Name
	}
	a.calls[idx].Arguments += tc.Function.Arguments
}

// done returns the completed calls, dropping empty slots.
func (a *toolCallAccumulator) done() []ToolCall {
	out := make([]ToolCall, 0, len(a.calls))
	for _, call := range a.calls {
		if call.Name != "" {
			out = append(out, call)
		}
	}
	return out
}
