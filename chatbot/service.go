// Package chatbot orchestrates conversation turns: prompt construction,
// temperature selection, backend invocation, and session history. Its
// contract is to always answer with text; no backend failure escapes as an
// error to the caller.
package chatbot

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/parleylabs/parley/pkg/agent"
	"github.com/parleylabs/parley/pkg/backend"
	"github.com/parleylabs/parley/pkg/cache"
	"github.com/parleylabs/parley/pkg/chat"
	"github.com/parleylabs/parley/pkg/config"
	"github.com/parleylabs/parley/pkg/history"
	"github.com/parleylabs/parley/pkg/prompt"
)

const (
	emptyInputMessage = "Please provide input for the chatbot."
	errorPrefix       = "Error generating response"
	searchErrorPrefix = "Error generating response with search"
)

// Service answers chat requests against one model backend.
type Service struct {
	gen       backend.Generator
	agent     *agent.Agent
	registry  *chat.SessionRegistry
	builder   *prompt.Builder
	temps     map[chat.ResponseStyle]float64
	cache     *cache.Cache
	store     history.Store
	model     string
	maxTokens int
	logger    *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithAgent routes generation through the search-augmented agent.
func WithAgent(a *agent.Agent) Option {
	return func(s *Service) { s.agent = a }
}

// WithHistoryStore persists completed turns behind the in-memory history.
func WithHistoryStore(store history.Store) Option {
	return func(s *Service) { s.store = store }
}

// WithTemperatures overrides the style-to-temperature mapping for the
// styles present in temps.
func WithTemperatures(temps map[chat.ResponseStyle]float64) Option {
	return func(s *Service) {
		for style, t := range temps {
			s.temps[style.Normalize()] = t
		}
	}
}

// WithMaxTokens caps generation length.
func WithMaxTokens(n int) Option {
	return func(s *Service) { s.maxTokens = n }
}

// New creates a Service. The response cache is enabled when the settings
// ask for it.
func New(settings config.Settings, gen backend.Generator, registry *chat.SessionRegistry, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		gen:      gen,
		registry: registry,
		builder:  prompt.NewBuilder(settings.Chatbot.Name),
		temps: map[chat.ResponseStyle]float64{
			chat.StyleStandard: 0.7,
			chat.StyleFactual:  0.3,
			chat.StyleCreative: 1.0,
		},
		model:  settings.ModelName(),
		logger: logger,
	}
	if settings.CacheEnabled() {
		s.cache = cache.New(cache.DefaultCapacity)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Respond answers one request synchronously. It never returns an error:
// empty input and backend failures both degrade to a textual message with
// zero confidence.
func (s *Service) Respond(ctx context.Context, req chat.ChatRequest) chat.ChatResponse {
	style := req.ResponseStyle.Normalize()

	rendered, err := s.buildPrompt(req.UserInput, style)
	if err != nil {
		return chat.ChatResponse{Message: emptyInputMessage, ResponseStyle: style}
	}

	temperature := s.temperature(req, style)
	sessionID := req.Session()

	key := cache.Key(rendered, temperature)
	if s.cache != nil {
		if text, ok := s.cache.Get(key); ok {
			s.logger.Debug("cache hit", zap.String("session_id", sessionID))
			return chat.ChatResponse{
				Message:       text,
				Confidence:    1.0,
				ResponseStyle: style,
				Metadata:      s.metadata(sessionID, temperature, map[string]any{"cached": true}),
			}
		}
	}

	text, err := s.generate(ctx, rendered, temperature)
	if err != nil {
		s.logger.Error("backend invocation failed",
			zap.Error(err),
			zap.String("session_id", sessionID),
		)
		return chat.ChatResponse{
			Message:       s.errPrefix() + ": " + err.Error(),
			ResponseStyle: style,
			Metadata:      s.metadata(sessionID, temperature, map[string]any{"error": true}),
		}
	}

	s.recordTurn(ctx, sessionID, rendered, text)
	if s.cache != nil {
		s.cache.Add(key, text)
	}

	return chat.ChatResponse{
		Message:       text,
		Confidence:    1.0,
		ResponseStyle: style,
		Metadata:      s.metadata(sessionID, temperature, nil),
	}
}

// RespondStream answers one request as a finite text stream. The channel
// closes when the response is complete; a backend failure yields exactly
// one degraded error chunk before closing. Session history is updated only
// after a fully successful stream.
func (s *Service) RespondStream(ctx context.Context, req chat.ChatRequest) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)

		style := req.ResponseStyle.Normalize()
		rendered, err := s.buildPrompt(req.UserInput, style)
		if err != nil {
			emit(ctx, out, emptyInputMessage)
			return
		}

		temperature := s.temperature(req, style)
		sessionID := req.Session()
		messages := []chat.Message{chat.NewMessage(chat.RoleUser, rendered)}

		var chunks <-chan backend.Chunk
		if s.agent != nil {
			chunks, err = s.agent.Stream(ctx, messages, s.options(temperature))
		} else {
			chunks, err = s.gen.Stream(ctx, messages, s.options(temperature))
		}
		if err != nil {
			s.logger.Error("backend stream failed",
				zap.Error(err),
				zap.String("session_id", sessionID),
			)
			emit(ctx, out, s.errPrefix()+": "+err.Error())
			return
		}

		n := newNormalizer(s.logger, s.errPrefix())
		var full strings.Builder
		failed := false
		for c := range chunks {
			text, ok := n.normalize(c)
			if !ok {
				continue
			}
			if c.Kind == backend.KindError {
				failed = true
				s.logger.Error("stream failed",
					zap.Error(c.Err),
					zap.String("session_id", sessionID),
				)
			}
			if !emit(ctx, out, text) {
				return
			}
			if c.Kind != backend.KindError {
				full.WriteString(text)
			}
		}

		if failed || ctx.Err() != nil {
			return
		}
		s.recordTurn(ctx, sessionID, rendered, full.String())
	}()
	return out
}

// buildPrompt renders the request prompt, using the search variant when an
// agent is attached.
func (s *Service) buildPrompt(userInput string, style chat.ResponseStyle) (string, error) {
	if s.agent != nil {
		return s.builder.BuildSearch(userInput, style)
	}
	return s.builder.Build(userInput, style)
}

// generate produces the complete reply text, through the agent when one is
// attached.
func (s *Service) generate(ctx context.Context, rendered string, temperature float64) (string, error) {
	messages := []chat.Message{chat.NewMessage(chat.RoleUser, rendered)}
	if s.agent == nil {
		return s.gen.Invoke(ctx, messages, s.options(temperature))
	}

	chunks, err := s.agent.Stream(ctx, messages, s.options(temperature))
	if err != nil {
		return "", err
	}

	n := newNormalizer(s.logger, s.errPrefix())
	n.indicated = true // non-streaming replies carry no searching indicator
	var full strings.Builder
	var callErr error
	for c := range chunks {
		if c.Kind == backend.KindError {
			callErr = c.Err
			continue
		}
		if text, ok := n.normalize(c); ok {
			full.WriteString(text)
		}
	}
	if callErr != nil {
		return "", callErr
	}
	return full.String(), nil
}

// recordTurn appends the completed exchange to the session history and,
// when configured, persists it. Persistence is best effort.
func (s *Service) recordTurn(ctx context.Context, sessionID, rendered, reply string) {
	hist := s.registry.GetOrCreate(sessionID)
	user := chat.NewMessage(chat.RoleUser, rendered)
	assistant := chat.NewMessage(chat.RoleAssistant, reply)
	hist.Append(user)
	hist.Append(assistant)

	if s.store != nil {
		if err := s.store.SaveTurn(ctx, sessionID, user, assistant); err != nil {
			s.logger.Warn("failed to persist turn",
				zap.Error(err),
				zap.String("session_id", sessionID),
			)
		}
	}
}

// temperature resolves the generation temperature: an explicit request
// value wins, otherwise the style mapping decides.
func (s *Service) temperature(req chat.ChatRequest, style chat.ResponseStyle) float64 {
	if req.Temperature > 0 {
		return req.Temperature
	}
	return s.temps[style]
}

func (s *Service) options(temperature float64) backend.Options {
	return backend.Options{
		Model:       s.model,
		Temperature: temperature,
		MaxTokens:   s.maxTokens,
	}
}

func (s *Service) errPrefix() string {
	if s.agent != nil {
		return searchErrorPrefix
	}
	return errorPrefix
}

func (s *Service) metadata(sessionID string, temperature float64, extra map[string]any) map[string]any {
	md := map[string]any{
		"model":       s.model,
		"session_id":  sessionID,
		"temperature": temperature,
	}
	for k, v := range extra {
		md[k] = v
	}
	return md
}

func emit(ctx context.Context, ch chan<- string, text string) bool {
	select {
	case ch <- text:
		return true
	case <-ctx.Done():
		return false
	}
}
