// Package server exposes the chatbot over HTTP: a JSON API for single-shot
// and streaming turns, session inspection endpoints, and an embedded chat
// page.
package server

import (
	"bufio"
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"html/template"
	"sort"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/parleylabs/parley/chatbot"
	"github.com/parleylabs/parley/pkg/chat"
	"github.com/parleylabs/parley/pkg/config"
)

//go:embed index.html
var indexHTML string

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

// ErrorResponse is the JSON body for failed API calls.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StreamChunk is one NDJSON line of a streaming chat response. The final
// line of every stream carries Done true and no content.
type StreamChunk struct {
	Content string `json:"content,omitempty"`
	Done    bool   `json:"done"`
}

// HistoryResponse is the display transcript for one session.
type HistoryResponse struct {
	SessionID     string              `json:"session_id"`
	ResponseStyle chat.ResponseStyle  `json:"response_type"`
	Messages      []chat.HistoryEntry `json:"messages"`
	Count         int                 `json:"count"`
}

// Server serves the chatbot API and the embedded chat page. It keeps one
// display Conversation per session alongside the model-side histories in
// the registry.
type Server struct {
	config   Config
	settings config.Settings
	svc      *chatbot.Service
	registry *chat.SessionRegistry
	logger   *zap.Logger
	app      *fiber.App

	// mu guards the conversation map only; a Conversation itself is
	// single-threaded by contract.
	mu    sync.Mutex
	convs map[string]*chat.Conversation
}

// New creates a Server and registers its routes.
func New(cfg Config, settings config.Settings, svc *chatbot.Service, registry *chat.SessionRegistry, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
		// Enable streaming
		StreamRequestBody: true,
	})

	s := &Server{
		config:   cfg,
		settings: settings,
		svc:      svc,
		registry: registry,
		logger:   logger,
		app:      app,
		convs:    make(map[string]*chat.Conversation),
	}

	app.Get("/", s.handleIndex)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})

	// Chat API
	app.Post("/api/chat", s.handleChat)
	app.Post("/api/chat/stream", s.handleChatStream)

	// Session inspection endpoints
	app.Get("/api/sessions", s.handleListSessions)
	app.Get("/api/sessions/:id/history", s.handleGetHistory)
	app.Delete("/api/sessions/:id", s.handleClearSession)

	return s
}

// Run starts the server on the configured listening address.
func (s *Server) Run() error {
	s.logger.Info("starting chat server",
		zap.String("listen", s.config.ListenAddr),
		zap.String("app_title", s.settings.UI.AppTitle),
	)

	return s.app.Listen(s.config.ListenAddr)
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	return s.app.Shutdown()
}

// conversation returns the display conversation for a session, creating it
// on first reference.
func (s *Server) conversation(sessionID string) *chat.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.convs[sessionID]
	if !ok {
		conv = chat.NewConversation(sessionID)
		s.convs[sessionID] = conv
	}
	return conv
}

// handleIndex renders the embedded chat page with the configured UI text.
func (s *Server) handleIndex(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, s.settings.UI); err != nil {
		s.logger.Error("failed to render chat page", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "internal error"})
	}

	c.Set("Content-Type", fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(buf.Bytes())
}

// handleChat answers one turn synchronously. The service degrades failures
// to text, so this endpoint always returns 200 with a ChatResponse once the
// body parses.
func (s *Server) handleChat(c *fiber.Ctx) error {
	var req chat.ChatRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		s.logger.Error("failed to parse request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	s.logger.Debug("received chat request",
		zap.String("session_id", req.Session()),
		zap.String("response_type", string(req.ResponseStyle)),
		zap.Int("input_length", len(req.UserInput)),
	)

	conv := s.conversation(req.Session())
	conv.SetResponseStyle(req.ResponseStyle)
	conv.AddUserMessage(req.UserInput)

	resp := s.svc.Respond(c.Context(), req)
	conv.AddAssistantMessage(resp.Message, resp.Metadata)

	return c.JSON(resp)
}

// handleChatStream answers one turn as NDJSON. Each generated fragment is
// written as its own line; the stream always ends with a done line.
func (s *Server) handleChatStream(c *fiber.Ctx) error {
	var req chat.ChatRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		s.logger.Error("failed to parse request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	s.logger.Debug("received streaming chat request",
		zap.String("session_id", req.Session()),
		zap.String("response_type", string(req.ResponseStyle)),
	)

	conv := s.conversation(req.Session())
	conv.SetResponseStyle(req.ResponseStyle)
	conv.AddUserMessage(req.UserInput)

	// Set up streaming response headers
	c.Set("Content-Type", "application/x-ndjson")
	c.Set("Transfer-Encoding", "chunked")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		// The request context ends when the handler returns, so the
		// stream runs on its own cancellable context.
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var full strings.Builder
		chunks := s.svc.RespondStream(ctx, req)
		for text := range chunks {
			line, err := json.Marshal(StreamChunk{Content: text})
			if err != nil {
				s.logger.Error("failed to marshal chunk", zap.Error(err))
				continue
			}
			w.Write(line)
			w.Write([]byte("\n"))
			if err := w.Flush(); err != nil {
				// Client went away. Stop generating and drain.
				s.logger.Debug("client disconnected", zap.Error(err))
				cancel()
				for range chunks {
				}
				return
			}
			full.WriteString(text)
		}

		conv.AddAssistantMessage(full.String(), nil)

		if line, err := json.Marshal(StreamChunk{Done: true}); err == nil {
			w.Write(line)
			w.Write([]byte("\n"))
			w.Flush()
		}
	}))

	return nil
}

// handleListSessions returns the known session ids in sorted order.
func (s *Server) handleListSessions(c *fiber.Ctx) error {
	s.mu.Lock()
	ids := make([]string, 0, len(s.convs))
	for id := range s.convs {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	sort.Strings(ids)

	return c.JSON(map[string]any{
		"count":    len(ids),
		"sessions": ids,
	})
}

// handleGetHistory returns the display transcript for one session.
func (s *Server) handleGetHistory(c *fiber.Ctx) error {
	id := c.Params("id")

	s.mu.Lock()
	conv, ok := s.convs[id]
	s.mu.Unlock()
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "session not found"})
	}

	entries := conv.History()
	return c.JSON(HistoryResponse{
		SessionID:     id,
		ResponseStyle: conv.ResponseStyle(),
		Messages:      entries,
		Count:         len(entries),
	})
}

// handleClearSession empties a session's display conversation and its
// model-side history. The durable turn log, when configured, is not
// touched.
func (s *Server) handleClearSession(c *fiber.Ctx) error {
	id := c.Params("id")

	s.mu.Lock()
	conv, ok := s.convs[id]
	s.mu.Unlock()
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "session not found"})
	}

	conv.Clear()
	s.registry.GetOrCreate(id).Clear()
	s.logger.Info("session cleared", zap.String("session_id", id))

	return c.JSON(map[string]string{"status": "cleared"})
}
