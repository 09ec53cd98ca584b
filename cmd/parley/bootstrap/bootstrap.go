// Package bootstrap wires the pieces every parley command needs: settings,
// logging, the model backend, and the chatbot service.
package bootstrap

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/parleylabs/parley/chatbot"
	"github.com/parleylabs/parley/pkg/agent"
	"github.com/parleylabs/parley/pkg/backend"
	"github.com/parleylabs/parley/pkg/chat"
	"github.com/parleylabs/parley/pkg/config"
	"github.com/parleylabs/parley/pkg/history"
	"github.com/parleylabs/parley/pkg/logger"
)

// DefaultConfigPath is where commands look for settings when no --config
// flag is given.
const DefaultConfigPath = "config/settings.yaml"

// Options selects how an App is assembled.
type Options struct {
	ConfigPath string
	Debug      bool

	// Quiet routes only errors to the terminal, for full-screen
	// interfaces.
	Quiet bool

	// Search attaches the web search agent to the service.
	Search bool
}

// App bundles the wired application pieces.
type App struct {
	Settings config.Settings
	Logger   *zap.Logger
	Registry *chat.SessionRegistry
	Service  *chatbot.Service

	store history.Store
}

// New loads settings and assembles the chatbot service with its backend,
// optional search agent, and optional durable history store.
func New(opts Options) (*App, error) {
	path := opts.ConfigPath
	if path == "" {
		path = DefaultConfigPath
	}

	settings, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("could not load settings from %s: %w", path, err)
	}

	var log *zap.Logger
	if opts.Quiet {
		log = logger.NewQuiet()
	} else {
		log = logger.NewLogger(opts.Debug)
	}

	gen := newGenerator(settings, log)
	registry := chat.NewSessionRegistry()

	app := &App{
		Settings: settings,
		Logger:   log,
		Registry: registry,
	}

	var svcOpts []chatbot.Option
	if opts.Search {
		search := agent.NewDuckDuckGo("")
		svcOpts = append(svcOpts, chatbot.WithAgent(agent.New(gen, []agent.Tool{search}, log)))
	}

	if url := settings.DatabaseURL(); url != "" {
		if dbPath, ok := SQLitePath(url); ok {
			store, err := history.NewSQLiteStore(dbPath)
			if err != nil {
				log.Warn("could not open history database",
					zap.String("path", dbPath),
					zap.Error(err),
				)
			} else {
				app.store = store
				svcOpts = append(svcOpts, chatbot.WithHistoryStore(store))
			}
		} else {
			log.Warn("unsupported database url, history will not be persisted",
				zap.String("url", url),
			)
		}
	}

	app.Service = chatbot.New(settings, gen, registry, log, svcOpts...)
	return app, nil
}

// Close releases the app's resources.
func (a *App) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.Logger.Warn("could not close history database", zap.Error(err))
		}
	}
	_ = a.Logger.Sync()
}

// newGenerator builds the backend the settings select: a hosted OpenAI
// compatible API, or a local Ollama daemon.
func newGenerator(settings config.Settings, log *zap.Logger) backend.Generator {
	if settings.AIModel.Backend == config.BackendHosted {
		return backend.NewHosted(backend.HostedConfig{
			BaseURL: settings.LLM.APIEndpoint,
			APIKey:  settings.LLM.APIToken,
		}, log)
	}
	return backend.NewLocal(backend.LocalConfig{Host: settings.AIModel.Endpoint}, log)
}

// SQLitePath extracts the file path from an sqlite:// database url, the
// form the settings file uses. Other schemes are not supported.
func SQLitePath(url string) (string, bool) {
	for _, prefix := range []string{"sqlite:///", "sqlite://"} {
		if strings.HasPrefix(url, prefix) {
			p := strings.TrimPrefix(url, prefix)
			return p, p != ""
		}
	}
	return "", false
}
