// Package config loads and validates the YAML settings file. Validation
// failures are fatal at startup; nothing else in the system re-reads
// configuration after construction.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Model backends.
const (
	BackendLocal  = "local"
	BackendHosted = "hosted"
)

// Settings is the root of the settings file.
type Settings struct {
	AIModel  AIModelSettings  `yaml:"ai_model"`
	Chatbot  ChatbotSettings  `yaml:"chatbot"`
	LLM      LLMSettings      `yaml:"llm"`
	UI       UISettings       `yaml:"ui"`
	Cache    CacheSettings    `yaml:"cache"`
	Database DatabaseSettings `yaml:"database"`
}

// AIModelSettings selects the model and backend.
type AIModelSettings struct {
	// Model name for the local backend (e.g., "llama3.2")
	Name string `yaml:"name"`

	// "local" (Ollama) or "hosted" (OpenAI-compatible). Defaults to local.
	Backend string `yaml:"backend"`

	// Optional Ollama base URL override (default http://localhost:11434)
	Endpoint string `yaml:"endpoint"`
}

// ChatbotSettings names the assistant.
type ChatbotSettings struct {
	Name string `yaml:"name"`
}

// LLMSettings configures the hosted backend. Ignored when the backend is
// local.
type LLMSettings struct {
	// Model repository id (e.g., "mistralai/Mistral-7B-Instruct-v0.3")
	Repo string `yaml:"repo"`

	// Bearer token for the API
	APIToken string `yaml:"api_token"`

	// Optional base URL override
	APIEndpoint string `yaml:"api_endpoint"`
}

// UISettings feeds the web and terminal frontends.
type UISettings struct {
	PageTitle  string `yaml:"page_title"`
	Layout     string `yaml:"layout"`
	AppTitle   string `yaml:"app_title"`
	AppMessage string `yaml:"app_message"`
}

// CacheSettings toggles the response cache. The key must be present so a
// missing file section is distinguishable from an explicit false.
type CacheSettings struct {
	Enabled *bool `yaml:"enabled"`
}

// DatabaseSettings configures transcript persistence. The key must be
// present; an empty value disables persistence.
type DatabaseSettings struct {
	URL *string `yaml:"url"`
}

// ConfigError describes an invalid or incomplete settings file.
type ConfigError struct {
	Missing []string // required keys absent from the file
	Invalid []string // present keys with unacceptable values, with reasons
}

func (e *ConfigError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required keys: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid values: "+strings.Join(e.Invalid, "; "))
	}
	return "invalid configuration: " + strings.Join(parts, "; ")
}

// Load reads, parses, and validates the settings file.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}

	if s.AIModel.Backend == "" {
		s.AIModel.Backend = BackendLocal
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks the required keys. It returns a *ConfigError listing
// every problem at once rather than stopping at the first.
func (s *Settings) Validate() error {
	cfgErr := &ConfigError{}

	required := []struct {
		key   string
		value string
	}{
		{"ai_model.name", s.AIModel.Name},
		{"chatbot.name", s.Chatbot.Name},
		{"ui.page_title", s.UI.PageTitle},
		{"ui.layout", s.UI.Layout},
		{"ui.app_title", s.UI.AppTitle},
		{"ui.app_message", s.UI.AppMessage},
	}
	for _, r := range required {
		if r.value == "" {
			cfgErr.Missing = append(cfgErr.Missing, r.key)
		}
	}

	if s.Cache.Enabled == nil {
		cfgErr.Missing = append(cfgErr.Missing, "cache.enabled")
	}
	if s.Database.URL == nil {
		cfgErr.Missing = append(cfgErr.Missing, "database.url")
	}

	switch s.AIModel.Backend {
	case BackendLocal:
	case BackendHosted:
		if s.LLM.Repo == "" {
			cfgErr.Missing = append(cfgErr.Missing, "llm.repo")
		}
		if s.LLM.APIToken == "" {
			cfgErr.Missing = append(cfgErr.Missing, "llm.api_token")
		}
	default:
		cfgErr.Invalid = append(cfgErr.Invalid, fmt.Sprintf("ai_model.backend %q (must be %q or %q)", s.AIModel.Backend, BackendLocal, BackendHosted))
	}

	if len(cfgErr.Missing) > 0 || len(cfgErr.Invalid) > 0 {
		return cfgErr
	}
	return nil
}

// CacheEnabled reports whether the response cache is on.
func (s Settings) CacheEnabled() bool {
	return s.Cache.Enabled != nil && *s.Cache.Enabled
}

// DatabaseURL returns the transcript database location, empty when
// persistence is disabled.
func (s Settings) DatabaseURL() string {
	if s.Database.URL == nil {
		return ""
	}
	return *s.Database.URL
}

// ModelName returns the model identifier for the configured backend.
func (s Settings) ModelName() string {
	if s.AIModel.Backend == BackendHosted {
		return s.LLM.Repo
	}
	return s.AIModel.Name
}
