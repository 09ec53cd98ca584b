package chat

// ResponseStyle is a named behavioral mode. It selects both a system persona
// and a sampling temperature.
type ResponseStyle string

const (
	// StyleStandard is the helpful default persona.
	StyleStandard ResponseStyle = "standard"
	// StyleCreative prompts for imaginative, exploratory answers.
	StyleCreative ResponseStyle = "creative"
	// StyleFactual prompts for precise, verified-facts-only answers.
	StyleFactual ResponseStyle = "factual"
)

// Normalize maps empty or unrecognized styles to StyleStandard.
func (s ResponseStyle) Normalize() ResponseStyle {
	switch s {
	case StyleStandard, StyleCreative, StyleFactual:
		return s
	default:
		return StyleStandard
	}
}

// DefaultSessionID is used when a request does not name a session.
const DefaultSessionID = "default_session"

// ChatRequest is one conversation turn submitted to the chatbot service.
// Temperature is an optional override; when zero the service resolves it
// from the response style.
type ChatRequest struct {
	UserInput     string        `json:"user_input"`
	Temperature   float64       `json:"temperature,omitempty"`
	ResponseStyle ResponseStyle `json:"response_type,omitempty"`
	SessionID     string        `json:"session_id,omitempty"`
}

// Session returns the request's session id, defaulting when unset.
func (r ChatRequest) Session() string {
	if r.SessionID == "" {
		return DefaultSessionID
	}
	return r.SessionID
}

// ChatResponse is the reply for one non-streaming turn. Confidence is 1.0
// for a model-generated answer and 0.0 for degraded replies (empty input,
// backend failure).
type ChatResponse struct {
	Message       string         `json:"message"`
	Confidence    float64        `json:"confidence"`
	ResponseStyle ResponseStyle  `json:"response_type"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}
