package ollama

// ChatRequest represents a chat completion request.
type ChatRequest struct {
	Model    string    `json:"model"`            // Model name (e.g., "llama3.2", "mistral")
	Messages []Message `json:"messages"`         // Conversation history
	Stream   *bool     `json:"stream,omitempty"` // Whether to stream responses (default: true in Ollama)
	Format   string    `json:"format,omitempty"` // Response format ("json" for JSON mode)
	Tools    []Tool    `json:"tools,omitempty"`  // Tools the model may call

	// Generation options
	Options *Options `json:"options,omitempty"`

	// Keep model loaded
	KeepAlive string `json:"keep_alive,omitempty"` // How long to keep model in memory
}

// Tool advertises a callable function to the model.
type Tool struct {
	Type     string       `json:"type"` // Always "function"
	Function ToolFunction `json:"function"`
}

// ToolFunction describes a function and its argument schema.
type ToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"` // JSON schema for the arguments
}
