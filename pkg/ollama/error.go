package ollama

// ErrorResponse represents an error payload from the Ollama API.
type ErrorResponse struct {
	Error string `json:"error"`
}
