package llm

import (
	"context"
	"fmt"

	"github.com/Conceptual-Machines/prdgen-api/internal/models"
)

// FragmentFunc receives each chunk of document text as the model produces
// it. Returning a non-nil error aborts the upstream stream.
type FragmentFunc func(text string) error

// Provider defines the interface for LLM providers
// Providers MUST forward text incrementally through the fragment callback
// and never accumulate the full document on their side
type Provider interface {
	// StreamDocument generates a document, invoking onFragment once per text delta
	StreamDocument(ctx context.Context, request *GenerationRequest, onFragment FragmentFunc) (*StreamResult, error)

	// Name returns the provider name (e.g., "openai", "gemini")
	Name() string
}

// GenerationRequest contains all parameters needed for generation
type GenerationRequest struct {
	Model           string
	MaxOutputTokens int64
	Prompt          models.PromptRequest
}

// StreamResult summarizes a finished stream
type StreamResult struct {
	Usage     Usage
	Fragments int
}

// Usage holds provider-normalized token counts for one request
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
	TotalTokens  int64 `json:"total_tokens"`
}

// ConfigurationError indicates the requested provider has no API key
// configured. The message names both places a key can come from.
type ConfigurationError struct {
	Provider  string // provider name, e.g. "openai"
	ConfigKey string // config.json key holding the API key
	EnvVar    string // environment variable holding the API key
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s API key not found. Add it to config.json as %q or set the %s environment variable.",
		e.Provider, e.ConfigKey, e.EnvVar)
}

// TransportError wraps an upstream API failure so callers can tell it apart
// from errors returned by the fragment callback
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s stream failed: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
