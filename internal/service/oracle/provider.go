// Package oracle adapts an LLM into the decision oracle of trip
// reconciliation: given a transcript and the items already on the trip card,
// it returns keep/remove decisions and trip metadata.
package oracle

import "context"

// Provider is a text completion backend.
type Provider interface {
	Complete(ctx context.Context, prompt string, options CompletionOptions) (string, error)
	IsAvailable() bool
	Name() string
}

// CompletionOptions configures a single completion.
type CompletionOptions struct {
	System      string
	Temperature float64
	MaxTokens   int
	Format      string // "json" requests a JSON object response
}
