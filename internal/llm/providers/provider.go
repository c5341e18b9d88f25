// File path: internal/llm/providers/provider.go
package providers

import "context"

// Message is a single chat turn sent to a provider.
type Message struct {
	Role    string
	Content string
}

// Provider abstracts the chat backend used for AI-assisted scenario
// conversion. Implementations must be safe for concurrent use.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
	Name() string
}
