// Package llm rewrites résumé content against a job description through a
// chat-completion service.
package llm

import "context"

// Prompt is a single system+user exchange.
type Prompt struct {
	System      string
	User        string
	Temperature float64
}

// Completer returns the model's free-form text for a prompt.
type Completer interface {
	Complete(ctx context.Context, p Prompt) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, p Prompt) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, p Prompt) (string, error) {
	return f(ctx, p)
}
