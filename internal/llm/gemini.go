package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// GeminiClient implements Completer with langchaingo's Google AI model.
type GeminiClient struct {
	model  llms.Model
	apiKey string
}

// NewGeminiClient builds the client lazily on first use when apiKey is empty,
// so a missing key surfaces as ErrMissingCredential rather than at boot.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return &GeminiClient{}, nil
	}
	opts := []googleai.Option{googleai.WithAPIKey(apiKey)}
	if model = strings.TrimSpace(model); model != "" {
		opts = append(opts, googleai.WithDefaultModel(model))
	}
	m, err := googleai.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("init gemini: %w", err)
	}
	return &GeminiClient{model: m, apiKey: apiKey}, nil
}

// Complete prepends the system text to the user prompt; the single-prompt
// helper has no separate system role.
func (g *GeminiClient) Complete(ctx context.Context, p Prompt) (string, error) {
	if g.model == nil || g.apiKey == "" {
		return "", ErrMissingCredential
	}
	prompt := p.User
	if p.System != "" {
		prompt = p.System + "\n\n" + p.User
	}
	out, err := llms.GenerateFromSinglePrompt(ctx, g.model, prompt, llms.WithTemperature(p.Temperature))
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %w", ErrRewriteService, err)
	}
	return out, nil
}
