package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

type pacedCompleter struct {
	next    Completer
	limiter *rate.Limiter
}

// Paced limits calls to rps requests per second (burst 1). rps <= 0 returns next unchanged.
func Paced(next Completer, rps float64) Completer {
	if rps <= 0 {
		return next
	}
	return &pacedCompleter{next: next, limiter: rate.NewLimiter(rate.Limit(rps), 1)}
}

func (p *pacedCompleter) Complete(ctx context.Context, prompt Prompt) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: rate limit wait: %w", ErrRewriteService, err)
	}
	return p.next.Complete(ctx, prompt)
}
