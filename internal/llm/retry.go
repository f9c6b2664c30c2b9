package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"resume-tailor/internal/shared/telemetry"
)

type retryingCompleter struct {
	next        Completer
	maxRetries  uint
	initialWait time.Duration
}

// WithRetry retries transient service failures with exponential backoff.
// It belongs to the calling layer; the rewriter itself never retries.
// maxRetries <= 0 returns next unchanged.
func WithRetry(next Completer, maxRetries int) Completer {
	if maxRetries <= 0 {
		return next
	}
	return &retryingCompleter{next: next, maxRetries: uint(maxRetries), initialWait: 500 * time.Millisecond}
}

func (r *retryingCompleter) Complete(ctx context.Context, p Prompt) (string, error) {
	attempt := 0
	operation := func() (string, error) {
		attempt++
		out, err := r.next.Complete(ctx, p)
		if err == nil {
			return out, nil
		}
		if !shouldRetry(err) {
			return "", backoff.Permanent(err)
		}
		telemetry.Warn("llm.retry", map[string]any{"attempt": attempt, "err": err})
		return "", err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.initialWait
	bo.MaxInterval = 10 * time.Second

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(r.maxRetries+1),
		backoff.WithMaxElapsedTime(2*time.Minute),
	)
}

func shouldRetry(err error) bool {
	if err == nil || errors.Is(err, ErrMissingCredential) || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var status *StatusError
	if errors.As(err, &status) {
		return status.Code == http.StatusTooManyRequests || status.Code >= 500
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") {
		return true
	}
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "eof")
}
