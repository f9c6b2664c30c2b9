package llm

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(next Completer, max int) Completer {
	c := WithRetry(next, max)
	if rc, ok := c.(*retryingCompleter); ok {
		rc.initialWait = time.Millisecond
	}
	return c
}

func TestWithRetryRecoversFromTransientErrors(t *testing.T) {
	calls := 0
	next := CompleterFunc(func(ctx context.Context, p Prompt) (string, error) {
		calls++
		if calls < 3 {
			return "", &StatusError{Code: http.StatusBadGateway, Body: "upstream"}
		}
		return "ok", nil
	})
	out, err := fastRetry(next, 3).Complete(context.Background(), Prompt{})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 3, calls)
}

func TestWithRetryStopsOnPermanentErrors(t *testing.T) {
	for name, failure := range map[string]error{
		"credential":  ErrMissingCredential,
		"bad request": &StatusError{Code: http.StatusBadRequest, Body: "bad"},
	} {
		t.Run(name, func(t *testing.T) {
			calls := 0
			next := CompleterFunc(func(ctx context.Context, p Prompt) (string, error) {
				calls++
				return "", failure
			})
			_, err := fastRetry(next, 3).Complete(context.Background(), Prompt{})
			require.True(t, errors.Is(err, failure))
			assert.Equal(t, 1, calls)
		})
	}
}

func TestWithRetryZeroIsPassthrough(t *testing.T) {
	next := CompleterFunc(func(ctx context.Context, p Prompt) (string, error) { return "x", nil })
	_, isRetry := WithRetry(next, 0).(*retryingCompleter)
	assert.False(t, isRetry)
}

func TestPacedWaitsBetweenCalls(t *testing.T) {
	next := CompleterFunc(func(ctx context.Context, p Prompt) (string, error) { return "x", nil })
	paced := Paced(next, 20)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := paced.Complete(context.Background(), Prompt{})
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Paced(next, 0.001).Complete(ctx, Prompt{})
	require.ErrorIs(t, err, ErrRewriteService)
}
