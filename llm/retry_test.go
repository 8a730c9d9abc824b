package llm

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

type flakyGenerator struct {
	errs  []error
	calls int
}

func (f *flakyGenerator) Generate(context.Context, []Message) (*Result, error) {
	f.calls++
	if f.calls <= len(f.errs) {
		return nil, f.errs[f.calls-1]
	}
	return &Result{Text: "ok"}, nil
}

func newTestRetry(next Generator, max int) (*RetryGenerator, *[]time.Duration) {
	var waits []time.Duration
	r := NewRetryGenerator(next, max, 100*time.Millisecond)
	r.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	return r, &waits
}

func TestRetryRecoversFromTransientErrors(t *testing.T) {
	next := &flakyGenerator{errs: []error{
		&googleapi.Error{Code: http.StatusServiceUnavailable},
		errors.New("connection reset by peer"),
	}}
	r, waits := newTestRetry(next, 3)

	res, err := r.Generate(context.Background(), UserText("hi"))
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Text)
	assert.Equal(t, 3, next.calls)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, *waits)
}

func TestRetryStopsOnClientErrors(t *testing.T) {
	for _, code := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden} {
		next := &flakyGenerator{errs: []error{&googleapi.Error{Code: code}}}
		r, _ := newTestRetry(next, 3)

		_, err := r.Generate(context.Background(), UserText("hi"))
		require.Error(t, err)
		assert.Equal(t, 1, next.calls, "code %d", code)
	}
}

func TestRetryGivesUp(t *testing.T) {
	transient := &googleapi.Error{Code: http.StatusTooManyRequests}
	next := &flakyGenerator{errs: []error{transient, transient, transient, transient}}
	r, _ := newTestRetry(next, 3)

	_, err := r.Generate(context.Background(), UserText("hi"))
	require.Error(t, err)
	assert.Equal(t, 3, next.calls)
	var apiErr *googleapi.Error
	assert.True(t, errors.As(err, &apiErr))
}

func TestRetryHonoursContext(t *testing.T) {
	next := &flakyGenerator{errs: []error{errors.New("flaky"), errors.New("flaky")}}
	r := NewRetryGenerator(next, 3, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Generate(ctx, UserText("hi"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, next.calls)
}

func TestRetryPassesBlockedResults(t *testing.T) {
	blocked := &Result{Block: &Block{Reason: BlockSafety}}
	r, _ := newTestRetry(generatorFunc(func() (*Result, error) { return blocked, nil }), 3)
	res, err := r.Generate(context.Background(), UserText("hi"))
	require.NoError(t, err)
	assert.Same(t, blocked, res)
}

type generatorFunc func() (*Result, error)

func (f generatorFunc) Generate(context.Context, []Message) (*Result, error) { return f() }
