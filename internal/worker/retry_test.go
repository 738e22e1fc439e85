package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextDelay(t *testing.T) {
	p := RetryPolicy{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, BackoffFactor: 2}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, time.Second},
		{10, time.Second},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.NextDelay(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestNextDelayDefaults(t *testing.T) {
	var p RetryPolicy
	assert.Equal(t, time.Second, p.NextDelay(1))
	assert.Equal(t, 2*time.Second, p.NextDelay(2))
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	p := RetryPolicy{MaxRetries: 5, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

	calls := 0
	var retried []int
	err := Retry(context.Background(), p, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	}, func(attempt int, _ time.Duration, _ error) {
		retried = append(retried, attempt)
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestRetryGivesUp(t *testing.T) {
	p := RetryPolicy{MaxRetries: 3, InitialDelay: time.Millisecond}
	cause := errors.New("connection refused")

	calls := 0
	err := Retry(context.Background(), p, func(context.Context) error {
		calls++
		return cause
	}, nil)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 3, calls)
}

func TestRetrySingleAttempt(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), RetryPolicy{}, func(context.Context) error {
		calls++
		return errors.New("fail")
	}, nil)

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryStopsOnContextCancel(t *testing.T) {
	p := RetryPolicy{MaxRetries: 10, InitialDelay: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := Retry(ctx, p, func(context.Context) error {
		calls++
		return errors.New("fail")
	}, func(int, time.Duration, error) { cancel() })

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
