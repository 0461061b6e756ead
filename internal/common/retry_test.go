package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/facet-flow/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetry(t *testing.T) {
	fastOpts := service.RetryOptions{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		Multiplier:   2,
	}

	tests := []struct {
		name         string
		failures     int
		permanent    bool
		wantAttempts int
		wantErr      error
	}{
		{name: "succeeds first try", failures: 0, wantAttempts: 1},
		{name: "succeeds after transient failures", failures: 2, wantAttempts: 3},
		{name: "exhausts attempts", failures: 5, wantAttempts: 3, wantErr: ErrMaxRetries},
		{name: "stops on permanent error", failures: 5, permanent: true, wantAttempts: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			boom := errors.New("boom")
			err := WithRetry(context.Background(), func() error {
				attempts++
				if attempts <= tt.failures {
					if tt.permanent {
						return Permanent(boom)
					}
					return boom
				}
				return nil
			}, fastOpts)

			assert.Equal(t, tt.wantAttempts, attempts)
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, boom)
			case tt.permanent:
				require.ErrorIs(t, err, boom)
			default:
				require.NoError(t, err)
			}
		})
	}
}

func TestWithRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetry(ctx, func() error {
		return errors.New("transient")
	}, service.RetryOptions{MaxAttempts: 3, InitialDelay: time.Second})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithRetry_CanceledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	transient := errors.New("transient")
	calls := 0

	err := WithRetry(ctx, func() error {
		calls++
		cancel()
		return transient
	}, service.RetryOptions{MaxAttempts: 3, InitialDelay: time.Second})

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, transient)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrRateLimit))
	assert.True(t, IsRetryable(&RetryableError{Err: errors.New("x"), Retryable: true}))
	assert.False(t, IsRetryable(Permanent(errors.New("x"))))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestUserError(t *testing.T) {
	cause := errors.New("disk full")
	err := NewUserError("could not save vocabulary", cause)

	assert.Equal(t, "could not save vocabulary: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
}
