package transport

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tobiasgrant/tasksync/internal/events"
)

func retryClient(maxRetries int) *HTTPClient {
	return &HTTPClient{
		maxRetries: maxRetries,
		retryDelay: 10 * time.Millisecond,
		logger:     events.NewNopLogger(),
	}
}

func TestRetryBacksOffOnGET(t *testing.T) {
	attempts := 0
	client := retryClient(3)

	err := client.retry(context.Background(), "GET", func() error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	attempts := 0
	client := retryClient(2)

	err := client.retry(context.Background(), "GET", func() error {
		attempts++
		return errors.New("persistent error")
	})

	assert.Error(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetrySkipsMutations(t *testing.T) {
	for _, method := range []string{"POST", "PATCH", "DELETE"} {
		t.Run(method, func(t *testing.T) {
			attempts := 0
			client := retryClient(3)

			err := client.retry(context.Background(), method, func() error {
				attempts++
				return errors.New("error")
			})

			assert.Error(t, err)
			assert.Equal(t, 1, attempts, "mutations must not be replayed")
		})
	}
}

func TestRetryContextCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Millisecond)
	defer cancel()

	attempts := 0
	client := retryClient(10)

	err := client.retry(ctx, "GET", func() error {
		attempts++
		return errors.New("error")
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, attempts, 11)
}
