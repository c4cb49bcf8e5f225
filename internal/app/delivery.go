package app

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

// linearBackOff waits step, 2*step, 3*step... between tries.
type linearBackOff struct {
	step time.Duration
	n    int64
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.n++
	return time.Duration(b.n) * b.step
}

func (b *linearBackOff) Reset() {
	b.n = 0
}

func deliveryBackOff(ctx context.Context, attempts int, step time.Duration) backoff.BackOff {
	if attempts < 1 {
		attempts = 1
	}
	return backoff.WithContext(
		backoff.WithMaxRetries(&linearBackOff{step: step}, uint64(attempts-1)),
		ctx,
	)
}

// retryDelivery calls send up to attempts times and returns the last error.
func retryDelivery(ctx context.Context, logger *logrus.Entry, attempts int, step time.Duration, send func() error) error {
	attempt := 0
	err := backoff.RetryNotify(
		func() error {
			attempt++
			return send()
		},
		deliveryBackOff(ctx, attempts, step),
		func(err error, wait time.Duration) {
			logger.WithError(err).WithFields(logrus.Fields{
				"attempt":  attempt,
				"retry_in": wait.String(),
			}).Warn("Delivery attempt failed")
		},
	)
	if err != nil {
		logger.WithError(err).WithField("attempts", attempt).Warn("Delivery gave up")
	}
	return err
}
