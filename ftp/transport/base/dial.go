package base

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"time"
)

// DialFunc performs a single connection attempt.
type DialFunc func() (net.Conn, error)

// DialWithRetry invokes dial until it succeeds or maxRetries attempts are
// exhausted, sleeping with exponential backoff and a small random jitter
// between attempts. Cancelling the context aborts the wait between
// attempts. The address is only used for logging and error messages.
func DialWithRetry(ctx context.Context, address string, dial DialFunc, maxRetries int) (net.Conn, error) {
	// We always try at least once
	if maxRetries < 1 {
		maxRetries = 1
	}

	// Initial backoff duration in milliseconds
	backoffMs := 50

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		conn, err := dial()
		if err == nil {
			return conn, nil
		}

		lastErr = err
		Logger.Debugf("Dial attempt %d/%d to %s failed: %v", i+1, maxRetries, address, err)

		if i < maxRetries-1 {
			// Exponential backoff with a small random jitter (+-10%)
			jitter := float64(backoffMs) * (0.9 + 0.2*rand.Float64())
			backoffDuration := time.Duration(jitter) * time.Millisecond

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoffDuration):
			}

			backoffMs *= 2
		}
	}

	// All attempts failed
	return nil, fmt.Errorf("failed to dial %s after %d attempts: %v", address, maxRetries, lastErr)
}
