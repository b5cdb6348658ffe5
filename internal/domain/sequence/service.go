// Package sequence issues human-readable, collision-free identifiers backed
// by daily database counters.
package sequence

import (
	"context"
	"fmt"
	"time"
)

// SeqUHID is the counter used for patient identifiers.
const SeqUHID = "uhid"

const (
	maxAttempts  = 3
	retryBackoff = 50 * time.Millisecond
)

// Allocator formats counter values into date-embedded identifiers such as
// UHID-260830-00001.
type Allocator struct {
	repo   Repository
	prefix string
}

func NewAllocator(repo Repository, prefix string) *Allocator {
	return &Allocator{repo: repo, prefix: prefix}
}

// NextID returns the next identifier for the named counter. Transient
// database failures are retried with backoff; after the attempts are
// exhausted the error propagates. A pseudo-identifier is never issued, so
// no duplicate can escape this path.
func (a *Allocator) NextID(ctx context.Context, name string) (string, error) {
	dateKey := time.Now().Format("060102")

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		value, err := a.repo.Increment(ctx, name, dateKey)
		if err == nil {
			return fmt.Sprintf("%s-%s-%05d", a.prefix, dateKey, value), nil
		}
		lastErr = err
		if attempt == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(attempt) * retryBackoff):
		}
	}
	return "", fmt.Errorf("allocate %s after %d attempts: %w", name, maxAttempts, lastErr)
}
