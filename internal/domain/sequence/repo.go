package sequence

import (
	"context"
)

// Repository increments named daily counters.
type Repository interface {
	// Increment atomically bumps the counter for (name, dateKey) and returns
	// the post-increment value. A missing counter row starts at 1.
	Increment(ctx context.Context, name, dateKey string) (int64, error)
}
