package bed

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, b *Bed) error
	GetByID(ctx context.Context, id uuid.UUID) (*Bed, error)
	Update(ctx context.Context, b *Bed) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, roomType string) ([]*Bed, error)
	ListAll(ctx context.Context, limit, offset int) ([]*Bed, int, error)

	// Allocate performs the conditional occupancy write. It returns
	// ErrBedOccupied when the bed is held by a different admission and
	// ErrBedNotFound when the bed does not exist. Re-allocating a bed to its
	// current occupant succeeds without effect.
	Allocate(ctx context.Context, bedID, admissionID uuid.UUID) error

	// Release transitions the bed to available and clears its occupant.
	Release(ctx context.Context, bedID uuid.UUID) error

	SetStatus(ctx context.Context, bedID uuid.UUID, status string) error
}
