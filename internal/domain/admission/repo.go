package admission

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Admission) error
	GetByID(ctx context.Context, id uuid.UUID) (*Admission, error)
	// Update writes the record only when the stored version still equals
	// expectedVersion, bumping it by one; a stale write returns
	// ErrVersionConflict.
	Update(ctx context.Context, a *Admission, expectedVersion int) error
	SetDischarged(ctx context.Context, id uuid.UUID, at time.Time, editor string) error
	List(ctx context.Context, limit, offset int) ([]*Admission, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Admission, int, error)

	AddChange(ctx context.Context, e *ChangeEntry) error
	ListChanges(ctx context.Context, admissionID uuid.UUID) ([]*ChangeEntry, error)
}
