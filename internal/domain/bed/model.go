package bed

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Bed statuses.
const (
	StatusAvailable   = "available"
	StatusOccupied    = "occupied"
	StatusMaintenance = "maintenance"
	StatusReserved    = "reserved"
)

var validStatuses = map[string]bool{
	StatusAvailable:   true,
	StatusOccupied:    true,
	StatusMaintenance: true,
	StatusReserved:    true,
}

var (
	// ErrBedOccupied is returned when allocation targets a bed already held
	// by a different admission.
	ErrBedOccupied = errors.New("bed is already occupied")
	// ErrBedNotFound is returned when the referenced bed does not exist.
	ErrBedNotFound = errors.New("bed not found")
)

// Bed maps to the beds table. AdmissionID points at the current occupant;
// the admission side of that edge is authoritative and the status field is
// kept in sync through Allocate and Release.
type Bed struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	RoomType    string     `db:"room_type" json:"room_type"`
	BedNumber   string     `db:"bed_number" json:"bed_number"`
	Type        string     `db:"type" json:"type"`
	Status      string     `db:"status" json:"status"`
	AdmissionID *uuid.UUID `db:"admission_id" json:"admission_id,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}
