package doctor

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a roster or catalog row does not exist.
var ErrNotFound = errors.New("record not found")

// Doctor maps to the doctors table.
type Doctor struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	Name             string     `db:"name" json:"name"`
	Phone            *string    `db:"phone" json:"phone,omitempty"`
	SpecializationID *uuid.UUID `db:"specialization_id" json:"specialization_id,omitempty"`
	ConsultationFee  float64    `db:"consultation_fee" json:"consultation_fee"`
	Active           bool       `db:"active" json:"active"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// Specialization maps to the specializations table.
type Specialization struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ServiceItem maps to the services catalog table. Rates here are defaults
// offered by the billing screens; the ledger stores whatever amount was
// actually charged.
type ServiceItem struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Rate      float64   `db:"rate" json:"rate"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
