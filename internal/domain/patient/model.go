package patient

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when the referenced patient does not exist.
var ErrNotFound = errors.New("patient not found")

// Patient maps to the patients table. UHID is the human-readable business
// identifier issued by the sequence allocator; ID is the row identity.
type Patient struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UHID      string    `db:"uhid" json:"uhid"`
	Name      string    `db:"name" json:"name"`
	Phone     string    `db:"phone" json:"phone"`
	Age       int       `db:"age" json:"age"`
	Gender    string    `db:"gender" json:"gender"`
	Address   *string   `db:"address" json:"address,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
