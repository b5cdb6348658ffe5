package admission

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Admission statuses.
const (
	StatusAdmitted   = "admitted"
	StatusDischarged = "discharged"
)

var (
	// ErrNotFound is returned when the admission does not exist.
	ErrNotFound = errors.New("admission not found")
	// ErrVersionConflict is returned when an edit was based on a stale copy
	// of the record.
	ErrVersionConflict = errors.New("admission was modified by someone else")
)

// Admission maps to the admissions table. Patient demographics are
// denormalized copies taken at admission time, so later edits to the patient
// record do not rewrite history. Version supports optimistic concurrency on
// edits.
type Admission struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	UHID           string     `db:"uhid" json:"uhid"`
	PatientName    string     `db:"patient_name" json:"patient_name"`
	Phone          string     `db:"phone" json:"phone"`
	Age            int        `db:"age" json:"age"`
	Gender         string     `db:"gender" json:"gender"`
	Address        *string    `db:"address" json:"address,omitempty"`
	RelativeName   *string    `db:"relative_name" json:"relative_name,omitempty"`
	RelativePhone  *string    `db:"relative_phone" json:"relative_phone,omitempty"`
	AdmitDate      time.Time  `db:"admit_date" json:"admit_date"`
	Source         *string    `db:"source" json:"source,omitempty"`
	AdmissionType  *string    `db:"admission_type" json:"admission_type,omitempty"`
	RoomType       string     `db:"room_type" json:"room_type"`
	BedID          *uuid.UUID `db:"bed_id" json:"bed_id,omitempty"`
	DoctorName     string     `db:"doctor_name" json:"doctor_name"`
	ReferredBy     *string    `db:"referred_by" json:"referred_by,omitempty"`
	Status         string     `db:"status" json:"status"`
	DischargedAt   *time.Time `db:"discharged_at" json:"discharged_at,omitempty"`
	Version        int        `db:"version" json:"version"`
	LastModifiedBy string     `db:"last_modified_by" json:"last_modified_by"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// FieldChange is one entry of an edit's diff.
type FieldChange struct {
	Field    string `json:"field"`
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
}

// ChangeEntry maps to the admission_changes audit table. Changes is stored
// as jsonb and preserves the diff's field order.
type ChangeEntry struct {
	ID          uuid.UUID     `db:"id" json:"id"`
	AdmissionID uuid.UUID     `db:"admission_id" json:"admission_id"`
	PatientID   uuid.UUID     `db:"patient_id" json:"patient_id"`
	Changes     []FieldChange `db:"changes" json:"changes"`
	Editor      string        `db:"editor" json:"editor"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
}
