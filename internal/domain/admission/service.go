package admission

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/hms/hms/internal/domain/bed"
	"github.com/hms/hms/internal/domain/billing"
	"github.com/hms/hms/internal/platform/db"
)

// BedRegistry is the slice of the bed service the admission flow needs.
type BedRegistry interface {
	Allocate(ctx context.Context, bedID, admissionID uuid.UUID) error
	Release(ctx context.Context, bedID uuid.UUID) error
	GetBed(ctx context.Context, bedID uuid.UUID) (*bed.Bed, error)
}

// Biller is the slice of the billing service the admission flow needs.
type Biller interface {
	CreateForAdmission(ctx context.Context, admissionID uuid.UUID) error
	GetRecord(ctx context.Context, admissionID uuid.UUID) (*billing.Record, error)
	ApplySettlement(ctx context.Context, admissionID uuid.UUID, newDeposit float64) error
}

// Notifier sends a templated message without blocking the caller.
type Notifier interface {
	Notify(templateID string, data map[string]string, recipient string)
}

type Service struct {
	repo     Repository
	beds     BedRegistry
	biller   Biller
	notifier Notifier
	pool     *pgxpool.Pool
}

func NewService(repo Repository, beds BedRegistry, biller Biller, pool *pgxpool.Pool) *Service {
	return &Service{repo: repo, beds: beds, biller: biller, pool: pool}
}

// SetNotifier attaches an optional outbound notifier. Safe to leave unset.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.pool == nil {
		return fn(ctx)
	}
	return db.RunInTx(ctx, s.pool, fn)
}

func (s *Service) Create(ctx context.Context, a *Admission) error {
	if a.PatientID == uuid.Nil {
		return fmt.Errorf("patient id is required")
	}
	if a.PatientName == "" {
		return fmt.Errorf("patient name is required")
	}
	if a.DoctorName == "" {
		return fmt.Errorf("doctor name is required")
	}
	if a.RoomType == "" {
		return fmt.Errorf("room type is required")
	}
	if a.AdmitDate.IsZero() {
		a.AdmitDate = time.Now()
	}
	a.Status = StatusAdmitted

	var allocBed *bed.Bed
	if a.BedID != nil {
		b, err := s.checkBedRoomType(ctx, *a.BedID, a.RoomType)
		if err != nil {
			return err
		}
		allocBed = b
	}

	err := s.inTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, a); err != nil {
			return err
		}
		if a.BedID != nil {
			if err := s.beds.Allocate(ctx, *a.BedID, a.ID); err != nil {
				return err
			}
		}
		return s.biller.CreateForAdmission(ctx, a.ID)
	})
	if err != nil {
		return err
	}

	if s.notifier != nil && a.Phone != "" {
		bedNumber := "-"
		if allocBed != nil {
			bedNumber = allocBed.BedNumber
		}
		s.notifier.Notify("admission-confirmed", map[string]string{
			"patient_name": a.PatientName,
			"uhid":         a.UHID,
			"date":         a.AdmitDate.Format("02 Jan 2006"),
			"bed":          bedNumber,
			"doctor":       a.DoctorName,
		}, a.Phone)
	}
	return nil
}

// checkBedRoomType loads the bed and rejects a pairing with a foreign room
// type, so an edit cannot file an ICU bed under a ward admission.
func (s *Service) checkBedRoomType(ctx context.Context, bedID uuid.UUID, roomType string) (*bed.Bed, error) {
	b, err := s.beds.GetBed(ctx, bedID)
	if err != nil {
		return nil, err
	}
	if b.RoomType != roomType {
		return nil, fmt.Errorf("bed %s belongs to room type %q, not %q", b.BedNumber, b.RoomType, roomType)
	}
	return b, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Admission, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Admission, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Admission, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

// UpdateInput carries the full editable state of an admission. Version must
// match the record the editor last read.
type UpdateInput struct {
	PatientName   string
	Phone         string
	Age           int
	Gender        string
	Address       *string
	RelativeName  *string
	RelativePhone *string
	AdmitDate     time.Time
	Source        *string
	AdmissionType *string
	RoomType      string
	BedID         *uuid.UUID
	DoctorName    string
	ReferredBy    *string
	Deposit       *float64
	Version       int
	Editor        string
}

// Update applies an edit as one unit: bed moves, the record write, and any
// deposit settlement either all land or none do. The change log entry is
// appended after the commit so an audit failure never rolls back the edit.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) ([]FieldChange, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == StatusDischarged {
		return nil, fmt.Errorf("cannot edit a discharged admission")
	}
	if in.Version != current.Version {
		return nil, ErrVersionConflict
	}
	if in.PatientName == "" {
		return nil, fmt.Errorf("patient name is required")
	}
	if in.DoctorName == "" {
		return nil, fmt.Errorf("doctor name is required")
	}

	if in.BedID != nil {
		if _, err := s.checkBedRoomType(ctx, *in.BedID, in.RoomType); err != nil {
			return nil, err
		}
	}

	var oldDeposit float64
	if in.Deposit != nil {
		rec, err := s.biller.GetRecord(ctx, id)
		if err != nil {
			return nil, err
		}
		oldDeposit = rec.TotalDeposit
	}

	changes := computeDiff(current, in, oldDeposit)
	if len(changes) == 0 {
		return nil, nil
	}

	updated := *current
	updated.PatientName = in.PatientName
	updated.Phone = in.Phone
	updated.Age = in.Age
	updated.Gender = in.Gender
	updated.Address = in.Address
	updated.RelativeName = in.RelativeName
	updated.RelativePhone = in.RelativePhone
	updated.AdmitDate = in.AdmitDate
	updated.Source = in.Source
	updated.AdmissionType = in.AdmissionType
	updated.RoomType = in.RoomType
	updated.BedID = in.BedID
	updated.DoctorName = in.DoctorName
	updated.ReferredBy = in.ReferredBy
	updated.LastModifiedBy = in.Editor

	bedChanged := !uuidPtrEqual(current.BedID, in.BedID)

	err = s.inTx(ctx, func(ctx context.Context) error {
		if bedChanged {
			if in.BedID != nil {
				if err := s.beds.Allocate(ctx, *in.BedID, id); err != nil {
					return err
				}
			}
			if current.BedID != nil {
				if err := s.beds.Release(ctx, *current.BedID); err != nil {
					return err
				}
			}
		}
		if err := s.repo.Update(ctx, &updated, in.Version); err != nil {
			return err
		}
		if in.Deposit != nil && *in.Deposit != oldDeposit {
			return s.biller.ApplySettlement(ctx, id, *in.Deposit)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	entry := &ChangeEntry{
		AdmissionID: id,
		PatientID:   current.PatientID,
		Changes:     changes,
		Editor:      in.Editor,
	}
	if err := s.repo.AddChange(ctx, entry); err != nil {
		log.Warn().Err(err).Str("admission_id", id.String()).Msg("failed to record admission change entry")
	}
	return changes, nil
}

func (s *Service) Discharge(ctx context.Context, id uuid.UUID, editor string) error {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if a.Status == StatusDischarged {
		return fmt.Errorf("admission already discharged")
	}

	now := time.Now()
	err = s.inTx(ctx, func(ctx context.Context) error {
		if a.BedID != nil {
			if err := s.beds.Release(ctx, *a.BedID); err != nil {
				return err
			}
		}
		return s.repo.SetDischarged(ctx, id, now, editor)
	})
	if err != nil {
		return err
	}

	entry := &ChangeEntry{
		AdmissionID: id,
		PatientID:   a.PatientID,
		Changes: []FieldChange{
			{Field: "status", OldValue: StatusAdmitted, NewValue: StatusDischarged},
		},
		Editor: editor,
	}
	if err := s.repo.AddChange(ctx, entry); err != nil {
		log.Warn().Err(err).Str("admission_id", id.String()).Msg("failed to record discharge change entry")
	}
	return nil
}

func (s *Service) ListChanges(ctx context.Context, id uuid.UUID) ([]*ChangeEntry, error) {
	return s.repo.ListChanges(ctx, id)
}

// AdmissionInfo resolves the header fields the invoice export needs. A bed
// reference that no longer resolves falls back to a placeholder label rather
// than failing the export.
func (s *Service) AdmissionInfo(ctx context.Context, id uuid.UUID) (*billing.AdmissionInfo, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	bedNumber := ""
	if a.BedID != nil {
		if b, err := s.beds.GetBed(ctx, *a.BedID); err != nil {
			bedNumber = "Unknown Bed"
		} else {
			bedNumber = b.BedNumber
		}
	}
	return &billing.AdmissionInfo{
		UHID:        a.UHID,
		PatientName: a.PatientName,
		RoomType:    a.RoomType,
		BedNumber:   bedNumber,
		DoctorName:  a.DoctorName,
		AdmitDate:   a.AdmitDate,
	}, nil
}

func computeDiff(old *Admission, in UpdateInput, oldDeposit float64) []FieldChange {
	var changes []FieldChange
	add := func(field, oldV, newV string) {
		if oldV != newV {
			changes = append(changes, FieldChange{Field: field, OldValue: oldV, NewValue: newV})
		}
	}

	add("patient_name", old.PatientName, in.PatientName)
	add("phone", old.Phone, in.Phone)
	add("age", strconv.Itoa(old.Age), strconv.Itoa(in.Age))
	add("gender", old.Gender, in.Gender)
	add("address", strDeref(old.Address), strDeref(in.Address))
	add("relative_name", strDeref(old.RelativeName), strDeref(in.RelativeName))
	add("relative_phone", strDeref(old.RelativePhone), strDeref(in.RelativePhone))
	add("admit_date", dayString(old.AdmitDate), dayString(in.AdmitDate))
	add("source", strDeref(old.Source), strDeref(in.Source))
	add("admission_type", strDeref(old.AdmissionType), strDeref(in.AdmissionType))
	add("room_type", old.RoomType, in.RoomType)
	add("bed", uuidString(old.BedID), uuidString(in.BedID))
	add("doctor", old.DoctorName, in.DoctorName)
	add("referred_by", strDeref(old.ReferredBy), strDeref(in.ReferredBy))
	if in.Deposit != nil {
		add("deposit", formatAmount(oldDeposit), formatAmount(*in.Deposit))
	}
	return changes
}

func strDeref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func uuidString(p *uuid.UUID) string {
	if p == nil {
		return ""
	}
	return p.String()
}

func uuidPtrEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// dayString compares admit dates at day granularity so time-of-day noise
// never shows up as an edit.
func dayString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
