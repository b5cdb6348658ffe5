package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateForAdmission opens the ledger for a new admission. Called inside the
// admission-create transaction; the repository picks the transaction up from
// the context.
func (s *Service) CreateForAdmission(ctx context.Context, admissionID uuid.UUID) error {
	if admissionID == uuid.Nil {
		return fmt.Errorf("admission id is required")
	}
	return s.repo.CreateRecord(ctx, &Record{AdmissionID: admissionID})
}

func (s *Service) GetRecord(ctx context.Context, admissionID uuid.UUID) (*Record, error) {
	return s.repo.GetByAdmission(ctx, admissionID)
}

// AddServiceCharge appends quantity individual rows, one per unit, each
// stamped with the current time. Display grouping recounts same-name,
// same-amount rows, so the append granularity must be per-unit.
func (s *Service) AddServiceCharge(ctx context.Context, admissionID uuid.UUID, name string, amount float64, quantity int) error {
	if name == "" {
		return fmt.Errorf("service name is required")
	}
	if amount < 0 {
		return fmt.Errorf("amount must not be negative")
	}
	if quantity < 1 {
		return fmt.Errorf("quantity must be at least 1")
	}

	rec, err := s.repo.GetByAdmission(ctx, admissionID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	charges := make([]*Charge, 0, quantity)
	for i := 0; i < quantity; i++ {
		charges = append(charges, &Charge{
			RecordID:  rec.ID,
			Name:      name,
			Type:      ChargeService,
			Amount:    amount,
			CreatedAt: now,
		})
	}
	return s.repo.InsertCharges(ctx, charges)
}

// AddConsultantCharge appends visitTimes doctorvisit rows, one per visit.
func (s *Service) AddConsultantCharge(ctx context.Context, admissionID uuid.UUID, doctorName string, amount float64, visitTimes int) error {
	if doctorName == "" {
		return fmt.Errorf("doctor name is required")
	}
	if amount < 0 {
		return fmt.Errorf("amount must not be negative")
	}
	if visitTimes < 1 {
		return fmt.Errorf("visit count must be at least 1")
	}

	rec, err := s.repo.GetByAdmission(ctx, admissionID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	name := doctorName
	charges := make([]*Charge, 0, visitTimes)
	for i := 0; i < visitTimes; i++ {
		charges = append(charges, &Charge{
			RecordID:   rec.ID,
			Name:       "Consultant Visit",
			DoctorName: &name,
			Type:       ChargeDoctorVisit,
			Amount:     amount,
			CreatedAt:  now,
		})
	}
	return s.repo.InsertCharges(ctx, charges)
}

// RemoveServiceCharge deletes every row matching the exact (name, amount)
// pair. Partial-quantity deletes are not supported: a distinct service/price
// pair is removed all-or-nothing.
func (s *Service) RemoveServiceCharge(ctx context.Context, admissionID uuid.UUID, name string, amount float64) (int64, error) {
	rec, err := s.repo.GetByAdmission(ctx, admissionID)
	if err != nil {
		return 0, err
	}
	return s.repo.RemoveCharges(ctx, rec.ID, name, amount)
}

// RemoveConsultantCharges deletes every doctorvisit row for the doctor.
func (s *Service) RemoveConsultantCharges(ctx context.Context, admissionID uuid.UUID, doctorName string) (int64, error) {
	rec, err := s.repo.GetByAdmission(ctx, admissionID)
	if err != nil {
		return 0, err
	}
	return s.repo.RemoveConsultantCharges(ctx, rec.ID, doctorName)
}

// PaymentInput is the caller-facing payment payload.
type PaymentInput struct {
	Amount      float64   `json:"amount"`
	PaymentMode string    `json:"payment_mode"`
	Type        string    `json:"type"`
	AmountType  string    `json:"amount_type"`
	Through     *string   `json:"through,omitempty"`
	Date        time.Time `json:"date"`
}

// RecordPayment appends a payment with a server-assigned id and adjusts the
// deposit total atomically. The caller's date is truncated to its calendar
// day and recombined with the current clock time, so a backdated payment
// still carries today's time of day.
func (s *Service) RecordPayment(ctx context.Context, admissionID uuid.UUID, in PaymentInput) (*Payment, error) {
	if in.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	if in.Type != PaymentAdvance && in.Type != PaymentRefund {
		return nil, fmt.Errorf("type must be %q or %q", PaymentAdvance, PaymentRefund)
	}
	if !validPaymentModes[in.PaymentMode] {
		return nil, fmt.Errorf("invalid payment_mode: %s", in.PaymentMode)
	}
	if in.AmountType == "" {
		in.AmountType = AmountAdvance
	}

	rec, err := s.repo.GetByAdmission(ctx, admissionID)
	if err != nil {
		return nil, err
	}

	p := &Payment{
		ID:          uuid.New(),
		RecordID:    rec.ID,
		Amount:      in.Amount,
		PaymentMode: in.PaymentMode,
		Type:        in.Type,
		AmountType:  in.AmountType,
		Through:     in.Through,
		Date:        combineDate(in.Date, time.Now().UTC()),
	}
	if err := s.repo.RecordPayment(ctx, p, p.Delta()); err != nil {
		return nil, err
	}
	return p, nil
}

// DeletePayment removes the entry and reverses its deposit effect.
func (s *Service) DeletePayment(ctx context.Context, admissionID, paymentID uuid.UUID) error {
	rec, err := s.repo.GetByAdmission(ctx, admissionID)
	if err != nil {
		return err
	}
	p, err := s.repo.GetPayment(ctx, rec.ID, paymentID)
	if err != nil {
		return err
	}
	return s.repo.DeletePayment(ctx, rec.ID, paymentID, -p.Delta())
}

// SetDiscount overwrites the discount. A discount above the charge total is
// accepted and simply drives the net total negative.
func (s *Service) SetDiscount(ctx context.Context, admissionID uuid.UUID, amount float64) error {
	if amount < 0 {
		return fmt.Errorf("discount must not be negative")
	}
	rec, err := s.repo.GetByAdmission(ctx, admissionID)
	if err != nil {
		return err
	}
	return s.repo.SetDiscount(ctx, rec.ID, amount)
}

// ApplySettlement moves the deposit total to newDeposit and records one
// synthetic payment carrying the delta, so the payment ledger remains an
// accurate history of how the deposit reached its value. Used by admission
// reconciliation when an operator corrects the deposit figure directly.
func (s *Service) ApplySettlement(ctx context.Context, admissionID uuid.UUID, newDeposit float64) error {
	rec, err := s.repo.GetByAdmission(ctx, admissionID)
	if err != nil {
		return err
	}

	delta := newDeposit - rec.TotalDeposit
	if delta == 0 {
		return nil
	}

	ptype := PaymentAdvance
	amount := delta
	if delta < 0 {
		ptype = PaymentRefund
		amount = -delta
	}
	through := "reconciliation"
	p := &Payment{
		ID:          uuid.New(),
		RecordID:    rec.ID,
		Amount:      amount,
		PaymentMode: "cash",
		Type:        ptype,
		AmountType:  AmountSettlement,
		Through:     &through,
		Date:        time.Now().UTC(),
	}
	return s.repo.RecordPayment(ctx, p, delta)
}

// Bill is the full read model served to billing screens and the invoice
// exporter.
type Bill struct {
	Record      *Record           `json:"record"`
	Summary     Summary           `json:"summary"`
	Services    []ServiceGroup    `json:"services"`
	Consultants []ConsultantGroup `json:"consultants"`
	Payments    []*Payment        `json:"payments"`
}

// GetBill assembles the summary and grouped view for an admission.
func (s *Service) GetBill(ctx context.Context, admissionID uuid.UUID) (*Bill, error) {
	rec, err := s.repo.GetByAdmission(ctx, admissionID)
	if err != nil {
		return nil, err
	}
	charges, err := s.repo.ListCharges(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	payments, err := s.repo.ListPayments(ctx, rec.ID)
	if err != nil {
		return nil, err
	}

	services, consultants := GroupCharges(charges)
	return &Bill{
		Record:      rec,
		Summary:     ComputeSummary(charges, rec.Discount, rec.TotalDeposit),
		Services:    services,
		Consultants: consultants,
		Payments:    payments,
	}, nil
}

// combineDate takes the calendar day from d and the clock time from now.
func combineDate(d, now time.Time) time.Time {
	if d.IsZero() {
		return now
	}
	return time.Date(d.Year(), d.Month(), d.Day(),
		now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), time.UTC)
}
