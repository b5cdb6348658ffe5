package billing

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	CreateRecord(ctx context.Context, rec *Record) error
	GetByAdmission(ctx context.Context, admissionID uuid.UUID) (*Record, error)

	InsertCharges(ctx context.Context, charges []*Charge) error
	RemoveCharges(ctx context.Context, recordID uuid.UUID, name string, amount float64) (int64, error)
	RemoveConsultantCharges(ctx context.Context, recordID uuid.UUID, doctorName string) (int64, error)
	ListCharges(ctx context.Context, recordID uuid.UUID) ([]*Charge, error)

	// RecordPayment inserts the payment row and applies delta to the
	// record's total_deposit in one transaction.
	RecordPayment(ctx context.Context, p *Payment, delta float64) error
	// DeletePayment removes the payment row and applies delta (the inverse
	// of the payment's original effect) in one transaction.
	DeletePayment(ctx context.Context, recordID, paymentID uuid.UUID, delta float64) error
	GetPayment(ctx context.Context, recordID, paymentID uuid.UUID) (*Payment, error)
	ListPayments(ctx context.Context, recordID uuid.UUID) ([]*Payment, error)

	SetDiscount(ctx context.Context, recordID uuid.UUID, amount float64) error
}
