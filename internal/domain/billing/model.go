package billing

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Charge types.
const (
	ChargeService     = "service"
	ChargeDoctorVisit = "doctorvisit"
)

// Payment direction: advances add to the deposit, refunds subtract.
const (
	PaymentAdvance = "advance"
	PaymentRefund  = "refund"
)

// amountType tags a payment's purpose, orthogonal to its direction.
const (
	AmountAdvance    = "advance"
	AmountDeposit    = "deposit"
	AmountSettlement = "settlement"
)

var validPaymentModes = map[string]bool{
	"cash":   true,
	"online": true,
	"card":   true,
}

var (
	// ErrRecordNotFound is returned when no billing record exists for the
	// admission.
	ErrRecordNotFound = errors.New("billing record not found")
	// ErrPaymentNotFound is returned when the referenced payment does not
	// exist on the record.
	ErrPaymentNotFound = errors.New("payment not found")
)

// Record maps to the billing_records table, one per admission. TotalDeposit
// is a running cache equal to the signed sum of the record's payments; every
// payment write adjusts it in the same transaction.
type Record struct {
	ID           uuid.UUID `db:"id" json:"id"`
	AdmissionID  uuid.UUID `db:"admission_id" json:"admission_id"`
	Discount     float64   `db:"discount" json:"discount"`
	TotalDeposit float64   `db:"total_deposit" json:"total_deposit"`
	Version      int       `db:"version" json:"version"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Charge maps to the service_charges table. Quantity is expanded at write
// time: five units of a service become five rows, so display grouping can
// recount them by (name, amount).
type Charge struct {
	ID         uuid.UUID `db:"id" json:"id"`
	RecordID   uuid.UUID `db:"record_id" json:"record_id"`
	Name       string    `db:"name" json:"name"`
	DoctorName *string   `db:"doctor_name" json:"doctor_name,omitempty"`
	Type       string    `db:"type" json:"type"`
	Amount     float64   `db:"amount" json:"amount"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Payment maps to the payments table.
type Payment struct {
	ID          uuid.UUID `db:"id" json:"id"`
	RecordID    uuid.UUID `db:"record_id" json:"record_id"`
	Amount      float64   `db:"amount" json:"amount"`
	PaymentMode string    `db:"payment_mode" json:"payment_mode"`
	Type        string    `db:"type" json:"type"`
	AmountType  string    `db:"amount_type" json:"amount_type"`
	Through     *string   `db:"through" json:"through,omitempty"`
	Date        time.Time `db:"date" json:"date"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Delta returns the payment's signed effect on the deposit total.
func (p *Payment) Delta() float64 {
	if p.Type == PaymentRefund {
		return -p.Amount
	}
	return p.Amount
}

// Summary is the derived read model over a record's charges, payments, and
// discount. Nothing here is persisted.
type Summary struct {
	ServiceTotal    float64 `json:"service_total"`
	ConsultantTotal float64 `json:"consultant_total"`
	Discount        float64 `json:"discount"`
	NetTotal        float64 `json:"net_total"`
	TotalDeposit    float64 `json:"total_deposit"`
	Due             float64 `json:"due"`
}

// ComputeSummary derives the bill totals. due > 0 means the patient owes,
// due < 0 means the hospital owes a refund.
func ComputeSummary(charges []*Charge, discount, totalDeposit float64) Summary {
	var serviceTotal, consultantTotal float64
	for _, c := range charges {
		switch c.Type {
		case ChargeDoctorVisit:
			consultantTotal += c.Amount
		default:
			serviceTotal += c.Amount
		}
	}
	netTotal := serviceTotal + consultantTotal - discount
	return Summary{
		ServiceTotal:    serviceTotal,
		ConsultantTotal: consultantTotal,
		Discount:        discount,
		NetTotal:        netTotal,
		TotalDeposit:    totalDeposit,
		Due:             netTotal - totalDeposit,
	}
}

// ServiceGroup is the display grouping of service charges by (name, amount).
type ServiceGroup struct {
	Name       string  `json:"name"`
	UnitAmount float64 `json:"unit_amount"`
	Count      int     `json:"count"`
	Total      float64 `json:"total"`
}

// ConsultantGroup is the display grouping of doctor visits by doctor name.
type ConsultantGroup struct {
	DoctorName string  `json:"doctor_name"`
	UnitAmount float64 `json:"unit_amount"`
	Count      int     `json:"count"`
	Total      float64 `json:"total"`
}

// GroupCharges folds the flat per-unit ledger into the display groups. The
// grouping is a view concern only; the flat rows remain the storage form.
// Group order follows first appearance in the ledger.
func GroupCharges(charges []*Charge) ([]ServiceGroup, []ConsultantGroup) {
	type key struct {
		name   string
		amount float64
	}
	svcIndex := make(map[key]int)
	conIndex := make(map[string]int)
	var services []ServiceGroup
	var consultants []ConsultantGroup

	for _, c := range charges {
		if c.Type == ChargeDoctorVisit {
			name := ""
			if c.DoctorName != nil {
				name = *c.DoctorName
			}
			i, ok := conIndex[name]
			if !ok {
				i = len(consultants)
				conIndex[name] = i
				consultants = append(consultants, ConsultantGroup{DoctorName: name, UnitAmount: c.Amount})
			}
			consultants[i].Count++
			consultants[i].Total += c.Amount
			continue
		}

		k := key{name: c.Name, amount: c.Amount}
		i, ok := svcIndex[k]
		if !ok {
			i = len(services)
			svcIndex[k] = i
			services = append(services, ServiceGroup{Name: c.Name, UnitAmount: c.Amount})
		}
		services[i].Count++
		services[i].Total += c.Amount
	}
	return services, consultants
}
