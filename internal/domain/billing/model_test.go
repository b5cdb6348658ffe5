package billing

import (
	"math/rand"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestComputeSummary_WorkedScenario(t *testing.T) {
	charges := []*Charge{
		{Name: "Oxygen", Type: ChargeService, Amount: 200},
		{Name: "Oxygen", Type: ChargeService, Amount: 200},
		{Name: "Consultant Visit", DoctorName: strPtr("Dr. A"), Type: ChargeDoctorVisit, Amount: 500},
	}

	s := ComputeSummary(charges, 100, 1000)

	if s.ServiceTotal != 400 {
		t.Errorf("service total = %v, want 400", s.ServiceTotal)
	}
	if s.ConsultantTotal != 500 {
		t.Errorf("consultant total = %v, want 500", s.ConsultantTotal)
	}
	if s.NetTotal != 800 {
		t.Errorf("net total = %v, want 800", s.NetTotal)
	}
	if s.TotalDeposit != 1000 {
		t.Errorf("total deposit = %v, want 1000", s.TotalDeposit)
	}
	if s.Due != -200 {
		t.Errorf("due = %v, want -200 (hospital owes refund)", s.Due)
	}
}

func TestComputeSummary_OrderIndependent(t *testing.T) {
	charges := []*Charge{
		{Name: "X-Ray", Type: ChargeService, Amount: 500},
		{Name: "Oxygen", Type: ChargeService, Amount: 200},
		{Name: "Consultant Visit", DoctorName: strPtr("Dr. A"), Type: ChargeDoctorVisit, Amount: 500},
		{Name: "Consultant Visit", DoctorName: strPtr("Dr. B"), Type: ChargeDoctorVisit, Amount: 300},
		{Name: "Dressing", Type: ChargeService, Amount: 50},
	}
	want := ComputeSummary(charges, 100, 600)

	r := rand.New(rand.NewSource(1))
	for trial := 0; trial < 10; trial++ {
		shuffled := make([]*Charge, len(charges))
		copy(shuffled, charges)
		r.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		if got := ComputeSummary(shuffled, 100, 600); got != want {
			t.Fatalf("summary depends on insertion order: %+v != %+v", got, want)
		}
	}
}

func TestComputeSummary_PermissiveOverDiscount(t *testing.T) {
	charges := []*Charge{{Name: "Oxygen", Type: ChargeService, Amount: 200}}

	s := ComputeSummary(charges, 500, 0)
	if s.NetTotal != -300 {
		t.Errorf("net total = %v, want -300 under over-discount", s.NetTotal)
	}
	if s.Due != -300 {
		t.Errorf("due = %v, want -300", s.Due)
	}
}

func TestComputeSummary_Empty(t *testing.T) {
	s := ComputeSummary(nil, 0, 0)
	if s != (Summary{}) {
		t.Errorf("empty ledger should reduce to zero summary, got %+v", s)
	}
}

func TestGroupCharges(t *testing.T) {
	charges := []*Charge{
		{Name: "X-Ray", Type: ChargeService, Amount: 500},
		{Name: "X-Ray", Type: ChargeService, Amount: 500},
		{Name: "X-Ray", Type: ChargeService, Amount: 700},
		{Name: "Consultant Visit", DoctorName: strPtr("Dr. A"), Type: ChargeDoctorVisit, Amount: 500},
		{Name: "Consultant Visit", DoctorName: strPtr("Dr. A"), Type: ChargeDoctorVisit, Amount: 500},
	}

	services, consultants := GroupCharges(charges)

	if len(services) != 2 {
		t.Fatalf("expected X-Ray split into 2 price groups, got %d", len(services))
	}
	if services[0].Name != "X-Ray" || services[0].UnitAmount != 500 || services[0].Count != 2 || services[0].Total != 1000 {
		t.Errorf("group(X-Ray,500) = %+v", services[0])
	}
	if services[1].UnitAmount != 700 || services[1].Count != 1 || services[1].Total != 700 {
		t.Errorf("group(X-Ray,700) = %+v", services[1])
	}

	if len(consultants) != 1 {
		t.Fatalf("expected one consultant group, got %d", len(consultants))
	}
	if consultants[0].DoctorName != "Dr. A" || consultants[0].Count != 2 || consultants[0].Total != 1000 {
		t.Errorf("consultant group = %+v", consultants[0])
	}
}

func TestPaymentDelta(t *testing.T) {
	adv := &Payment{Amount: 300, Type: PaymentAdvance}
	if adv.Delta() != 300 {
		t.Errorf("advance delta = %v, want 300", adv.Delta())
	}
	ref := &Payment{Amount: 300, Type: PaymentRefund}
	if ref.Delta() != -300 {
		t.Errorf("refund delta = %v, want -300", ref.Delta())
	}
}
