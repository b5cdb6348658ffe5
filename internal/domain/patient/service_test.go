package patient

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/sequence"
)

// -- Mock Repository --

type mockRepo struct {
	patients map[uuid.UUID]*Patient
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	p.ID = uuid.New()
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) GetByUHID(_ context.Context, uhid string) (*Patient, error) {
	for _, p := range m.patients {
		if p.UHID == uhid {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	cur, ok := m.patients[p.ID]
	if !ok {
		return ErrNotFound
	}
	p.UHID = cur.UHID
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	var result []*Patient
	for _, p := range m.patients {
		result = append(result, p)
	}
	return result, len(result), nil
}

func (m *mockRepo) Search(_ context.Context, query string, limit, offset int) ([]*Patient, int, error) {
	var result []*Patient
	for _, p := range m.patients {
		if strings.Contains(p.Name, query) || strings.Contains(p.Phone, query) || strings.Contains(p.UHID, query) {
			result = append(result, p)
		}
	}
	return result, len(result), nil
}

type mockCounter struct {
	n int64
}

func (m *mockCounter) Increment(_ context.Context, name, dateKey string) (int64, error) {
	m.n++
	return m.n, nil
}

func newService() *Service {
	return NewService(newMockRepo(), sequence.NewAllocator(&mockCounter{}, "UHID"))
}

// -- Tests --

func TestRegisterPatient_IssuesUHID(t *testing.T) {
	svc := newService()

	p := &Patient{Name: "Ravi Kumar", Phone: "+919800000001", Age: 42, Gender: "male"}
	if err := svc.RegisterPatient(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(p.UHID, "UHID-") {
		t.Errorf("uhid = %q, want UHID- prefix", p.UHID)
	}
	if !strings.HasSuffix(p.UHID, "-00001") {
		t.Errorf("uhid = %q, want first counter value", p.UHID)
	}

	q := &Patient{Name: "Meera", Phone: "+919800000002"}
	if err := svc.RegisterPatient(context.Background(), q); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.UHID == q.UHID {
		t.Errorf("two registrations received the same uhid %q", p.UHID)
	}
}

func TestRegisterPatient_Validation(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	cases := []struct {
		name string
		p    *Patient
	}{
		{"missing name", &Patient{Phone: "+91x"}},
		{"missing phone", &Patient{Name: "Ravi"}},
		{"negative age", &Patient{Name: "Ravi", Phone: "+91x", Age: -1}},
		{"absurd age", &Patient{Name: "Ravi", Phone: "+91x", Age: 200}},
		{"bad gender", &Patient{Name: "Ravi", Phone: "+91x", Gender: "unknown"}},
	}
	for _, tc := range cases {
		if err := svc.RegisterPatient(ctx, tc.p); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestGetPatientByUHID(t *testing.T) {
	svc := newService()

	p := &Patient{Name: "Ravi", Phone: "+91x"}
	if err := svc.RegisterPatient(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.GetPatientByUHID(context.Background(), p.UHID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != p.ID {
		t.Errorf("got patient %s, want %s", got.ID, p.ID)
	}

	if _, err := svc.GetPatientByUHID(context.Background(), "UHID-000000-99999"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdatePatient_PreservesUHID(t *testing.T) {
	svc := newService()

	p := &Patient{Name: "Ravi", Phone: "+91x", Age: 40}
	if err := svc.RegisterPatient(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	issued := p.UHID

	upd := &Patient{ID: p.ID, Name: "Ravi Kumar", Phone: "+91y", Age: 41, UHID: "UHID-tampered"}
	if err := svc.UpdatePatient(context.Background(), upd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := svc.GetPatient(context.Background(), p.ID)
	if got.UHID != issued {
		t.Errorf("uhid changed across update: %q -> %q", issued, got.UHID)
	}
	if got.Name != "Ravi Kumar" {
		t.Errorf("name = %q, want updated value", got.Name)
	}
}

func TestSearchPatients(t *testing.T) {
	svc := newService()

	svc.RegisterPatient(context.Background(), &Patient{Name: "Ravi Kumar", Phone: "+919800000001"})
	svc.RegisterPatient(context.Background(), &Patient{Name: "Meera Shah", Phone: "+919800000002"})

	byName, _, err := svc.SearchPatients(context.Background(), "Meera", 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(byName) != 1 || byName[0].Name != "Meera Shah" {
		t.Errorf("unexpected search result: %+v", byName)
	}

	all, total, err := svc.SearchPatients(context.Background(), "", 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || len(all) != 2 {
		t.Errorf("empty query should list all, got %d", total)
	}
}
