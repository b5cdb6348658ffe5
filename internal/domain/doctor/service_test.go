package doctor

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

type mockRepo struct {
	doctors         map[uuid.UUID]*Doctor
	specializations map[uuid.UUID]*Specialization
	items           map[uuid.UUID]*ServiceItem
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		doctors:         make(map[uuid.UUID]*Doctor),
		specializations: make(map[uuid.UUID]*Specialization),
		items:           make(map[uuid.UUID]*ServiceItem),
	}
}

func (m *mockRepo) CreateDoctor(_ context.Context, d *Doctor) error {
	d.ID = uuid.New()
	m.doctors[d.ID] = d
	return nil
}

func (m *mockRepo) GetDoctor(_ context.Context, id uuid.UUID) (*Doctor, error) {
	d, ok := m.doctors[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (m *mockRepo) UpdateDoctor(_ context.Context, d *Doctor) error {
	if _, ok := m.doctors[d.ID]; !ok {
		return ErrNotFound
	}
	m.doctors[d.ID] = d
	return nil
}

func (m *mockRepo) DeleteDoctor(_ context.Context, id uuid.UUID) error {
	if _, ok := m.doctors[id]; !ok {
		return ErrNotFound
	}
	delete(m.doctors, id)
	return nil
}

func (m *mockRepo) ListDoctors(_ context.Context, limit, offset int) ([]*Doctor, int, error) {
	var result []*Doctor
	for _, d := range m.doctors {
		result = append(result, d)
	}
	return result, len(result), nil
}

func (m *mockRepo) CreateSpecialization(_ context.Context, sp *Specialization) error {
	sp.ID = uuid.New()
	m.specializations[sp.ID] = sp
	return nil
}

func (m *mockRepo) ListSpecializations(_ context.Context) ([]*Specialization, error) {
	var result []*Specialization
	for _, sp := range m.specializations {
		result = append(result, sp)
	}
	return result, nil
}

func (m *mockRepo) DeleteSpecialization(_ context.Context, id uuid.UUID) error {
	if _, ok := m.specializations[id]; !ok {
		return ErrNotFound
	}
	delete(m.specializations, id)
	return nil
}

func (m *mockRepo) CreateServiceItem(_ context.Context, si *ServiceItem) error {
	si.ID = uuid.New()
	m.items[si.ID] = si
	return nil
}

func (m *mockRepo) UpdateServiceItem(_ context.Context, si *ServiceItem) error {
	if _, ok := m.items[si.ID]; !ok {
		return ErrNotFound
	}
	m.items[si.ID] = si
	return nil
}

func (m *mockRepo) ListServiceItems(_ context.Context) ([]*ServiceItem, error) {
	var result []*ServiceItem
	for _, si := range m.items {
		result = append(result, si)
	}
	return result, nil
}

func (m *mockRepo) DeleteServiceItem(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

// -- Tests --

func TestCreateDoctor(t *testing.T) {
	svc := NewService(newMockRepo())

	if err := svc.CreateDoctor(context.Background(), &Doctor{}); err == nil {
		t.Error("expected error for missing name")
	}
	if err := svc.CreateDoctor(context.Background(), &Doctor{Name: "Dr. Rao", ConsultationFee: -1}); err == nil {
		t.Error("expected error for negative fee")
	}

	d := &Doctor{Name: "Dr. Rao", ConsultationFee: 500}
	if err := svc.CreateDoctor(context.Background(), d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Active {
		t.Error("new doctors start active")
	}
}

func TestUpdateDoctor_NotFound(t *testing.T) {
	svc := NewService(newMockRepo())
	err := svc.UpdateDoctor(context.Background(), &Doctor{ID: uuid.New(), Name: "Dr. Rao"})
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestServiceItemValidation(t *testing.T) {
	svc := NewService(newMockRepo())

	if err := svc.CreateServiceItem(context.Background(), &ServiceItem{Rate: 100}); err == nil {
		t.Error("expected error for missing name")
	}
	if err := svc.CreateServiceItem(context.Background(), &ServiceItem{Name: "X-Ray", Rate: -5}); err == nil {
		t.Error("expected error for negative rate")
	}
	if err := svc.CreateServiceItem(context.Background(), &ServiceItem{Name: "X-Ray", Rate: 500}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSpecializationLifecycle(t *testing.T) {
	svc := NewService(newMockRepo())

	sp := &Specialization{Name: "Cardiology"}
	if err := svc.CreateSpecialization(context.Background(), sp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sps, err := svc.ListSpecializations(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sps) != 1 {
		t.Fatalf("expected 1 specialization, got %d", len(sps))
	}

	if err := svc.DeleteSpecialization(context.Background(), sp.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.DeleteSpecialization(context.Background(), sp.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
