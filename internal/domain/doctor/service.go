package doctor

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateDoctor(ctx context.Context, d *Doctor) error {
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}
	if d.ConsultationFee < 0 {
		return fmt.Errorf("consultation_fee must not be negative")
	}
	d.Active = true
	return s.repo.CreateDoctor(ctx, d)
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.repo.GetDoctor(ctx, id)
}

func (s *Service) UpdateDoctor(ctx context.Context, d *Doctor) error {
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}
	if d.ConsultationFee < 0 {
		return fmt.Errorf("consultation_fee must not be negative")
	}
	return s.repo.UpdateDoctor(ctx, d)
}

func (s *Service) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteDoctor(ctx, id)
}

func (s *Service) ListDoctors(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	return s.repo.ListDoctors(ctx, limit, offset)
}

func (s *Service) CreateSpecialization(ctx context.Context, sp *Specialization) error {
	if sp.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.repo.CreateSpecialization(ctx, sp)
}

func (s *Service) ListSpecializations(ctx context.Context) ([]*Specialization, error) {
	return s.repo.ListSpecializations(ctx)
}

func (s *Service) DeleteSpecialization(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteSpecialization(ctx, id)
}

func (s *Service) CreateServiceItem(ctx context.Context, si *ServiceItem) error {
	if si.Name == "" {
		return fmt.Errorf("name is required")
	}
	if si.Rate < 0 {
		return fmt.Errorf("rate must not be negative")
	}
	return s.repo.CreateServiceItem(ctx, si)
}

func (s *Service) UpdateServiceItem(ctx context.Context, si *ServiceItem) error {
	if si.Name == "" {
		return fmt.Errorf("name is required")
	}
	if si.Rate < 0 {
		return fmt.Errorf("rate must not be negative")
	}
	return s.repo.UpdateServiceItem(ctx, si)
}

func (s *Service) ListServiceItems(ctx context.Context) ([]*ServiceItem, error) {
	return s.repo.ListServiceItems(ctx)
}

func (s *Service) DeleteServiceItem(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteServiceItem(ctx, id)
}
