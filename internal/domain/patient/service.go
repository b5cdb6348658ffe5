package patient

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/sequence"
)

type Service struct {
	repo      Repository
	allocator *sequence.Allocator
}

func NewService(repo Repository, allocator *sequence.Allocator) *Service {
	return &Service{repo: repo, allocator: allocator}
}

var validGenders = map[string]bool{
	"male":   true,
	"female": true,
	"other":  true,
}

// RegisterPatient issues a fresh UHID and persists the patient. The UHID
// counter has already been consumed if the insert fails; gaps in the
// sequence are acceptable, duplicates are not.
func (s *Service) RegisterPatient(ctx context.Context, p *Patient) error {
	if err := validate(p); err != nil {
		return err
	}

	uhid, err := s.allocator.NextID(ctx, sequence.SeqUHID)
	if err != nil {
		return fmt.Errorf("issue uhid: %w", err)
	}
	p.UHID = uhid

	return s.repo.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetPatientByUHID(ctx context.Context, uhid string) (*Patient, error) {
	return s.repo.GetByUHID(ctx, uhid)
}

// UpdatePatient writes the mutable demographic fields. The UHID is
// immutable once issued.
func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	if err := validate(p); err != nil {
		return err
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) SearchPatients(ctx context.Context, query string, limit, offset int) ([]*Patient, int, error) {
	if query == "" {
		return s.repo.List(ctx, limit, offset)
	}
	return s.repo.Search(ctx, query, limit, offset)
}

func validate(p *Patient) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.Phone == "" {
		return fmt.Errorf("phone is required")
	}
	if p.Age < 0 || p.Age > 150 {
		return fmt.Errorf("age must be between 0 and 150")
	}
	if p.Gender != "" && !validGenders[p.Gender] {
		return fmt.Errorf("invalid gender: %s", p.Gender)
	}
	return nil
}
