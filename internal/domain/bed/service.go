package bed

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

func (s *Service) CreateBed(ctx context.Context, b *Bed) error {
	if b.RoomType == "" {
		return fmt.Errorf("room_type is required")
	}
	if b.BedNumber == "" {
		return fmt.Errorf("bed_number is required")
	}
	if b.Status == "" {
		b.Status = StatusAvailable
	}
	if !validStatuses[b.Status] {
		return fmt.Errorf("invalid status: %s", b.Status)
	}
	if b.Status == StatusOccupied {
		return fmt.Errorf("beds cannot be created occupied; allocate through an admission")
	}
	return s.repo.Create(ctx, b)
}

func (s *Service) GetBed(ctx context.Context, id uuid.UUID) (*Bed, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateBed(ctx context.Context, b *Bed) error {
	if b.RoomType == "" {
		return fmt.Errorf("room_type is required")
	}
	if b.BedNumber == "" {
		return fmt.Errorf("bed_number is required")
	}
	return s.repo.Update(ctx, b)
}

// DeleteBed removes a bed; occupied beds stay until their admission releases
// them.
func (s *Service) DeleteBed(ctx context.Context, id uuid.UUID) error {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if b.Status == StatusOccupied {
		return fmt.Errorf("bed %s is occupied and cannot be deleted", b.BedNumber)
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListBeds(ctx context.Context, roomType string) ([]*Bed, error) {
	if roomType == "" {
		return nil, fmt.Errorf("room_type is required")
	}
	return s.repo.List(ctx, roomType)
}

func (s *Service) ListAllBeds(ctx context.Context, limit, offset int) ([]*Bed, int, error) {
	return s.repo.ListAll(ctx, limit, offset)
}

func (s *Service) Allocate(ctx context.Context, bedID, admissionID uuid.UUID) error {
	if admissionID == uuid.Nil {
		return fmt.Errorf("admission id is required")
	}
	return s.repo.Allocate(ctx, bedID, admissionID)
}

// Release flips the bed back to available without checking which admission
// held it; callers own the decision of when a release is legal.
func (s *Service) Release(ctx context.Context, bedID uuid.UUID) error {
	return s.repo.Release(ctx, bedID)
}

// SetStatus lets bed management mark a bed for maintenance or reserve it.
// Occupancy transitions go through Allocate and Release only.
func (s *Service) SetStatus(ctx context.Context, bedID uuid.UUID, status string) error {
	if !validStatuses[status] {
		return fmt.Errorf("invalid status: %s", status)
	}
	if status == StatusOccupied {
		return fmt.Errorf("occupied status is set through allocation")
	}
	b, err := s.repo.GetByID(ctx, bedID)
	if err != nil {
		return err
	}
	if b.Status == StatusOccupied {
		return fmt.Errorf("bed %s is occupied; discharge or move the admission first", b.BedNumber)
	}
	return s.repo.SetStatus(ctx, bedID, status)
}
