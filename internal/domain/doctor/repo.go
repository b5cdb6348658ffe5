package doctor

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	CreateDoctor(ctx context.Context, d *Doctor) error
	GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error)
	UpdateDoctor(ctx context.Context, d *Doctor) error
	DeleteDoctor(ctx context.Context, id uuid.UUID) error
	ListDoctors(ctx context.Context, limit, offset int) ([]*Doctor, int, error)

	CreateSpecialization(ctx context.Context, sp *Specialization) error
	ListSpecializations(ctx context.Context) ([]*Specialization, error)
	DeleteSpecialization(ctx context.Context, id uuid.UUID) error

	CreateServiceItem(ctx context.Context, si *ServiceItem) error
	UpdateServiceItem(ctx context.Context, si *ServiceItem) error
	ListServiceItems(ctx context.Context) ([]*ServiceItem, error)
	DeleteServiceItem(ctx context.Context, id uuid.UUID) error
}
