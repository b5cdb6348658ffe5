package doctor

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const doctorCols = `id, name, phone, specialization_id, consultation_fee, active, created_at, updated_at`

func (r *repoPG) CreateDoctor(ctx context.Context, d *Doctor) error {
	d.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO doctors (id, name, phone, specialization_id, consultation_fee, active)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		d.ID, d.Name, d.Phone, d.SpecializationID, d.ConsultationFee, d.Active,
	)
	return err
}

func (r *repoPG) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	var d Doctor
	err := r.conn(ctx).QueryRow(ctx, `SELECT `+doctorCols+` FROM doctors WHERE id = $1`, id).
		Scan(&d.ID, &d.Name, &d.Phone, &d.SpecializationID, &d.ConsultationFee, &d.Active, &d.CreatedAt, &d.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repoPG) UpdateDoctor(ctx context.Context, d *Doctor) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE doctors SET name=$2, phone=$3, specialization_id=$4, consultation_fee=$5, active=$6, updated_at=NOW()
		WHERE id = $1`,
		d.ID, d.Name, d.Phone, d.SpecializationID, d.ConsultationFee, d.Active,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListDoctors(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM doctors`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+doctorCols+` FROM doctors ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var doctors []*Doctor
	for rows.Next() {
		var d Doctor
		if err := rows.Scan(&d.ID, &d.Name, &d.Phone, &d.SpecializationID, &d.ConsultationFee, &d.Active, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, 0, err
		}
		doctors = append(doctors, &d)
	}
	return doctors, total, nil
}

func (r *repoPG) CreateSpecialization(ctx context.Context, sp *Specialization) error {
	sp.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx,
		`INSERT INTO specializations (id, name) VALUES ($1, $2)`, sp.ID, sp.Name)
	return err
}

func (r *repoPG) ListSpecializations(ctx context.Context) ([]*Specialization, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT id, name, created_at FROM specializations ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sps []*Specialization
	for rows.Next() {
		var sp Specialization
		if err := rows.Scan(&sp.ID, &sp.Name, &sp.CreatedAt); err != nil {
			return nil, err
		}
		sps = append(sps, &sp)
	}
	return sps, nil
}

func (r *repoPG) DeleteSpecialization(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM specializations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) CreateServiceItem(ctx context.Context, si *ServiceItem) error {
	si.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx,
		`INSERT INTO services (id, name, rate) VALUES ($1, $2, $3)`, si.ID, si.Name, si.Rate)
	return err
}

func (r *repoPG) UpdateServiceItem(ctx context.Context, si *ServiceItem) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE services SET name=$2, rate=$3, updated_at=NOW() WHERE id = $1`, si.ID, si.Name, si.Rate)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListServiceItems(ctx context.Context) ([]*ServiceItem, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT id, name, rate, created_at, updated_at FROM services ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*ServiceItem
	for rows.Next() {
		var si ServiceItem
		if err := rows.Scan(&si.ID, &si.Name, &si.Rate, &si.CreatedAt, &si.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, &si)
	}
	return items, nil
}

func (r *repoPG) DeleteServiceItem(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
