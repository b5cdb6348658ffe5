package bed

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

const bedCols = `id, room_type, bed_number, type, status, admission_id, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, b *Bed) error {
	b.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO beds (id, room_type, bed_number, type, status)
		VALUES ($1, $2, $3, $4, $5)`,
		b.ID, b.RoomType, b.BedNumber, b.Type, b.Status,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Bed, error) {
	b, err := scanBed(r.conn(ctx).QueryRow(ctx, `SELECT `+bedCols+` FROM beds WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, ErrBedNotFound
	}
	return b, err
}

func (r *repoPG) Update(ctx context.Context, b *Bed) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE beds SET room_type=$2, bed_number=$3, type=$4, updated_at=NOW()
		WHERE id = $1`,
		b.ID, b.RoomType, b.BedNumber, b.Type,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBedNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM beds WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBedNotFound
	}
	return nil
}

// List returns every bed in the room type regardless of status, so selection
// screens can show the bed currently held by the admission being edited.
func (r *repoPG) List(ctx context.Context, roomType string) ([]*Bed, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+bedCols+` FROM beds WHERE room_type = $1 ORDER BY bed_number`, roomType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBeds(rows)
}

func (r *repoPG) ListAll(ctx context.Context, limit, offset int) ([]*Bed, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM beds`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+bedCols+` FROM beds ORDER BY room_type, bed_number LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	beds, err := collectBeds(rows)
	return beds, total, err
}

// Allocate is a single conditional write. The WHERE clause admits beds that
// are not occupied plus the bed already held by this admission, so the
// mutual-exclusion decision happens at the database row, not in the caller.
func (r *repoPG) Allocate(ctx context.Context, bedID, admissionID uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE beds SET status = $3, admission_id = $2, updated_at = NOW()
		WHERE id = $1 AND (status <> $3 OR admission_id = $2)`,
		bedID, admissionID, StatusOccupied,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.conn(ctx).QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM beds WHERE id = $1)`, bedID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrBedNotFound
		}
		return ErrBedOccupied
	}
	return nil
}

func (r *repoPG) Release(ctx context.Context, bedID uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE beds SET status = $2, admission_id = NULL, updated_at = NOW()
		WHERE id = $1`,
		bedID, StatusAvailable,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBedNotFound
	}
	return nil
}

func (r *repoPG) SetStatus(ctx context.Context, bedID uuid.UUID, status string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE beds SET status = $2, updated_at = NOW() WHERE id = $1`, bedID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBedNotFound
	}
	return nil
}

func scanBed(row pgx.Row) (*Bed, error) {
	var b Bed
	err := row.Scan(&b.ID, &b.RoomType, &b.BedNumber, &b.Type, &b.Status, &b.AdmissionID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func collectBeds(rows pgx.Rows) ([]*Bed, error) {
	var beds []*Bed
	for rows.Next() {
		var b Bed
		if err := rows.Scan(&b.ID, &b.RoomType, &b.BedNumber, &b.Type, &b.Status, &b.AdmissionID, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		beds = append(beds, &b)
	}
	return beds, nil
}
