package sequence

import (
	"context"

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

// Increment relies on the upsert's row lock for mutual exclusion: two
// concurrent callers serialize on the counter row and always observe
// distinct values.
func (r *repoPG) Increment(ctx context.Context, name, dateKey string) (int64, error) {
	var value int64
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO id_sequences (name, date_key, value)
		VALUES ($1, $2, 1)
		ON CONFLICT (name, date_key)
		DO UPDATE SET value = id_sequences.value + 1
		RETURNING value`,
		name, dateKey,
	).Scan(&value)
	if err != nil {
		return 0, err
	}
	return value, nil
}
