package billing

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

func (r *repoPG) CreateRecord(ctx context.Context, rec *Record) error {
	rec.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO billing_records (id, admission_id, discount, total_deposit)
		VALUES ($1, $2, $3, $4)`,
		rec.ID, rec.AdmissionID, rec.Discount, rec.TotalDeposit,
	)
	return err
}

func (r *repoPG) GetByAdmission(ctx context.Context, admissionID uuid.UUID) (*Record, error) {
	var rec Record
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, admission_id, discount, total_deposit, version, created_at, updated_at
		FROM billing_records WHERE admission_id = $1`, admissionID).
		Scan(&rec.ID, &rec.AdmissionID, &rec.Discount, &rec.TotalDeposit, &rec.Version, &rec.CreatedAt, &rec.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *repoPG) InsertCharges(ctx context.Context, charges []*Charge) error {
	return db.RunInTx(ctx, r.pool, func(ctx context.Context) error {
		for _, c := range charges {
			c.ID = uuid.New()
			_, err := r.conn(ctx).Exec(ctx, `
				INSERT INTO service_charges (id, record_id, name, doctor_name, type, amount, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				c.ID, c.RecordID, c.Name, c.DoctorName, c.Type, c.Amount, c.CreatedAt,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repoPG) RemoveCharges(ctx context.Context, recordID uuid.UUID, name string, amount float64) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		DELETE FROM service_charges
		WHERE record_id = $1 AND name = $2 AND amount = $3 AND type = $4`,
		recordID, name, amount, ChargeService,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *repoPG) RemoveConsultantCharges(ctx context.Context, recordID uuid.UUID, doctorName string) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		DELETE FROM service_charges
		WHERE record_id = $1 AND doctor_name = $2 AND type = $3`,
		recordID, doctorName, ChargeDoctorVisit,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *repoPG) ListCharges(ctx context.Context, recordID uuid.UUID) ([]*Charge, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, record_id, name, doctor_name, type, amount, created_at
		FROM service_charges WHERE record_id = $1 ORDER BY created_at, id`, recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var charges []*Charge
	for rows.Next() {
		var c Charge
		if err := rows.Scan(&c.ID, &c.RecordID, &c.Name, &c.DoctorName, &c.Type, &c.Amount, &c.CreatedAt); err != nil {
			return nil, err
		}
		charges = append(charges, &c)
	}
	return charges, nil
}

// RecordPayment keeps the ledger invariant: the payment row and the deposit
// adjustment land in the same transaction or not at all.
func (r *repoPG) RecordPayment(ctx context.Context, p *Payment, delta float64) error {
	return db.RunInTx(ctx, r.pool, func(ctx context.Context) error {
		_, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO payments (id, record_id, amount, payment_mode, type, amount_type, through, date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			p.ID, p.RecordID, p.Amount, p.PaymentMode, p.Type, p.AmountType, p.Through, p.Date,
		)
		if err != nil {
			return err
		}
		return r.adjustDeposit(ctx, p.RecordID, delta)
	})
}

func (r *repoPG) DeletePayment(ctx context.Context, recordID, paymentID uuid.UUID, delta float64) error {
	return db.RunInTx(ctx, r.pool, func(ctx context.Context) error {
		tag, err := r.conn(ctx).Exec(ctx,
			`DELETE FROM payments WHERE id = $1 AND record_id = $2`, paymentID, recordID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrPaymentNotFound
		}
		return r.adjustDeposit(ctx, recordID, delta)
	})
}

func (r *repoPG) GetPayment(ctx context.Context, recordID, paymentID uuid.UUID) (*Payment, error) {
	var p Payment
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, record_id, amount, payment_mode, type, amount_type, through, date, created_at
		FROM payments WHERE id = $1 AND record_id = $2`, paymentID, recordID).
		Scan(&p.ID, &p.RecordID, &p.Amount, &p.PaymentMode, &p.Type, &p.AmountType, &p.Through, &p.Date, &p.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) ListPayments(ctx context.Context, recordID uuid.UUID) ([]*Payment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, record_id, amount, payment_mode, type, amount_type, through, date, created_at
		FROM payments WHERE record_id = $1 ORDER BY date, created_at`, recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.RecordID, &p.Amount, &p.PaymentMode, &p.Type, &p.AmountType, &p.Through, &p.Date, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, &p)
	}
	return payments, nil
}

func (r *repoPG) SetDiscount(ctx context.Context, recordID uuid.UUID, amount float64) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE billing_records SET discount = $2, version = version + 1, updated_at = NOW()
		WHERE id = $1`, recordID, amount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *repoPG) adjustDeposit(ctx context.Context, recordID uuid.UUID, delta float64) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE billing_records
		SET total_deposit = total_deposit + $2, version = version + 1, updated_at = NOW()
		WHERE id = $1`, recordID, delta)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}
