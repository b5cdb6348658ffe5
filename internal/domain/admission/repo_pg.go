package admission

import (
	"context"
	"time"

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

const admCols = `id, patient_id, uhid, patient_name, phone, age, gender, address,
	relative_name, relative_phone, admit_date, source, admission_type,
	room_type, bed_id, doctor_name, referred_by, status, discharged_at,
	version, last_modified_by, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, a *Admission) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO admissions (
			id, patient_id, uhid, patient_name, phone, age, gender, address,
			relative_name, relative_phone, admit_date, source, admission_type,
			room_type, bed_id, doctor_name, referred_by, status, last_modified_by
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,
			$11,$12,$13,$14,$15,$16,$17,$18,$19
		)`,
		a.ID, a.PatientID, a.UHID, a.PatientName, a.Phone, a.Age, a.Gender, a.Address,
		a.RelativeName, a.RelativePhone, a.AdmitDate, a.Source, a.AdmissionType,
		a.RoomType, a.BedID, a.DoctorName, a.ReferredBy, a.Status, a.LastModifiedBy,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Admission, error) {
	a, err := scanAdmission(r.conn(ctx).QueryRow(ctx, `SELECT `+admCols+` FROM admissions WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	return a, err
}

func (r *repoPG) Update(ctx context.Context, a *Admission, expectedVersion int) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE admissions SET
			patient_name=$2, phone=$3, age=$4, gender=$5, address=$6,
			relative_name=$7, relative_phone=$8, admit_date=$9, source=$10,
			admission_type=$11, room_type=$12, bed_id=$13, doctor_name=$14,
			referred_by=$15, last_modified_by=$16,
			version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $17`,
		a.ID, a.PatientName, a.Phone, a.Age, a.Gender, a.Address,
		a.RelativeName, a.RelativePhone, a.AdmitDate, a.Source,
		a.AdmissionType, a.RoomType, a.BedID, a.DoctorName,
		a.ReferredBy, a.LastModifiedBy, expectedVersion,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.conn(ctx).QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM admissions WHERE id = $1)`, a.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	a.Version = expectedVersion + 1
	return nil
}

func (r *repoPG) SetDischarged(ctx context.Context, id uuid.UUID, at time.Time, editor string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE admissions SET status=$2, discharged_at=$3, bed_id=NULL,
			last_modified_by=$4, version = version + 1, updated_at = NOW()
		WHERE id = $1`,
		id, StatusDischarged, at, editor,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Admission, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM admissions`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+admCols+` FROM admissions ORDER BY admit_date DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectAdmissions(rows, total)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Admission, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM admissions WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+admCols+` FROM admissions WHERE patient_id = $1 ORDER BY admit_date DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectAdmissions(rows, total)
}

func (r *repoPG) AddChange(ctx context.Context, e *ChangeEntry) error {
	e.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO admission_changes (id, admission_id, patient_id, changes, editor)
		VALUES ($1, $2, $3, $4, $5)`,
		e.ID, e.AdmissionID, e.PatientID, e.Changes, e.Editor,
	)
	return err
}

func (r *repoPG) ListChanges(ctx context.Context, admissionID uuid.UUID) ([]*ChangeEntry, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, admission_id, patient_id, changes, editor, created_at
		FROM admission_changes WHERE admission_id = $1 ORDER BY created_at DESC`, admissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*ChangeEntry
	for rows.Next() {
		var e ChangeEntry
		if err := rows.Scan(&e.ID, &e.AdmissionID, &e.PatientID, &e.Changes, &e.Editor, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, nil
}

func scanAdmission(row pgx.Row) (*Admission, error) {
	var a Admission
	err := row.Scan(
		&a.ID, &a.PatientID, &a.UHID, &a.PatientName, &a.Phone, &a.Age, &a.Gender, &a.Address,
		&a.RelativeName, &a.RelativePhone, &a.AdmitDate, &a.Source, &a.AdmissionType,
		&a.RoomType, &a.BedID, &a.DoctorName, &a.ReferredBy, &a.Status, &a.DischargedAt,
		&a.Version, &a.LastModifiedBy, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func collectAdmissions(rows pgx.Rows, total int) ([]*Admission, int, error) {
	var adms []*Admission
	for rows.Next() {
		var a Admission
		err := rows.Scan(
			&a.ID, &a.PatientID, &a.UHID, &a.PatientName, &a.Phone, &a.Age, &a.Gender, &a.Address,
			&a.RelativeName, &a.RelativePhone, &a.AdmitDate, &a.Source, &a.AdmissionType,
			&a.RoomType, &a.BedID, &a.DoctorName, &a.ReferredBy, &a.Status, &a.DischargedAt,
			&a.Version, &a.LastModifiedBy, &a.CreatedAt, &a.UpdatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		adms = append(adms, &a)
	}
	return adms, total, nil
}
