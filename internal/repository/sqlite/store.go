// Package sqlite stores submitted echo reports in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"echoreport/internal/model"
	"echoreport/internal/repository"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS echo_reports (
	id                    TEXT PRIMARY KEY,
	patient_name          TEXT,
	clinic_id             TEXT,
	dob                   TEXT,
	age                   TEXT,
	indication            TEXT,
	date_of_intervention  TEXT,
	pre_op_specify        TEXT,
	form_data_json        TEXT NOT NULL,
	created_by            TEXT,
	created_at            TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_echo_reports_created_at ON echo_reports(created_at);
`

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const selectColumns = `id, patient_name, clinic_id, dob, age, indication,
	date_of_intervention, pre_op_specify, form_data_json, created_by, created_at`

// Store is a repository.ReportRepo backed by SQLite.
type Store struct {
	db *sql.DB
}

var _ repository.ReportRepo = (*Store)(nil)

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Create(ctx context.Context, r *model.Report) error {
	data, err := json.Marshal(r.FormData)
	if err != nil {
		return fmt.Errorf("marshal form data: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO echo_reports (`+selectColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		nullIfEmpty(r.PatientName),
		nullIfEmpty(r.ClinicID),
		nullIfEmpty(r.DOB),
		nullIfEmpty(r.Age),
		nullIfEmpty(r.Indication),
		nullIfEmpty(r.DateOfIntervention),
		nullIfEmpty(r.PreOpSpecify),
		string(data),
		nullIfEmpty(r.CreatedBy),
		r.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*model.Report, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM echo_reports WHERE id = ?`, id)
	r, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return r, err
}

func (s *Store) List(ctx context.Context, limit int) ([]*model.Report, error) {
	query := `SELECT ` + selectColumns + ` FROM echo_reports ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var reports []*model.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM echo_reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(sc scanner) (*model.Report, error) {
	var (
		r                                       model.Report
		name, clinic, dob, age, ind, doi, preOp sql.NullString
		createdBy                               sql.NullString
		data, createdAt                         string
	)
	if err := sc.Scan(&r.ID, &name, &clinic, &dob, &age, &ind, &doi, &preOp, &data, &createdBy, &createdAt); err != nil {
		return nil, err
	}
	r.PatientName = name.String
	r.ClinicID = clinic.String
	r.DOB = dob.String
	r.Age = age.String
	r.Indication = ind.String
	r.DateOfIntervention = doi.String
	r.PreOpSpecify = preOp.String
	r.CreatedBy = createdBy.String

	if err := json.Unmarshal([]byte(data), &r.FormData); err != nil {
		return nil, fmt.Errorf("unmarshal form data of %s: %w", r.ID, err)
	}
	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at of %s: %w", r.ID, err)
	}
	r.CreatedAt = t
	return &r, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
