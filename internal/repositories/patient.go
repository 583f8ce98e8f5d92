package repositories

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/TulasiR141/otopilot/internal/errors"
	"github.com/TulasiR141/otopilot/internal/models"
	"github.com/TulasiR141/otopilot/internal/sqlite"
)

// ErrPatientNotFound means the patient id is unknown.
var ErrPatientNotFound = errors.NewSentinel("patient not found")

type PatientRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewPatientRepository(dbs *sqlite.Database, logger *slog.Logger) *PatientRepository {
	return &PatientRepository{
		dbs:    dbs,
		logger: logger.With("source", "PatientRepository"),
	}
}

func (r *PatientRepository) Create(ctx context.Context, patient models.Patient) (int64, error) {
	stmt := `INSERT INTO patients (first_name, last_name, date_of_birth)
VALUES (@first_name, @last_name, @date_of_birth)`
	result, err := r.dbs.ReadWrite.ExecContext(ctx, stmt,
		sql.Named("first_name", patient.FirstName),
		sql.Named("last_name", patient.LastName),
		sql.Named("date_of_birth", patient.DateOfBirth),
	)
	if err != nil {
		return 0, errors.Wrap(err, "insert patient")
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "patient insert id")
	}
	return id, nil
}

func (r *PatientRepository) Get(ctx context.Context, id int64) (*models.Patient, error) {
	var patient models.Patient
	stmt := `SELECT id, first_name, last_name, date_of_birth FROM patients WHERE id = ?`
	err := r.dbs.ReadOnly.QueryRowContext(ctx, stmt, id).Scan(
		&patient.ID,
		&patient.FirstName,
		&patient.LastName,
		&patient.DateOfBirth,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrap(ErrPatientNotFound, "get patient", slog.Int64("patientID", id))
		}
		return nil, errors.Wrap(err, "read patient", slog.Int64("patientID", id))
	}
	return &patient, nil
}

func (r *PatientRepository) List(ctx context.Context) ([]models.Patient, error) {
	stmt := `SELECT id, first_name, last_name, date_of_birth FROM patients ORDER BY last_name, first_name`
	rows, err := r.dbs.ReadOnly.QueryContext(ctx, stmt)
	if err != nil {
		return nil, errors.Wrap(err, "query patients")
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			r.logger.LogAttrs(ctx, slog.LevelError, "could not close rows", errors.SlogError(closeErr))
		}
	}()

	var patients []models.Patient
	for rows.Next() {
		var patient models.Patient
		if err = rows.Scan(&patient.ID, &patient.FirstName, &patient.LastName, &patient.DateOfBirth); err != nil {
			return nil, errors.Wrap(err, "scan patient")
		}
		patients = append(patients, patient)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "rows error")
	}
	return patients, nil
}
