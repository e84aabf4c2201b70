package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/medcore/clinic-api/internal/model"
	apperrors "github.com/medcore/clinic-api/pkg/errors"
)

const patientColumns = `
	id, user_id, name, email, phone, date_of_birth, gender, address, status,
	created_at, updated_at
`

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`

	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("patient", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE user_id = $1`

	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("patient", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient by user: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) List(ctx context.Context, filter model.Filter) ([]*model.Patient, error) {
	where, args := whereClause(filter)
	query := `SELECT ` + patientColumns + ` FROM patients` + where + ` ORDER BY name`

	var patients []*model.Patient
	if err := r.db.SelectContext(ctx, &patients, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

// ListByClinician derives the clinician's roster from their own
// appointments rather than from any patient-side column.
func (r *patientRepository) ListByClinician(ctx context.Context, clinicianID uuid.UUID) ([]*model.Patient, error) {
	query := `
		SELECT DISTINCT p.id, p.user_id, p.name, p.email, p.phone, p.date_of_birth,
			p.gender, p.address, p.status, p.created_at, p.updated_at
		FROM patients p
		JOIN appointments a ON a.patient_id = p.id
		WHERE a.clinician_id = $1
		ORDER BY p.name
	`
	var patients []*model.Patient
	if err := r.db.SelectContext(ctx, &patients, query, clinicianID); err != nil {
		return nil, fmt.Errorf("failed to list clinician patients: %w", err)
	}
	return patients, nil
}
