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

const clinicianColumns = `id, user_id, name, email, specialty, status, created_at, updated_at`

func (r *clinicianRepository) Get(ctx context.Context, id uuid.UUID) (*model.Clinician, error) {
	query := `SELECT ` + clinicianColumns + ` FROM clinicians WHERE id = $1`

	var clinician model.Clinician
	err := r.db.GetContext(ctx, &clinician, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("clinician", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get clinician: %w", err)
	}
	return &clinician, nil
}

func (r *clinicianRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Clinician, error) {
	query := `SELECT ` + clinicianColumns + ` FROM clinicians WHERE user_id = $1`

	var clinician model.Clinician
	err := r.db.GetContext(ctx, &clinician, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("clinician", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get clinician by user: %w", err)
	}
	return &clinician, nil
}

func (r *clinicianRepository) ListSchedules(ctx context.Context, filter model.Filter) ([]*model.Schedule, error) {
	where, args := whereClause(filter)
	query := `
		SELECT id, clinician_id, day_of_week, start_time, end_time, created_at, updated_at
		FROM schedules` + where + ` ORDER BY day_of_week, start_time`

	var schedules []*model.Schedule
	if err := r.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	return schedules, nil
}
