package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medcore/clinic-api/internal/model"
	apperrors "github.com/medcore/clinic-api/pkg/errors"
)

const appointmentColumns = `
	id, patient_id, clinician_id, service_type, date, time, status,
	reason, notes, cancel_reason,
	original_date, original_time, reschedule_requested_by, reschedule_reason,
	needs_review, created_at, updated_at
`

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, patient_id, clinician_id, service_type, date, time, status,
			reason, notes, needs_review, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	appointment.ID = uuid.New()
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = appointment.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.PatientID,
		appointment.ClinicianID,
		appointment.ServiceType,
		appointment.Date,
		appointment.Time,
		appointment.Status,
		appointment.Reason,
		appointment.Notes,
		appointment.NeedsReview,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("appointment", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) List(ctx context.Context, filter model.Filter) ([]*model.Appointment, error) {
	where, args := whereClause(filter)
	query := `SELECT ` + appointmentColumns + ` FROM appointments` + where + ` ORDER BY date, time`

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// Transition writes the appointment's mutable fields guarded by an
// expected-status check. Zero rows affected means either the row vanished
// or another writer moved the status first; the two cases are distinguished
// with a follow-up read.
func (r *appointmentRepository) Transition(ctx context.Context, appointment *model.Appointment, expected model.AppointmentStatus) error {
	query := `
		UPDATE appointments
		SET date = $1, time = $2, status = $3, notes = $4, cancel_reason = $5,
			original_date = $6, original_time = $7,
			reschedule_requested_by = $8, reschedule_reason = $9,
			needs_review = $10, updated_at = $11
		WHERE id = $12 AND status = $13
	`
	appointment.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		appointment.Date,
		appointment.Time,
		appointment.Status,
		appointment.Notes,
		appointment.CancelReason,
		appointment.OriginalDate,
		appointment.OriginalTime,
		appointment.RescheduleRequestedBy,
		appointment.RescheduleReason,
		appointment.NeedsReview,
		appointment.UpdatedAt,
		appointment.ID,
		expected,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		if _, getErr := r.Get(ctx, appointment.ID); getErr != nil {
			return getErr
		}
		return apperrors.StaleState("appointment")
	}
	return nil
}

func (r *appointmentRepository) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE status = $1 AND created_at < $2
		ORDER BY created_at
	`
	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, model.AppointmentStatusPending, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) CountConfirmedSlot(ctx context.Context, clinicianID uuid.UUID, date, timeOfDay string, excludeID *uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*) FROM appointments
		WHERE clinician_id = $1 AND date = $2 AND time = $3 AND status = $4
	`
	args := []interface{}{clinicianID, date, timeOfDay, model.AppointmentStatusConfirmed}
	if excludeID != nil {
		query += ` AND id <> $5`
		args = append(args, *excludeID)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count confirmed slots: %w", err)
	}
	return count, nil
}
