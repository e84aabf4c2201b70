package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medcore/clinic-api/internal/model"
)

func (r *medicalRecordRepository) Create(ctx context.Context, record *model.MedicalRecord) error {
	query := `
		INSERT INTO medical_records (
			id, appointment_id, patient_id, clinician_id, type, description,
			diagnosis, treatment, finalized, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	record.ID = uuid.New()
	record.CreatedAt = time.Now()
	record.UpdatedAt = record.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.AppointmentID,
		record.PatientID,
		record.ClinicianID,
		record.Type,
		record.Description,
		record.Diagnosis,
		record.Treatment,
		record.Finalized,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create medical record: %w", err)
	}
	return nil
}

func (r *medicalRecordRepository) List(ctx context.Context, filter model.Filter) ([]*model.MedicalRecord, error) {
	where, args := whereClause(filter)
	query := `
		SELECT id, appointment_id, patient_id, clinician_id, type, description,
			diagnosis, treatment, finalized, created_at, updated_at
		FROM medical_records` + where + ` ORDER BY created_at DESC`

	var records []*model.MedicalRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list medical records: %w", err)
	}
	return records, nil
}

func (r *labTestRepository) Create(ctx context.Context, test *model.LabTest) error {
	query := `
		INSERT INTO lab_tests (
			id, appointment_id, patient_id, clinician_id, test_type, status,
			results, resulted_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	test.ID = uuid.New()
	test.CreatedAt = time.Now()
	test.UpdatedAt = test.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		test.ID,
		test.AppointmentID,
		test.PatientID,
		test.ClinicianID,
		test.TestType,
		test.Status,
		test.Results,
		test.ResultedAt,
		test.CreatedAt,
		test.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create lab test: %w", err)
	}
	return nil
}

func (r *labTestRepository) List(ctx context.Context, filter model.Filter) ([]*model.LabTest, error) {
	where, args := whereClause(filter)
	query := `
		SELECT id, appointment_id, patient_id, clinician_id, test_type, status,
			results, resulted_at, created_at, updated_at
		FROM lab_tests` + where + ` ORDER BY created_at DESC`

	var tests []*model.LabTest
	if err := r.db.SelectContext(ctx, &tests, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list lab tests: %w", err)
	}
	return tests, nil
}

func (r *prescriptionRepository) Create(ctx context.Context, prescription *model.Prescription) error {
	query := `
		INSERT INTO prescriptions (
			id, appointment_id, patient_id, clinician_id, medication, dosage,
			instructions, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	prescription.ID = uuid.New()
	prescription.CreatedAt = time.Now()
	prescription.UpdatedAt = prescription.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		prescription.ID,
		prescription.AppointmentID,
		prescription.PatientID,
		prescription.ClinicianID,
		prescription.Medication,
		prescription.Dosage,
		prescription.Instructions,
		prescription.CreatedAt,
		prescription.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create prescription: %w", err)
	}
	return nil
}

func (r *prescriptionRepository) List(ctx context.Context, filter model.Filter) ([]*model.Prescription, error) {
	where, args := whereClause(filter)
	query := `
		SELECT id, appointment_id, patient_id, clinician_id, medication, dosage,
			instructions, created_at, updated_at
		FROM prescriptions` + where + ` ORDER BY created_at DESC`

	var prescriptions []*model.Prescription
	if err := r.db.SelectContext(ctx, &prescriptions, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	return prescriptions, nil
}

func (r *paymentRepository) List(ctx context.Context, filter model.Filter) ([]*model.Payment, error) {
	where, args := whereClause(filter)
	query := `
		SELECT id, appointment_id, patient_id, clinician_id, amount_cents,
			currency, status, paid_at, created_at, updated_at
		FROM payments` + where + ` ORDER BY created_at DESC`

	var payments []*model.Payment
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}
