package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MedicalRecord, LabTest and Prescription are each owned by exactly one
// appointment and one patient, visible only to that patient, the authoring
// clinician, and staff/admin. Clinicians may create them only once the
// owning appointment is completed.

type MedicalRecord struct {
	Base
	AppointmentID uuid.UUID       `db:"appointment_id" json:"appointment_id"`
	PatientID     uuid.UUID       `db:"patient_id" json:"patient_id"`
	ClinicianID   uuid.UUID       `db:"clinician_id" json:"clinician_id"`
	Type          string          `db:"type" json:"type"`
	Description   string          `db:"description" json:"description"`
	Diagnosis     json.RawMessage `db:"diagnosis" json:"diagnosis"`
	Treatment     json.RawMessage `db:"treatment" json:"treatment"`
	Finalized     bool            `db:"finalized" json:"finalized"`
}

type LabTestStatus string

const (
	LabTestStatusOrdered   LabTestStatus = "ordered"
	LabTestStatusCompleted LabTestStatus = "completed"
)

type LabTest struct {
	Base
	AppointmentID uuid.UUID       `db:"appointment_id" json:"appointment_id"`
	PatientID     uuid.UUID       `db:"patient_id" json:"patient_id"`
	ClinicianID   uuid.UUID       `db:"clinician_id" json:"clinician_id"`
	TestType      string          `db:"test_type" json:"test_type"`
	Status        LabTestStatus   `db:"status" json:"status"`
	Results       json.RawMessage `db:"results" json:"results,omitempty"`
	ResultedAt    *time.Time      `db:"resulted_at" json:"resulted_at,omitempty"`
}

type Prescription struct {
	Base
	AppointmentID uuid.UUID `db:"appointment_id" json:"appointment_id"`
	PatientID     uuid.UUID `db:"patient_id" json:"patient_id"`
	ClinicianID   uuid.UUID `db:"clinician_id" json:"clinician_id"`
	Medication    string    `db:"medication" json:"medication"`
	Dosage        string    `db:"dosage" json:"dosage"`
	Instructions  string    `db:"instructions" json:"instructions"`
}

type CreateMedicalRecordRequest struct {
	AppointmentID uuid.UUID       `json:"appointment_id" binding:"required"`
	Type          string          `json:"type" binding:"required"`
	Description   string          `json:"description" binding:"required,max=4000"`
	Diagnosis     json.RawMessage `json:"diagnosis"`
	Treatment     json.RawMessage `json:"treatment"`
}

type CreatePrescriptionRequest struct {
	AppointmentID uuid.UUID `json:"appointment_id" binding:"required"`
	Medication    string    `json:"medication" binding:"required"`
	Dosage        string    `json:"dosage" binding:"required"`
	Instructions  string    `json:"instructions" binding:"max=2000"`
}
