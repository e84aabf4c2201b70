package model

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Payment tracks the charge for one appointment. Patient and clinician ids
// are carried on the row so role scoping works as a plain column predicate
// without joining through the appointment at read time.
type Payment struct {
	Base
	AppointmentID uuid.UUID     `db:"appointment_id" json:"appointment_id"`
	PatientID     uuid.UUID     `db:"patient_id" json:"patient_id"`
	ClinicianID   uuid.UUID     `db:"clinician_id" json:"clinician_id"`
	AmountCents   int64         `db:"amount_cents" json:"amount_cents"`
	Currency      string        `db:"currency" json:"currency"`
	Status        PaymentStatus `db:"status" json:"status"`
	PaidAt        *time.Time    `db:"paid_at" json:"paid_at,omitempty"`
}
