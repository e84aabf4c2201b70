package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending           AppointmentStatus = "pending"
	AppointmentStatusConfirmed         AppointmentStatus = "confirmed"
	AppointmentStatusPendingReschedule AppointmentStatus = "pending_reschedule_confirmation"
	AppointmentStatusCancelled         AppointmentStatus = "cancelled"
	AppointmentStatusCompleted         AppointmentStatus = "completed"
)

// Terminal reports whether no further transitions are allowed out of s.
func (s AppointmentStatus) Terminal() bool {
	return s == AppointmentStatusCancelled || s == AppointmentStatusCompleted
}

// Slot date/time layouts. Booking slots are fixed-duration and keyed by
// exact date+time equality, so both are stored as strings in these layouts.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Appointment is the lifecycle aggregate. The reschedule-tracking columns
// are always present on the row (nullable) and populated only while a
// reschedule negotiation is open. Appointments are never hard-deleted; they
// only reach the cancelled or completed terminal status.
type Appointment struct {
	Base
	PatientID   uuid.UUID         `db:"patient_id" json:"patient_id"`
	ClinicianID uuid.UUID         `db:"clinician_id" json:"clinician_id"`
	ServiceType string            `db:"service_type" json:"service_type"`
	Date        string            `db:"date" json:"date"`
	Time        string            `db:"time" json:"time"`
	Status      AppointmentStatus `db:"status" json:"status"`
	Reason      *string           `db:"reason" json:"reason,omitempty"`
	Notes       *string           `db:"notes" json:"notes,omitempty"`

	CancelReason *string `db:"cancel_reason" json:"cancel_reason,omitempty"`

	OriginalDate          *string    `db:"original_date" json:"original_date,omitempty"`
	OriginalTime          *string    `db:"original_time" json:"original_time,omitempty"`
	RescheduleRequestedBy *uuid.UUID `db:"reschedule_requested_by" json:"reschedule_requested_by,omitempty"`
	RescheduleReason      *string    `db:"reschedule_reason" json:"reschedule_reason,omitempty"`

	// NeedsReview flags the appointment for manual reconciliation after a
	// reschedule reject found no original date/time snapshot to restore.
	NeedsReview bool `db:"needs_review" json:"needs_review"`
}

// RescheduleOpen reports whether a reschedule negotiation is in flight.
func (a *Appointment) RescheduleOpen() bool {
	return a.Status == AppointmentStatusPendingReschedule
}

type BookAppointmentRequest struct {
	PatientID   uuid.UUID `json:"patient_id"`
	ClinicianID uuid.UUID `json:"clinician_id" binding:"required"`
	ServiceType string    `json:"service_type" binding:"required"`
	Date        string    `json:"date" binding:"required,slotdate"`
	Time        string    `json:"time" binding:"required,slottime"`
	Reason      string    `json:"reason" binding:"max=1000"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason"`
}

type RescheduleRequest struct {
	Date   string `json:"date" binding:"required,slotdate"`
	Time   string `json:"time" binding:"required,slottime"`
	Reason string `json:"reason" binding:"max=1000"`
}

type ConfirmRescheduleRequest struct {
	Approved bool    `json:"approved"`
	Notes    *string `json:"notes" binding:"omitempty,max=1000"`
}

type AppointmentFilters struct {
	Status      AppointmentStatus `form:"status"`
	ClinicianID uuid.UUID         `form:"clinician_id"`
	PatientID   uuid.UUID         `form:"patient_id"`
	Date        string            `form:"date"`
}

// Filter converts the caller-supplied filters to query conditions. Policy
// conditions are merged on top of this, so a caller cannot widen scope by
// leaving fields empty.
func (f *AppointmentFilters) Filter() Filter {
	out := Filter{}
	if f == nil {
		return out
	}
	if f.Status != "" {
		out["status"] = f.Status
	}
	if f.ClinicianID != uuid.Nil {
		out["clinician_id"] = f.ClinicianID
	}
	if f.PatientID != uuid.Nil {
		out["patient_id"] = f.PatientID
	}
	if f.Date != "" {
		out["date"] = f.Date
	}
	return out
}

// ValidateSlot checks the date/time shape of a booking or reschedule slot.
func ValidateSlot(date, timeOfDay string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return err
	}
	_, err := time.Parse(TimeLayout, timeOfDay)
	return err
}
