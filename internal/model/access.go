package model

import (
	"github.com/google/uuid"
)

// AccessContext is the resolved identity a request acts under: the user id,
// its role, and the patient or clinician record the role is scoped to.
// It is computed once per request and passed explicitly into every query
// and lifecycle call; nothing reads role state from ambient globals.
type AccessContext struct {
	UserID      uuid.UUID `json:"user_id"`
	Role        Role      `json:"role"`
	PatientID   uuid.UUID `json:"patient_id,omitempty"`
	ClinicianID uuid.UUID `json:"clinician_id,omitempty"`
}

// IsPatient reports whether the context is scoped to a patient record.
func (c *AccessContext) IsPatient() bool {
	return c.Role == RolePatient
}

// IsClinician reports whether the context is scoped to a clinician record.
func (c *AccessContext) IsClinician() bool {
	return c.Role == RoleClinician
}
