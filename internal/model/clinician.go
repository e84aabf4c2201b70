package model

import (
	"github.com/google/uuid"
)

type Clinician struct {
	Base
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Specialty string    `db:"specialty" json:"specialty"`
	Status    string    `db:"status" json:"status"`
}

// Schedule is one recurring working block for a clinician, used by the
// front desk when checking slot availability.
type Schedule struct {
	Base
	ClinicianID uuid.UUID `db:"clinician_id" json:"clinician_id"`
	DayOfWeek   int       `db:"day_of_week" json:"day_of_week"`
	StartTime   string    `db:"start_time" json:"start_time"`
	EndTime     string    `db:"end_time" json:"end_time"`
}
