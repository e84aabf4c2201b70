package model

import (
	"time"

	"github.com/google/uuid"
)

// Base contains common fields for all models
type Base struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Pagination represents common pagination parameters
type Pagination struct {
	Page     int `json:"page" form:"page"`
	PageSize int `json:"page_size" form:"page_size"`
}

// Filter is a conjunction of column equality conditions applied to a list
// query. Policy filters are merged into caller filters additively: a caller
// can only narrow the result set, never widen it.
type Filter map[string]interface{}

// Merge returns a copy of f with the conditions of other applied on top.
// Conditions in other win on key collision, which is why policy filters are
// always merged last.
func (f Filter) Merge(other Filter) Filter {
	merged := make(Filter, len(f)+len(other))
	for k, v := range f {
		merged[k] = v
	}
	for k, v := range other {
		merged[k] = v
	}
	return merged
}

// Entity identifies a record type for query-policy scoping.
type Entity string

const (
	EntityAppointment   Entity = "appointments"
	EntityMedicalRecord Entity = "medical_records"
	EntityLabTest       Entity = "lab_tests"
	EntityPrescription  Entity = "prescriptions"
	EntityPayment       Entity = "payments"
	EntityPatient       Entity = "patients"
	EntityNotification  Entity = "notifications"
	EntitySchedule      Entity = "schedules"
	EntityTask          Entity = "tasks"
)
