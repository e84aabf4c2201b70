package model

import (
	"time"

	"github.com/google/uuid"
)

type PatientStatus string

const (
	PatientStatusActive   PatientStatus = "active"
	PatientStatusInactive PatientStatus = "inactive"
)

type Patient struct {
	Base
	UserID      uuid.UUID  `db:"user_id" json:"user_id"`
	Name        string     `db:"name" json:"name"`
	Email       string     `db:"email" json:"email"`
	Phone       *string    `db:"phone" json:"phone"`
	DateOfBirth *time.Time `db:"date_of_birth" json:"date_of_birth"`
	Gender      *string    `db:"gender" json:"gender"`
	Address     *string    `db:"address" json:"address"`
	Status      string     `db:"status" json:"status"`
}

type PatientFilters struct {
	Status     string `form:"status"`
	SearchTerm string `form:"search_term"`
}
