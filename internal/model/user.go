package model

import (
	"time"
)

// Role identifies what kind of principal a user is. Every user has exactly
// one role.
type Role string

const (
	RolePatient   Role = "patient"
	RoleClinician Role = "clinician"
	RoleStaff     Role = "staff"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleClinician, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// Unscoped reports whether the role sees records without per-owner
// filtering. Staff and admin operate across the whole clinic.
func (r Role) Unscoped() bool {
	return r == RoleStaff || r == RoleAdmin
}

// User status constants
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User represents an authenticated principal.
type User struct {
	Base
	Email       string     `json:"email" db:"email"`
	Name        string     `json:"name" db:"name"`
	Role        Role       `json:"role" db:"role"`
	Status      string     `json:"status" db:"status"`
	Phone       *string    `json:"phone" db:"phone"`
	LastLoginAt *time.Time `json:"last_login_at" db:"last_login_at"`
}
