package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypeConfirmation NotificationType = "appointment_confirmation"
	NotificationTypeCancellation NotificationType = "appointment_cancellation"
	NotificationTypeReschedule   NotificationType = "appointment_reschedule"
	NotificationTypeCompletion   NotificationType = "appointment_completion"
	NotificationTypeEscalation   NotificationType = "scheduling_escalation"
	NotificationTypeLabResult    NotificationType = "lab_result"
)

type NotificationPriority string

const (
	NotificationPriorityLow    NotificationPriority = "low"
	NotificationPriorityNormal NotificationPriority = "normal"
	NotificationPriorityUrgent NotificationPriority = "urgent"
)

// Notification is an in-app notice addressed to exactly one principal. Only
// the owning principal may mark it read; no other mutation is allowed.
type Notification struct {
	Base
	UserID        uuid.UUID            `db:"user_id" json:"user_id"`
	Type          NotificationType     `db:"type" json:"type"`
	Priority      NotificationPriority `db:"priority" json:"priority"`
	Title         string               `db:"title" json:"title"`
	Message       string               `db:"message" json:"message"`
	IsRead        bool                 `db:"is_read" json:"is_read"`
	AppointmentID *uuid.UUID           `db:"appointment_id" json:"appointment_id,omitempty"`
	LabTestID     *uuid.UUID           `db:"lab_test_id" json:"lab_test_id,omitempty"`
	ReadAt        *time.Time           `db:"read_at" json:"read_at,omitempty"`
}

// NotificationEvent is published to the message broker when an in-app
// notification is created, so connected clients can refresh.
type NotificationEvent struct {
	ID             uuid.UUID        `json:"id"`
	NotificationID uuid.UUID        `json:"notification_id"`
	UserID         uuid.UUID        `json:"user_id"`
	Type           NotificationType `json:"type"`
	Title          string           `json:"title"`
	CreatedAt      time.Time        `json:"created_at"`
}

// TaskStatus tracks front-desk worklist items.
type TaskStatus string

const (
	TaskStatusOpen TaskStatus = "open"
	TaskStatusDone TaskStatus = "done"
)

// Task is a staff worklist item. Scheduler escalations insert one so the
// front desk sees blocked appointments even if the notification is missed.
type Task struct {
	Base
	Title         string     `db:"title" json:"title"`
	Detail        string     `db:"detail" json:"detail"`
	Status        TaskStatus `db:"status" json:"status"`
	AppointmentID *uuid.UUID `db:"appointment_id" json:"appointment_id,omitempty"`
}
