package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medcore/clinic-api/internal/model"
)

// All repository interfaces in one file
type (
	UserRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		ListByRole(ctx context.Context, role model.Role) ([]*model.User, error)
	}

	PatientRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Patient, error)
		List(ctx context.Context, filter model.Filter) ([]*model.Patient, error)
		// ListByClinician returns the distinct patients appearing in the
		// clinician's own appointments.
		ListByClinician(ctx context.Context, clinicianID uuid.UUID) ([]*model.Patient, error)
	}

	ClinicianRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Clinician, error)
		GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Clinician, error)
		ListSchedules(ctx context.Context, filter model.Filter) ([]*model.Schedule, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		List(ctx context.Context, filter model.Filter) ([]*model.Appointment, error)
		// Transition persists appointment iff the stored row still carries
		// the expected status. Returns a StaleState error when the row
		// changed underneath the caller.
		Transition(ctx context.Context, appointment *model.Appointment, expected model.AppointmentStatus) error
		// ListPendingBefore returns pending appointments created before the
		// cutoff, the scheduler's maturation scan.
		ListPendingBefore(ctx context.Context, cutoff time.Time) ([]*model.Appointment, error)
		// CountConfirmedSlot counts confirmed appointments occupying the
		// exact clinician/date/time slot, excluding excludeID when non-nil.
		CountConfirmedSlot(ctx context.Context, clinicianID uuid.UUID, date, timeOfDay string, excludeID *uuid.UUID) (int, error)
	}

	MedicalRecordRepository interface {
		Create(ctx context.Context, record *model.MedicalRecord) error
		List(ctx context.Context, filter model.Filter) ([]*model.MedicalRecord, error)
	}

	LabTestRepository interface {
		Create(ctx context.Context, test *model.LabTest) error
		List(ctx context.Context, filter model.Filter) ([]*model.LabTest, error)
	}

	PrescriptionRepository interface {
		Create(ctx context.Context, prescription *model.Prescription) error
		List(ctx context.Context, filter model.Filter) ([]*model.Prescription, error)
	}

	PaymentRepository interface {
		List(ctx context.Context, filter model.Filter) ([]*model.Payment, error)
	}

	NotificationRepository interface {
		Create(ctx context.Context, notification *model.Notification) error
		Get(ctx context.Context, id uuid.UUID) (*model.Notification, error)
		List(ctx context.Context, filter model.Filter) ([]*model.Notification, error)
		MarkRead(ctx context.Context, id uuid.UUID) error
		CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
	}

	TaskRepository interface {
		Create(ctx context.Context, task *model.Task) error
		List(ctx context.Context, filter model.Filter) ([]*model.Task, error)
	}
)
