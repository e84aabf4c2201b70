// Package memory provides in-memory repository implementations used by
// service and worker tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medcore/clinic-api/internal/model"
	apperrors "github.com/medcore/clinic-api/pkg/errors"
)

type Store struct {
	mu sync.Mutex

	Users         map[uuid.UUID]*model.User
	Patients      map[uuid.UUID]*model.Patient
	Clinicians    map[uuid.UUID]*model.Clinician
	Appointments  map[uuid.UUID]*model.Appointment
	Records       map[uuid.UUID]*model.MedicalRecord
	LabTests      map[uuid.UUID]*model.LabTest
	Prescriptions map[uuid.UUID]*model.Prescription
	Payments      map[uuid.UUID]*model.Payment
	Notifications map[uuid.UUID]*model.Notification
	Tasks         map[uuid.UUID]*model.Task
	Schedules     map[uuid.UUID]*model.Schedule

	// FailNext makes the next appointment store call return err, for
	// failure-isolation tests.
	FailNext error
}

func NewStore() *Store {
	return &Store{
		Users:         make(map[uuid.UUID]*model.User),
		Patients:      make(map[uuid.UUID]*model.Patient),
		Clinicians:    make(map[uuid.UUID]*model.Clinician),
		Appointments:  make(map[uuid.UUID]*model.Appointment),
		Records:       make(map[uuid.UUID]*model.MedicalRecord),
		LabTests:      make(map[uuid.UUID]*model.LabTest),
		Prescriptions: make(map[uuid.UUID]*model.Prescription),
		Payments:      make(map[uuid.UUID]*model.Payment),
		Notifications: make(map[uuid.UUID]*model.Notification),
		Tasks:         make(map[uuid.UUID]*model.Task),
		Schedules:     make(map[uuid.UUID]*model.Schedule),
	}
}

func (s *Store) failure() error {
	if s.FailNext != nil {
		err := s.FailNext
		s.FailNext = nil
		return err
	}
	return nil
}

// AddUser inserts a user with a fresh id and returns it.
func (s *Store) AddUser(role model.Role, email string) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &model.User{
		Base:   model.Base{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		Email:  email,
		Name:   email,
		Role:   role,
		Status: model.UserStatusActive,
	}
	s.Users[u.ID] = u
	return u
}

// AddPatient inserts a patient bound to a user.
func (s *Store) AddPatient(userID uuid.UUID, name string) *model.Patient {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &model.Patient{
		Base:   model.Base{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		UserID: userID,
		Name:   name,
		Status: string(model.PatientStatusActive),
	}
	s.Patients[p.ID] = p
	return p
}

// AddClinician inserts a clinician bound to a user.
func (s *Store) AddClinician(userID uuid.UUID, name string) *model.Clinician {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &model.Clinician{
		Base:   model.Base{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		UserID: userID,
		Name:   name,
		Status: "active",
	}
	s.Clinicians[c.ID] = c
	return c
}

// --- UserRepository ---

type UserRepo struct{ S *Store }

func (r *UserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	u, ok := r.S.Users[id]
	if !ok {
		return nil, apperrors.NotFound("user", nil)
	}
	return u, nil
}

func (r *UserRepo) ListByRole(_ context.Context, role model.Role) ([]*model.User, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	var out []*model.User
	for _, u := range r.S.Users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

// --- PatientRepository ---

type PatientRepo struct{ S *Store }

func (r *PatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	p, ok := r.S.Patients[id]
	if !ok {
		return nil, apperrors.NotFound("patient", nil)
	}
	return p, nil
}

func (r *PatientRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*model.Patient, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	for _, p := range r.S.Patients {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, apperrors.NotFound("patient", nil)
}

func (r *PatientRepo) List(_ context.Context, filter model.Filter) ([]*model.Patient, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	var out []*model.Patient
	for _, p := range r.S.Patients {
		if v, ok := filter["status"]; ok && p.Status != v.(string) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *PatientRepo) ListByClinician(_ context.Context, clinicianID uuid.UUID) ([]*model.Patient, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	seen := make(map[uuid.UUID]bool)
	var out []*model.Patient
	for _, a := range r.S.Appointments {
		if a.ClinicianID != clinicianID || seen[a.PatientID] {
			continue
		}
		if p, ok := r.S.Patients[a.PatientID]; ok {
			seen[a.PatientID] = true
			out = append(out, p)
		}
	}
	return out, nil
}

// --- ClinicianRepository ---

type ClinicianRepo struct{ S *Store }

func (r *ClinicianRepo) Get(_ context.Context, id uuid.UUID) (*model.Clinician, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	c, ok := r.S.Clinicians[id]
	if !ok {
		return nil, apperrors.NotFound("clinician", nil)
	}
	return c, nil
}

func (r *ClinicianRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*model.Clinician, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	for _, c := range r.S.Clinicians {
		if c.UserID == userID {
			return c, nil
		}
	}
	return nil, apperrors.NotFound("clinician", nil)
}

func (r *ClinicianRepo) ListSchedules(_ context.Context, filter model.Filter) ([]*model.Schedule, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	var out []*model.Schedule
	for _, s := range r.S.Schedules {
		if v, ok := filter["clinician_id"]; ok && s.ClinicianID != v.(uuid.UUID) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// --- AppointmentRepository ---

type AppointmentRepo struct{ S *Store }

func matchAppointment(a *model.Appointment, filter model.Filter) bool {
	for k, v := range filter {
		switch k {
		case "patient_id":
			if a.PatientID != v.(uuid.UUID) {
				return false
			}
		case "clinician_id":
			if a.ClinicianID != v.(uuid.UUID) {
				return false
			}
		case "status":
			if a.Status != v.(model.AppointmentStatus) {
				return false
			}
		case "date":
			if a.Date != v.(string) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func copyAppointment(a *model.Appointment) *model.Appointment {
	dup := *a
	return &dup
}

func (r *AppointmentRepo) Create(_ context.Context, appointment *model.Appointment) error {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	if err := r.S.failure(); err != nil {
		return err
	}
	appointment.ID = uuid.New()
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = appointment.CreatedAt
	r.S.Appointments[appointment.ID] = copyAppointment(appointment)
	return nil
}

func (r *AppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	if err := r.S.failure(); err != nil {
		return nil, err
	}
	a, ok := r.S.Appointments[id]
	if !ok {
		return nil, apperrors.NotFound("appointment", nil)
	}
	return copyAppointment(a), nil
}

func (r *AppointmentRepo) List(_ context.Context, filter model.Filter) ([]*model.Appointment, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	if err := r.S.failure(); err != nil {
		return nil, err
	}
	var out []*model.Appointment
	for _, a := range r.S.Appointments {
		if matchAppointment(a, filter) {
			out = append(out, copyAppointment(a))
		}
	}
	return out, nil
}

func (r *AppointmentRepo) Transition(_ context.Context, appointment *model.Appointment, expected model.AppointmentStatus) error {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	if err := r.S.failure(); err != nil {
		return err
	}
	stored, ok := r.S.Appointments[appointment.ID]
	if !ok {
		return apperrors.NotFound("appointment", nil)
	}
	if stored.Status != expected {
		return apperrors.StaleState("appointment")
	}
	appointment.UpdatedAt = time.Now()
	r.S.Appointments[appointment.ID] = copyAppointment(appointment)
	return nil
}

func (r *AppointmentRepo) ListPendingBefore(_ context.Context, cutoff time.Time) ([]*model.Appointment, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	if err := r.S.failure(); err != nil {
		return nil, err
	}
	var out []*model.Appointment
	for _, a := range r.S.Appointments {
		if a.Status == model.AppointmentStatusPending && a.CreatedAt.Before(cutoff) {
			out = append(out, copyAppointment(a))
		}
	}
	return out, nil
}

func (r *AppointmentRepo) CountConfirmedSlot(_ context.Context, clinicianID uuid.UUID, date, timeOfDay string, excludeID *uuid.UUID) (int, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	if err := r.S.failure(); err != nil {
		return 0, err
	}
	count := 0
	for _, a := range r.S.Appointments {
		if excludeID != nil && a.ID == *excludeID {
			continue
		}
		if a.ClinicianID == clinicianID && a.Date == date && a.Time == timeOfDay &&
			a.Status == model.AppointmentStatusConfirmed {
			count++
		}
	}
	return count, nil
}

// --- clinical artifact repositories ---

type MedicalRecordRepo struct{ S *Store }

func (r *MedicalRecordRepo) Create(_ context.Context, record *model.MedicalRecord) error {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	record.ID = uuid.New()
	record.CreatedAt = time.Now()
	r.S.Records[record.ID] = record
	return nil
}

func (r *MedicalRecordRepo) List(_ context.Context, filter model.Filter) ([]*model.MedicalRecord, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	var out []*model.MedicalRecord
	for _, rec := range r.S.Records {
		if v, ok := filter["patient_id"]; ok && rec.PatientID != v.(uuid.UUID) {
			continue
		}
		if v, ok := filter["clinician_id"]; ok && rec.ClinicianID != v.(uuid.UUID) {
			continue
		}
		if v, ok := filter["appointment_id"]; ok && rec.AppointmentID != v.(uuid.UUID) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

type LabTestRepo struct{ S *Store }

func (r *LabTestRepo) Create(_ context.Context, test *model.LabTest) error {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	test.ID = uuid.New()
	test.CreatedAt = time.Now()
	r.S.LabTests[test.ID] = test
	return nil
}

func (r *LabTestRepo) List(_ context.Context, filter model.Filter) ([]*model.LabTest, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	var out []*model.LabTest
	for _, t := range r.S.LabTests {
		if v, ok := filter["patient_id"]; ok && t.PatientID != v.(uuid.UUID) {
			continue
		}
		if v, ok := filter["clinician_id"]; ok && t.ClinicianID != v.(uuid.UUID) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

type PrescriptionRepo struct{ S *Store }

func (r *PrescriptionRepo) Create(_ context.Context, prescription *model.Prescription) error {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	prescription.ID = uuid.New()
	prescription.CreatedAt = time.Now()
	r.S.Prescriptions[prescription.ID] = prescription
	return nil
}

func (r *PrescriptionRepo) List(_ context.Context, filter model.Filter) ([]*model.Prescription, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	var out []*model.Prescription
	for _, p := range r.S.Prescriptions {
		if v, ok := filter["patient_id"]; ok && p.PatientID != v.(uuid.UUID) {
			continue
		}
		if v, ok := filter["clinician_id"]; ok && p.ClinicianID != v.(uuid.UUID) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

type PaymentRepo struct{ S *Store }

func (r *PaymentRepo) List(_ context.Context, filter model.Filter) ([]*model.Payment, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	var out []*model.Payment
	for _, p := range r.S.Payments {
		if v, ok := filter["patient_id"]; ok && p.PatientID != v.(uuid.UUID) {
			continue
		}
		if v, ok := filter["clinician_id"]; ok && p.ClinicianID != v.(uuid.UUID) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// --- NotificationRepository ---

type NotificationRepo struct{ S *Store }

func (r *NotificationRepo) Create(_ context.Context, notification *model.Notification) error {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	notification.ID = uuid.New()
	notification.CreatedAt = time.Now()
	r.S.Notifications[notification.ID] = notification
	return nil
}

func (r *NotificationRepo) Get(_ context.Context, id uuid.UUID) (*model.Notification, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	n, ok := r.S.Notifications[id]
	if !ok {
		return nil, apperrors.NotFound("notification", nil)
	}
	return n, nil
}

func (r *NotificationRepo) List(_ context.Context, filter model.Filter) ([]*model.Notification, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	var out []*model.Notification
	for _, n := range r.S.Notifications {
		if v, ok := filter["user_id"]; ok && n.UserID != v.(uuid.UUID) {
			continue
		}
		if v, ok := filter["is_read"]; ok && n.IsRead != v.(bool) {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *NotificationRepo) MarkRead(_ context.Context, id uuid.UUID) error {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	n, ok := r.S.Notifications[id]
	if !ok {
		return apperrors.NotFound("notification", nil)
	}
	now := time.Now()
	n.IsRead = true
	n.ReadAt = &now
	return nil
}

func (r *NotificationRepo) CountUnread(_ context.Context, userID uuid.UUID) (int, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	count := 0
	for _, n := range r.S.Notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

// --- TaskRepository ---

type TaskRepo struct{ S *Store }

func (r *TaskRepo) Create(_ context.Context, task *model.Task) error {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	task.ID = uuid.New()
	task.CreatedAt = time.Now()
	r.S.Tasks[task.ID] = task
	return nil
}

func (r *TaskRepo) List(_ context.Context, filter model.Filter) ([]*model.Task, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	var out []*model.Task
	for _, t := range r.S.Tasks {
		if v, ok := filter["status"]; ok && t.Status != v.(model.TaskStatus) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}
