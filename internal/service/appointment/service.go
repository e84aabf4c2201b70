package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medcore/clinic-api/internal/model"
	"github.com/medcore/clinic-api/internal/repository"
	"github.com/medcore/clinic-api/internal/service/access"
	"github.com/medcore/clinic-api/internal/service/notification"
	"github.com/medcore/clinic-api/pkg/errors"
	"github.com/medcore/clinic-api/pkg/logger"
)

// lifecycleEvent names a transition attempt for the rules table.
type lifecycleEvent string

const (
	eventConfirm           lifecycleEvent = "confirm"
	eventCancel            lifecycleEvent = "cancel"
	eventRequestReschedule lifecycleEvent = "request reschedule"
	eventDecideReschedule  lifecycleEvent = "decide reschedule for"
	eventComplete          lifecycleEvent = "complete"
	eventAutoConfirm       lifecycleEvent = "auto-confirm"
)

type transitionRule struct {
	from  []model.AppointmentStatus
	roles []model.Role
}

// transitions is the single source of truth for which actor may move an
// appointment between which statuses. The scheduler acts with no access
// context; its rule carries no roles.
var transitions = map[lifecycleEvent]transitionRule{
	eventConfirm: {
		from:  []model.AppointmentStatus{model.AppointmentStatusPending},
		roles: []model.Role{model.RoleClinician, model.RoleStaff, model.RoleAdmin},
	},
	eventCancel: {
		from:  []model.AppointmentStatus{model.AppointmentStatusPending, model.AppointmentStatusConfirmed},
		roles: []model.Role{model.RolePatient, model.RoleStaff, model.RoleAdmin},
	},
	eventRequestReschedule: {
		from:  []model.AppointmentStatus{model.AppointmentStatusConfirmed},
		roles: []model.Role{model.RolePatient},
	},
	eventDecideReschedule: {
		from:  []model.AppointmentStatus{model.AppointmentStatusPendingReschedule},
		roles: []model.Role{model.RoleClinician},
	},
	eventComplete: {
		from:  []model.AppointmentStatus{model.AppointmentStatusConfirmed},
		roles: []model.Role{model.RoleClinician},
	},
	eventAutoConfirm: {
		from: []model.AppointmentStatus{model.AppointmentStatusPending},
	},
}

type Service struct {
	repo       repository.AppointmentRepository
	patients   repository.PatientRepository
	clinicians repository.ClinicianRepository
	users      repository.UserRepository
	tasks      repository.TaskRepository
	dispatcher notification.Dispatcher
	logger     *logger.Logger
}

func NewService(repo repository.AppointmentRepository, patients repository.PatientRepository,
	clinicians repository.ClinicianRepository, users repository.UserRepository,
	tasks repository.TaskRepository, dispatcher notification.Dispatcher, log *logger.Logger) *Service {
	return &Service{
		repo:       repo,
		patients:   patients,
		clinicians: clinicians,
		users:      users,
		tasks:      tasks,
		dispatcher: dispatcher,
		logger:     log,
	}
}

// checkTransition enforces the rules table. Terminal statuses report
// InvalidTransition for every event; a permitted status with the wrong
// actor reports AccessDenied.
func checkTransition(appointment *model.Appointment, ev lifecycleEvent, accessCtx *model.AccessContext) error {
	rule, ok := transitions[ev]
	if !ok {
		return errors.InvalidTransition(string(appointment.Status), string(ev))
	}

	allowed := false
	for _, from := range rule.from {
		if appointment.Status == from {
			allowed = true
			break
		}
	}
	if !allowed {
		return errors.InvalidTransition(string(appointment.Status), string(ev))
	}

	if accessCtx == nil {
		if len(rule.roles) == 0 {
			return nil
		}
		return errors.AccessDenied("no access context")
	}

	roleOK := false
	for _, role := range rule.roles {
		if accessCtx.Role == role {
			roleOK = true
			break
		}
	}
	if !roleOK || !access.CanActOn(accessCtx, appointment) {
		return errors.AccessDenied("not allowed to act on this appointment")
	}
	return nil
}

// Book creates a pending appointment. Patients book for themselves; staff
// and admin book on a patient's behalf. The slot is pre-flight checked
// against confirmed appointments so obviously taken slots are refused up
// front, though the authoritative check still happens at confirmation time.
func (s *Service) Book(ctx context.Context, accessCtx *model.AccessContext, req *model.BookAppointmentRequest) (*model.Appointment, error) {
	patientID := req.PatientID
	switch accessCtx.Role {
	case model.RolePatient:
		patientID = accessCtx.PatientID
	case model.RoleStaff, model.RoleAdmin:
		if patientID == uuid.Nil {
			return nil, errors.Validation("patient_id is required")
		}
	default:
		return nil, errors.AccessDenied("only patients and staff can book appointments")
	}

	if err := model.ValidateSlot(req.Date, req.Time); err != nil {
		return nil, errors.Validation("malformed date or time")
	}
	if _, err := s.clinicians.Get(ctx, req.ClinicianID); err != nil {
		return nil, err
	}

	taken, err := s.HasConflict(ctx, req.ClinicianID, req.Date, req.Time, nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, errors.Conflict("this slot was just taken")
	}

	appointment := &model.Appointment{
		PatientID:   patientID,
		ClinicianID: req.ClinicianID,
		ServiceType: req.ServiceType,
		Date:        req.Date,
		Time:        req.Time,
		Status:      model.AppointmentStatusPending,
	}
	if req.Reason != "" {
		appointment.Reason = &req.Reason
	}

	if err := s.repo.Create(ctx, appointment); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	s.notifyClinician(ctx, appointment, notification.Notice{
		Type:          model.NotificationTypeConfirmation,
		Priority:      model.NotificationPriorityNormal,
		Title:         "New appointment request",
		Message:       fmt.Sprintf("A new appointment was requested for %s at %s.", appointment.Date, appointment.Time),
		AppointmentID: &appointment.ID,
	})
	return appointment, nil
}

// Get returns one appointment the caller is allowed to see. Out-of-scope
// rows surface as NotFound so their existence is not leaked.
func (s *Service) Get(ctx context.Context, accessCtx *model.AccessContext, id uuid.UUID) (*model.Appointment, error) {
	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanActOn(accessCtx, appointment) {
		return nil, errors.NotFound("appointment", nil)
	}
	return appointment, nil
}

// List returns appointments visible under the caller's policy scope merged
// with the caller-supplied filters.
func (s *Service) List(ctx context.Context, accessCtx *model.AccessContext, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	scope, err := access.Scope(model.EntityAppointment, accessCtx)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, filters.Filter().Merge(scope))
}

// Confirm moves a pending appointment to confirmed on clinician or staff
// action, after re-checking the slot.
func (s *Service) Confirm(ctx context.Context, accessCtx *model.AccessContext, id uuid.UUID) (*model.Appointment, error) {
	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(appointment, eventConfirm, accessCtx); err != nil {
		return nil, err
	}

	taken, err := s.HasConflict(ctx, appointment.ClinicianID, appointment.Date, appointment.Time, &appointment.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, errors.Conflict("another confirmed appointment occupies this slot")
	}

	appointment.Status = model.AppointmentStatusConfirmed
	if err := s.repo.Transition(ctx, appointment, model.AppointmentStatusPending); err != nil {
		return nil, err
	}

	s.notifyPatient(ctx, appointment, notification.Notice{
		Type:          model.NotificationTypeConfirmation,
		Priority:      model.NotificationPriorityNormal,
		Title:         "Appointment confirmed",
		Message:       fmt.Sprintf("Your appointment on %s at %s has been confirmed.", appointment.Date, appointment.Time),
		AppointmentID: &appointment.ID,
	})
	return appointment, nil
}

// Cancel moves a pending or confirmed appointment to the cancelled terminal
// status. A non-empty reason is required.
func (s *Service) Cancel(ctx context.Context, accessCtx *model.AccessContext, id uuid.UUID, reason string) (*model.Appointment, error) {
	if reason == "" {
		return nil, errors.Validation("cancellation requires a reason")
	}

	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(appointment, eventCancel, accessCtx); err != nil {
		return nil, err
	}

	prior := appointment.Status
	appointment.Status = model.AppointmentStatusCancelled
	appointment.CancelReason = &reason
	if err := s.repo.Transition(ctx, appointment, prior); err != nil {
		return nil, err
	}

	notice := notification.Notice{
		Type:          model.NotificationTypeCancellation,
		Priority:      model.NotificationPriorityNormal,
		Title:         "Appointment cancelled",
		Message:       fmt.Sprintf("The appointment on %s at %s was cancelled: %s", appointment.Date, appointment.Time, reason),
		AppointmentID: &appointment.ID,
	}
	// Notify the parties other than the actor.
	if accessCtx.Role != model.RolePatient {
		s.notifyPatient(ctx, appointment, notice)
	}
	s.notifyClinician(ctx, appointment, notice)
	return appointment, nil
}

// RequestReschedule opens a reschedule negotiation on a confirmed
// appointment. The pre-request date and time are snapshotted so a clinician
// reject can restore them exactly.
func (s *Service) RequestReschedule(ctx context.Context, accessCtx *model.AccessContext, id uuid.UUID, req *model.RescheduleRequest) (*model.Appointment, error) {
	if err := model.ValidateSlot(req.Date, req.Time); err != nil {
		return nil, errors.Validation("malformed date or time")
	}

	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(appointment, eventRequestReschedule, accessCtx); err != nil {
		return nil, err
	}

	originalDate, originalTime := appointment.Date, appointment.Time
	appointment.OriginalDate = &originalDate
	appointment.OriginalTime = &originalTime
	appointment.Date = req.Date
	appointment.Time = req.Time
	appointment.RescheduleRequestedBy = &accessCtx.UserID
	if req.Reason != "" {
		appointment.RescheduleReason = &req.Reason
	}
	appointment.Status = model.AppointmentStatusPendingReschedule

	if err := s.repo.Transition(ctx, appointment, model.AppointmentStatusConfirmed); err != nil {
		return nil, err
	}

	s.notifyClinician(ctx, appointment, notification.Notice{
		Type:          model.NotificationTypeReschedule,
		Priority:      model.NotificationPriorityNormal,
		Title:         "Reschedule requested",
		Message:       fmt.Sprintf("A patient asked to move the appointment from %s %s to %s %s.", originalDate, originalTime, req.Date, req.Time),
		AppointmentID: &appointment.ID,
	})
	return appointment, nil
}

// ConfirmReschedule closes a reschedule negotiation. Approval keeps the
// requested date/time; rejection restores the snapshot taken at request
// time. Either way the appointment returns to confirmed and the tracking
// fields are cleared. A missing snapshot on reject does not fail the
// transition; the appointment is flagged for manual reconciliation instead.
func (s *Service) ConfirmReschedule(ctx context.Context, accessCtx *model.AccessContext, id uuid.UUID, req *model.ConfirmRescheduleRequest) (*model.Appointment, error) {
	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(appointment, eventDecideReschedule, accessCtx); err != nil {
		return nil, err
	}

	if !req.Approved {
		if appointment.OriginalDate != nil && appointment.OriginalTime != nil {
			appointment.Date = *appointment.OriginalDate
			appointment.Time = *appointment.OriginalTime
		} else {
			s.logger.Warn("reschedule reject without snapshot, flagging for review",
				"appointment_id", appointment.ID.String())
			appointment.NeedsReview = true
		}
	}

	appointment.OriginalDate = nil
	appointment.OriginalTime = nil
	appointment.RescheduleRequestedBy = nil
	appointment.RescheduleReason = nil
	if req.Notes != nil {
		appointment.Notes = req.Notes
	}
	appointment.Status = model.AppointmentStatusConfirmed

	if err := s.repo.Transition(ctx, appointment, model.AppointmentStatusPendingReschedule); err != nil {
		return nil, err
	}

	title := "Reschedule approved"
	message := fmt.Sprintf("Your appointment was moved to %s at %s.", appointment.Date, appointment.Time)
	if !req.Approved {
		title = "Reschedule declined"
		message = fmt.Sprintf("Your appointment stays on %s at %s.", appointment.Date, appointment.Time)
	}
	s.notifyPatient(ctx, appointment, notification.Notice{
		Type:          model.NotificationTypeReschedule,
		Priority:      model.NotificationPriorityNormal,
		Title:         title,
		Message:       message,
		AppointmentID: &appointment.ID,
	})
	return appointment, nil
}

// Complete moves a confirmed appointment to the completed terminal status,
// which unlocks medical record and prescription creation for it.
func (s *Service) Complete(ctx context.Context, accessCtx *model.AccessContext, id uuid.UUID) (*model.Appointment, error) {
	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(appointment, eventComplete, accessCtx); err != nil {
		return nil, err
	}

	appointment.Status = model.AppointmentStatusCompleted
	if err := s.repo.Transition(ctx, appointment, model.AppointmentStatusConfirmed); err != nil {
		return nil, err
	}

	s.notifyPatient(ctx, appointment, notification.Notice{
		Type:          model.NotificationTypeCompletion,
		Priority:      model.NotificationPriorityNormal,
		Title:         "Visit completed",
		Message:       fmt.Sprintf("Your appointment on %s at %s is complete.", appointment.Date, appointment.Time),
		AppointmentID: &appointment.ID,
	})
	return appointment, nil
}

// Schedules lists recurring working blocks for slot planning. Clinicians
// see their own; staff and admin see all, optionally narrowed by filter.
func (s *Service) Schedules(ctx context.Context, accessCtx *model.AccessContext, filter model.Filter) ([]*model.Schedule, error) {
	scope, err := access.Scope(model.EntitySchedule, accessCtx)
	if err != nil {
		return nil, err
	}
	return s.clinicians.ListSchedules(ctx, filter.Merge(scope))
}

// Tasks lists the front-desk worklist, fed by scheduler escalations.
func (s *Service) Tasks(ctx context.Context, accessCtx *model.AccessContext, filter model.Filter) ([]*model.Task, error) {
	scope, err := access.Scope(model.EntityTask, accessCtx)
	if err != nil {
		return nil, err
	}
	return s.tasks.List(ctx, filter.Merge(scope))
}

// ListPendingBefore returns pending appointments created before cutoff,
// the scheduler's maturation scan.
func (s *Service) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]*model.Appointment, error) {
	return s.repo.ListPendingBefore(ctx, cutoff)
}

// HasConflict reports whether another confirmed appointment occupies the
// exact clinician/date/time slot. Slots are fixed-duration, so exact
// equality is the matching rule; no interval overlap reasoning applies.
func (s *Service) HasConflict(ctx context.Context, clinicianID uuid.UUID, date, timeOfDay string, excludeID *uuid.UUID) (bool, error) {
	count, err := s.repo.CountConfirmedSlot(ctx, clinicianID, date, timeOfDay, excludeID)
	if err != nil {
		return false, fmt.Errorf("failed to check slot: %w", err)
	}
	return count > 0, nil
}

// AutoConfirm is the scheduler's transition for one matured pending
// appointment. On a free slot it confirms and notifies patient, clinician
// and staff; on an occupied slot it leaves the status untouched and raises
// a staff-only escalation so patients are not alarmed about a state that
// did not change. The returned error is Conflict for the escalation branch
// and StaleState when another writer got there first.
func (s *Service) AutoConfirm(ctx context.Context, appointment *model.Appointment) error {
	if err := checkTransition(appointment, eventAutoConfirm, nil); err != nil {
		return err
	}

	taken, err := s.HasConflict(ctx, appointment.ClinicianID, appointment.Date, appointment.Time, &appointment.ID)
	if err != nil {
		return err
	}
	if taken {
		s.escalate(ctx, appointment)
		return errors.Conflict("slot occupied, escalated to staff")
	}

	appointment.Status = model.AppointmentStatusConfirmed
	if err := s.repo.Transition(ctx, appointment, model.AppointmentStatusPending); err != nil {
		return err
	}

	notice := notification.Notice{
		Type:          model.NotificationTypeConfirmation,
		Priority:      model.NotificationPriorityNormal,
		Title:         "Appointment auto-confirmed",
		Message:       fmt.Sprintf("The appointment on %s at %s was automatically confirmed.", appointment.Date, appointment.Time),
		AppointmentID: &appointment.ID,
	}
	s.notifyPatient(ctx, appointment, notice)
	s.notifyClinician(ctx, appointment, notice)
	s.notifyStaff(ctx, notice)
	return nil
}

// escalate raises a staff-only notice and a worklist task for an
// auto-confirmation blocked by a conflicting booking.
func (s *Service) escalate(ctx context.Context, appointment *model.Appointment) {
	task := &model.Task{
		Title:         "Resolve appointment slot conflict",
		Detail:        fmt.Sprintf("Pending appointment %s could not be auto-confirmed: the %s %s slot is already taken.", appointment.ID, appointment.Date, appointment.Time),
		Status:        model.TaskStatusOpen,
		AppointmentID: &appointment.ID,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		s.logger.Error(err, "failed to create escalation task",
			"appointment_id", appointment.ID.String())
	}

	s.notifyStaff(ctx, notification.Notice{
		Type:          model.NotificationTypeEscalation,
		Priority:      model.NotificationPriorityUrgent,
		Title:         "Appointment needs manual scheduling",
		Message:       fmt.Sprintf("A pending appointment for %s at %s conflicts with a confirmed booking.", appointment.Date, appointment.Time),
		AppointmentID: &appointment.ID,
	})
}

func (s *Service) notifyPatient(ctx context.Context, appointment *model.Appointment, notice notification.Notice) {
	patient, err := s.patients.Get(ctx, appointment.PatientID)
	if err != nil {
		s.logger.Error(err, "failed to resolve patient for notice",
			"appointment_id", appointment.ID.String())
		return
	}
	notice.UserID = patient.UserID
	s.dispatcher.Notify(ctx, notice)
}

func (s *Service) notifyClinician(ctx context.Context, appointment *model.Appointment, notice notification.Notice) {
	clinician, err := s.clinicians.Get(ctx, appointment.ClinicianID)
	if err != nil {
		s.logger.Error(err, "failed to resolve clinician for notice",
			"appointment_id", appointment.ID.String())
		return
	}
	notice.UserID = clinician.UserID
	s.dispatcher.Notify(ctx, notice)
}

func (s *Service) notifyStaff(ctx context.Context, notice notification.Notice) {
	staff, err := s.users.ListByRole(ctx, model.RoleStaff)
	if err != nil {
		s.logger.Error(err, "failed to list staff for notice")
		return
	}
	ids := make([]uuid.UUID, 0, len(staff))
	for _, u := range staff {
		ids = append(ids, u.ID)
	}
	s.dispatcher.NotifyEach(ctx, ids, notice)
}
