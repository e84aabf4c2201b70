package appointment

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medcore/clinic-api/internal/model"
	"github.com/medcore/clinic-api/internal/repository/memory"
	"github.com/medcore/clinic-api/internal/service/notification"
	"github.com/medcore/clinic-api/pkg/errors"
	"github.com/medcore/clinic-api/pkg/logger"
)

// recorder captures dispatched notices so tests can assert on recipients
// without a store or broker.
type recorder struct {
	mu      sync.Mutex
	notices []notification.Notice
}

func (r *recorder) Notify(_ context.Context, notice notification.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, notice)
}

func (r *recorder) NotifyEach(ctx context.Context, userIDs []uuid.UUID, notice notification.Notice) {
	for _, id := range userIDs {
		notice.UserID = id
		r.Notify(ctx, notice)
	}
}

func (r *recorder) sentTo(userID uuid.UUID) []notification.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []notification.Notice
	for _, n := range r.notices {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = nil
}

type fixture struct {
	store    *memory.Store
	svc      *Service
	notices  *recorder
	patient  *model.AccessContext
	clinRole *model.AccessContext
	staff    *model.AccessContext

	patientRec   *model.Patient
	clinicianRec *model.Clinician
	staffUser    *model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()

	patientUser := store.AddUser(model.RolePatient, "pat@clinic.test")
	patientRec := store.AddPatient(patientUser.ID, "Pat")
	clinicianUser := store.AddUser(model.RoleClinician, "doc@clinic.test")
	clinicianRec := store.AddClinician(clinicianUser.ID, "Dr. Doc")
	staffUser := store.AddUser(model.RoleStaff, "desk@clinic.test")

	notices := &recorder{}
	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, TimeFormat: time.RFC3339, Output: io.Discard})
	svc := NewService(
		&memory.AppointmentRepo{S: store},
		&memory.PatientRepo{S: store},
		&memory.ClinicianRepo{S: store},
		&memory.UserRepo{S: store},
		&memory.TaskRepo{S: store},
		notices,
		log,
	)

	return &fixture{
		store:   store,
		svc:     svc,
		notices: notices,
		patient: &model.AccessContext{
			UserID:    patientUser.ID,
			Role:      model.RolePatient,
			PatientID: patientRec.ID,
		},
		clinRole: &model.AccessContext{
			UserID:      clinicianUser.ID,
			Role:        model.RoleClinician,
			ClinicianID: clinicianRec.ID,
		},
		staff: &model.AccessContext{
			UserID: staffUser.ID,
			Role:   model.RoleStaff,
		},
		patientRec:   patientRec,
		clinicianRec: clinicianRec,
		staffUser:    staffUser,
	}
}

// seed inserts an appointment between the fixture's patient and clinician
// directly, bypassing booking.
func (f *fixture) seed(t *testing.T, status model.AppointmentStatus, date, timeOfDay string) *model.Appointment {
	t.Helper()
	apt := &model.Appointment{
		PatientID:   f.patientRec.ID,
		ClinicianID: f.clinicianRec.ID,
		ServiceType: "consultation",
		Date:        date,
		Time:        timeOfDay,
		Status:      status,
	}
	repo := &memory.AppointmentRepo{S: f.store}
	require.NoError(t, repo.Create(context.Background(), apt))
	return apt
}

func (f *fixture) stored(t *testing.T, id uuid.UUID) *model.Appointment {
	t.Helper()
	apt, err := (&memory.AppointmentRepo{S: f.store}).Get(context.Background(), id)
	require.NoError(t, err)
	return apt
}

func TestBook_PatientBooksForSelf(t *testing.T) {
	f := newFixture(t)

	apt, err := f.svc.Book(context.Background(), f.patient, &model.BookAppointmentRequest{
		// A patient cannot book on another patient's behalf; the supplied
		// id is ignored in favor of the caller's own.
		PatientID:   uuid.New(),
		ClinicianID: f.clinicianRec.ID,
		ServiceType: "consultation",
		Date:        "2026-09-10",
		Time:        "09:30",
	})
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusPending, apt.Status)
	assert.Equal(t, f.patientRec.ID, apt.PatientID)

	clinNotices := f.notices.sentTo(f.clinRole.UserID)
	require.Len(t, clinNotices, 1)
	assert.Equal(t, &apt.ID, clinNotices[0].AppointmentID)
}

func TestBook_StaffBooksOnBehalf(t *testing.T) {
	f := newFixture(t)

	apt, err := f.svc.Book(context.Background(), f.staff, &model.BookAppointmentRequest{
		PatientID:   f.patientRec.ID,
		ClinicianID: f.clinicianRec.ID,
		ServiceType: "consultation",
		Date:        "2026-09-10",
		Time:        "09:30",
	})
	require.NoError(t, err)
	assert.Equal(t, f.patientRec.ID, apt.PatientID)

	_, err = f.svc.Book(context.Background(), f.staff, &model.BookAppointmentRequest{
		ClinicianID: f.clinicianRec.ID,
		ServiceType: "consultation",
		Date:        "2026-09-10",
		Time:        "10:30",
	})
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestBook_ClinicianCannotBook(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Book(context.Background(), f.clinRole, &model.BookAppointmentRequest{
		PatientID:   f.patientRec.ID,
		ClinicianID: f.clinicianRec.ID,
		ServiceType: "consultation",
		Date:        "2026-09-10",
		Time:        "09:30",
	})
	assert.True(t, errors.Is(err, errors.ErrAccessDenied))
}

func TestBook_MalformedSlot(t *testing.T) {
	f := newFixture(t)
	for _, slot := range [][2]string{
		{"09/10/2026", "09:30"},
		{"2026-09-10", "9:30am"},
		{"2026-13-40", "09:30"},
	} {
		_, err := f.svc.Book(context.Background(), f.patient, &model.BookAppointmentRequest{
			ClinicianID: f.clinicianRec.ID,
			ServiceType: "consultation",
			Date:        slot[0],
			Time:        slot[1],
		})
		assert.True(t, errors.Is(err, errors.ErrValidation), "slot %v", slot)
	}
}

func TestBook_TakenSlotRefused(t *testing.T) {
	f := newFixture(t)
	f.seed(t, model.AppointmentStatusConfirmed, "2026-09-10", "09:30")

	_, err := f.svc.Book(context.Background(), f.patient, &model.BookAppointmentRequest{
		ClinicianID: f.clinicianRec.ID,
		ServiceType: "consultation",
		Date:        "2026-09-10",
		Time:        "09:30",
	})
	assert.True(t, errors.Is(err, errors.ErrConflict))

	// Pending rows do not occupy the slot.
	f.seed(t, model.AppointmentStatusPending, "2026-09-10", "11:00")
	_, err = f.svc.Book(context.Background(), f.patient, &model.BookAppointmentRequest{
		ClinicianID: f.clinicianRec.ID,
		ServiceType: "consultation",
		Date:        "2026-09-10",
		Time:        "11:00",
	})
	assert.NoError(t, err)
}

func TestConfirm(t *testing.T) {
	f := newFixture(t)
	apt := f.seed(t, model.AppointmentStatusPending, "2026-09-10", "09:30")

	confirmed, err := f.svc.Confirm(context.Background(), f.clinRole, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusConfirmed, confirmed.Status)
	assert.Equal(t, model.AppointmentStatusConfirmed, f.stored(t, apt.ID).Status)

	require.Len(t, f.notices.sentTo(f.patient.UserID), 1)
}

func TestConfirm_PatientDenied(t *testing.T) {
	f := newFixture(t)
	apt := f.seed(t, model.AppointmentStatusPending, "2026-09-10", "09:30")

	_, err := f.svc.Confirm(context.Background(), f.patient, apt.ID)
	assert.True(t, errors.Is(err, errors.ErrAccessDenied))
	assert.Equal(t, model.AppointmentStatusPending, f.stored(t, apt.ID).Status)
}

func TestConfirm_SlotOccupiedConflicts(t *testing.T) {
	f := newFixture(t)
	f.seed(t, model.AppointmentStatusConfirmed, "2026-09-10", "09:30")
	apt := f.seed(t, model.AppointmentStatusPending, "2026-09-10", "09:30")

	_, err := f.svc.Confirm(context.Background(), f.clinRole, apt.ID)
	assert.True(t, errors.Is(err, errors.ErrConflict))
	assert.Equal(t, model.AppointmentStatusPending, f.stored(t, apt.ID).Status)
}

// No lifecycle event, by any actor, moves an appointment out of a terminal
// status, and the failed attempt dispatches nothing.
func TestTerminalStatusesAreFinal(t *testing.T) {
	f := newFixture(t)

	for _, status := range []model.AppointmentStatus{
		model.AppointmentStatusCancelled,
		model.AppointmentStatusCompleted,
	} {
		apt := f.seed(t, status, "2026-09-10", "09:30")
		f.notices.reset()

		attempts := []struct {
			name string
			call func() error
		}{
			{"confirm", func() error {
				_, err := f.svc.Confirm(context.Background(), f.staff, apt.ID)
				return err
			}},
			{"cancel", func() error {
				_, err := f.svc.Cancel(context.Background(), f.staff, apt.ID, "changed plans")
				return err
			}},
			{"reschedule", func() error {
				_, err := f.svc.RequestReschedule(context.Background(), f.patient, apt.ID,
					&model.RescheduleRequest{Date: "2026-09-11", Time: "10:00"})
				return err
			}},
			{"decide reschedule", func() error {
				_, err := f.svc.ConfirmReschedule(context.Background(), f.clinRole, apt.ID,
					&model.ConfirmRescheduleRequest{Approved: true})
				return err
			}},
			{"complete", func() error {
				_, err := f.svc.Complete(context.Background(), f.clinRole, apt.ID)
				return err
			}},
			{"auto-confirm", func() error {
				return f.svc.AutoConfirm(context.Background(), f.stored(t, apt.ID))
			}},
		}
		for _, attempt := range attempts {
			err := attempt.call()
			assert.True(t, errors.Is(err, errors.ErrInvalidTransition),
				"%s from %s: got %v", attempt.name, status, err)
			assert.Equal(t, status, f.stored(t, apt.ID).Status)
		}
		assert.Empty(t, f.notices.notices)
	}
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	apt := f.seed(t, model.AppointmentStatusConfirmed, "2026-09-10", "09:30")

	cancelled, err := f.svc.Cancel(context.Background(), f.patient, apt.ID, "feeling better")
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelReason)
	assert.Equal(t, "feeling better", *cancelled.CancelReason)

	// The actor is a patient, so only the clinician is notified.
	assert.Len(t, f.notices.sentTo(f.clinRole.UserID), 1)
	assert.Empty(t, f.notices.sentTo(f.patient.UserID))
}

func TestCancel_EmptyReasonRejected(t *testing.T) {
	f := newFixture(t)
	apt := f.seed(t, model.AppointmentStatusConfirmed, "2026-09-10", "09:30")

	_, err := f.svc.Cancel(context.Background(), f.patient, apt.ID, "")
	assert.True(t, errors.Is(err, errors.ErrValidation))

	stored := f.stored(t, apt.ID)
	assert.Equal(t, model.AppointmentStatusConfirmed, stored.Status)
	assert.Nil(t, stored.CancelReason)
	assert.Empty(t, f.notices.notices)
}

func TestCancel_ClinicianDenied(t *testing.T) {
	f := newFixture(t)
	apt := f.seed(t, model.AppointmentStatusConfirmed, "2026-09-10", "09:30")

	_, err := f.svc.Cancel(context.Background(), f.clinRole, apt.ID, "double booked")
	assert.True(t, errors.Is(err, errors.ErrAccessDenied))
}

func TestCancel_OtherPatientDenied(t *testing.T) {
	f := newFixture(t)
	apt := f.seed(t, model.AppointmentStatusConfirmed, "2026-09-10", "09:30")

	otherUser := f.store.AddUser(model.RolePatient, "other@clinic.test")
	other := f.store.AddPatient(otherUser.ID, "Other")
	otherCtx := &model.AccessContext{UserID: otherUser.ID, Role: model.RolePatient, PatientID: other.ID}

	_, err := f.svc.Cancel(context.Background(), otherCtx, apt.ID, "not mine")
	assert.True(t, errors.Is(err, errors.ErrAccessDenied))
}

func TestRequestReschedule(t *testing.T) {
	f := newFixture(t)
	apt := f.seed(t, model.AppointmentStatusConfirmed, "2026-09-10", "09:30")

	updated, err := f.svc.RequestReschedule(context.Background(), f.patient, apt.ID,
		&model.RescheduleRequest{Date: "2026-09-12", Time: "14:00", Reason: "work trip"})
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusPendingReschedule, updated.Status)
	assert.Equal(t, "2026-09-12", updated.Date)
	assert.Equal(t, "14:00", updated.Time)
	require.NotNil(t, updated.OriginalDate)
	require.NotNil(t, updated.OriginalTime)
	assert.Equal(t, "2026-09-10", *updated.OriginalDate)
	assert.Equal(t, "09:30", *updated.OriginalTime)
	require.NotNil(t, updated.RescheduleRequestedBy)
	assert.Equal(t, f.patient.UserID, *updated.RescheduleRequestedBy)

	require.Len(t, f.notices.sentTo(f.clinRole.UserID), 1)
}

func TestRequestReschedule_OnlyPatient(t *testing.T) {
	f := newFixture(t)
	apt := f.seed(t, model.AppointmentStatusConfirmed, "2026-09-10", "09:30")

	for _, ctx := range []*model.AccessContext{f.clinRole, f.staff} {
		_, err := f.svc.RequestReschedule(context.Background(), ctx, apt.ID,
			&model.RescheduleRequest{Date: "2026-09-12", Time: "14:00"})
		assert.True(t, errors.Is(err, errors.ErrAccessDenied), "role %s", ctx.Role)
	}
}

func TestConfirmReschedule_Approve(t *testing.T) {
	f := newFixture(t)
	apt := f.seed(t, model.AppointmentStatusConfirmed, "2026-09-10", "09:30")
	_, err := f.svc.RequestReschedule(context.Background(), f.patient, apt.ID,
		&model.RescheduleRequest{Date: "2026-09-12", Time: "14:00"})
	require.NoError(t, err)
	f.notices.reset()

	updated, err := f.svc.ConfirmReschedule(context.Background(), f.clinRole, apt.ID,
		&model.ConfirmRescheduleRequest{Approved: true})
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusConfirmed, updated.Status)
	assert.Equal(t, "2026-09-12", updated.Date)
	assert.Equal(t, "14:00", updated.Time)
	assert.Nil(t, updated.OriginalDate)
	assert.Nil(t, updated.OriginalTime)
	assert.Nil(t, updated.RescheduleRequestedBy)
	assert.Nil(t, updated.RescheduleReason)

	require.Len(t, f.notices.sentTo(f.patient.UserID), 1)
}

// Rejecting restores the slot exactly as it was before the request, so
// request-then-reject is a round trip.
func TestConfirmReschedule_RejectRestoresSnapshot(t *testing.T) {
	f := newFixture(t)
	apt := f.seed(t, model.AppointmentStatusConfirmed, "2026-09-10", "09:30")
	_, err := f.svc.RequestReschedule(context.Background(), f.patient, apt.ID,
		&model.RescheduleRequest{Date: "2026-09-12", Time: "14:00"})
	require.NoError(t, err)

	updated, err := f.svc.ConfirmReschedule(context.Background(), f.clinRole, apt.ID,
		&model.ConfirmRescheduleRequest{Approved: false})
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusConfirmed, updated.Status)
	assert.Equal(t, "2026-09-10", updated.Date)
	assert.Equal(t, "09:30", updated.Time)
	assert.Nil(t, updated.OriginalDate)
	assert.Nil(t, updated.OriginalTime)
	assert.False(t, updated.NeedsReview)
}

// A reject that finds no snapshot does not fail; the appointment returns
// to confirmed flagged for manual reconciliation.
func TestConfirmReschedule_RejectWithoutSnapshot(t *testing.T) {
	f := newFixture(t)
	apt := f.seed(t, model.AppointmentStatusPendingReschedule, "2026-09-12", "14:00")

	updated, err := f.svc.ConfirmReschedule(context.Background(), f.clinRole, apt.ID,
		&model.ConfirmRescheduleRequest{Approved: false})
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusConfirmed, updated.Status)
	assert.True(t, updated.NeedsReview)
	assert.Equal(t, "2026-09-12", updated.Date)
}

func TestConfirmReschedule_OnlyClinician(t *testing.T) {
	f := newFixture(t)
	apt := f.seed(t, model.AppointmentStatusPendingReschedule, "2026-09-12", "14:00")

	for _, ctx := range []*model.AccessContext{f.patient, f.staff} {
		_, err := f.svc.ConfirmReschedule(context.Background(), ctx, apt.ID,
			&model.ConfirmRescheduleRequest{Approved: true})
		assert.True(t, errors.Is(err, errors.ErrAccessDenied), "role %s", ctx.Role)
	}
}

func TestComplete(t *testing.T) {
	f := newFixture(t)
	apt := f.seed(t, model.AppointmentStatusConfirmed, "2026-09-10", "09:30")

	completed, err := f.svc.Complete(context.Background(), f.clinRole, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, completed.Status)

	_, err = f.svc.Complete(context.Background(), f.clinRole, apt.ID)
	assert.True(t, errors.Is(err, errors.ErrInvalidTransition))
}

func TestComplete_PendingRejected(t *testing.T) {
	f := newFixture(t)
	apt := f.seed(t, model.AppointmentStatusPending, "2026-09-10", "09:30")

	_, err := f.svc.Complete(context.Background(), f.clinRole, apt.ID)
	assert.True(t, errors.Is(err, errors.ErrInvalidTransition))
}

func TestGet_OutOfScopeReadsAsNotFound(t *testing.T) {
	f := newFixture(t)
	apt := f.seed(t, model.AppointmentStatusConfirmed, "2026-09-10", "09:30")

	otherUser := f.store.AddUser(model.RolePatient, "other@clinic.test")
	other := f.store.AddPatient(otherUser.ID, "Other")
	otherCtx := &model.AccessContext{UserID: otherUser.ID, Role: model.RolePatient, PatientID: other.ID}

	_, err := f.svc.Get(context.Background(), otherCtx, apt.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	got, err := f.svc.Get(context.Background(), f.patient, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, apt.ID, got.ID)
}

func TestList_ScopeCannotBeWidened(t *testing.T) {
	f := newFixture(t)
	mine := f.seed(t, model.AppointmentStatusConfirmed, "2026-09-10", "09:30")

	otherUser := f.store.AddUser(model.RolePatient, "other@clinic.test")
	other := f.store.AddPatient(otherUser.ID, "Other")
	theirs := f.seed(t, model.AppointmentStatusConfirmed, "2026-09-11", "10:00")
	theirs.PatientID = other.ID
	f.store.Appointments[theirs.ID].PatientID = other.ID

	// Asking for the other patient's rows explicitly still returns only
	// the caller's own.
	listed, err := f.svc.List(context.Background(), f.patient,
		&model.AppointmentFilters{PatientID: other.ID})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, mine.ID, listed[0].ID)

	all, err := f.svc.List(context.Background(), f.staff, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAutoConfirm_FreeSlot(t *testing.T) {
	f := newFixture(t)
	apt := f.seed(t, model.AppointmentStatusPending, "2026-09-10", "09:30")

	require.NoError(t, f.svc.AutoConfirm(context.Background(), f.stored(t, apt.ID)))
	assert.Equal(t, model.AppointmentStatusConfirmed, f.stored(t, apt.ID).Status)

	assert.Len(t, f.notices.sentTo(f.patient.UserID), 1)
	assert.Len(t, f.notices.sentTo(f.clinRole.UserID), 1)
	assert.Len(t, f.notices.sentTo(f.staffUser.ID), 1)
}

// A blocked auto-confirmation leaves the appointment pending and raises a
// staff-only escalation: nothing reaches the patient or clinician about a
// state that did not change.
func TestAutoConfirm_ConflictEscalatesToStaffOnly(t *testing.T) {
	f := newFixture(t)
	f.seed(t, model.AppointmentStatusConfirmed, "2026-09-10", "09:30")
	apt := f.seed(t, model.AppointmentStatusPending, "2026-09-10", "09:30")

	err := f.svc.AutoConfirm(context.Background(), f.stored(t, apt.ID))
	assert.True(t, errors.Is(err, errors.ErrConflict))
	assert.Equal(t, model.AppointmentStatusPending, f.stored(t, apt.ID).Status)

	assert.Empty(t, f.notices.sentTo(f.patient.UserID))
	assert.Empty(t, f.notices.sentTo(f.clinRole.UserID))

	staffNotices := f.notices.sentTo(f.staffUser.ID)
	require.Len(t, staffNotices, 1)
	assert.Equal(t, model.NotificationTypeEscalation, staffNotices[0].Type)
	assert.Equal(t, model.NotificationPriorityUrgent, staffNotices[0].Priority)

	require.Len(t, f.store.Tasks, 1)
	for _, task := range f.store.Tasks {
		assert.Equal(t, model.TaskStatusOpen, task.Status)
		require.NotNil(t, task.AppointmentID)
		assert.Equal(t, apt.ID, *task.AppointmentID)
	}
}

// An appointment changed between scan and write fails with StaleState
// instead of overwriting the newer status.
func TestAutoConfirm_StaleRow(t *testing.T) {
	f := newFixture(t)
	apt := f.seed(t, model.AppointmentStatusPending, "2026-09-10", "09:30")

	snapshot := f.stored(t, apt.ID)
	_, err := f.svc.Cancel(context.Background(), f.patient, apt.ID, "changed plans")
	require.NoError(t, err)

	err = f.svc.AutoConfirm(context.Background(), snapshot)
	assert.True(t, errors.Is(err, errors.ErrStaleState))
	assert.Equal(t, model.AppointmentStatusCancelled, f.stored(t, apt.ID).Status)
}

func TestHasConflict_ExcludesGivenAppointment(t *testing.T) {
	f := newFixture(t)
	apt := f.seed(t, model.AppointmentStatusConfirmed, "2026-09-10", "09:30")

	taken, err := f.svc.HasConflict(context.Background(), f.clinicianRec.ID, "2026-09-10", "09:30", nil)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = f.svc.HasConflict(context.Background(), f.clinicianRec.ID, "2026-09-10", "09:30", &apt.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	// Same slot, different clinician: no conflict.
	otherClin := f.store.AddClinician(uuid.New(), "Dr. Else")
	taken, err = f.svc.HasConflict(context.Background(), otherClin.ID, "2026-09-10", "09:30", nil)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestSchedules_Scoped(t *testing.T) {
	f := newFixture(t)
	mine := &model.Schedule{
		Base:        model.Base{ID: uuid.New()},
		ClinicianID: f.clinicianRec.ID,
		DayOfWeek:   1,
		StartTime:   "09:00",
		EndTime:     "17:00",
	}
	other := &model.Schedule{
		Base:        model.Base{ID: uuid.New()},
		ClinicianID: uuid.New(),
		DayOfWeek:   2,
		StartTime:   "09:00",
		EndTime:     "12:00",
	}
	f.store.Schedules[mine.ID] = mine
	f.store.Schedules[other.ID] = other

	own, err := f.svc.Schedules(context.Background(), f.clinRole, model.Filter{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, mine.ID, own[0].ID)

	all, err := f.svc.Schedules(context.Background(), f.staff, model.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = f.svc.Schedules(context.Background(), f.patient, model.Filter{})
	assert.True(t, errors.Is(err, errors.ErrAccessDenied))
}

func TestTasks_StaffOnly(t *testing.T) {
	f := newFixture(t)
	f.seed(t, model.AppointmentStatusConfirmed, "2026-09-10", "09:30")
	apt := f.seed(t, model.AppointmentStatusPending, "2026-09-10", "09:30")
	require.Error(t, f.svc.AutoConfirm(context.Background(), f.stored(t, apt.ID)))

	tasks, err := f.svc.Tasks(context.Background(), f.staff, model.Filter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, model.TaskStatusOpen, tasks[0].Status)

	for _, ctx := range []*model.AccessContext{f.patient, f.clinRole} {
		_, err := f.svc.Tasks(context.Background(), ctx, model.Filter{})
		assert.True(t, errors.Is(err, errors.ErrAccessDenied), "role %s", ctx.Role)
	}
}

func TestListPendingBefore(t *testing.T) {
	f := newFixture(t)
	matured := f.seed(t, model.AppointmentStatusPending, "2026-09-10", "09:30")
	f.store.Appointments[matured.ID].CreatedAt = time.Now().Add(-3 * time.Hour)
	f.seed(t, model.AppointmentStatusPending, "2026-09-10", "10:30")

	got, err := f.svc.ListPendingBefore(context.Background(), time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, matured.ID, got[0].ID)
}
