package notification

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medcore/clinic-api/internal/model"
	"github.com/medcore/clinic-api/internal/repository"
	"github.com/medcore/clinic-api/internal/repository/memory"
	apperrors "github.com/medcore/clinic-api/pkg/errors"
	"github.com/medcore/clinic-api/pkg/logger"
)

type fakeBroker struct {
	published []string
	messages  []interface{}
	err       error
}

func (b *fakeBroker) Publish(_ context.Context, channel string, message interface{}) error {
	if b.err != nil {
		return b.err
	}
	b.published = append(b.published, channel)
	b.messages = append(b.messages, message)
	return nil
}

func (b *fakeBroker) Subscribe(context.Context, string) (<-chan []byte, error) {
	return nil, nil
}

func (b *fakeBroker) Close() error { return nil }

type fakeEmail struct {
	sent []string
	err  error
}

func (e *fakeEmail) SendCustom(_ context.Context, to, _, _ string) error {
	if e.err != nil {
		return e.err
	}
	e.sent = append(e.sent, to)
	return nil
}

// brokenRepo fails every write, for the best-effort tests.
type brokenRepo struct {
	repository.NotificationRepository
}

func (brokenRepo) Create(context.Context, *model.Notification) error {
	return errors.New("store unavailable")
}

func testLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, TimeFormat: time.RFC3339, Output: io.Discard})
}

func TestNotify_PersistsAndPublishes(t *testing.T) {
	store := memory.NewStore()
	user := store.AddUser(model.RolePatient, "pat@clinic.test")
	broker := &fakeBroker{}
	email := &fakeEmail{}
	svc := NewService(&memory.NotificationRepo{S: store}, &memory.UserRepo{S: store}, broker, email, testLogger())

	svc.Notify(context.Background(), Notice{
		UserID:  user.ID,
		Type:    model.NotificationTypeConfirmation,
		Title:   "Appointment confirmed",
		Message: "See you soon.",
	})

	require.Len(t, store.Notifications, 1)
	for _, n := range store.Notifications {
		assert.Equal(t, user.ID, n.UserID)
		assert.Equal(t, model.NotificationPriorityNormal, n.Priority)
		assert.False(t, n.IsRead)
	}

	require.Len(t, broker.published, 1)
	assert.Equal(t, "notifications", broker.published[0])
	event := broker.messages[0].(*model.NotificationEvent)
	assert.Equal(t, user.ID, event.UserID)

	// Normal priority stays in-app.
	assert.Empty(t, email.sent)
}

func TestNotify_UrgentSendsEmail(t *testing.T) {
	store := memory.NewStore()
	user := store.AddUser(model.RoleStaff, "desk@clinic.test")
	email := &fakeEmail{}
	svc := NewService(&memory.NotificationRepo{S: store}, &memory.UserRepo{S: store}, &fakeBroker{}, email, testLogger())

	svc.Notify(context.Background(), Notice{
		UserID:   user.ID,
		Type:     model.NotificationTypeEscalation,
		Priority: model.NotificationPriorityUrgent,
		Title:    "Appointment needs manual scheduling",
		Message:  "Slot conflict.",
	})

	require.Len(t, email.sent, 1)
	assert.Equal(t, "desk@clinic.test", email.sent[0])
}

// Delivery is best-effort: a dead store, broker or mail relay is logged
// and swallowed, never surfaced to the lifecycle transition that
// triggered the notice.
func TestNotify_FailuresNeverPropagate(t *testing.T) {
	store := memory.NewStore()
	user := store.AddUser(model.RolePatient, "pat@clinic.test")
	users := &memory.UserRepo{S: store}
	log := testLogger()

	notice := Notice{
		UserID:   user.ID,
		Type:     model.NotificationTypeConfirmation,
		Priority: model.NotificationPriorityUrgent,
		Title:    "Appointment confirmed",
		Message:  "See you soon.",
	}

	// Store down: nothing persisted, nothing published, no panic.
	broker := &fakeBroker{}
	NewService(brokenRepo{}, users, broker, &fakeEmail{}, log).Notify(context.Background(), notice)
	assert.Empty(t, broker.published)

	// Broker down: the notification row still lands.
	NewService(&memory.NotificationRepo{S: store}, users, &fakeBroker{err: errors.New("redis down")},
		&fakeEmail{}, log).Notify(context.Background(), notice)
	assert.Len(t, store.Notifications, 1)

	// Mail relay down: row and event still land.
	store2 := memory.NewStore()
	user2 := store2.AddUser(model.RolePatient, "pat2@clinic.test")
	notice.UserID = user2.ID
	broker2 := &fakeBroker{}
	NewService(&memory.NotificationRepo{S: store2}, &memory.UserRepo{S: store2}, broker2,
		&fakeEmail{err: errors.New("smtp down")}, log).Notify(context.Background(), notice)
	assert.Len(t, store2.Notifications, 1)
	assert.Len(t, broker2.published, 1)
}

func TestList_ScopedToCaller(t *testing.T) {
	store := memory.NewStore()
	mine := store.AddUser(model.RolePatient, "pat@clinic.test")
	other := store.AddUser(model.RolePatient, "other@clinic.test")
	svc := NewService(&memory.NotificationRepo{S: store}, &memory.UserRepo{S: store}, &fakeBroker{}, &fakeEmail{}, testLogger())

	svc.Notify(context.Background(), Notice{UserID: mine.ID, Type: model.NotificationTypeConfirmation, Title: "a", Message: "a"})
	svc.Notify(context.Background(), Notice{UserID: other.ID, Type: model.NotificationTypeConfirmation, Title: "b", Message: "b"})

	accessCtx := &model.AccessContext{UserID: mine.ID, Role: model.RolePatient, PatientID: uuid.New()}
	listed, err := svc.List(context.Background(), accessCtx, false)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, mine.ID, listed[0].UserID)
}

func TestMarkRead(t *testing.T) {
	store := memory.NewStore()
	owner := store.AddUser(model.RolePatient, "pat@clinic.test")
	stranger := store.AddUser(model.RolePatient, "other@clinic.test")
	svc := NewService(&memory.NotificationRepo{S: store}, &memory.UserRepo{S: store}, &fakeBroker{}, &fakeEmail{}, testLogger())

	svc.Notify(context.Background(), Notice{UserID: owner.ID, Type: model.NotificationTypeConfirmation, Title: "a", Message: "a"})
	var id uuid.UUID
	for _, n := range store.Notifications {
		id = n.ID
	}

	strangerCtx := &model.AccessContext{UserID: stranger.ID, Role: model.RolePatient}
	err := svc.MarkRead(context.Background(), strangerCtx, id)
	assert.True(t, apperrors.Is(err, apperrors.ErrAccessDenied))

	ownerCtx := &model.AccessContext{UserID: owner.ID, Role: model.RolePatient}
	require.NoError(t, svc.MarkRead(context.Background(), ownerCtx, id))
	assert.True(t, store.Notifications[id].IsRead)

	// Re-marking is a no-op.
	require.NoError(t, svc.MarkRead(context.Background(), ownerCtx, id))

	count, err := svc.UnreadCount(context.Background(), ownerCtx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
