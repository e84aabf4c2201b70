package access

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medcore/clinic-api/internal/model"
	"github.com/medcore/clinic-api/pkg/errors"
)

func patientCtx() *model.AccessContext {
	return &model.AccessContext{
		UserID:    uuid.New(),
		Role:      model.RolePatient,
		PatientID: uuid.New(),
	}
}

func clinicianCtx() *model.AccessContext {
	return &model.AccessContext{
		UserID:      uuid.New(),
		Role:        model.RoleClinician,
		ClinicianID: uuid.New(),
	}
}

func TestScope_PatientOwnedEntities(t *testing.T) {
	ctx := patientCtx()
	for _, entity := range []model.Entity{
		model.EntityAppointment,
		model.EntityMedicalRecord,
		model.EntityLabTest,
		model.EntityPrescription,
		model.EntityPayment,
	} {
		filter, err := Scope(entity, ctx)
		require.NoError(t, err, "entity %s", entity)
		assert.Equal(t, model.Filter{"patient_id": ctx.PatientID}, filter)
	}
}

func TestScope_PatientDeniedEntities(t *testing.T) {
	ctx := patientCtx()
	for _, entity := range []model.Entity{
		model.EntityPatient,
		model.EntitySchedule,
		model.EntityTask,
	} {
		_, err := Scope(entity, ctx)
		assert.True(t, errors.Is(err, errors.ErrAccessDenied), "entity %s", entity)
	}
}

func TestScope_ClinicianOwnedEntities(t *testing.T) {
	ctx := clinicianCtx()
	for _, entity := range []model.Entity{
		model.EntityAppointment,
		model.EntityMedicalRecord,
		model.EntityLabTest,
		model.EntityPrescription,
		model.EntityPayment,
		model.EntitySchedule,
	} {
		filter, err := Scope(entity, ctx)
		require.NoError(t, err, "entity %s", entity)
		assert.Equal(t, model.Filter{"clinician_id": ctx.ClinicianID}, filter)
	}
}

func TestScope_ClinicianRosterIsDerived(t *testing.T) {
	_, err := Scope(model.EntityPatient, clinicianCtx())
	assert.ErrorIs(t, err, ErrDerivedRoster)
}

func TestScope_ClinicianDeniedEntities(t *testing.T) {
	_, err := Scope(model.EntityTask, clinicianCtx())
	assert.True(t, errors.Is(err, errors.ErrAccessDenied))
}

func TestScope_StaffAndAdminUnrestricted(t *testing.T) {
	for _, role := range []model.Role{model.RoleStaff, model.RoleAdmin} {
		ctx := &model.AccessContext{UserID: uuid.New(), Role: role}
		for _, entity := range []model.Entity{
			model.EntityAppointment,
			model.EntityPatient,
			model.EntityPayment,
			model.EntityTask,
		} {
			filter, err := Scope(entity, ctx)
			require.NoError(t, err, "role %s entity %s", role, entity)
			assert.Empty(t, filter)
		}
	}
}

func TestScope_NotificationsAlwaysSelfScoped(t *testing.T) {
	for _, ctx := range []*model.AccessContext{
		patientCtx(),
		clinicianCtx(),
		{UserID: uuid.New(), Role: model.RoleStaff},
		{UserID: uuid.New(), Role: model.RoleAdmin},
	} {
		filter, err := Scope(model.EntityNotification, ctx)
		require.NoError(t, err)
		assert.Equal(t, model.Filter{"user_id": ctx.UserID}, filter)
	}
}

// The table fails closed: no context, an unknown role or an unknown entity
// all deny rather than fall through to an unscoped read.
func TestScope_FailsClosed(t *testing.T) {
	_, err := Scope(model.EntityAppointment, nil)
	assert.True(t, errors.Is(err, errors.ErrAccessDenied))

	_, err = Scope(model.EntityAppointment, &model.AccessContext{UserID: uuid.New(), Role: "auditor"})
	assert.True(t, errors.Is(err, errors.ErrAccessDenied))

	_, err = Scope(model.Entity("billing_exports"), &model.AccessContext{UserID: uuid.New(), Role: model.RoleStaff})
	assert.True(t, errors.Is(err, errors.ErrAccessDenied))
}

// Merging the policy scope last means a caller-supplied filter can only
// narrow results: a patient asking for another patient's rows still gets
// their own predicate.
func TestScope_MergeCannotWiden(t *testing.T) {
	ctx := patientCtx()
	scope, err := Scope(model.EntityAppointment, ctx)
	require.NoError(t, err)

	requested := model.Filter{"patient_id": uuid.New(), "status": model.AppointmentStatusConfirmed}
	merged := requested.Merge(scope)

	assert.Equal(t, ctx.PatientID, merged["patient_id"])
	assert.Equal(t, model.AppointmentStatusConfirmed, merged["status"])
}

func TestCanActOn(t *testing.T) {
	patient := patientCtx()
	clinician := clinicianCtx()
	apt := &model.Appointment{
		PatientID:   patient.PatientID,
		ClinicianID: clinician.ClinicianID,
	}

	assert.True(t, CanActOn(patient, apt))
	assert.True(t, CanActOn(clinician, apt))
	assert.True(t, CanActOn(&model.AccessContext{UserID: uuid.New(), Role: model.RoleStaff}, apt))
	assert.True(t, CanActOn(&model.AccessContext{UserID: uuid.New(), Role: model.RoleAdmin}, apt))

	assert.False(t, CanActOn(patientCtx(), apt))
	assert.False(t, CanActOn(clinicianCtx(), apt))
	assert.False(t, CanActOn(&model.AccessContext{UserID: uuid.New(), Role: "auditor"}, apt))
}
