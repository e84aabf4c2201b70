package access

import (
	stderrors "errors"

	"github.com/medcore/clinic-api/internal/model"
	"github.com/medcore/clinic-api/pkg/errors"
)

// ErrDerivedRoster marks the one allow-table cell that is not expressible
// as a column predicate: a clinician's patient roster derives from the
// clinician's own appointments. Callers route it to
// PatientRepository.ListByClinician instead of a filtered list query.
var ErrDerivedRoster = stderrors.New("access: roster is derived from appointments")

// Scope returns the additive filter predicate for reads of entity under
// accessCtx. The predicate is merged on top of any caller-supplied filter,
// so callers can only narrow results, never widen them. Any entity/role
// combination outside the allow table fails closed with AccessDenied.
func Scope(entity model.Entity, accessCtx *model.AccessContext) (model.Filter, error) {
	if accessCtx == nil || !accessCtx.Role.Valid() {
		return nil, errors.AccessDenied("no access context")
	}

	// Notifications are always scoped to the requesting principal,
	// regardless of role.
	if entity == model.EntityNotification {
		return model.Filter{"user_id": accessCtx.UserID}, nil
	}

	switch accessCtx.Role {
	case model.RolePatient:
		return scopePatient(entity, accessCtx)
	case model.RoleClinician:
		return scopeClinician(entity, accessCtx)
	case model.RoleStaff, model.RoleAdmin:
		return scopeUnrestricted(entity)
	}
	return nil, errors.AccessDenied("unknown role")
}

func scopePatient(entity model.Entity, accessCtx *model.AccessContext) (model.Filter, error) {
	switch entity {
	case model.EntityAppointment,
		model.EntityMedicalRecord,
		model.EntityLabTest,
		model.EntityPrescription,
		model.EntityPayment:
		return model.Filter{"patient_id": accessCtx.PatientID}, nil
	}
	// Patients reach their own record through the profile path, never
	// through the roster.
	return nil, errors.AccessDenied("entity not accessible to patients")
}

func scopeClinician(entity model.Entity, accessCtx *model.AccessContext) (model.Filter, error) {
	switch entity {
	case model.EntityAppointment,
		model.EntityMedicalRecord,
		model.EntityLabTest,
		model.EntityPrescription,
		model.EntityPayment,
		model.EntitySchedule:
		return model.Filter{"clinician_id": accessCtx.ClinicianID}, nil
	case model.EntityPatient:
		return nil, ErrDerivedRoster
	}
	return nil, errors.AccessDenied("entity not accessible to clinicians")
}

func scopeUnrestricted(entity model.Entity) (model.Filter, error) {
	switch entity {
	case model.EntityAppointment,
		model.EntityMedicalRecord,
		model.EntityLabTest,
		model.EntityPrescription,
		model.EntityPayment,
		model.EntityPatient,
		model.EntitySchedule,
		model.EntityTask:
		return model.Filter{}, nil
	}
	return nil, errors.AccessDenied("unknown entity")
}

// CanActOn reports whether the context may mutate the given appointment.
// Patients act on their own appointments, clinicians on their own calendar,
// staff and admin on any.
func CanActOn(accessCtx *model.AccessContext, appointment *model.Appointment) bool {
	switch accessCtx.Role {
	case model.RolePatient:
		return accessCtx.PatientID == appointment.PatientID
	case model.RoleClinician:
		return accessCtx.ClinicianID == appointment.ClinicianID
	case model.RoleStaff, model.RoleAdmin:
		return true
	}
	return false
}
