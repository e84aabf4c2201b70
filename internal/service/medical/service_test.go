package medical

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medcore/clinic-api/internal/model"
	"github.com/medcore/clinic-api/internal/repository/memory"
	"github.com/medcore/clinic-api/pkg/errors"
)

type fixture struct {
	store     *memory.Store
	svc       *Service
	clinician *model.AccessContext
	patient   *model.AccessContext
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()

	clinicianUser := store.AddUser(model.RoleClinician, "doc@clinic.test")
	clinicianRec := store.AddClinician(clinicianUser.ID, "Dr. Doc")
	patientUser := store.AddUser(model.RolePatient, "pat@clinic.test")
	patientRec := store.AddPatient(patientUser.ID, "Pat")

	svc := NewService(
		&memory.MedicalRecordRepo{S: store},
		&memory.LabTestRepo{S: store},
		&memory.PrescriptionRepo{S: store},
		&memory.PaymentRepo{S: store},
		&memory.AppointmentRepo{S: store},
	)

	return &fixture{
		store: store,
		svc:   svc,
		clinician: &model.AccessContext{
			UserID:      clinicianUser.ID,
			Role:        model.RoleClinician,
			ClinicianID: clinicianRec.ID,
		},
		patient: &model.AccessContext{
			UserID:    patientUser.ID,
			Role:      model.RolePatient,
			PatientID: patientRec.ID,
		},
	}
}

func (f *fixture) appointment(t *testing.T, status model.AppointmentStatus) *model.Appointment {
	t.Helper()
	apt := &model.Appointment{
		PatientID:   f.patient.PatientID,
		ClinicianID: f.clinician.ClinicianID,
		ServiceType: "consultation",
		Date:        "2026-09-10",
		Time:        "09:30",
		Status:      status,
	}
	require.NoError(t, (&memory.AppointmentRepo{S: f.store}).Create(context.Background(), apt))
	return apt
}

func TestCreateMedicalRecord_CompletedAppointment(t *testing.T) {
	f := newFixture(t)
	apt := f.appointment(t, model.AppointmentStatusCompleted)

	record, err := f.svc.CreateMedicalRecord(context.Background(), f.clinician, &model.CreateMedicalRecordRequest{
		AppointmentID: apt.ID,
		Type:          "visit_note",
		Description:   "routine checkup",
	})
	require.NoError(t, err)
	assert.Equal(t, apt.ID, record.AppointmentID)
	assert.Equal(t, f.patient.PatientID, record.PatientID)
	assert.Equal(t, f.clinician.ClinicianID, record.ClinicianID)
}

// Record creation is locked until the owning appointment completes.
func TestCreateMedicalRecord_LockedBeforeCompletion(t *testing.T) {
	f := newFixture(t)
	for _, status := range []model.AppointmentStatus{
		model.AppointmentStatusPending,
		model.AppointmentStatusConfirmed,
		model.AppointmentStatusPendingReschedule,
		model.AppointmentStatusCancelled,
	} {
		apt := f.appointment(t, status)
		_, err := f.svc.CreateMedicalRecord(context.Background(), f.clinician, &model.CreateMedicalRecordRequest{
			AppointmentID: apt.ID,
			Type:          "visit_note",
			Description:   "routine checkup",
		})
		assert.True(t, errors.Is(err, errors.ErrInvalidTransition), "status %s", status)
	}
	assert.Empty(t, f.store.Records)
}

func TestCreateMedicalRecord_OnlyOwningClinician(t *testing.T) {
	f := newFixture(t)
	apt := f.appointment(t, model.AppointmentStatusCompleted)

	req := &model.CreateMedicalRecordRequest{
		AppointmentID: apt.ID,
		Type:          "visit_note",
		Description:   "routine checkup",
	}

	_, err := f.svc.CreateMedicalRecord(context.Background(), f.patient, req)
	assert.True(t, errors.Is(err, errors.ErrAccessDenied))

	other := &model.AccessContext{UserID: uuid.New(), Role: model.RoleClinician, ClinicianID: uuid.New()}
	_, err = f.svc.CreateMedicalRecord(context.Background(), other, req)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestCreatePrescription(t *testing.T) {
	f := newFixture(t)
	apt := f.appointment(t, model.AppointmentStatusCompleted)

	prescription, err := f.svc.CreatePrescription(context.Background(), f.clinician, &model.CreatePrescriptionRequest{
		AppointmentID: apt.ID,
		Medication:    "amoxicillin",
		Dosage:        "500mg",
	})
	require.NoError(t, err)
	assert.Equal(t, f.patient.PatientID, prescription.PatientID)

	locked := f.appointment(t, model.AppointmentStatusConfirmed)
	_, err = f.svc.CreatePrescription(context.Background(), f.clinician, &model.CreatePrescriptionRequest{
		AppointmentID: locked.ID,
		Medication:    "amoxicillin",
		Dosage:        "500mg",
	})
	assert.True(t, errors.Is(err, errors.ErrInvalidTransition))
}

func TestListMedicalRecords_Scoped(t *testing.T) {
	f := newFixture(t)
	apt := f.appointment(t, model.AppointmentStatusCompleted)
	_, err := f.svc.CreateMedicalRecord(context.Background(), f.clinician, &model.CreateMedicalRecordRequest{
		AppointmentID: apt.ID,
		Type:          "visit_note",
		Description:   "routine checkup",
	})
	require.NoError(t, err)

	mine, err := f.svc.ListMedicalRecords(context.Background(), f.patient, model.Filter{})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	otherPatient := &model.AccessContext{UserID: uuid.New(), Role: model.RolePatient, PatientID: uuid.New()}
	theirs, err := f.svc.ListMedicalRecords(context.Background(), otherPatient, model.Filter{})
	require.NoError(t, err)
	assert.Empty(t, theirs)

	all, err := f.svc.ListMedicalRecords(context.Background(),
		&model.AccessContext{UserID: uuid.New(), Role: model.RoleStaff}, model.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestListPayments_Scoped(t *testing.T) {
	f := newFixture(t)
	apt := f.appointment(t, model.AppointmentStatusCompleted)
	payment := &model.Payment{
		Base:          model.Base{ID: uuid.New()},
		AppointmentID: apt.ID,
		PatientID:     f.patient.PatientID,
		ClinicianID:   f.clinician.ClinicianID,
		AmountCents:   12500,
		Currency:      "USD",
		Status:        model.PaymentStatusUnpaid,
	}
	f.store.Payments[payment.ID] = payment

	mine, err := f.svc.ListPayments(context.Background(), f.patient, model.Filter{})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	byClinician, err := f.svc.ListPayments(context.Background(), f.clinician, model.Filter{})
	require.NoError(t, err)
	assert.Len(t, byClinician, 1)

	otherPatient := &model.AccessContext{UserID: uuid.New(), Role: model.RolePatient, PatientID: uuid.New()}
	theirs, err := f.svc.ListPayments(context.Background(), otherPatient, model.Filter{})
	require.NoError(t, err)
	assert.Empty(t, theirs)
}
