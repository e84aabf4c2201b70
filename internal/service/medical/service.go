package medical

import (
	"context"

	"github.com/google/uuid"

	"github.com/medcore/clinic-api/internal/model"
	"github.com/medcore/clinic-api/internal/repository"
	"github.com/medcore/clinic-api/internal/service/access"
	"github.com/medcore/clinic-api/pkg/errors"
)

// Service owns the clinical artifacts attached to appointments: medical
// records, lab tests, prescriptions and payments. Reads are policy-scoped;
// writes are clinician-only and unlocked by appointment completion.
type Service struct {
	records       repository.MedicalRecordRepository
	labTests      repository.LabTestRepository
	prescriptions repository.PrescriptionRepository
	payments      repository.PaymentRepository
	appointments  repository.AppointmentRepository
}

func NewService(records repository.MedicalRecordRepository, labTests repository.LabTestRepository,
	prescriptions repository.PrescriptionRepository, payments repository.PaymentRepository,
	appointments repository.AppointmentRepository) *Service {
	return &Service{
		records:       records,
		labTests:      labTests,
		prescriptions: prescriptions,
		payments:      payments,
		appointments:  appointments,
	}
}

// unlockedAppointment fetches the appointment a clinical artifact will hang
// off and enforces the creation rules: the acting clinician must own the
// appointment and the appointment must be completed.
func (s *Service) unlockedAppointment(ctx context.Context, accessCtx *model.AccessContext, appointmentID uuid.UUID) (*model.Appointment, error) {
	if accessCtx.Role != model.RoleClinician {
		return nil, errors.AccessDenied("only clinicians create clinical records")
	}

	appointment, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment.ClinicianID != accessCtx.ClinicianID {
		return nil, errors.NotFound("appointment", nil)
	}
	if appointment.Status != model.AppointmentStatusCompleted {
		return nil, errors.InvalidTransition(string(appointment.Status), "attach records to")
	}
	return appointment, nil
}

func (s *Service) CreateMedicalRecord(ctx context.Context, accessCtx *model.AccessContext, req *model.CreateMedicalRecordRequest) (*model.MedicalRecord, error) {
	appointment, err := s.unlockedAppointment(ctx, accessCtx, req.AppointmentID)
	if err != nil {
		return nil, err
	}

	record := &model.MedicalRecord{
		AppointmentID: appointment.ID,
		PatientID:     appointment.PatientID,
		ClinicianID:   appointment.ClinicianID,
		Type:          req.Type,
		Description:   req.Description,
		Diagnosis:     req.Diagnosis,
		Treatment:     req.Treatment,
	}
	if err := s.records.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Service) CreatePrescription(ctx context.Context, accessCtx *model.AccessContext, req *model.CreatePrescriptionRequest) (*model.Prescription, error) {
	appointment, err := s.unlockedAppointment(ctx, accessCtx, req.AppointmentID)
	if err != nil {
		return nil, err
	}

	prescription := &model.Prescription{
		AppointmentID: appointment.ID,
		PatientID:     appointment.PatientID,
		ClinicianID:   appointment.ClinicianID,
		Medication:    req.Medication,
		Dosage:        req.Dosage,
		Instructions:  req.Instructions,
	}
	if err := s.prescriptions.Create(ctx, prescription); err != nil {
		return nil, err
	}
	return prescription, nil
}

func (s *Service) ListMedicalRecords(ctx context.Context, accessCtx *model.AccessContext, filter model.Filter) ([]*model.MedicalRecord, error) {
	scope, err := access.Scope(model.EntityMedicalRecord, accessCtx)
	if err != nil {
		return nil, err
	}
	return s.records.List(ctx, filter.Merge(scope))
}

func (s *Service) ListLabTests(ctx context.Context, accessCtx *model.AccessContext, filter model.Filter) ([]*model.LabTest, error) {
	scope, err := access.Scope(model.EntityLabTest, accessCtx)
	if err != nil {
		return nil, err
	}
	return s.labTests.List(ctx, filter.Merge(scope))
}

func (s *Service) ListPrescriptions(ctx context.Context, accessCtx *model.AccessContext, filter model.Filter) ([]*model.Prescription, error) {
	scope, err := access.Scope(model.EntityPrescription, accessCtx)
	if err != nil {
		return nil, err
	}
	return s.prescriptions.List(ctx, filter.Merge(scope))
}

func (s *Service) ListPayments(ctx context.Context, accessCtx *model.AccessContext, filter model.Filter) ([]*model.Payment, error) {
	scope, err := access.Scope(model.EntityPayment, accessCtx)
	if err != nil {
		return nil, err
	}
	return s.payments.List(ctx, filter.Merge(scope))
}
