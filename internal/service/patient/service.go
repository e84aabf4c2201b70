package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/medcore/clinic-api/internal/model"
	"github.com/medcore/clinic-api/internal/repository"
	"github.com/medcore/clinic-api/internal/service/access"
	apperrors "github.com/medcore/clinic-api/pkg/errors"
)

type Service struct {
	repo repository.PatientRepository
}

func NewService(repo repository.PatientRepository) *Service {
	return &Service{repo: repo}
}

// Roster lists the patients visible to the caller. Staff and admin see the
// full roster; clinicians see the patients appearing in their own
// appointments; patients are denied (they reach their own record through
// the profile path).
func (s *Service) Roster(ctx context.Context, accessCtx *model.AccessContext, filters *model.PatientFilters) ([]*model.Patient, error) {
	scope, err := access.Scope(model.EntityPatient, accessCtx)
	if err != nil {
		if errors.Is(err, access.ErrDerivedRoster) {
			return s.repo.ListByClinician(ctx, accessCtx.ClinicianID)
		}
		return nil, err
	}

	filter := model.Filter{}
	if filters != nil && filters.Status != "" {
		filter["status"] = filters.Status
	}
	return s.repo.List(ctx, filter.Merge(scope))
}

// Profile returns the caller's own patient record.
func (s *Service) Profile(ctx context.Context, accessCtx *model.AccessContext) (*model.Patient, error) {
	return s.repo.Get(ctx, accessCtx.PatientID)
}

// Get returns one patient for staff, admin or a treating clinician.
func (s *Service) Get(ctx context.Context, accessCtx *model.AccessContext, id uuid.UUID) (*model.Patient, error) {
	patients, err := s.Roster(ctx, accessCtx, nil)
	if err != nil {
		return nil, err
	}
	for _, p := range patients {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, apperrors.NotFound("patient", nil)
}
