package access

import (
	"context"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/medcore/clinic-api/internal/model"
	"github.com/medcore/clinic-api/internal/repository"
	"github.com/medcore/clinic-api/pkg/errors"
)

// Resolver turns a user id into the AccessContext a request acts under.
// Resolution happens once per request, so results are cached with a short
// TTL; a role or profile change takes effect when the entry expires.
type Resolver struct {
	users      repository.UserRepository
	patients   repository.PatientRepository
	clinicians repository.ClinicianRepository
	cache      *gocache.Cache
}

func NewResolver(users repository.UserRepository, patients repository.PatientRepository,
	clinicians repository.ClinicianRepository, ttl, cleanup time.Duration) *Resolver {
	return &Resolver{
		users:      users,
		patients:   patients,
		clinicians: clinicians,
		cache:      gocache.New(ttl, cleanup),
	}
}

// Resolve looks up the principal's role and its scoped record id. A patient
// or clinician without their scoped record gets IncompleteProfile, which
// callers must treat as "needs onboarding" rather than a denial.
func (r *Resolver) Resolve(ctx context.Context, userID uuid.UUID) (*model.AccessContext, error) {
	if cached, ok := r.cache.Get(userID.String()); ok {
		return cached.(*model.AccessContext), nil
	}

	user, err := r.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.Role.Valid() {
		return nil, errors.NotFound("principal", nil)
	}

	accessCtx := &model.AccessContext{
		UserID: user.ID,
		Role:   user.Role,
	}

	switch user.Role {
	case model.RolePatient:
		patient, err := r.patients.GetByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				return nil, errors.IncompleteProfile("patient")
			}
			return nil, err
		}
		accessCtx.PatientID = patient.ID
	case model.RoleClinician:
		clinician, err := r.clinicians.GetByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				return nil, errors.IncompleteProfile("clinician")
			}
			return nil, err
		}
		accessCtx.ClinicianID = clinician.ID
	}

	r.cache.SetDefault(userID.String(), accessCtx)
	return accessCtx, nil
}

// Invalidate drops the cached context for a user, for use after onboarding
// completes a previously missing profile.
func (r *Resolver) Invalidate(userID uuid.UUID) {
	r.cache.Delete(userID.String())
}
