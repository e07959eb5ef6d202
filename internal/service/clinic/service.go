// Package clinic manages the clinic registry and staff bindings. These are
// operator actions and are reached through the CLI only.
package clinic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/followups/internal/model"
	"github.com/jwalitptl/followups/internal/repository"
	"github.com/jwalitptl/followups/pkg/errors"
	"github.com/jwalitptl/followups/pkg/token"
	"github.com/jwalitptl/followups/pkg/validator"
)

// codeAttempts bounds retries when a generated clinic code collides.
const codeAttempts = 3

type ClinicServicer interface {
	CreateClinic(ctx context.Context, name string) (*model.Clinic, error)
	GetClinicByCode(ctx context.Context, code string) (*model.Clinic, error)
	ListClinics(ctx context.Context) ([]*model.Clinic, error)
	BindUser(ctx context.Context, userID, clinicID uuid.UUID) (*model.UserProfile, error)
	ProfileForUser(ctx context.Context, userID uuid.UUID) (*model.UserProfile, error)
}

type Service struct {
	clinics  repository.ClinicRepository
	profiles repository.UserProfileRepository
	validate *validator.Validator
	newCode  token.Generator
	now      func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithCodeGenerator(gen token.Generator) Option {
	return func(s *Service) { s.newCode = gen }
}

func NewService(clinics repository.ClinicRepository, profiles repository.UserProfileRepository, v *validator.Validator, opts ...Option) *Service {
	s := &Service{
		clinics:  clinics,
		profiles: profiles,
		validate: v,
		newCode:  token.ClinicCode,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) CreateClinic(ctx context.Context, name string) (*model.Clinic, error) {
	in := model.CreateClinicInput{Name: strings.TrimSpace(name)}
	if fields := s.validate.Check(in); fields != nil {
		return nil, errors.Validation(fields)
	}

	var lastErr error
	for attempt := 0; attempt < codeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, errors.Internal(err)
		}

		clinic := &model.Clinic{
			ID:         uuid.New(),
			Name:       in.Name,
			ClinicCode: code,
			CreatedAt:  s.now().UTC(),
		}
		err = s.clinics.Create(ctx, clinic)
		if err == nil {
			log.Ctx(ctx).Info().
				Str("clinic_id", clinic.ID.String()).
				Msg("clinic created")
			return clinic, nil
		}
		if !errors.HasCode(err, errors.ErrConflict) {
			return nil, fmt.Errorf("failed to create clinic: %w", err)
		}
		lastErr = err
		log.Ctx(ctx).Warn().Int("attempt", attempt+1).Msg("clinic code collision")
	}
	return nil, fmt.Errorf("failed to create clinic: %w", lastErr)
}

func (s *Service) GetClinicByCode(ctx context.Context, code string) (*model.Clinic, error) {
	return s.clinics.GetByCode(ctx, strings.TrimSpace(code))
}

func (s *Service) ListClinics(ctx context.Context) ([]*model.Clinic, error) {
	return s.clinics.List(ctx)
}

// BindUser attaches a staff user to a clinic. A user can be bound once.
func (s *Service) BindUser(ctx context.Context, userID, clinicID uuid.UUID) (*model.UserProfile, error) {
	if userID == uuid.Nil {
		return nil, errors.Validation(map[string]string{"user_id": "This field is required."})
	}
	if _, err := s.clinics.Get(ctx, clinicID); err != nil {
		return nil, err
	}

	profile := &model.UserProfile{
		ID:        uuid.New(),
		UserID:    userID,
		ClinicID:  clinicID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().
		Str("user_id", userID.String()).
		Str("clinic_id", clinicID.String()).
		Msg("staff bound to clinic")
	return profile, nil
}

func (s *Service) ProfileForUser(ctx context.Context, userID uuid.UUID) (*model.UserProfile, error) {
	return s.profiles.GetByUser(ctx, userID)
}
