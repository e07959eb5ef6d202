package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/followups/internal/model"
)

// All repository interfaces in one file
type (
	ClinicRepository interface {
		Create(ctx context.Context, clinic *model.Clinic) error
		Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error)
		GetByCode(ctx context.Context, code string) (*model.Clinic, error)
		List(ctx context.Context) ([]*model.Clinic, error)
	}

	UserProfileRepository interface {
		Create(ctx context.Context, profile *model.UserProfile) error
		GetByUser(ctx context.Context, userID uuid.UUID) (*model.UserProfile, error)
	}

	// FollowUpRepository scopes every staff query by clinic. Only GetByToken
	// ignores tenancy.
	FollowUpRepository interface {
		Create(ctx context.Context, followUp *model.FollowUp) error
		Get(ctx context.Context, clinicID, id uuid.UUID) (*model.FollowUp, error)
		GetByToken(ctx context.Context, token string) (*model.FollowUp, error)
		// Update loads the record under a row lock, lets fn modify it and
		// writes every mutable column back in the same transaction. An error
		// from fn aborts without writing.
		Update(ctx context.Context, clinicID, id uuid.UUID, fn func(*model.FollowUp) error) (*model.FollowUp, error)
		// MarkDone reports whether the row transitioned; an already done
		// record is returned untouched.
		MarkDone(ctx context.Context, clinicID, id uuid.UUID, at time.Time) (*model.FollowUp, bool, error)
		List(ctx context.Context, clinicID uuid.UUID, filters model.ListFilters) ([]*model.FollowUpRow, error)
		Summary(ctx context.Context, clinicID uuid.UUID) (model.Summary, error)
	}

	ViewLogRepository interface {
		Create(ctx context.Context, log *model.PublicViewLog) error
		CountByFollowUp(ctx context.Context, followUpID uuid.UUID) (int, error)
	}
)
