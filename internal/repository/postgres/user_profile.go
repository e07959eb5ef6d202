package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/followups/internal/model"
	"github.com/jwalitptl/followups/internal/repository"
	"github.com/jwalitptl/followups/pkg/errors"
)

type userProfileRepository struct {
	BaseRepository
}

func NewUserProfileRepository(base BaseRepository) repository.UserProfileRepository {
	return &userProfileRepository{base}
}

func (r *userProfileRepository) Create(ctx context.Context, profile *model.UserProfile) error {
	query := `
		INSERT INTO user_profiles (id, user_id, clinic_id, created_at)
		VALUES (:id, :user_id, :clinic_id, :created_at)
	`
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}

	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		if uniqueViolation(err, "user_id") {
			return errors.Conflict("user is already bound to a clinic", err)
		}
		return fmt.Errorf("failed to create user profile: %w", err)
	}
	return nil
}

func (r *userProfileRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*model.UserProfile, error) {
	query := r.rebind(`
		SELECT id, user_id, clinic_id, created_at
		FROM user_profiles
		WHERE user_id = ?
	`)

	var profile model.UserProfile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("clinic profile", err)
		}
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}
	return &profile, nil
}
