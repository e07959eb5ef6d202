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

type clinicRepository struct {
	BaseRepository
}

func NewClinicRepository(base BaseRepository) repository.ClinicRepository {
	return &clinicRepository{base}
}

const clinicColumns = `id, name, clinic_code, created_at`

func (r *clinicRepository) Create(ctx context.Context, clinic *model.Clinic) error {
	query := `
		INSERT INTO clinics (id, name, clinic_code, created_at)
		VALUES (:id, :name, :clinic_code, :created_at)
	`
	if clinic.ID == uuid.Nil {
		clinic.ID = uuid.New()
	}

	if _, err := r.db.NamedExecContext(ctx, query, clinic); err != nil {
		if uniqueViolation(err, "clinic_code") {
			return errors.Conflict("clinic code already in use", err)
		}
		return fmt.Errorf("failed to create clinic: %w", err)
	}
	return nil
}

func (r *clinicRepository) Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	query := r.rebind(`SELECT ` + clinicColumns + ` FROM clinics WHERE id = ?`)

	var clinic model.Clinic
	if err := r.db.GetContext(ctx, &clinic, query, id); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("clinic", err)
		}
		return nil, fmt.Errorf("failed to get clinic: %w", err)
	}
	return &clinic, nil
}

func (r *clinicRepository) GetByCode(ctx context.Context, code string) (*model.Clinic, error) {
	query := r.rebind(`SELECT ` + clinicColumns + ` FROM clinics WHERE clinic_code = ?`)

	var clinic model.Clinic
	if err := r.db.GetContext(ctx, &clinic, query, code); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("clinic", err)
		}
		return nil, fmt.Errorf("failed to get clinic by code: %w", err)
	}
	return &clinic, nil
}

func (r *clinicRepository) List(ctx context.Context) ([]*model.Clinic, error) {
	query := `SELECT ` + clinicColumns + ` FROM clinics ORDER BY name ASC, created_at ASC`

	var clinics []*model.Clinic
	if err := r.db.SelectContext(ctx, &clinics, query); err != nil {
		return nil, fmt.Errorf("failed to list clinics: %w", err)
	}
	return clinics, nil
}
