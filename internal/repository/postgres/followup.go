package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/followups/internal/model"
	"github.com/jwalitptl/followups/internal/repository"
	"github.com/jwalitptl/followups/pkg/errors"
)

type followUpRepository struct {
	BaseRepository
}

func NewFollowUpRepository(base BaseRepository) repository.FollowUpRepository {
	return &followUpRepository{base}
}

const followUpColumns = `
	f.id, f.clinic_id, f.created_by, f.patient_name, f.phone, f.language,
	f.notes, f.due_date, f.status, f.public_token, f.created_at, f.updated_at`

func (r *followUpRepository) Create(ctx context.Context, f *model.FollowUp) error {
	query := `
		INSERT INTO followups (
			id, clinic_id, created_by, patient_name, phone, language,
			notes, due_date, status, public_token, created_at, updated_at
		) VALUES (
			:id, :clinic_id, :created_by, :patient_name, :phone, :language,
			:notes, :due_date, :status, :public_token, :created_at, :updated_at
		)
	`
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}

	if _, err := r.db.NamedExecContext(ctx, query, f); err != nil {
		if uniqueViolation(err, "public_token") {
			return errors.Conflict("public token already in use", err)
		}
		return fmt.Errorf("failed to create follow-up: %w", err)
	}
	return nil
}

func (r *followUpRepository) Get(ctx context.Context, clinicID, id uuid.UUID) (*model.FollowUp, error) {
	return r.get(ctx, r.db, clinicID, id, "")
}

// get is shared by plain reads and the locked read inside Update.
func (r *followUpRepository) get(ctx context.Context, q sqlx.QueryerContext, clinicID, id uuid.UUID, suffix string) (*model.FollowUp, error) {
	query := r.rebind(`SELECT ` + followUpColumns + `
		FROM followups f
		WHERE f.id = ? AND f.clinic_id = ?` + suffix)

	var f model.FollowUp
	if err := sqlx.GetContext(ctx, q, &f, query, id, clinicID); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("follow-up", err)
		}
		return nil, fmt.Errorf("failed to get follow-up: %w", err)
	}
	return &f, nil
}

func (r *followUpRepository) GetByToken(ctx context.Context, token string) (*model.FollowUp, error) {
	query := r.rebind(`SELECT ` + followUpColumns + `
		FROM followups f
		WHERE f.public_token = ?`)

	var f model.FollowUp
	if err := r.db.GetContext(ctx, &f, query, token); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("follow-up", err)
		}
		return nil, fmt.Errorf("failed to get follow-up by token: %w", err)
	}
	return &f, nil
}

func (r *followUpRepository) Update(ctx context.Context, clinicID, id uuid.UUID, fn func(*model.FollowUp) error) (*model.FollowUp, error) {
	query := `
		UPDATE followups SET
			patient_name = :patient_name,
			phone = :phone,
			language = :language,
			notes = :notes,
			due_date = :due_date,
			status = :status,
			updated_at = :updated_at
		WHERE id = :id AND clinic_id = :clinic_id
	`

	var updated *model.FollowUp
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		f, err := r.get(ctx, tx, clinicID, id, r.forUpdate())
		if err != nil {
			return err
		}
		if err := fn(f); err != nil {
			return err
		}
		// ownership and the token are not writable through this path
		f.ID, f.ClinicID = id, clinicID

		if _, err := tx.NamedExecContext(ctx, query, f); err != nil {
			return fmt.Errorf("failed to update follow-up: %w", err)
		}
		updated = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *followUpRepository) MarkDone(ctx context.Context, clinicID, id uuid.UUID, at time.Time) (*model.FollowUp, bool, error) {
	query := r.rebind(`
		UPDATE followups
		SET status = ?, updated_at = ?
		WHERE id = ? AND clinic_id = ? AND status <> ?
	`)

	res, err := r.db.ExecContext(ctx, query, model.StatusDone, at, id, clinicID, model.StatusDone)
	if err != nil {
		return nil, false, fmt.Errorf("failed to mark follow-up done: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to mark follow-up done: %w", err)
	}

	f, err := r.Get(ctx, clinicID, id)
	if err != nil {
		return nil, false, err
	}
	return f, n > 0, nil
}

func (r *followUpRepository) List(ctx context.Context, clinicID uuid.UUID, filters model.ListFilters) ([]*model.FollowUpRow, error) {
	conds := []string{"f.clinic_id = ?"}
	args := []interface{}{clinicID}

	if filters.Status != "" {
		conds = append(conds, "f.status = ?")
		args = append(args, filters.Status)
	}
	if !filters.StartDate.IsZero() {
		conds = append(conds, "f.due_date >= ?")
		args = append(args, filters.StartDate)
	}
	if !filters.EndDate.IsZero() {
		conds = append(conds, "f.due_date <= ?")
		args = append(args, filters.EndDate)
	}

	query := r.rebind(`SELECT ` + followUpColumns + `,
		(SELECT COUNT(*) FROM public_view_logs v WHERE v.followup_id = f.id) AS view_count
		FROM followups f
		WHERE ` + strings.Join(conds, " AND ") + `
		ORDER BY f.due_date ASC, f.created_at ASC`)

	rows := []*model.FollowUpRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list follow-ups: %w", err)
	}
	return rows, nil
}

func (r *followUpRepository) Summary(ctx context.Context, clinicID uuid.UUID) (model.Summary, error) {
	query := r.rebind(`
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS pending,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS done
		FROM followups
		WHERE clinic_id = ?
	`)

	var s model.Summary
	if err := r.db.GetContext(ctx, &s, query, model.StatusPending, model.StatusDone, clinicID); err != nil {
		return model.Summary{}, fmt.Errorf("failed to summarise follow-ups: %w", err)
	}
	return s, nil
}
