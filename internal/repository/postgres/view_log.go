package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/followups/internal/model"
	"github.com/jwalitptl/followups/internal/repository"
)

type viewLogRepository struct {
	BaseRepository
}

// NewViewLogRepository returns the public view log. Rows are only ever
// inserted.
func NewViewLogRepository(base BaseRepository) repository.ViewLogRepository {
	return &viewLogRepository{base}
}

func (r *viewLogRepository) Create(ctx context.Context, log *model.PublicViewLog) error {
	query := `
		INSERT INTO public_view_logs (id, followup_id, viewed_at, ip_address, user_agent)
		VALUES (:id, :followup_id, :viewed_at, :ip_address, :user_agent)
	`
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}

	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("failed to create public view log: %w", err)
	}
	return nil
}

func (r *viewLogRepository) CountByFollowUp(ctx context.Context, followUpID uuid.UUID) (int, error) {
	query := r.rebind(`SELECT COUNT(*) FROM public_view_logs WHERE followup_id = ?`)

	var n int
	if err := r.db.GetContext(ctx, &n, query, followUpID); err != nil {
		return 0, fmt.Errorf("failed to count public view logs: %w", err)
	}
	return n, nil
}
