// Package public serves the patient-facing follow-up page. Access is by
// public token alone; every successful read appends one view log row.
package public

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/followups/internal/model"
	"github.com/jwalitptl/followups/internal/repository"
	"github.com/jwalitptl/followups/pkg/metrics"
)

// TokenResolver finds a follow-up by its public token.
type TokenResolver interface {
	GetByToken(ctx context.Context, publicToken string) (*model.FollowUp, error)
}

// RequestMeta is what the view log records about the requester. Both fields
// are optional.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

type PublicServicer interface {
	View(ctx context.Context, publicToken string, meta RequestMeta) (*model.PublicView, error)
}

type Service struct {
	followUps TokenResolver
	views     repository.ViewLogRepository
	metrics   *metrics.Metrics
	now       func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(followUps TokenResolver, views repository.ViewLogRepository, m *metrics.Metrics, opts ...Option) *Service {
	s := &Service{
		followUps: followUps,
		views:     views,
		metrics:   m,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// View resolves the token and records the read. A failure to write the log
// row is reported but does not fail the view.
func (s *Service) View(ctx context.Context, publicToken string, meta RequestMeta) (*model.PublicView, error) {
	f, err := s.followUps.GetByToken(ctx, publicToken)
	if err != nil {
		return nil, err
	}

	entry := &model.PublicViewLog{
		ID:         uuid.New(),
		FollowUpID: f.ID,
		ViewedAt:   s.now().UTC(),
		IPAddress:  parseIP(meta.IPAddress),
		UserAgent:  meta.UserAgent,
	}
	if err := s.views.Create(ctx, entry); err != nil {
		s.metrics.ViewLogFailures.Inc()
		log.Ctx(ctx).Error().Err(err).
			Str("followup_id", f.ID.String()).
			Msg("failed to record public view")
	}
	s.metrics.PublicViews.Inc()

	return &model.PublicView{
		PatientName: f.PatientName,
		DueDate:     f.DueDate,
		Status:      f.Status,
		Language:    f.Language,
		Message:     Message(f.Language),
	}, nil
}

// parseIP keeps only well-formed addresses, normalised.
func parseIP(raw string) *string {
	ip := net.ParseIP(strings.TrimSpace(raw))
	if ip == nil {
		return nil
	}
	s := ip.String()
	return &s
}
