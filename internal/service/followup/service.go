// Package followup implements the clinic-scoped follow-up record store.
// Every staff operation resolves the caller's clinic first and passes it to
// the repository as a mandatory predicate.
package followup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/followups/internal/model"
	"github.com/jwalitptl/followups/internal/repository"
	"github.com/jwalitptl/followups/internal/service/access"
	"github.com/jwalitptl/followups/pkg/auth"
	"github.com/jwalitptl/followups/pkg/errors"
	"github.com/jwalitptl/followups/pkg/metrics"
	"github.com/jwalitptl/followups/pkg/token"
	"github.com/jwalitptl/followups/pkg/validator"
)

const (
	tokenAttempts = 3

	msgPastDueDate = "Due date cannot be in the past."
	msgRequired    = "This field is required."
)

type FollowUpServicer interface {
	Create(ctx context.Context, id auth.Identity, in model.CreateFollowUpInput) (*model.FollowUp, error)
	Update(ctx context.Context, id auth.Identity, followUpID uuid.UUID, in model.UpdateFollowUpInput) (*model.FollowUp, error)
	MarkDone(ctx context.Context, id auth.Identity, followUpID uuid.UUID) (*model.FollowUp, error)
	Get(ctx context.Context, id auth.Identity, followUpID uuid.UUID) (*model.FollowUp, error)
	List(ctx context.Context, id auth.Identity, filters model.ListFilters) (*model.Dashboard, error)
	Choices(ctx context.Context, id auth.Identity) (*model.FormChoices, error)
	Import(ctx context.Context, id auth.Identity, rows []model.ImportRow) (*model.ImportResult, error)
	GetByToken(ctx context.Context, publicToken string) (*model.FollowUp, error)
}

type Service struct {
	repo     repository.FollowUpRepository
	gate     access.ClinicResolver
	validate *validator.Validator
	metrics  *metrics.Metrics
	newToken token.Generator
	now      func() time.Time
	loc      *time.Location
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithTokenGenerator(gen token.Generator) Option {
	return func(s *Service) { s.newToken = gen }
}

// WithLocation sets the zone whose calendar decides what "today" is.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

func NewService(repo repository.FollowUpRepository, gate access.ClinicResolver, v *validator.Validator, m *metrics.Metrics, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		gate:     gate,
		validate: v,
		metrics:  m,
		newToken: token.PublicToken,
		now:      time.Now,
		loc:      time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) today() model.Date {
	return model.DateOf(s.now().In(s.loc))
}

func (s *Service) Create(ctx context.Context, id auth.Identity, in model.CreateFollowUpInput) (*model.FollowUp, error) {
	clinicID, err := s.gate.ClinicFor(ctx, id)
	if err != nil {
		return nil, err
	}

	in.Normalize()
	fields := s.validate.Check(in)
	switch {
	case in.DueDate.IsZero():
		fields = withField(fields, "due_date", msgRequired)
	case in.DueDate.Before(s.today()):
		fields = withField(fields, "due_date", msgPastDueDate)
	}
	if fields != nil {
		return nil, errors.Validation(fields)
	}

	now := s.now().UTC()
	f := &model.FollowUp{
		Base:        model.Base{CreatedAt: now, UpdatedAt: now},
		ClinicID:    clinicID,
		CreatedBy:   id.UserID,
		PatientName: in.PatientName,
		Phone:       in.Phone,
		Language:    in.Language,
		Notes:       in.Notes,
		DueDate:     in.DueDate,
		Status:      model.StatusPending,
	}
	if err := s.insert(ctx, f); err != nil {
		return nil, err
	}

	s.metrics.FollowUpsCreated.Inc()
	log.Ctx(ctx).Info().
		Str("followup_id", f.ID.String()).
		Str("clinic_id", clinicID.String()).
		Msg("follow-up created")
	return f, nil
}

// insert assigns a fresh public token and id, retrying when the token
// collides with an existing one.
func (s *Service) insert(ctx context.Context, f *model.FollowUp) error {
	var lastErr error
	for attempt := 0; attempt < tokenAttempts; attempt++ {
		tok, err := s.newToken()
		if err != nil {
			return errors.Internal(err)
		}
		f.ID = uuid.New()
		f.PublicToken = tok

		err = s.repo.Create(ctx, f)
		if err == nil {
			return nil
		}
		if !errors.HasCode(err, errors.ErrConflict) {
			return fmt.Errorf("failed to create follow-up: %w", err)
		}
		lastErr = err
		log.Ctx(ctx).Warn().Int("attempt", attempt+1).Msg("public token collision")
	}
	return fmt.Errorf("failed to create follow-up: %w", lastErr)
}

// Update applies a partial change set. The due date may move into the past
// here; only creation enforces futurity.
func (s *Service) Update(ctx context.Context, id auth.Identity, followUpID uuid.UUID, in model.UpdateFollowUpInput) (*model.FollowUp, error) {
	clinicID, err := s.gate.ClinicFor(ctx, id)
	if err != nil {
		return nil, err
	}

	in.Normalize()
	f, err := s.repo.Update(ctx, clinicID, followUpID, func(f *model.FollowUp) error {
		fields := s.validate.Check(in)
		if in.PatientName != nil && *in.PatientName == "" {
			fields = setField(fields, "patient_name", msgRequired)
		}
		if in.Phone != nil && *in.Phone == "" {
			fields = setField(fields, "phone", msgRequired)
		}
		if in.DueDate != nil && in.DueDate.IsZero() {
			fields = setField(fields, "due_date", msgRequired)
		}
		if fields != nil {
			return errors.Validation(fields)
		}
		in.Apply(f)
		f.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().Str("followup_id", f.ID.String()).Msg("follow-up updated")
	return f, nil
}

// MarkDone is idempotent: a record that is already done is returned as is.
func (s *Service) MarkDone(ctx context.Context, id auth.Identity, followUpID uuid.UUID) (*model.FollowUp, error) {
	clinicID, err := s.gate.ClinicFor(ctx, id)
	if err != nil {
		return nil, err
	}

	f, changed, err := s.repo.MarkDone(ctx, clinicID, followUpID, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if changed {
		s.metrics.FollowUpsCompleted.Inc()
		log.Ctx(ctx).Info().Str("followup_id", f.ID.String()).Msg("follow-up marked done")
	}
	return f, nil
}

func (s *Service) Get(ctx context.Context, id auth.Identity, followUpID uuid.UUID) (*model.FollowUp, error) {
	clinicID, err := s.gate.ClinicFor(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, clinicID, followUpID)
}

// List returns the filtered rows together with clinic-wide counts that
// ignore the filters.
func (s *Service) List(ctx context.Context, id auth.Identity, filters model.ListFilters) (*model.Dashboard, error) {
	clinicID, err := s.gate.ClinicFor(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.List(ctx, clinicID, filters)
	if err != nil {
		return nil, err
	}
	summary, err := s.repo.Summary(ctx, clinicID)
	if err != nil {
		return nil, err
	}

	return &model.Dashboard{
		FollowUps: rows,
		Summary:   summary,
		Filters:   filters,
	}, nil
}

func (s *Service) Choices(ctx context.Context, id auth.Identity) (*model.FormChoices, error) {
	if _, err := s.gate.ClinicFor(ctx, id); err != nil {
		return nil, err
	}
	return &model.FormChoices{
		Languages:       model.LanguageChoices,
		Statuses:        model.StatusChoices,
		DefaultLanguage: model.LanguageEN,
		MinDueDate:      s.today(),
	}, nil
}

// GetByToken is the clinic-agnostic lookup behind the public page.
func (s *Service) GetByToken(ctx context.Context, publicToken string) (*model.FollowUp, error) {
	if publicToken == "" {
		return nil, errors.NotFound("follow-up", nil)
	}
	return s.repo.GetByToken(ctx, publicToken)
}

// Import creates one follow-up per acceptable row. Rejected rows are
// counted, never fatal. Unlike Create, the stored phone is the bare digit
// string and the due date may lie in the past.
func (s *Service) Import(ctx context.Context, id auth.Identity, rows []model.ImportRow) (*model.ImportResult, error) {
	clinicID, err := s.gate.ClinicFor(ctx, id)
	if err != nil {
		return nil, err
	}

	res := &model.ImportResult{}
	for i, row := range rows {
		f, reason := s.fromImportRow(row)
		if f == nil {
			res.Skipped++
			s.metrics.ImportRows.WithLabelValues("skipped").Inc()
			log.Ctx(ctx).Debug().Int("row", i).Str("reason", reason).Msg("import row skipped")
			continue
		}

		f.ClinicID = clinicID
		f.CreatedBy = id.UserID
		if err := s.insert(ctx, f); err != nil {
			res.Skipped++
			s.metrics.ImportRows.WithLabelValues("skipped").Inc()
			log.Ctx(ctx).Warn().Err(err).Int("row", i).Msg("import row failed")
			continue
		}
		res.Created++
		s.metrics.ImportRows.WithLabelValues("created").Inc()
	}

	log.Ctx(ctx).Info().
		Str("clinic_id", clinicID.String()).
		Int("created", res.Created).
		Int("skipped", res.Skipped).
		Msg("import completed")
	return res, nil
}

func (s *Service) fromImportRow(row model.ImportRow) (*model.FollowUp, string) {
	name := strings.TrimSpace(row.PatientName)
	phone := strings.TrimSpace(row.Phone)
	dueRaw := strings.TrimSpace(row.DueDate)
	if name == "" || phone == "" || dueRaw == "" {
		return nil, "missing required field"
	}
	if len(name) > 255 {
		return nil, "patient name too long"
	}

	if !validator.ValidPhone(phone) {
		return nil, "invalid phone"
	}

	due, err := model.ParseDate(dueRaw)
	if err != nil {
		return nil, "invalid due date"
	}

	lang := strings.TrimSpace(row.Language)
	if lang == "" {
		lang = string(model.LanguageEN)
	}
	if len(lang) > 2 {
		return nil, "language too long"
	}

	now := s.now().UTC()
	return &model.FollowUp{
		Base:        model.Base{CreatedAt: now, UpdatedAt: now},
		PatientName: name,
		Phone:       validator.Digits(phone),
		Language:    model.Language(lang),
		Notes:       strings.TrimSpace(row.Notes),
		DueDate:     due,
		Status:      model.StatusPending,
	}, ""
}

// withField adds msg unless name already failed another rule.
func withField(fields map[string]string, name, msg string) map[string]string {
	if _, ok := fields[name]; ok {
		return fields
	}
	return setField(fields, name, msg)
}

func setField(fields map[string]string, name, msg string) map[string]string {
	if fields == nil {
		fields = map[string]string{}
	}
	fields[name] = msg
	return fields
}
