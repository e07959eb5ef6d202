package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/followups/internal/model"
	"github.com/jwalitptl/followups/internal/repository"
	"github.com/jwalitptl/followups/internal/repository/postgres"
	"github.com/jwalitptl/followups/internal/testutil"
	"github.com/jwalitptl/followups/pkg/errors"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	clinics   repository.ClinicRepository
	profiles  repository.UserProfileRepository
	followUps repository.FollowUpRepository
	views     repository.ViewLogRepository
}

func newFixture(t *testing.T) *fixture {
	base := postgres.NewBaseRepository(testutil.NewDB(t))
	return &fixture{
		clinics:   postgres.NewClinicRepository(base),
		profiles:  postgres.NewUserProfileRepository(base),
		followUps: postgres.NewFollowUpRepository(base),
		views:     postgres.NewViewLogRepository(base),
	}
}

func (fx *fixture) clinic(t *testing.T, code string) *model.Clinic {
	t.Helper()
	c := &model.Clinic{Name: "Clinic " + code, ClinicCode: code, CreatedAt: t0}
	require.NoError(t, fx.clinics.Create(context.Background(), c))
	return c
}

func (fx *fixture) followUp(t *testing.T, clinicID uuid.UUID, name string, due model.Date, status model.Status) *model.FollowUp {
	t.Helper()
	f := &model.FollowUp{
		Base:        model.Base{CreatedAt: t0, UpdatedAt: t0},
		ClinicID:    clinicID,
		CreatedBy:   uuid.New(),
		PatientName: name,
		Phone:       "9999999999",
		Language:    model.LanguageEN,
		DueDate:     due,
		Status:      status,
		PublicToken: fmt.Sprintf("tok-%s-%s", name, uuid.NewString()[:8]),
	}
	require.NoError(t, fx.followUps.Create(context.Background(), f))
	return f
}

func TestFollowUpGetIsClinicScoped(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	a := fx.clinic(t, "code-a")
	b := fx.clinic(t, "code-b")
	f := fx.followUp(t, a.ID, "asha", model.NewDate(2026, 3, 5), model.StatusPending)

	got, err := fx.followUps.Get(ctx, a.ID, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "asha", got.PatientName)
	assert.Equal(t, "2026-03-05", got.DueDate.String())
	assert.Equal(t, f.PublicToken, got.PublicToken)

	_, err = fx.followUps.Get(ctx, b.ID, f.ID)
	assert.True(t, errors.IsNotFound(err))

	_, err = fx.followUps.Get(ctx, a.ID, uuid.New())
	assert.True(t, errors.IsNotFound(err))
}

func TestFollowUpGetByToken(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	a := fx.clinic(t, "code-a")
	f := fx.followUp(t, a.ID, "ravi", model.NewDate(2026, 3, 5), model.StatusPending)

	got, err := fx.followUps.GetByToken(ctx, f.PublicToken)
	require.NoError(t, err)
	assert.Equal(t, f.ID, got.ID)

	_, err = fx.followUps.GetByToken(ctx, "missing")
	assert.True(t, errors.IsNotFound(err))
}

func TestFollowUpDuplicateTokenIsConflict(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	a := fx.clinic(t, "code-a")
	f := fx.followUp(t, a.ID, "ravi", model.NewDate(2026, 3, 5), model.StatusPending)

	dup := *f
	dup.ID = uuid.Nil
	err := fx.followUps.Create(ctx, &dup)
	assert.True(t, errors.HasCode(err, errors.ErrConflict))
}

func TestFollowUpListFiltersAndOrder(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	a := fx.clinic(t, "code-a")
	b := fx.clinic(t, "code-b")

	late := fx.followUp(t, a.ID, "late", model.NewDate(2026, 3, 20), model.StatusPending)
	early := fx.followUp(t, a.ID, "early", model.NewDate(2026, 3, 2), model.StatusDone)
	mid := fx.followUp(t, a.ID, "mid", model.NewDate(2026, 3, 10), model.StatusPending)
	fx.followUp(t, b.ID, "other", model.NewDate(2026, 3, 10), model.StatusPending)

	for i := 0; i < 2; i++ {
		require.NoError(t, fx.views.Create(ctx, &model.PublicViewLog{FollowUpID: mid.ID, ViewedAt: t0}))
	}

	all, err := fx.followUps.List(ctx, a.ID, model.ListFilters{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uuid.UUID{early.ID, mid.ID, late.ID}, []uuid.UUID{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, 2, all[1].ViewCount)
	assert.Equal(t, 0, all[0].ViewCount)

	pending, err := fx.followUps.List(ctx, a.ID, model.ListFilters{Status: model.StatusPending})
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	// bounds are inclusive
	ranged, err := fx.followUps.List(ctx, a.ID, model.ListFilters{
		StartDate: model.NewDate(2026, 3, 2),
		EndDate:   model.NewDate(2026, 3, 10),
	})
	require.NoError(t, err)
	require.Len(t, ranged, 2)
	assert.Equal(t, early.ID, ranged[0].ID)
	assert.Equal(t, mid.ID, ranged[1].ID)

	empty, err := fx.followUps.List(ctx, a.ID, model.ListFilters{StartDate: model.NewDate(2027, 1, 1)})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFollowUpSummary(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	a := fx.clinic(t, "code-a")
	b := fx.clinic(t, "code-b")

	fx.followUp(t, a.ID, "one", model.NewDate(2026, 3, 2), model.StatusPending)
	fx.followUp(t, a.ID, "two", model.NewDate(2026, 3, 3), model.StatusPending)
	fx.followUp(t, a.ID, "three", model.NewDate(2026, 3, 4), model.StatusDone)
	fx.followUp(t, b.ID, "four", model.NewDate(2026, 3, 4), model.StatusDone)

	s, err := fx.followUps.Summary(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Summary{Total: 3, Pending: 2, Done: 1}, s)

	empty, err := fx.followUps.Summary(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, model.Summary{}, empty)
}

func TestFollowUpMarkDone(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	a := fx.clinic(t, "code-a")
	b := fx.clinic(t, "code-b")
	f := fx.followUp(t, a.ID, "ravi", model.NewDate(2026, 3, 5), model.StatusPending)

	_, _, err := fx.followUps.MarkDone(ctx, b.ID, f.ID, t0)
	assert.True(t, errors.IsNotFound(err))

	first := t0.Add(time.Hour)
	got, changed, err := fx.followUps.MarkDone(ctx, a.ID, f.ID, first)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, model.StatusDone, got.Status)
	assert.True(t, got.UpdatedAt.Equal(first))

	got, changed, err = fx.followUps.MarkDone(ctx, a.ID, f.ID, t0.Add(2*time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.True(t, got.UpdatedAt.Equal(first))
}

func TestFollowUpUpdate(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	a := fx.clinic(t, "code-a")
	b := fx.clinic(t, "code-b")
	f := fx.followUp(t, a.ID, "ravi", model.NewDate(2026, 3, 5), model.StatusPending)

	got, err := fx.followUps.Update(ctx, a.ID, f.ID, func(f *model.FollowUp) error {
		f.Notes = "call after 5pm"
		f.DueDate = model.NewDate(2026, 2, 1)
		f.ClinicID = b.ID
		f.UpdatedAt = t0.Add(time.Minute)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ClinicID)

	stored, err := fx.followUps.Get(ctx, a.ID, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "call after 5pm", stored.Notes)
	assert.Equal(t, "2026-02-01", stored.DueDate.String())
	assert.True(t, stored.UpdatedAt.Equal(t0.Add(time.Minute)))

	// a failing mutation writes nothing
	_, err = fx.followUps.Update(ctx, a.ID, f.ID, func(f *model.FollowUp) error {
		f.Notes = "discarded"
		return errors.Validation(map[string]string{"phone": "bad"})
	})
	assert.True(t, errors.HasCode(err, errors.ErrValidation))

	stored, err = fx.followUps.Get(ctx, a.ID, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "call after 5pm", stored.Notes)

	_, err = fx.followUps.Update(ctx, b.ID, f.ID, func(*model.FollowUp) error { return nil })
	assert.True(t, errors.IsNotFound(err))
}
