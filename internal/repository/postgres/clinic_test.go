package postgres_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/followups/internal/model"
	"github.com/jwalitptl/followups/pkg/errors"
)

func TestClinicCreateAndLookup(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	c := fx.clinic(t, "abc")

	got, err := fx.clinics.GetByCode(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, "Clinic abc", got.Name)

	got, err = fx.clinics.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "abc", got.ClinicCode)

	_, err = fx.clinics.GetByCode(ctx, "zzz")
	assert.True(t, errors.IsNotFound(err))

	err = fx.clinics.Create(ctx, &model.Clinic{Name: "dup", ClinicCode: "abc", CreatedAt: t0})
	assert.True(t, errors.HasCode(err, errors.ErrConflict))

	list, err := fx.clinics.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUserProfileOneBindingPerUser(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	a := fx.clinic(t, "a")
	b := fx.clinic(t, "b")
	user := uuid.New()

	require.NoError(t, fx.profiles.Create(ctx, &model.UserProfile{UserID: user, ClinicID: a.ID, CreatedAt: t0}))

	err := fx.profiles.Create(ctx, &model.UserProfile{UserID: user, ClinicID: b.ID, CreatedAt: t0})
	assert.True(t, errors.HasCode(err, errors.ErrConflict))

	p, err := fx.profiles.GetByUser(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, a.ID, p.ClinicID)

	_, err = fx.profiles.GetByUser(ctx, uuid.New())
	assert.True(t, errors.IsNotFound(err))
}

func TestViewLogAppend(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	a := fx.clinic(t, "a")
	f := fx.followUp(t, a.ID, "ravi", model.NewDate(2026, 3, 5), model.StatusPending)

	ip := "203.0.113.7"
	require.NoError(t, fx.views.Create(ctx, &model.PublicViewLog{FollowUpID: f.ID, ViewedAt: t0, IPAddress: &ip, UserAgent: "curl"}))
	require.NoError(t, fx.views.Create(ctx, &model.PublicViewLog{FollowUpID: f.ID, ViewedAt: t0}))

	n, err := fx.views.CountByFollowUp(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// foreign keys are enforced
	err = fx.views.Create(ctx, &model.PublicViewLog{FollowUpID: uuid.New(), ViewedAt: t0})
	assert.Error(t, err)
}
