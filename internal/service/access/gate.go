// Package access resolves which clinic a staff identity may act for.
package access

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/followups/internal/repository"
	"github.com/jwalitptl/followups/pkg/auth"
	"github.com/jwalitptl/followups/pkg/errors"
)

// ClinicResolver is what clinic-scoped services depend on.
type ClinicResolver interface {
	ClinicFor(ctx context.Context, id auth.Identity) (uuid.UUID, error)
}

// Gate maps an authenticated identity to its bound clinic. A missing binding
// is reported as not found so callers cannot tell it apart from a missing
// record.
type Gate struct {
	profiles repository.UserProfileRepository
	cache    *cache.Cache
}

// NewGate caches bindings for ttl; zero disables caching.
func NewGate(profiles repository.UserProfileRepository, ttl time.Duration) *Gate {
	g := &Gate{profiles: profiles}
	if ttl > 0 {
		g.cache = cache.New(ttl, 2*ttl)
	}
	return g
}

func (g *Gate) ClinicFor(ctx context.Context, id auth.Identity) (uuid.UUID, error) {
	if id.IsZero() {
		return uuid.Nil, errors.Unauthorized(nil)
	}

	key := id.UserID.String()
	if g.cache != nil {
		if v, ok := g.cache.Get(key); ok {
			return v.(uuid.UUID), nil
		}
	}

	profile, err := g.profiles.GetByUser(ctx, id.UserID)
	if err != nil {
		return uuid.Nil, err
	}

	if g.cache != nil {
		g.cache.SetDefault(key, profile.ClinicID)
	}
	return profile.ClinicID, nil
}
