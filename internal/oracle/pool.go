// Package oracle implements the Oráculo do Coração swipe-matching core:
// candidate loading and filtering, the per-user deck state machine, and
// the match side-effect pipeline.
package oracle

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/portaltarot/oraculo/internal/model"
	"github.com/portaltarot/oraculo/internal/repository"
)

// DefaultPageSize bounds how many profiles one load fetches.
const DefaultPageSize = 100

// Loader fetches the raw data behind a candidate pool.
type Loader struct {
	users    repository.UserRepository
	conns    repository.ConnectionRepository
	pageSize int
	log      *zap.Logger
}

// NewLoader constructs a Loader. pageSize <= 0 falls back to DefaultPageSize.
func NewLoader(users repository.UserRepository, conns repository.ConnectionRepository, pageSize int, log *zap.Logger) *Loader {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Loader{users: users, conns: conns, pageSize: pageSize, log: log}
}

// LoadPool fetches recent profiles plus the current user's outgoing connections
// and returns the filtered, ranked candidate pool. A failed fetch degrades to an
// empty pool with a logged warning; an empty pool is a valid terminal state.
func (l *Loader) LoadPool(ctx context.Context, current *model.Profile) []model.Profile {
	all, err := l.users.List(ctx, l.pageSize)
	if err != nil {
		l.log.Warn("candidate load failed", zap.String("user", current.ID.String()), zap.Error(err))
		return nil
	}
	mine, err := l.conns.ListFollowing(ctx, current.ID)
	if err != nil {
		l.log.Warn("connection load failed", zap.String("user", current.ID.String()), zap.Error(err))
		return nil
	}
	return FilterCandidates(all, mine, current.ID)
}

// FilterCandidates applies the eligibility rules and featured-first ranking.
// It is a pure function: same inputs always yield the same output sequence.
//
// A candidate is excluded if it is the current user, already followed,
// missing avatar or display name, partnered, or opted out of the oracle.
// Featured profiles are moved ahead of the rest; relative order within each
// class follows the input order (stable partition).
func FilterCandidates(all []model.Profile, mine []model.Connection, currentID uuid.UUID) []model.Profile {
	followed := make(map[uuid.UUID]struct{}, len(mine))
	for _, c := range mine {
		followed[c.FollowingID] = struct{}{}
	}

	var featured, rest []model.Profile
	for _, p := range all {
		if p.ID == currentID {
			continue
		}
		if _, ok := followed[p.ID]; ok {
			continue
		}
		if p.AvatarURL == "" || p.DisplayName == "" {
			continue
		}
		if p.Relationship.Partnered() {
			continue
		}
		if !p.VisibleInOraculo {
			continue
		}
		if p.FeaturedProfile {
			featured = append(featured, p)
		} else {
			rest = append(rest, p)
		}
	}
	return append(featured, rest...)
}
