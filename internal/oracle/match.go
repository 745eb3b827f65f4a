package oracle

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/portaltarot/oraculo/internal/errs"
	"github.com/portaltarot/oraculo/internal/events"
	"github.com/portaltarot/oraculo/internal/model"
	"github.com/portaltarot/oraculo/internal/repository"
)

// MinXPBonus is the floor of the per-match experience reward.
const MinXPBonus = 10

// XPBonus computes the experience reward for an accepted swipe:
// 2% of current xp, never below MinXPBonus.
func XPBonus(xp int64) int64 {
	bonus := xp / 50
	if bonus < MinXPBonus {
		bonus = MinXPBonus
	}
	return bonus
}

// MatchResult reports a completed match pipeline to the celebration UI.
type MatchResult struct {
	Target  model.Profile
	XPBonus int64
	NewXP   int64
}

// Matcher runs the ordered side effects of an accepted swipe.
type Matcher struct {
	users  repository.UserRepository
	conns  repository.ConnectionRepository
	notifs repository.NotificationRepository
	bus    *events.Bus
	log    *zap.Logger
}

// NewMatcher constructs a Matcher.
func NewMatcher(users repository.UserRepository, conns repository.ConnectionRepository,
	notifs repository.NotificationRepository, bus *events.Bus, log *zap.Logger) *Matcher {
	return &Matcher{users: users, conns: conns, notifs: notifs, bus: bus, log: log}
}

// Match persists the connection current->target, notifies the target and grants
// the xp bonus, strictly in that order: a notification must never reference a
// connection that was not confirmed first. Any failure aborts and is retryable;
// failures after the connection write are additionally logged as an
// orphaned-connection inconsistency (no compensating rollback is attempted).
// The quest-progress signal is fire-and-forget and cannot fail the pipeline.
// current.XP is patched only after the remote xp write succeeds.
func (m *Matcher) Match(ctx context.Context, current *model.Profile, target model.Profile) (*MatchResult, error) {
	conn := &model.Connection{
		FollowerID:      current.ID,
		FollowerName:    current.DisplayName,
		FollowerAvatar:  current.AvatarURL,
		FollowingID:     target.ID,
		FollowingName:   target.DisplayName,
		FollowingAvatar: target.AvatarURL,
	}
	if err := m.conns.Create(ctx, conn); err != nil && !errors.Is(err, errs.ErrAlreadyExists) {
		return nil, fmt.Errorf("create connection: %w", err)
	}
	// ErrAlreadyExists means a prior attempt wrote the edge and then failed
	// downstream; the retry continues from the notification step.

	nid, err := uuid.NewV4()
	if err != nil {
		m.logOrphan(current.ID, target.ID, err)
		return nil, fmt.Errorf("notification id: %w", err)
	}
	notif := &model.Notification{
		ID:             nid,
		UserID:         target.ID,
		Type:           model.NotificationNewConnection,
		Title:          "Nova conexão no Oráculo",
		Message:        fmt.Sprintf("%s demonstrou interesse em você", current.DisplayName),
		FromUserID:     current.ID,
		FromUserName:   current.DisplayName,
		FromUserAvatar: current.AvatarURL,
		ActionURL:      "/perfil/" + current.ID.String(),
	}
	if err := m.notifs.Create(ctx, notif); err != nil {
		m.logOrphan(current.ID, target.ID, err)
		return nil, fmt.Errorf("create notification: %w", err)
	}

	bonus := XPBonus(current.XP)
	newXP, err := m.users.AddXP(ctx, current.ID, bonus)
	if err != nil {
		m.logOrphan(current.ID, target.ID, err)
		return nil, fmt.Errorf("grant xp: %w", err)
	}
	current.XP = newXP

	m.bus.Publish(events.Event{
		Name: events.QuestProgress,
		Payload: map[string]string{
			"action": events.ActionFollowUser,
			"user":   current.ID.String(),
		},
	})
	m.bus.Publish(events.Event{
		Name: events.XPUpdated,
		Payload: map[string]string{
			"user": current.ID.String(),
			"xp":   fmt.Sprintf("%d", newXP),
		},
	})

	return &MatchResult{Target: target, XPBonus: bonus, NewXP: newXP}, nil
}

// logOrphan records a partial pipeline failure: the connection row may exist
// without its notification or xp grant.
func (m *Matcher) logOrphan(follower, following uuid.UUID, err error) {
	m.log.Error("match pipeline partial failure, connection may be orphaned",
		zap.String("follower", follower.String()),
		zap.String("following", following.String()),
		zap.Error(err),
	)
}
