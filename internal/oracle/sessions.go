package oracle

import (
	"context"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/portaltarot/oraculo/internal/errs"
	"github.com/portaltarot/oraculo/internal/repository"
)

// Session defaults.
const (
	DefaultSwipeRate  = rate.Limit(2) // sustained swipes per second
	DefaultSwipeBurst = 10
	DefaultIdleTTL    = 30 * time.Minute
)

type session struct {
	deck     *Deck
	lim      *rate.Limiter
	lastSeen time.Time
}

// Sessions is the per-user deck registry. A deck is created and loaded on
// first use and discarded after the idle TTL. Gestures are rate limited per
// user: short bursts pass, sustained flooding is rejected.
type Sessions struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]*session
	users repository.UserRepository

	loader  *Loader
	matcher *Matcher

	swipeRate  rate.Limit
	swipeBurst int
	idleTTL    time.Duration
	log        *zap.Logger
}

// NewSessions constructs the registry with default rate and TTL settings.
func NewSessions(users repository.UserRepository, loader *Loader, matcher *Matcher, log *zap.Logger) *Sessions {
	return &Sessions{
		byID:       make(map[uuid.UUID]*session),
		users:      users,
		loader:     loader,
		matcher:    matcher,
		swipeRate:  DefaultSwipeRate,
		swipeBurst: DefaultSwipeBurst,
		idleTTL:    DefaultIdleTTL,
		log:        log,
	}
}

// SetSwipeRate overrides the per-user gesture rate limit.
func (s *Sessions) SetSwipeRate(r rate.Limit, burst int) {
	s.mu.Lock()
	s.swipeRate = r
	s.swipeBurst = burst
	s.mu.Unlock()
}

// Deck returns the user's deck, creating and loading it on first use.
func (s *Sessions) Deck(ctx context.Context, userID uuid.UUID) (*Deck, error) {
	s.mu.Lock()
	if sess, ok := s.byID[userID]; ok {
		sess.lastSeen = time.Now()
		d := sess.deck
		s.mu.Unlock()
		return d, nil
	}
	s.mu.Unlock()

	profile, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	deck := NewDeck(s.loader, s.matcher, profile)
	deck.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	// A concurrent first request may have raced us here; keep the winner.
	if sess, ok := s.byID[userID]; ok {
		sess.lastSeen = time.Now()
		return sess.deck, nil
	}
	s.byID[userID] = &session{
		deck:     deck,
		lim:      rate.NewLimiter(s.swipeRate, s.swipeBurst),
		lastSeen: time.Now(),
	}
	return deck, nil
}

// allowSwipe consumes one rate-limit token for the user.
func (s *Sessions) allowSwipe(userID uuid.UUID) bool {
	s.mu.Lock()
	sess, ok := s.byID[userID]
	s.mu.Unlock()
	if !ok {
		return true
	}
	return sess.lim.Allow()
}

// Reject advances the user's deck past the current candidate.
func (s *Sessions) Reject(ctx context.Context, userID uuid.UUID) error {
	deck, err := s.Deck(ctx, userID)
	if err != nil {
		return err
	}
	if !s.allowSwipe(userID) {
		return errs.ErrRateLimited
	}
	return deck.Reject()
}

// Connect runs the match pipeline on the user's current candidate.
func (s *Sessions) Connect(ctx context.Context, userID uuid.UUID) (*MatchResult, error) {
	deck, err := s.Deck(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !s.allowSwipe(userID) {
		return nil, errs.ErrRateLimited
	}
	return deck.Connect(ctx)
}

// CloseCelebration dismisses the user's match celebration.
func (s *Sessions) CloseCelebration(ctx context.Context, userID uuid.UUID) error {
	deck, err := s.Deck(ctx, userID)
	if err != nil {
		return err
	}
	deck.CloseCelebration()
	return nil
}

// Restart reloads the user's pool from a fresh snapshot.
func (s *Sessions) Restart(ctx context.Context, userID uuid.UUID) error {
	deck, err := s.Deck(ctx, userID)
	if err != nil {
		return err
	}
	return deck.Restart(ctx)
}

// Sweep drops sessions idle past the TTL. Intended to run on a ticker.
func (s *Sessions) Sweep() {
	cutoff := time.Now().Add(-s.idleTTL)
	s.mu.Lock()
	for id, sess := range s.byID {
		if sess.lastSeen.Before(cutoff) {
			delete(s.byID, id)
		}
	}
	s.mu.Unlock()
}
