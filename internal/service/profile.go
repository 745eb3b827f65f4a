package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/gofrs/uuid/v5"

	"github.com/portaltarot/oraculo/internal/errs"
	"github.com/portaltarot/oraculo/internal/events"
	"github.com/portaltarot/oraculo/internal/model"
	"github.com/portaltarot/oraculo/internal/repository"
)

// ProfileService defines current-user profile operations.
type ProfileService interface {
	// GetCurrentUser loads the authenticated user's profile.
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*model.Profile, error)
	// UpdateCurrentUser applies a validated partial update and returns the result.
	UpdateCurrentUser(ctx context.Context, userID uuid.UUID, upd model.ProfileUpdate) (*model.Profile, error)
	// GrantOuros credits virtual currency and returns the new balance.
	GrantOuros(ctx context.Context, userID uuid.UUID, amount int64) (int64, error)
}

type ProfileServiceImpl struct {
	users repository.UserRepository
	bus   *events.Bus
}

// NewProfileService constructs ProfileService.
func NewProfileService(users repository.UserRepository, bus *events.Bus) *ProfileServiceImpl {
	return &ProfileServiceImpl{users: users, bus: bus}
}

// GetCurrentUser loads the authenticated user's profile.
func (s *ProfileServiceImpl) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	if userID == uuid.Nil {
		return nil, errors.New("validation: empty userID")
	}
	return s.users.GetByID(ctx, userID)
}

// UpdateCurrentUser validates enum fields and applies the partial update.
// Unknown archetype, element or relationship values are rejected, never stored.
func (s *ProfileServiceImpl) UpdateCurrentUser(ctx context.Context, userID uuid.UUID, upd model.ProfileUpdate) (*model.Profile, error) {
	if userID == uuid.Nil {
		return nil, errors.New("validation: empty userID")
	}
	if upd.Archetype != nil && !upd.Archetype.Valid() {
		return nil, fmt.Errorf("archetype %q: %w", *upd.Archetype, errs.ErrInvalidEnum)
	}
	if upd.Element != nil && !upd.Element.Valid() {
		return nil, fmt.Errorf("element %q: %w", *upd.Element, errs.ErrInvalidEnum)
	}
	if upd.Relationship != nil && !upd.Relationship.Valid() {
		return nil, fmt.Errorf("relationship %q: %w", *upd.Relationship, errs.ErrInvalidEnum)
	}
	return s.users.UpdateProfile(ctx, userID, upd)
}

// GrantOuros credits virtual currency and returns the new balance.
func (s *ProfileServiceImpl) GrantOuros(ctx context.Context, userID uuid.UUID, amount int64) (int64, error) {
	if userID == uuid.Nil {
		return 0, errors.New("validation: empty userID")
	}
	if amount <= 0 {
		return 0, errors.New("validation: non-positive amount")
	}
	balance, err := s.users.AddOuros(ctx, userID, amount)
	if err != nil {
		return 0, err
	}
	s.bus.Publish(events.Event{
		Name: events.QuestProgress,
		Payload: map[string]string{
			"user_id": userID.String(),
			"action":  events.ActionGrantOuros,
			"amount":  strconv.FormatInt(amount, 10),
		},
	})
	return balance, nil
}
