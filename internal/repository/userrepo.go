// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/portaltarot/oraculo/internal/model"
)

// UserRepository provides CRUD access for user profiles.
type UserRepository interface {
	// Create inserts a new profile.
	Create(ctx context.Context, p *model.Profile) error
	// GetByID loads a profile by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	// GetByUsername loads a profile by username.
	GetByUsername(ctx context.Context, username string) (*model.Profile, error)
	// List returns up to limit profiles, most recent first.
	List(ctx context.Context, limit int) ([]model.Profile, error)
	// UpdateProfile applies a partial update and returns the updated row.
	UpdateProfile(ctx context.Context, id uuid.UUID, upd model.ProfileUpdate) (*model.Profile, error)
	// AddXP atomically increments xp and returns the new total.
	AddXP(ctx context.Context, id uuid.UUID, delta int64) (int64, error)
	// AddOuros atomically increments the currency balance and returns the new total.
	AddOuros(ctx context.Context, id uuid.UUID, delta int64) (int64, error)
}
