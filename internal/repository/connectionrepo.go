package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/portaltarot/oraculo/internal/model"
)

// ConnectionRepository stores directed interest edges between profiles.
type ConnectionRepository interface {
	// Create inserts a new edge. Returns errs.ErrAlreadyExists on a duplicate pair.
	Create(ctx context.Context, c *model.Connection) error
	// ListFollowing returns all outgoing edges of a user.
	ListFollowing(ctx context.Context, followerID uuid.UUID) ([]model.Connection, error)
	// ListFollowers returns all incoming edges of a user.
	ListFollowers(ctx context.Context, followingID uuid.UUID) ([]model.Connection, error)
	// Exists reports whether the edge follower->following is present.
	Exists(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	// Delete removes an edge (unfollow). Returns errs.ErrNotFound if absent.
	Delete(ctx context.Context, followerID, followingID uuid.UUID) error
	// Mutuals returns outgoing edges whose reverse edge also exists (synchronicities).
	Mutuals(ctx context.Context, userID uuid.UUID) ([]model.Connection, error)
}
