package postgres

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/portaltarot/oraculo/internal/errs"
	"github.com/portaltarot/oraculo/internal/model"
)

// ConnectionRepo implements ConnectionRepository using PostgreSQL.
type ConnectionRepo struct{ db *DB }

// NewConnectionRepo constructs a connection repository.
func NewConnectionRepo(db *DB) *ConnectionRepo { return &ConnectionRepo{db: db} }

const connectionColumns = `follower_id, follower_name, follower_avatar,
following_id, following_name, following_avatar, created_at`

// Create inserts a new edge. A duplicate (follower, following) pair maps to ErrAlreadyExists.
func (r *ConnectionRepo) Create(ctx context.Context, c *model.Connection) error {
	const q = `
INSERT INTO connections (follower_id, follower_name, follower_avatar,
  following_id, following_name, following_avatar)
VALUES ($1,$2,$3,$4,$5,$6)`
	_, err := r.db.Pool.Exec(ctx, q,
		c.FollowerID, c.FollowerName, c.FollowerAvatar,
		c.FollowingID, c.FollowingName, c.FollowingAvatar)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

func scanConnections(rows pgx.Rows) ([]model.Connection, error) {
	defer rows.Close()
	var out []model.Connection
	for rows.Next() {
		var c model.Connection
		if err := rows.Scan(&c.FollowerID, &c.FollowerName, &c.FollowerAvatar,
			&c.FollowingID, &c.FollowingName, &c.FollowingAvatar, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListFollowing returns all outgoing edges of a user, newest first.
func (r *ConnectionRepo) ListFollowing(ctx context.Context, followerID uuid.UUID) ([]model.Connection, error) {
	q := `SELECT ` + connectionColumns + ` FROM connections WHERE follower_id=$1 ORDER BY created_at DESC`
	rows, err := r.db.Pool.Query(ctx, q, followerID)
	if err != nil {
		return nil, err
	}
	return scanConnections(rows)
}

// ListFollowers returns all incoming edges of a user, newest first.
func (r *ConnectionRepo) ListFollowers(ctx context.Context, followingID uuid.UUID) ([]model.Connection, error) {
	q := `SELECT ` + connectionColumns + ` FROM connections WHERE following_id=$1 ORDER BY created_at DESC`
	rows, err := r.db.Pool.Query(ctx, q, followingID)
	if err != nil {
		return nil, err
	}
	return scanConnections(rows)
}

// Exists reports whether the edge follower->following is present.
func (r *ConnectionRepo) Exists(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM connections WHERE follower_id=$1 AND following_id=$2)`
	var ok bool
	if err := r.db.Pool.QueryRow(ctx, q, followerID, followingID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// Delete removes an edge (unfollow).
func (r *ConnectionRepo) Delete(ctx context.Context, followerID, followingID uuid.UUID) error {
	const q = `DELETE FROM connections WHERE follower_id=$1 AND following_id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, followerID, followingID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Mutuals returns outgoing edges whose reverse edge also exists.
// Mutuality is derived from both directions at read time, never stored.
func (r *ConnectionRepo) Mutuals(ctx context.Context, userID uuid.UUID) ([]model.Connection, error) {
	q := `
SELECT c.follower_id, c.follower_name, c.follower_avatar,
  c.following_id, c.following_name, c.following_avatar, c.created_at
FROM connections c
JOIN connections rev
  ON rev.follower_id = c.following_id AND rev.following_id = c.follower_id
WHERE c.follower_id=$1
ORDER BY c.created_at DESC`
	rows, err := r.db.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	return scanConnections(rows)
}
