package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/portaltarot/oraculo/internal/errs"
	"github.com/portaltarot/oraculo/internal/model"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

const profileColumns = `id, username, display_name, full_name, avatar_url, birthdate,
city, state, archetype, element, solar_sign, lunar_sign, ascendant, level, bio,
relationship_status, visible_in_oraculo, featured_profile, xp, ouros, pwd_hash, salt_auth, created_at`

// Create inserts a new profile row.
func (r *UserRepo) Create(ctx context.Context, p *model.Profile) error {
	const q = `
INSERT INTO users (id, username, display_name, full_name, avatar_url, birthdate,
  city, state, archetype, element, solar_sign, lunar_sign, ascendant, level, bio,
  relationship_status, visible_in_oraculo, featured_profile, xp, ouros, pwd_hash, salt_auth)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)`
	_, err := r.db.Pool.Exec(ctx, q,
		p.ID, p.Username, p.DisplayName, p.FullName, p.AvatarURL, p.Birthdate,
		p.City, p.State, string(p.Archetype), string(p.Element),
		p.SolarSign, p.LunarSign, p.Ascendant, p.Level, p.Bio,
		string(p.Relationship), p.VisibleInOraculo, p.FeaturedProfile,
		p.XP, p.Ouros, p.PwdHash, p.SaltAuth)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

func scanProfile(row pgx.Row) (*model.Profile, error) {
	var p model.Profile
	var archetype, element, status string
	err := row.Scan(&p.ID, &p.Username, &p.DisplayName, &p.FullName, &p.AvatarURL,
		&p.Birthdate, &p.City, &p.State, &archetype, &element,
		&p.SolarSign, &p.LunarSign, &p.Ascendant, &p.Level, &p.Bio,
		&status, &p.VisibleInOraculo, &p.FeaturedProfile,
		&p.XP, &p.Ouros, &p.PwdHash, &p.SaltAuth, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	// Unknown stored values are defaulted rather than propagated untyped.
	p.Archetype = model.Archetype(archetype)
	if !p.Archetype.Valid() {
		p.Archetype = model.ArchetypeNone
	}
	p.Element = model.Element(element)
	if !p.Element.Valid() {
		p.Element = ""
	}
	p.Relationship = model.RelationshipStatus(status)
	if !p.Relationship.Valid() {
		p.Relationship = model.StatusNaoInformado
	}
	return &p, nil
}

// GetByID selects a profile by ID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	q := `SELECT ` + profileColumns + ` FROM users WHERE id=$1`
	p, err := scanProfile(r.db.Pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, errs.ErrNotFound
	}
	return p, nil
}

// GetByUsername selects a profile by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.Profile, error) {
	q := `SELECT ` + profileColumns + ` FROM users WHERE username=$1`
	p, err := scanProfile(r.db.Pool.QueryRow(ctx, q, username))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, errs.ErrNotFound
	}
	return p, nil
}

// List returns up to limit profiles ordered by creation time, newest first.
func (r *UserRepo) List(ctx context.Context, limit int) ([]model.Profile, error) {
	q := `SELECT ` + profileColumns + ` FROM users ORDER BY created_at DESC LIMIT $1`
	rows, err := r.db.Pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// UpdateProfile applies the non-nil fields of upd and returns the updated row.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, upd model.ProfileUpdate) (*model.Profile, error) {
	set := make([]string, 0, 15)
	args := make([]any, 0, 16)
	args = append(args, id)

	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s=$%d", col, len(args)))
	}

	if upd.DisplayName != nil {
		add("display_name", *upd.DisplayName)
	}
	if upd.FullName != nil {
		add("full_name", *upd.FullName)
	}
	if upd.AvatarURL != nil {
		add("avatar_url", *upd.AvatarURL)
	}
	if upd.Birthdate != nil {
		add("birthdate", *upd.Birthdate)
	}
	if upd.City != nil {
		add("city", *upd.City)
	}
	if upd.State != nil {
		add("state", *upd.State)
	}
	if upd.Archetype != nil {
		add("archetype", string(*upd.Archetype))
	}
	if upd.Element != nil {
		add("element", string(*upd.Element))
	}
	if upd.SolarSign != nil {
		add("solar_sign", *upd.SolarSign)
	}
	if upd.LunarSign != nil {
		add("lunar_sign", *upd.LunarSign)
	}
	if upd.Ascendant != nil {
		add("ascendant", *upd.Ascendant)
	}
	if upd.Bio != nil {
		add("bio", *upd.Bio)
	}
	if upd.Relationship != nil {
		add("relationship_status", string(*upd.Relationship))
	}
	if upd.VisibleInOraculo != nil {
		add("visible_in_oraculo", *upd.VisibleInOraculo)
	}
	if upd.FeaturedProfile != nil {
		add("featured_profile", *upd.FeaturedProfile)
	}
	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}

	q := `UPDATE users SET ` + strings.Join(set, ", ") + ` WHERE id=$1 RETURNING ` + profileColumns
	p, err := scanProfile(r.db.Pool.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// AddXP atomically increments xp and returns the new total.
func (r *UserRepo) AddXP(ctx context.Context, id uuid.UUID, delta int64) (int64, error) {
	const q = `UPDATE users SET xp = xp + $2 WHERE id=$1 RETURNING xp`
	var total int64
	if err := r.db.Pool.QueryRow(ctx, q, id, delta).Scan(&total); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, errs.ErrNotFound
		}
		return 0, err
	}
	return total, nil
}

// AddOuros atomically increments the currency balance and returns the new total.
func (r *UserRepo) AddOuros(ctx context.Context, id uuid.UUID, delta int64) (int64, error) {
	const q = `UPDATE users SET ouros = ouros + $2 WHERE id=$1 RETURNING ouros`
	var total int64
	if err := r.db.Pool.QueryRow(ctx, q, id, delta).Scan(&total); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, errs.ErrNotFound
		}
		return 0, err
	}
	return total, nil
}
