// Package service contains application services for authentication and profiles.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	pkgcrypto "github.com/portaltarot/oraculo/internal/crypto"
	"github.com/portaltarot/oraculo/internal/errs"
	"github.com/portaltarot/oraculo/internal/limiter"
	"github.com/portaltarot/oraculo/internal/model"
	"github.com/portaltarot/oraculo/internal/repository"
)

// Tokens collects issued access tokens.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time // access token expiry (for diagnostics)
}

// AuthService defines authentication operations.
type AuthService interface {
	// Register creates a new user with secure password hashing.
	Register(ctx context.Context, username, password, displayName string) (userID string, err error)
	// LoginWithIP applies rate-limiting and authenticates the user.
	LoginWithIP(ctx context.Context, username, password, ip string) (Tokens, model.Profile, error)
}

type AuthServiceImpl struct {
	users     repository.UserRepository
	signKey   []byte
	accessTTL time.Duration
	lim       limiter.Limiter
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, signKey []byte, accessTTL time.Duration, lim limiter.Limiter) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, signKey: signKey, accessTTL: accessTTL, lim: lim}
}

// Register creates a new profile with a per-user auth salt. New profiles start
// visible in the oracle with the default archetype and no relationship info.
func (s *AuthServiceImpl) Register(ctx context.Context, username, password, displayName string) (string, error) {
	if username == "" || password == "" {
		return "", errors.New("empty username/password")
	}
	uid, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	saltAuth, err := pkgcrypto.RandBytes(16)
	if err != nil {
		return "", err
	}
	pwdHash := pkgcrypto.HashPassword([]byte(password), saltAuth)

	p := &model.Profile{
		ID:               uid,
		Username:         username,
		DisplayName:      displayName,
		Archetype:        model.ArchetypeNone,
		Relationship:     model.StatusNaoInformado,
		VisibleInOraculo: true,
		Level:            1,
		PwdHash:          pwdHash,
		SaltAuth:         saltAuth,
	}
	if err := s.users.Create(ctx, p); err != nil {
		return "", err
	}
	return uid.String(), nil
}

// LoginWithIP authenticates with rate limiting by (username, ip).
func (s *AuthServiceImpl) LoginWithIP(ctx context.Context, username, password, ip string) (Tokens, model.Profile, error) {
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, username, ipHash)
	if err != nil {
		return Tokens{}, model.Profile{}, err
	}
	if !allowed {
		return Tokens{}, model.Profile{}, errs.ErrRateLimited
	}

	p, err := s.users.GetByUsername(ctx, username)
	if err != nil || !pkgcrypto.VerifyPassword([]byte(password), p.SaltAuth, p.PwdHash) {
		if blocked, _, ferr := s.lim.Failure(ctx, username, ipHash); ferr == nil && blocked {
			return Tokens{}, model.Profile{}, errs.ErrRateLimited
		}
		// lookup errors and wrong passwords are both masked as unauthorized
		return Tokens{}, model.Profile{}, errs.ErrUnauthorized
	}

	// Success: reset counters (best-effort).
	_ = s.lim.Success(ctx, username, ipHash)

	access, exp, err := s.issueAccessToken(p.ID)
	if err != nil {
		return Tokens{}, model.Profile{}, err
	}
	return Tokens{AccessToken: access, ExpiresAt: exp}, *p, nil
}

// issueAccessToken creates a signed HS256 JWT for the given subject.
func (s *AuthServiceImpl) issueAccessToken(userID uuid.UUID) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.accessTTL)
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.signKey)
	return signed, exp, err
}
