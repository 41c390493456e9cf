// Package auth implements credential verification, token issuance with the
// reuse-while-valid refresh policy, and the login/refresh/logout session
// flow on top of it.
package auth

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/google/uuid"

	"github.com/smarttransit/backend/internal/apperr"
	"github.com/smarttransit/backend/internal/hash"
	"github.com/smarttransit/backend/internal/logging"
	"github.com/smarttransit/backend/internal/repository"
	"github.com/smarttransit/backend/internal/tokens"
)

// dummyHash is a fixed bcrypt digest compared against when the email
// lookup misses so unknown-email and wrong-password take the same time.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

type Service struct {
	Users   *repository.UserRepo
	Refresh *repository.RefreshTokenRepo

	AccessSecret  []byte
	AccessExpiry  time.Duration
	RefreshSecret []byte
	RefreshExpiry time.Duration
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Verify checks email and password and returns the claim projection.
// Both failure modes collapse into the same (nil, nil) result; the caller
// never learns whether the email exists.
func (s *Service) Verify(ctx context.Context, email, password string) (*tokens.Payload, error) {
	user, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		hash.CheckPassword(dummyHash, password)
		return nil, nil
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, nil
	}
	return &tokens.Payload{ID: user.ID, Email: user.Email, Role: user.Role}, nil
}

// Issue mints a fresh access token and applies the reuse-while-valid policy
// to the refresh token: an unexpired stored token is returned unchanged, a
// stale one is deleted and replaced.
func (s *Service) Issue(ctx context.Context, p tokens.Payload) (*TokenPair, error) {
	accessToken, err := tokens.SignAccess(p, s.AccessSecret, s.AccessExpiry)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	existing, err := s.Refresh.GetByUser(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		claims, decErr := tokens.Decode(existing.Token, s.RefreshSecret)
		if decErr == nil && claims.ExpiresAt != nil && claims.ExpiresAt.After(time.Now()) {
			return &TokenPair{AccessToken: accessToken, RefreshToken: existing.Token}, nil
		}
		if err := s.Refresh.DeleteByID(ctx, existing.ID); err != nil {
			return nil, err
		}
	}

	refreshToken, err := tokens.SignRefresh(p, s.RefreshSecret, s.RefreshExpiry)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if err := s.Refresh.Save(ctx, p.ID, refreshToken); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Login assumes p was already verified upstream.
func (s *Service) Login(ctx context.Context, p tokens.Payload) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "user_id", p.ID)
	pair, err := s.Issue(ctx, p)
	if err != nil {
		l.Error("token issue failed", "error", err)
		return nil, err
	}
	return pair, nil
}

// RefreshSession checks the presented refresh token against the stored one
// and only then issues new tokens. Signature and expiry of the presented
// token are checked upstream at the request boundary.
func (s *Service) RefreshSession(ctx context.Context, p tokens.Payload, presented string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh", "user_id", p.ID)

	stored, err := s.Refresh.GetByUser(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if stored == nil || !tokenMatches(stored.Token, presented) {
		l.Warn("refresh token mismatch")
		return nil, apperr.Authentication("invalid token")
	}

	pair, err := s.Issue(ctx, p)
	if err != nil {
		l.Error("token issue failed", "error", err)
		return nil, err
	}
	return pair, nil
}

// Logout drops the stored refresh token. Repeating it is a no-op.
func (s *Service) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.Refresh.DeleteByUser(ctx, userID)
}

// Tokens are stored in plaintext, so validity is a direct comparison; kept
// constant time anyway since the candidate comes from the wire.
func tokenMatches(stored, presented string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}
