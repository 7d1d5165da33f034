package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

type AuthService struct {
	Users         repo.Users
	Tokens        repo.Tokens
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

var errBadCredentials = fmt.Errorf("invalid email or password: %w", ErrUnauthorized)

func (s *AuthService) Login(ctx context.Context, email, password string) (*tokens.Pair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required: %w", ErrValidation)
	}

	u, err := s.Users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errBadCredentials
		}
		return nil, err
	}
	if !hash.CheckPassword(u.PasswordHash, password) {
		l.Warn("login_failed", "reason", "password mismatch", "user_id", u.ID)
		return nil, errBadCredentials
	}

	pair, next, err := s.issue(u.ID, u.Role)
	if err != nil {
		return nil, err
	}
	if err := s.Tokens.SaveRefreshToken(ctx, next); err != nil {
		return nil, err
	}
	return pair, nil
}

// Refresh consumes a refresh token and returns a new pair. A token can be
// used once; replaying it fails.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*tokens.Pair, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("refresh token missing: %w", ErrUnauthorized)
	}
	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", ErrUnauthorized)
	}

	stored, err := s.Tokens.GetRefreshToken(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("refresh token not found: %w", ErrUnauthorized)
		}
		return nil, err
	}
	if stored.TokenHash != tokens.Sha256Hex(refreshToken) || stored.UserID != claims.Subject {
		return nil, fmt.Errorf("refresh token mismatch: %w", ErrUnauthorized)
	}

	u, err := s.Users.GetUser(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("user no longer exists: %w", ErrUnauthorized)
		}
		return nil, err
	}

	pair, next, err := s.issue(u.ID, u.Role)
	if err != nil {
		return nil, err
	}
	if err := s.Tokens.RotateRefreshToken(ctx, claims.ID, next); err != nil {
		if errors.Is(err, repo.ErrTokenRevoked) || errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("refresh token expired or revoked: %w", ErrUnauthorized)
		}
		return nil, err
	}
	return pair, nil
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		return fmt.Errorf("invalid refresh token: %w", ErrUnauthorized)
	}
	if err := s.Tokens.RevokeRefreshToken(ctx, claims.ID); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	return nil
}

func (s *AuthService) issue(userID, role string) (*tokens.Pair, *models.RefreshToken, error) {
	now := time.Now()
	accessExp := now.Add(s.AccessTTL)
	refreshExp := now.Add(s.RefreshTTL)

	access, err := tokens.NewAccessToken(s.AccessSecret, userID, role, accessExp)
	if err != nil {
		return nil, nil, err
	}
	refresh, jti, err := tokens.NewRefreshToken(s.RefreshSecret, userID, role, refreshExp)
	if err != nil {
		return nil, nil, err
	}

	return &tokens.Pair{
			UserID:       userID,
			Role:         role,
			AccessToken:  access,
			RefreshToken: refresh,
			AccessExp:    accessExp,
			RefreshExp:   refreshExp,
		}, &models.RefreshToken{
			JTI:       jti,
			TokenHash: tokens.Sha256Hex(refresh),
			UserID:    userID,
			Role:      role,
			ExpiresAt: refreshExp.UTC(),
		}, nil
}
