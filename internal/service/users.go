package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const minPasswordLen = 6

var genders = []string{"m", "f", "o"}

type UserService struct {
	Repo        repo.Users
	Tokens      repo.Tokens
	Events      Publisher
	AdminEmails []string
}

func (s *UserService) CreateUser(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "users.create")

	email := normalizeEmail(req.Email)
	fullName := strings.TrimSpace(req.FullName)
	if email == "" || req.Password == "" || fullName == "" {
		return nil, fmt.Errorf("email, password and full_name are required: %w", ErrValidation)
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("email is not valid: %w", ErrValidation)
	}
	if len(req.Password) < minPasswordLen {
		return nil, fmt.Errorf("password must be at least %d characters: %w", minPasswordLen, ErrValidation)
	}

	if _, err := s.Repo.GetUserByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("user already exists: %w", ErrValidation)
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("hash_password_error", "error", err)
		return nil, err
	}

	role := models.RoleUser
	if slices.Contains(s.AdminEmails, email) {
		role = models.RoleAdmin
	}

	u := &models.User{
		Email:        email,
		PasswordHash: pwHash,
		FullName:     fullName,
		Role:         role,
		Addresses:    []models.Address{},
		Favourites:   models.StringList{},
		Orders:       models.StringList{},
	}
	if err := s.Repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, fmt.Errorf("user already exists: %w", ErrValidation)
		}
		return nil, err
	}

	publish(ctx, s.Events, events.TopicUsers, u.ID, map[string]any{
		"type":   "user_created",
		"userID": u.ID,
		"email":  u.Email,
	})
	return u, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	u, err := s.Repo.GetUser(ctx, id)
	return u, mapRepoErr(err, "user")
}

func (s *UserService) ListUsers(ctx context.Context, offset, limit int) (int64, []models.User, error) {
	return s.Repo.ListUsers(ctx, offset, limit)
}

func (s *UserService) UpdateUser(ctx context.Context, userID, callerID string, req transport.UpdateUserRequest) (*models.User, error) {
	u, err := s.Repo.GetUser(ctx, userID)
	if err != nil {
		return nil, mapRepoErr(err, "user")
	}
	if err := forbidUnlessOwner(u.ID, callerID, "user"); err != nil {
		return nil, err
	}

	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			return nil, fmt.Errorf("full_name must not be empty: %w", ErrInvalidField)
		}
		u.FullName = name
	}
	if req.Gender != nil {
		g := strings.ToLower(strings.TrimSpace(*req.Gender))
		if !oneOf(g, genders) {
			return nil, fmt.Errorf("gender must be one of m, f, o: %w", ErrInvalidField)
		}
		u.Gender = g
	}
	if req.Password != nil {
		if len(*req.Password) < minPasswordLen {
			return nil, fmt.Errorf("password must be at least %d characters: %w", minPasswordLen, ErrInvalidField)
		}
		pwHash, err := hash.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = pwHash
	}
	if req.HasAddress() {
		addr, err := mergeAddress(u.Addresses, req)
		if err != nil {
			return nil, err
		}
		u.Addresses = []models.Address{addr}
	}

	if err := s.Repo.UpdateUser(ctx, u); err != nil {
		return nil, mapRepoErr(err, "user")
	}

	publish(ctx, s.Events, events.TopicUsers, u.ID, map[string]any{
		"type":   "user_updated",
		"userID": u.ID,
	})
	return u, nil
}

// mergeAddress overlays the request on the first stored address. The result
// replaces the whole address list.
func mergeAddress(current []models.Address, req transport.UpdateUserRequest) (models.Address, error) {
	var addr models.Address
	if len(current) > 0 {
		addr = current[0]
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&addr.Street, req.Street)
	set(&addr.City, req.City)
	set(&addr.State, req.State)
	set(&addr.Zip, req.Zip)
	set(&addr.Type, req.AddressType)

	if addr.Type == "" {
		addr.Type = models.AddressMain
	}
	addr.Type = strings.ToLower(addr.Type)
	if addr.Type != models.AddressMain && addr.Type != models.AddressOther {
		return addr, fmt.Errorf("address_type must be main or other: %w", ErrInvalidField)
	}
	return addr, nil
}

func (s *UserService) DeleteUser(ctx context.Context, userID, callerID string) error {
	u, err := s.Repo.GetUser(ctx, userID)
	if err != nil {
		return mapRepoErr(err, "user")
	}
	if err := forbidUnlessOwner(u.ID, callerID, "user"); err != nil {
		return err
	}
	if err := s.Repo.DeleteUser(ctx, u.ID); err != nil {
		return mapRepoErr(err, "user")
	}
	if s.Tokens != nil {
		if err := s.Tokens.RevokeUserTokens(ctx, u.ID); err != nil {
			logging.FromContext(ctx).Warn("revoke_tokens_error", "user_id", u.ID, "error", err)
		}
	}

	publish(ctx, s.Events, events.TopicUsers, u.ID, map[string]any{
		"type":   "user_deleted",
		"userID": u.ID,
	})
	return nil
}
