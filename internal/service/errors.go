package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

var (
	ErrValidation        = errors.New("validation")         // 400
	ErrInvalidField      = errors.New("invalid field")      // 400
	ErrInsufficientStock = errors.New("insufficient stock") // 400
	ErrUnauthorized      = errors.New("unauthorized")       // 401
	ErrForbidden         = errors.New("forbidden")          // 403
	ErrNotFound          = errors.New("not found")          // 404
	ErrConflict          = errors.New("conflict")           // 409
)

// mapRepoErr turns storage errors into service errors; what names the
// aggregate for the message.
func mapRepoErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repo.ErrNotFound):
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	case errors.Is(err, repo.ErrStaleVersion):
		return fmt.Errorf("%s was modified concurrently, retry: %w", what, ErrConflict)
	case errors.Is(err, repo.ErrInsufficientStock):
		return fmt.Errorf("not enough %s in stock: %w", what, ErrInsufficientStock)
	case errors.Is(err, repo.ErrDuplicate):
		return fmt.Errorf("%s already exists: %w", what, ErrConflict)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// Publisher is the event sink; delivery failures never fail the request.
type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

func publish(ctx context.Context, p Publisher, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Warn("publish_event_error", "topic", topic, "type", event["type"], "error", err)
	}
}

func forbidUnlessOwner(ownerID, callerID, what string) error {
	if ownerID != callerID {
		return fmt.Errorf("%s belongs to another user: %w", what, ErrForbidden)
	}
	return nil
}
