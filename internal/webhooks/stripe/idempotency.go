package stripewebhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hims91/audio-nature-nexus-backend/pkg/redis"
)

// IdempotencyGuard deduplicates webhook deliveries by Stripe event ID.
// Stripe retries aggressively; the guard makes a redelivery a cheap
// no-op instead of a second reconciliation round-trip. Event IDs are
// Stripe strings (evt_...), so this guard is string-keyed rather than
// reusing the uuid-keyed outbox manager.
type IdempotencyGuard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
	scope string
}

func NewIdempotencyGuard(store redis.IdempotencyStore, ttl time.Duration, scope string) (*IdempotencyGuard, error) {
	switch {
	case store == nil:
		return nil, errors.New("idempotency store is required")
	case ttl < 0:
		return nil, errors.New("ttl must be non-negative")
	case scope == "":
		return nil, errors.New("scope is required")
	}
	return &IdempotencyGuard{store: store, ttl: ttl, scope: scope}, nil
}

func (g *IdempotencyGuard) key(eventID string) string {
	return g.store.IdempotencyKey(g.scope, eventID)
}

// CheckAndMark reports whether the event was already seen, marking it
// seen otherwise.
func (g *IdempotencyGuard) CheckAndMark(ctx context.Context, eventID string) (bool, error) {
	if eventID == "" {
		return false, errors.New("event id is required")
	}
	won, err := g.store.SetNX(ctx, g.key(eventID), "1", g.ttl)
	if err != nil {
		return false, fmt.Errorf("set idempotency key: %w", err)
	}
	return !won, nil
}

// Delete unmarks an event so a failed handling can be retried.
func (g *IdempotencyGuard) Delete(ctx context.Context, eventID string) error {
	if eventID == "" {
		return errors.New("event id is required")
	}
	return g.store.Del(ctx, g.key(eventID))
}
