package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/DJCodeOne/freshwax-sub005/pkg/logger"
	"github.com/DJCodeOne/freshwax-sub005/pkg/redis"
)

const idempotencyScope = "payments"

// IdempotencyGuard deduplicates webhook deliveries by event id. The claim is
// released when handling fails so the processor's retry gets another shot.
type IdempotencyGuard struct {
	store  redis.IdempotencyStore
	ttl    time.Duration
	logger *logger.Logger
}

// NewIdempotencyGuard builds the guard.
func NewIdempotencyGuard(store redis.IdempotencyStore, ttl time.Duration, logg *logger.Logger) (*IdempotencyGuard, error) {
	if store == nil {
		return nil, fmt.Errorf("idempotency guard requires a store")
	}
	if logg == nil {
		return nil, fmt.Errorf("idempotency guard requires a logger")
	}
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &IdempotencyGuard{store: store, ttl: ttl, logger: logg}, nil
}

// Claim marks the event as seen. Returns false when another delivery of the
// same event already claimed it.
func (g *IdempotencyGuard) Claim(ctx context.Context, eventID string) (bool, error) {
	key := g.store.IdempotencyKey(idempotencyScope, eventID)
	claimed, err := g.store.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), g.ttl)
	if err != nil {
		return false, fmt.Errorf("claim idempotency key: %w", err)
	}
	return claimed, nil
}

// Release drops the claim after a failed handling attempt.
func (g *IdempotencyGuard) Release(ctx context.Context, eventID string) {
	key := g.store.IdempotencyKey(idempotencyScope, eventID)
	if err := g.store.Del(ctx, key); err != nil {
		g.logger.Error(ctx, "failed to release idempotency claim", err)
	}
}
