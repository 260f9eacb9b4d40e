package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Gateway checkout sessions stay valid for about this long.
const sessionTTL = 30 * time.Minute

// SessionCache keeps orderId -> paymentSessionId so Verify and Confirm can
// echo the session without a gateway round trip. Nil-safe: with no Redis
// configured every lookup misses.
type SessionCache struct {
	client *redis.Client
}

func NewSessionCache(client *redis.Client) *SessionCache {
	return &SessionCache{client: client}
}

func sessionKey(orderID string) string {
	return "checkout_session:" + orderID
}

func (c *SessionCache) Put(ctx context.Context, orderID, sessionID string) {
	if c == nil || c.client == nil || sessionID == "" {
		return
	}
	// Best effort; a miss later just means one extra gateway call.
	c.client.Set(ctx, sessionKey(orderID), sessionID, sessionTTL)
}

func (c *SessionCache) Get(ctx context.Context, orderID string) (string, bool) {
	if c == nil || c.client == nil {
		return "", false
	}
	val, err := c.client.Get(ctx, sessionKey(orderID)).Result()
	if err != nil {
		return "", false
	}
	return val, true
}
