package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const cartKeyPrefix = "enquiry:cart:"

// RedisMedium persists one visitor's cart as a JSON blob under a single
// namespaced key. No TTL on the cart itself: the list lives until the visitor
// clears it.
type RedisMedium struct {
	client  *redis.Client
	session string
}

func NewRedisMedium(client *redis.Client, sessionID string) *RedisMedium {
	return &RedisMedium{client: client, session: sessionID}
}

func (m *RedisMedium) key() string {
	return cartKeyPrefix + m.session
}

func (m *RedisMedium) Load(ctx context.Context) (string, bool, error) {
	raw, err := m.client.Get(ctx, m.key()).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cart load: %w", err)
	}
	return raw, true, nil
}

func (m *RedisMedium) Save(ctx context.Context, raw string) error {
	if err := m.client.Set(ctx, m.key(), raw, 0).Err(); err != nil {
		return fmt.Errorf("cart save: %w", err)
	}
	return nil
}

func (m *RedisMedium) Delete(ctx context.Context) error {
	if err := m.client.Del(ctx, m.key()).Err(); err != nil {
		return fmt.Errorf("cart delete: %w", err)
	}
	return nil
}

const handoffKeyPrefix = "enquiry:handoff:"

// handoffTTL bounds how long an unconsumed handoff survives; the slot is
// meant to cross one navigation, not to be a store.
const handoffTTL = 30 * time.Minute

// RedisHandoff is the one-shot slot carrying cart contents to the trade
// enquiry form across a navigation. Take is GETDEL, so a second read without
// a new write yields nothing.
type RedisHandoff struct {
	client  *redis.Client
	session string
}

func NewRedisHandoff(client *redis.Client, sessionID string) *RedisHandoff {
	return &RedisHandoff{client: client, session: sessionID}
}

func (h *RedisHandoff) key() string {
	return handoffKeyPrefix + h.session
}

func (h *RedisHandoff) Put(ctx context.Context, raw string) error {
	if err := h.client.Set(ctx, h.key(), raw, handoffTTL).Err(); err != nil {
		return fmt.Errorf("handoff put: %w", err)
	}
	return nil
}

func (h *RedisHandoff) Take(ctx context.Context) (string, bool, error) {
	raw, err := h.client.GetDel(ctx, h.key()).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("handoff take: %w", err)
	}
	return raw, true, nil
}
