package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/roshshop/backend/models"
)

// GuestCartRepository stores carts of anonymous sessions.
type GuestCartRepository interface {
	GetCart(ctx context.Context, sessionID string) (*models.Cart, error)
	SaveCart(ctx context.Context, cart *models.Cart) error
	DeleteCart(ctx context.Context, sessionID string) error
}

type RedisGuestCartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisGuestCartRepository(client *redis.Client, ttl time.Duration) *RedisGuestCartRepository {
	return &RedisGuestCartRepository{
		client: client,
		ttl:    ttl,
	}
}

func (r *RedisGuestCartRepository) getKey(sessionID string) string {
	return fmt.Sprintf("cart:guest:%s", sessionID)
}

// GetCart returns nil without error when no cart exists for the session.
func (r *RedisGuestCartRepository) GetCart(ctx context.Context, sessionID string) (*models.Cart, error) {
	key := r.getKey(sessionID)
	data, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cart models.Cart
	if err := json.Unmarshal([]byte(data), &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *RedisGuestCartRepository) SaveCart(ctx context.Context, cart *models.Cart) error {
	key := r.getKey(cart.OwnerID)
	cart.UpdatedAt = time.Now()

	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, key, data, r.ttl).Err()
}

func (r *RedisGuestCartRepository) DeleteCart(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, r.getKey(sessionID)).Err()
}
