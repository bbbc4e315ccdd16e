package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/verone/commerce-core/internal/application/orders"
)

var _ orders.IdempotencyStore = (*Client)(nil)

// Client atajo de idempotencia sobre Redis. Marca request ids ya procesados
// para responder reintentos sin abrir transacción; la garantía real sigue
// siendo la restricción UNIQUE en BD, así que perder Redis no corrompe nada.
type Client struct {
	rdb *redis.Client
}

// New crea el cliente y verifica la conexión.
func New(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

// Seen indica si el request id ya fue procesado.
func (c *Client) Seen(ctx context.Context, key string) (bool, error) {
	n, err := c.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

// Mark registra el request id con TTL. SetNX: el primer escritor gana y los
// demás no alargan el TTL.
func (c *Client) Mark(ctx context.Context, key string, ttl time.Duration) error {
	if err := c.rdb.SetNX(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}
	return nil
}

// Close cierra la conexión.
func (c *Client) Close() error {
	return c.rdb.Close()
}
