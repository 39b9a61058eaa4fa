// Package redis guarda la lista de credenciales de acceso revocadas antes de su vencimiento.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/jhoicas/CRM-api/pkg/config"
)

const keyPrefix = "crm:revoked-access:"

// NewClient crea el cliente Redis con la configuración de la app.
func NewClient(cfg config.RedisConfig) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Denylist jti revocados con expiración igual a la vida restante del token.
type Denylist struct {
	c *goredis.Client
}

// NewDenylist construye la lista sobre un cliente existente.
func NewDenylist(c *goredis.Client) *Denylist { return &Denylist{c: c} }

// Revoke agrega el jti; ttl <= 0 no hace nada porque el token ya venció.
func (d *Denylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	if err := d.c.Set(ctx, keyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis revoke: %w", err)
	}
	return nil
}

// IsRevoked informa si el jti está en la lista.
func (d *Denylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	n, err := d.c.Exists(ctx, keyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

// Ping verifica la conexión.
func (d *Denylist) Ping(ctx context.Context) error {
	return d.c.Ping(ctx).Err()
}
