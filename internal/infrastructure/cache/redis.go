package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/polizas-reportes/internal/application/dto"
	"github.com/jhoicas/polizas-reportes/internal/domain/repository"
)

const keyPrefix = "polizas-reportes:"

var _ repository.ReportCache = (*RedisReportCache)(nil)

// RedisReportCache comparte los reportes memorizados entre réplicas del servicio:
// las claves se derivan del hash del contenido del snapshot, no de su id local.
// Los valores se guardan como JSON con expiración nativa de Redis.
type RedisReportCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisClient abre el cliente y verifica la conexión con un PING.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: ping redis %s: %w", addr, err)
	}
	return client, nil
}

// NewRedisReportCache ttl <= 0 guarda sin expiración.
func NewRedisReportCache(client redis.UniversalClient, ttl time.Duration) *RedisReportCache {
	return &RedisReportCache{client: client, ttl: ttl}
}

func (c *RedisReportCache) Get(ctx context.Context, key string) (*dto.OverviewDTO, bool, error) {
	raw, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: get %s: %w", key, err)
	}
	var out dto.OverviewDTO
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false, fmt.Errorf("cache: decodificar %s: %w", key, err)
	}
	return &out, true, nil
}

func (c *RedisReportCache) Set(ctx context.Context, key string, overview *dto.OverviewDTO) error {
	raw, err := json.Marshal(overview)
	if err != nil {
		return fmt.Errorf("cache: serializar %s: %w", key, err)
	}
	if err := c.client.Set(ctx, keyPrefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: set %s: %w", key, err)
	}
	return nil
}
