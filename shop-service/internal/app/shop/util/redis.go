package util

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/pkg/metrics"
	"storefront/shop-service/internal/app/shop/entity"

	"github.com/redis/go-redis/v9"
)

const (
	categoriesCacheKey = "categories:all"
	unitsCacheKey      = "units:all"
)

type RedisClient struct {
	client  *redis.Client
	service string
}

func NewRedisClient(addr, password string, db int, service string) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{client: client, service: service}, nil
}

// NewRedisClientFromConn оборачивает уже открытое соединение
func NewRedisClientFromConn(client *redis.Client, service string) *RedisClient {
	return &RedisClient{client: client, service: service}
}

// Client отдает соединение для других Redis репозиториев
func (r *RedisClient) Client() *redis.Client {
	return r.client
}

func (r *RedisClient) SetCategories(ctx context.Context, categories []entity.Category, ttl time.Duration) error {
	return r.setJSON(ctx, categoriesCacheKey, categories, ttl)
}

// GetCategories возвращает nil, nil при промахе кеша
func (r *RedisClient) GetCategories(ctx context.Context) ([]entity.Category, error) {
	var categories []entity.Category
	ok, err := r.getJSON(ctx, categoriesCacheKey, &categories)
	if err != nil || !ok {
		return nil, err
	}
	return categories, nil
}

func (r *RedisClient) DeleteCategories(ctx context.Context) error {
	return r.del(ctx, categoriesCacheKey)
}

func (r *RedisClient) SetUnits(ctx context.Context, units []entity.Unit, ttl time.Duration) error {
	return r.setJSON(ctx, unitsCacheKey, units, ttl)
}

func (r *RedisClient) GetUnits(ctx context.Context) ([]entity.Unit, error) {
	var units []entity.Unit
	ok, err := r.getJSON(ctx, unitsCacheKey, &units)
	if err != nil || !ok {
		return nil, err
	}
	return units, nil
}

func (r *RedisClient) DeleteUnits(ctx context.Context) error {
	return r.del(ctx, unitsCacheKey)
}

func (r *RedisClient) setJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	timer := metrics.NewRedisTimer(r.service, metrics.RedisOpSet)
	defer timer.ObserveDuration()

	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		metrics.RecordRedisError(r.service, metrics.RedisOpSet)
		return fmt.Errorf("failed to set %s in cache: %w", key, err)
	}
	return nil
}

func (r *RedisClient) getJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	timer := metrics.NewRedisTimer(r.service, metrics.RedisOpGet)
	defer timer.ObserveDuration()

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RecordCacheMiss(r.service, key)
			return false, nil
		}
		metrics.RecordRedisError(r.service, metrics.RedisOpGet)
		return false, fmt.Errorf("failed to get %s from cache: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}

	metrics.RecordCacheHit(r.service, key)
	return true, nil
}

func (r *RedisClient) del(ctx context.Context, key string) error {
	timer := metrics.NewRedisTimer(r.service, metrics.RedisOpDel)
	defer timer.ObserveDuration()

	if err := r.client.Del(ctx, key).Err(); err != nil {
		metrics.RecordRedisError(r.service, metrics.RedisOpDel)
		return fmt.Errorf("failed to delete %s from cache: %w", key, err)
	}
	return nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
