package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"storefront/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

const blacklistKeyPrefix = "blacklist:"

type redisTokenRepository struct {
	client  *redis.Client
	service string
}

// NewRedisTokenRepository создает Redis репозиторий отозванных токенов
func NewRedisTokenRepository(client *redis.Client, service string) TokenRepository {
	return &redisTokenRepository{client: client, service: service}
}

// blacklistKey хранит хэш токена, а не сам токен
func blacklistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return blacklistKeyPrefix + hex.EncodeToString(sum[:])
}

// AddToBlacklist добавляет токен в черный список до момента его истечения
func (r *redisTokenRepository) AddToBlacklist(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// Истекший токен и так не пройдет проверку
		return nil
	}

	timer := metrics.NewRedisTimer(r.service, metrics.RedisOpSet)
	defer timer.ObserveDuration()

	if err := r.client.Set(ctx, blacklistKey(token), "1", ttl).Err(); err != nil {
		metrics.RecordRedisError(r.service, metrics.RedisOpSet)
		return fmt.Errorf("failed to add token to blacklist: %w", err)
	}
	return nil
}

// IsBlacklisted проверяет, отозван ли токен
func (r *redisTokenRepository) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	timer := metrics.NewRedisTimer(r.service, metrics.RedisOpExists)
	defer timer.ObserveDuration()

	exists, err := r.client.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		metrics.RecordRedisError(r.service, metrics.RedisOpExists)
		return false, fmt.Errorf("failed to check if token is blacklisted: %w", err)
	}
	return exists > 0, nil
}
