package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/janitor-service/internal/app/janitor/entity"
	"storefront/pkg/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// снимаем блокировку, только если она все еще наша
var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type sweepStateRepository struct {
	client    *redis.Client
	reportTTL time.Duration
}

// NewSweepStateRepository создает репозиторий состояния; отчет живет reportTTL
func NewSweepStateRepository(client *redis.Client, reportTTL time.Duration) SweepStateRepository {
	return &sweepStateRepository{client: client, reportTTL: reportTTL}
}

func (r *sweepStateRepository) AcquireLock(ctx context.Context, ttl time.Duration) (func(context.Context) error, error) {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpSet)
	defer timer.ObserveDuration()

	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, entity.RedisKeySweepLock, token, ttl).Result()
	if err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpSet)
		return nil, fmt.Errorf("failed to acquire sweep lock: %w", err)
	}
	if !ok {
		return nil, ErrSweepLocked
	}

	release := func(ctx context.Context) error {
		if err := releaseLockScript.Run(ctx, r.client, []string{entity.RedisKeySweepLock}, token).Err(); err != nil {
			metrics.RecordRedisError(serviceName, metrics.RedisOpDel)
			return fmt.Errorf("failed to release sweep lock: %w", err)
		}
		return nil
	}
	return release, nil
}

func (r *sweepStateRepository) SaveReport(ctx context.Context, report *entity.SweepReport) error {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpSet)
	defer timer.ObserveDuration()

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal sweep report: %w", err)
	}

	if err := r.client.Set(ctx, entity.RedisKeySweepReport, data, r.reportTTL).Err(); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpSet)
		return fmt.Errorf("failed to save sweep report: %w", err)
	}
	return nil
}

func (r *sweepStateRepository) LastReport(ctx context.Context) (*entity.SweepReport, error) {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpGet)
	defer timer.ObserveDuration()

	data, err := r.client.Get(ctx, entity.RedisKeySweepReport).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoReport
		}
		metrics.RecordRedisError(serviceName, metrics.RedisOpGet)
		return nil, fmt.Errorf("failed to get sweep report: %w", err)
	}

	var report entity.SweepReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sweep report: %w", err)
	}
	return &report, nil
}

func (r *sweepStateRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
