package repository

import (
	"context"
	"fmt"

	"storefront/pkg/metrics"

	"github.com/jackc/pgx/v5"
)

const (
	serviceName = "janitor-service"

	referencedKeysQuery = `SELECT image_file FROM images WHERE image_file = ANY($1)`

	// размер пачки ключей в одном запросе ANY($1)
	defaultBatchSize = 500
)

// Querier - часть pgxpool.Pool, которой пользуется репозиторий
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
}

type imageKeyRepository struct {
	db        Querier
	batchSize int
}

func NewImageKeyRepository(db Querier) ImageKeyRepository {
	return &imageKeyRepository{db: db, batchSize: defaultBatchSize}
}

func (r *imageKeyRepository) ReferencedKeys(ctx context.Context, keys []string) (map[string]struct{}, error) {
	referenced := make(map[string]struct{})

	for start := 0; start < len(keys); start += r.batchSize {
		end := start + r.batchSize
		if end > len(keys) {
			end = len(keys)
		}

		found, err := r.query(ctx, keys[start:end])
		if err != nil {
			return nil, err
		}
		for _, key := range found {
			referenced[key] = struct{}{}
		}
	}

	return referenced, nil
}

func (r *imageKeyRepository) query(ctx context.Context, batch []string) ([]string, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "images")
	defer timer.ObserveDuration()

	rows, err := r.db.Query(ctx, referencedKeysQuery, batch)
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to query image keys: %w", err)
	}

	found, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to read image keys: %w", err)
	}
	return found, nil
}

func (r *imageKeyRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
