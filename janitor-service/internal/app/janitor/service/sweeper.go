package service

import (
	"context"
	"fmt"
	"time"

	"storefront/janitor-service/internal/app/janitor/entity"
	"storefront/janitor-service/internal/app/janitor/repository"
	"storefront/pkg/logger"
	"storefront/pkg/metrics"
	"storefront/pkg/storage"
)

type Sweeper struct {
	files   storage.FileStorage
	images  repository.ImageKeyRepository
	state   repository.SweepStateRepository // nil - без блокировки и отчета
	grace   time.Duration
	lockTTL time.Duration
	now     func() time.Time
}

// NewSweeper создает сервис уборки. Файлы моложе grace не трогаются:
// их транзакция загрузки может быть еще не закоммичена.
func NewSweeper(
	files storage.FileStorage,
	images repository.ImageKeyRepository,
	state repository.SweepStateRepository,
	grace time.Duration,
	lockTTL time.Duration,
) *Sweeper {
	return &Sweeper{
		files:   files,
		images:  images,
		state:   state,
		grace:   grace,
		lockTTL: lockTTL,
		now:     time.Now,
	}
}

func (s *Sweeper) Sweep(ctx context.Context, trigger string) (*entity.SweepReport, error) {
	if s.state != nil {
		release, err := s.state.AcquireLock(ctx, s.lockTTL)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := release(context.Background()); err != nil {
				logger.Warn().Err(err).Msg("Failed to release sweep lock")
			}
		}()
	}

	report := &entity.SweepReport{Trigger: trigger, StartedAt: s.now()}

	objects, err := s.files.List(ctx, storage.ProductImagesPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list stored images: %w", err)
	}
	report.Scanned = len(objects)

	cutoff := report.StartedAt.Add(-s.grace)
	candidates := make([]string, 0, len(objects))
	for _, obj := range objects {
		if obj.ModifiedAt.After(cutoff) {
			report.Young++
			continue
		}
		candidates = append(candidates, obj.Key)
	}

	referenced, err := s.images.ReferencedKeys(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("failed to load referenced images: %w", err)
	}

	for _, key := range candidates {
		if _, ok := referenced[key]; ok {
			report.Referenced++
			continue
		}
		if err := s.files.Delete(ctx, key); err != nil {
			report.Failed++
			metrics.JanitorFilesSwept.WithLabelValues("failed").Inc()
			logger.Warn().Err(err).Str("key", key).Msg("Failed to delete orphaned image")
			continue
		}
		report.Deleted++
		metrics.JanitorFilesSwept.WithLabelValues("deleted").Inc()
		logger.Debug().Str("key", key).Msg("Deleted orphaned image")
	}

	report.FinishedAt = s.now()
	metrics.JanitorSweepDuration.Observe(report.Duration().Seconds())

	if s.state != nil {
		if err := s.state.SaveReport(ctx, report); err != nil {
			logger.Warn().Err(err).Msg("Failed to save sweep report")
		}
	}

	logger.Info().
		Str("trigger", trigger).
		Int("scanned", report.Scanned).
		Int("young", report.Young).
		Int("referenced", report.Referenced).
		Int("deleted", report.Deleted).
		Int("failed", report.Failed).
		Dur("duration", report.Duration()).
		Msg("Sweep completed")

	return report, nil
}

func (s *Sweeper) LastReport(ctx context.Context) (*entity.SweepReport, error) {
	if s.state == nil {
		return nil, repository.ErrNoReport
	}
	return s.state.LastReport(ctx)
}
