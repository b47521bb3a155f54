package processor

import (
	"context"
	"errors"

	"storefront/janitor-service/internal/app/janitor/entity"
	"storefront/janitor-service/internal/app/janitor/repository"
	"storefront/janitor-service/internal/app/janitor/service"
	"storefront/pkg/logger"

	"github.com/robfig/cron/v3"
)

type CronScheduler struct {
	cron    *cron.Cron
	sweeper service.SweeperInterface
}

func NewCronScheduler(sweeper service.SweeperInterface) *CronScheduler {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(logger.Printf(logger.DebugPrintf))))

	return &CronScheduler{
		cron:    c,
		sweeper: sweeper,
	}
}

// Start регистрирует проход по расписанию и сразу выполняет один проход
func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("Starting cron scheduler")

	_, err := s.cron.AddFunc(schedule, func() {
		s.run(ctx, entity.TriggerCron)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	logger.Info().Msg("Cron scheduler started")

	s.run(ctx, entity.TriggerStartup)
	return nil
}

func (s *CronScheduler) run(ctx context.Context, trigger string) {
	logger.Debug().Str("trigger", trigger).Msg("Sweep triggered")

	if _, err := s.sweeper.Sweep(ctx, trigger); err != nil {
		if errors.Is(err, repository.ErrSweepLocked) {
			logger.Info().Str("trigger", trigger).Msg("Sweep skipped: another instance holds the lock")
			return
		}
		logger.Error().Err(err).Str("trigger", trigger).Msg("Sweep failed")
	}
}

func (s *CronScheduler) Stop() {
	logger.Info().Msg("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Cron scheduler stopped")
}

func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}
