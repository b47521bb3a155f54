package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/janitor-service/internal/app/janitor/entity"
	"storefront/janitor-service/internal/app/janitor/repository"
	"storefront/janitor-service/internal/app/janitor/service"
	"storefront/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// KafkaConsumer слушает shop_events и запускает внеочередной проход,
// когда каскад удалил строки images
type KafkaConsumer struct {
	reader   *kafka.Reader
	sweeper  service.SweeperInterface
	stopChan chan struct{}
	doneChan chan struct{}
}

func NewKafkaConsumer(brokers []string, topic, groupID string, sweeper service.SweeperInterface) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		StartOffset:    kafka.LastOffset,
		CommitInterval: time.Second,
		ReadBackoffMin: 100 * time.Millisecond,
		ReadBackoffMax: 1 * time.Second,
		ErrorLogger:    kafka.LoggerFunc(logger.ErrorPrintf),
	})

	return &KafkaConsumer{
		reader:   reader,
		sweeper:  sweeper,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

func (c *KafkaConsumer) Start(ctx context.Context) {
	logger.Info().Str("topic", c.reader.Config().Topic).Msg("Starting Kafka consumer")
	go c.consume(ctx)
}

func (c *KafkaConsumer) Stop() {
	logger.Info().Msg("Stopping Kafka consumer...")
	close(c.stopChan)
	<-c.doneChan
	c.reader.Close()
	logger.Info().Msg("Kafka consumer stopped")
}

func (c *KafkaConsumer) consume(ctx context.Context) {
	defer close(c.doneChan)

	for {
		select {
		case <-c.stopChan:
			return
		default:
			readCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			message, err := c.reader.FetchMessage(readCtx)
			cancel()

			if err != nil {
				if ctx.Err() != nil {
					return
				}
				if !errors.Is(err, context.DeadlineExceeded) {
					logger.Warn().Err(err).Msg("Error fetching message")
					time.Sleep(time.Second)
				}
				continue
			}

			if err := c.processMessage(ctx, message); err != nil {
				// offset не коммитим, сообщение будет прочитано повторно
				logger.Error().Err(err).Int64("offset", message.Offset).Msg("Error processing message")
				continue
			}
			if err := c.reader.CommitMessages(ctx, message); err != nil {
				logger.Warn().Err(err).Msg("Error committing message")
			}
		}
	}
}

func (c *KafkaConsumer) processMessage(ctx context.Context, message kafka.Message) error {
	var event entity.ShopEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal shop event: %w", err)
	}

	if !triggersSweep(&event) {
		return nil
	}

	logger.Info().
		Str("event_type", event.EventType).
		Int64("removed_images", event.RemovedImages()).
		Int64("offset", message.Offset).
		Int("partition", message.Partition).
		Msg("Images removed by cascade, sweeping")

	if _, err := c.sweeper.Sweep(ctx, entity.TriggerEvent); err != nil {
		if errors.Is(err, repository.ErrSweepLocked) {
			return nil
		}
		return fmt.Errorf("failed to sweep after %s: %w", event.EventType, err)
	}
	return nil
}

func triggersSweep(event *entity.ShopEvent) bool {
	switch event.EventType {
	case entity.EventProductUpdated, entity.EventProductDeleted, entity.EventUserDeleted, entity.EventUnitDeleted:
		return event.RemovedImages() > 0
	}
	return false
}

func (c *KafkaConsumer) GetStats() kafka.ReaderStats {
	return c.reader.Stats()
}
