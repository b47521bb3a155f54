package util

import (
	"context"
	"fmt"
	"time"

	"storefront/pkg/logger"
	"storefront/pkg/metrics"

	"github.com/segmentio/kafka-go"
)

// KafkaProducer обертка над Kafka writer для событий магазина
type KafkaProducer struct {
	writer  *kafka.Writer
	service string
}

// NewKafkaProducer создает producer для топика событий (shop_events)
func NewKafkaProducer(brokers []string, topic, service string) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // события одной сущности попадают в одну партицию
		BatchSize:    100,
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Logger:       logger.Printf(logger.DebugPrintf),
		ErrorLogger:  logger.Printf(logger.ErrorPrintf),
	}

	return &KafkaProducer{writer: writer, service: service}
}

// PublishMessage отправляет сообщение; key - ID сущности
func (p *KafkaProducer) PublishMessage(ctx context.Context, key string, value []byte) error {
	timer := metrics.NewKafkaProduceTimer(p.service, p.writer.Topic)

	message := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		timer.Error()
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	timer.Success()
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
