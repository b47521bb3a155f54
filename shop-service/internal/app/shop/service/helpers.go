package service

import (
	"context"
	"encoding/json"
	"errors"

	"storefront/pkg/logger"
	"storefront/pkg/metrics"
	"storefront/pkg/storage"
	"storefront/shop-service/internal/app/shop/util"
	"storefront/shop-service/internal/app/shop/validation"
)

// publish отправляет событие в Kafka. Ошибка только логируется: запись в БД уже зафиксирована.
func publish(ctx context.Context, publisher util.MessagePublisher, key string, event interface{}) {
	if publisher == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("failed to marshal event")
		return
	}

	if err := publisher.PublishMessage(ctx, key, data); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("failed to publish event")
	}
}

// removeFiles удаляет файлы после фиксации транзакции. Неудаленные файлы подберет janitor.
func removeFiles(ctx context.Context, files storage.FileStorage, keys []string) {
	for _, key := range keys {
		if err := files.Delete(ctx, key); err != nil {
			metrics.StoredFiles.WithLabelValues("delete", "error").Inc()
			logger.Warn().Err(err).Str("key", key).Msg("failed to delete stored file")
			continue
		}
		metrics.StoredFiles.WithLabelValues("delete", "success").Inc()
	}
}

// trackValidation считает отклоненные валидацией записи
func trackValidation(entity string, err error) error {
	if err != nil && errors.Is(err, validation.ErrInvalid) {
		metrics.ValidationFailures.WithLabelValues(entity).Inc()
	}
	return err
}
