package entity

import (
	"time"
)

// Источник запуска прохода
const (
	TriggerStartup = "startup"
	TriggerCron    = "cron"
	TriggerEvent   = "event"
)

// SweepReport - итог одного прохода по хранилищу изображений
type SweepReport struct {
	Trigger    string    `json:"trigger"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Scanned    int       `json:"scanned"`
	Young      int       `json:"young"` // моложе grace period, не проверялись
	Referenced int       `json:"referenced"`
	Deleted    int       `json:"deleted"`
	Failed     int       `json:"failed"`
}

func (r *SweepReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Типы событий shop_events, после которых в хранилище могли остаться файлы
const (
	EventProductUpdated = "PRODUCT_UPDATED"
	EventProductDeleted = "PRODUCT_DELETED"
	EventUserDeleted    = "USER_DELETED"
	EventUnitDeleted    = "UNIT_DELETED"
)

// ShopEvent - поля событий shop-service, нужные janitor
type ShopEvent struct {
	EventType string           `json:"event_type"`
	Removed   map[string]int64 `json:"removed,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// RemovedImages - сколько строк images удалил каскад, породивший событие
func (e *ShopEvent) RemovedImages() int64 {
	return e.Removed["images"]
}

const (
	RedisKeySweepLock   = "janitor:sweep:lock"
	RedisKeySweepReport = "janitor:sweep:last"
)
