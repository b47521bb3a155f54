package metrics

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

const gormStartKey = "metrics:start"

// GormPlugin снимает db_query_duration_seconds и db_errors_total для всех запросов GORM
type GormPlugin struct {
	service string
}

func NewGormPlugin(service string) *GormPlugin {
	return &GormPlugin{service: service}
}

func (p *GormPlugin) Name() string {
	return "storefront:metrics"
}

func (p *GormPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()

	if err := cb.Create().Before("gorm:create").Register("metrics:before_create", p.before); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("metrics:after_create", p.after(DbOpInsert)); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("metrics:before_query", p.before); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("metrics:after_query", p.after(DbOpSelect)); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("metrics:before_update", p.before); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("metrics:after_update", p.after(DbOpUpdate)); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("metrics:before_delete", p.before); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register("metrics:after_delete", p.after(DbOpDelete)); err != nil {
		return err
	}
	if err := cb.Raw().Before("gorm:raw").Register("metrics:before_raw", p.before); err != nil {
		return err
	}
	return cb.Raw().After("gorm:raw").Register("metrics:after_raw", p.after(DbOpRaw))
}

func (p *GormPlugin) before(db *gorm.DB) {
	db.InstanceSet(gormStartKey, time.Now())
}

func (p *GormPlugin) after(op DbOperation) func(*gorm.DB) {
	return func(db *gorm.DB) {
		value, ok := db.InstanceGet(gormStartKey)
		if !ok {
			return
		}
		start, ok := value.(time.Time)
		if !ok {
			return
		}

		table := db.Statement.Table
		if table == "" {
			table = "unknown"
		}
		DbQueryDuration.WithLabelValues(p.service, string(op), table).Observe(time.Since(start).Seconds())

		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
			RecordDbError(p.service, op)
		}
	}
}
