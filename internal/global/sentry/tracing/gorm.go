package tracing

import (
	"strings"
	"time"

	"challenge-settlement-system/config"

	"github.com/getsentry/sentry-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	gormSpanKey    = "sentry:span"
	gormStartKey   = "sentry:start"
	callbackPrefix = "sentry_tracing"
)

// GormPlugin 每条语句一个 span；加了行锁的语句带 db.lock 标记，
// 结算和领取排队等锁的时间可以直接在 Sentry 里看到
type GormPlugin struct {
	slowThreshold time.Duration
}

func NewGormPlugin() *GormPlugin {
	ms := config.Get().Sentry.Tracing.DBSlowThresholdMs
	return &GormPlugin{slowThreshold: time.Duration(ms) * time.Millisecond}
}

func (p *GormPlugin) Name() string {
	return "SentryTracingPlugin"
}

type registerFunc = func(name string, fn func(*gorm.DB)) error

func (p *GormPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	hooks := []struct {
		name, op      string
		before, after registerFunc
	}{
		{"create", "db.sql.create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"query", "db.sql.query", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"update", "db.sql.update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", "db.sql.delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"row", "db.sql.row", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register},
		{"raw", "db.sql.raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
	}
	for _, h := range hooks {
		if err := h.before(callbackPrefix+":before_"+h.name, p.before(h.op)); err != nil {
			return err
		}
		if err := h.after(callbackPrefix+":after_"+h.name, p.after); err != nil {
			return err
		}
	}
	return nil
}

func (p *GormPlugin) before(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		if db.Statement == nil {
			return
		}
		db.InstanceSet(gormStartKey, time.Now())
		span := startChild(db.Statement.Context, operation, tableOf(db))
		if span == nil {
			return
		}
		span.SetData("db.system", "mysql")
		if locking(db) {
			span.SetData("db.lock", "FOR UPDATE")
		}
		db.InstanceSet(gormSpanKey, span)
		db.Statement.Context = span.Context()
	}
}

func (p *GormPlugin) after(db *gorm.DB) {
	if db.Statement == nil {
		return
	}
	startVal, ok := db.InstanceGet(gormStartKey)
	if !ok {
		return
	}
	spanVal, ok := db.InstanceGet(gormSpanKey)
	if !ok {
		return
	}
	start, _ := startVal.(time.Time)
	span, _ := spanVal.(*sentry.Span)
	if span == nil {
		return
	}
	span.SetData("db.rows_affected", db.RowsAffected)
	err := db.Error
	if err == gorm.ErrRecordNotFound {
		err = nil
	}
	finish(span, time.Since(start), p.slowThreshold, err)
}

// tableOf 只记表名，不记 SQL 和参数
func tableOf(db *gorm.DB) string {
	if db.Statement.Table == "" {
		return "unknown"
	}
	return db.Statement.Table
}

func locking(db *gorm.DB) bool {
	c, ok := db.Statement.Clauses["FOR"]
	if !ok {
		return false
	}
	l, ok := c.Expression.(clause.Locking)
	return ok && strings.EqualFold(l.Strength, "UPDATE")
}
