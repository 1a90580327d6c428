package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ashcorp/wishlist-backend/pkg/logger"
)

// queryLogger sends slow and failed queries to the service logger. Record
// not found is expected on every lookup miss and is not logged.
type queryLogger struct {
	logg *logger.Logger
	slow time.Duration
}

func newQueryLogger(logg *logger.Logger, slow time.Duration) gormlogger.Interface {
	if logg == nil {
		return gormlogger.Discard
	}
	return &queryLogger{logg: logg, slow: slow}
}

func (l *queryLogger) LogMode(gormlogger.LogLevel) gormlogger.Interface {
	return l
}

func (l *queryLogger) Info(ctx context.Context, msg string, _ ...any) {
	l.logg.Debug(ctx, msg)
}

func (l *queryLogger) Warn(ctx context.Context, msg string, _ ...any) {
	l.logg.Warn(ctx, msg)
}

func (l *queryLogger) Error(ctx context.Context, msg string, _ ...any) {
	l.logg.Error(ctx, msg, errors.New(msg))
}

func (l *queryLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound)
	slow := l.slow > 0 && elapsed >= l.slow
	if !failed && !slow {
		return
	}

	sql, rows := fc()
	ctx = l.logg.WithFields(ctx, map[string]any{
		"sql":         sql,
		"rows":        rows,
		"duration_ms": elapsed.Milliseconds(),
	})
	if failed {
		l.logg.Error(ctx, "db.query_failed", err)
		return
	}
	l.logg.Warn(ctx, "db.query_slow")
}
