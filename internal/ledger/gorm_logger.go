package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// zerologGormLogger routes gorm output through the global zerolog logger.
type zerologGormLogger struct {
	level logger.LogLevel
}

func (l *zerologGormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return &zerologGormLogger{level: level}
}

func (l *zerologGormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Info {
		log.Info().Msg(fmt.Sprintf(msg, data...))
	}
}

func (l *zerologGormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Warn {
		log.Warn().Msg(fmt.Sprintf(msg, data...))
	}
}

func (l *zerologGormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Error {
		log.Error().Msg(fmt.Sprintf(msg, data...))
	}
}

func (l *zerologGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		log.Error().Err(err).Dur("duration", elapsed).Str("sql", sql).Int64("rows", rows).Msg("ledger query error")
	case elapsed > 200*time.Millisecond:
		log.Warn().Dur("duration", elapsed).Str("sql", sql).Int64("rows", rows).Msg("slow ledger query")
	default:
		log.Debug().Dur("duration", elapsed).Str("sql", sql).Int64("rows", rows).Msg("ledger query")
	}
}
