package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	customlogger "exile-bot/internal/logger"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

// CustomGormLogger routes gorm's logging through the bot's leveled logger.
type CustomGormLogger struct {
	LogLevel                  logger.LogLevel
	SlowThreshold             time.Duration
	SkipCallerLookup          bool
	IgnoreRecordNotFoundError bool
}

func NewCustomGormLogger(level string) logger.Interface {
	var logLevel logger.LogLevel

	switch customlogger.ParseLevel(level) {
	case customlogger.LevelDebug:
		logLevel = logger.Info
	case customlogger.LevelInfo, customlogger.LevelWarning:
		logLevel = logger.Warn
	default:
		logLevel = logger.Error
	}

	return &CustomGormLogger{
		LogLevel:                  logLevel,
		SlowThreshold:             200 * time.Millisecond,
		IgnoreRecordNotFoundError: true,
	}
}

func (l *CustomGormLogger) LogMode(level logger.LogLevel) logger.Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

func (l *CustomGormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= logger.Info {
		customlogger.Infof(msg, data...)
	}
}

func (l *CustomGormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= logger.Warn {
		customlogger.Warningf(msg, data...)
	}
}

func (l *CustomGormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= logger.Error {
		customlogger.Errorf(msg, data...)
	}
}

// Trace logs each statement: failures at ERROR, slow queries at WARNING and
// everything else at DEBUG.
func (l *CustomGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	ms := float64(elapsed.Nanoseconds()) / 1e6
	sql, rows := fc()

	where := ""
	if !l.SkipCallerLookup {
		where = " [" + utils.FileWithLineNum() + "]"
	}

	switch {
	case err != nil && l.LogLevel >= logger.Error && (!errors.Is(err, gorm.ErrRecordNotFound) || !l.IgnoreRecordNotFoundError):
		customlogger.Errorf("[%.3fms]%s %s; error=%v", ms, where, sql, err)
	case elapsed > l.SlowThreshold && l.SlowThreshold != 0 && l.LogLevel >= logger.Warn:
		slowLog := fmt.Sprintf("SLOW SQL >= %v", l.SlowThreshold)
		customlogger.Warningf("[%.3fms]%s %s; %s, rows=%v", ms, where, sql, slowLog, rows)
	case l.LogLevel == logger.Info:
		customlogger.Debugf("[%.3fms]%s %s; rows=%v", ms, where, sql, rows)
	}
}
