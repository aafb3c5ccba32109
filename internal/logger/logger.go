package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"exile-bot/internal/config"
)

// Level is the minimum severity written to the log.
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
	LevelFatal
)

var levelNames = map[Level]string{
	LevelDebug:   "DEBUG",
	LevelInfo:    "INFO",
	LevelWarning: "WARNING",
	LevelError:   "ERROR",
	LevelFatal:   "FATAL",
}

var minLevel atomic.Int32

func init() {
	minLevel.Store(int32(LevelInfo))
}

// ParseLevel maps a config level name to a Level. Unknown names map to INFO.
func ParseLevel(name string) Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarning
	case "ERROR":
		return LevelError
	case "FATAL":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// SetLevel changes the minimum level at runtime.
func SetLevel(l Level) {
	minLevel.Store(int32(l))
}

// Enabled reports whether messages at l are written.
func Enabled(l Level) bool {
	return int32(l) >= minLevel.Load()
}

// createLogFilePath generates a log file path with the current date
func createLogFilePath(logDir, prefix string) string {
	currentDate := time.Now().Format("2006-01-02")
	return filepath.Join(logDir, fmt.Sprintf("%s-%s.log", prefix, currentDate))
}

// createRotatingLogger creates a lumberjack rotating logger
func createRotatingLogger(logFilePath string, cfg *config.Config) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    cfg.Logger.Rotation.MaxSize,
		MaxBackups: cfg.Logger.Rotation.MaxBackups,
		MaxAge:     cfg.Logger.Rotation.MaxAge,
		Compress:   cfg.Logger.Rotation.Compress,
	}
}

// Setup configures logging to output to both stdout and a rotating log file
func Setup(cfg *config.Config) error {
	logDir := cfg.Logger.Directory

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	logFilePath := createLogFilePath(logDir, "exile-bot")
	rotatingLogger := createRotatingLogger(logFilePath, cfg)

	log.SetOutput(io.MultiWriter(os.Stdout, rotatingLogger))
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	SetLevel(ParseLevel(cfg.Logger.Level))

	Infof("Logging initialized: writing to %s at level %s", logFilePath, levelNames[Level(minLevel.Load())])
	return nil
}

func output(l Level, msg string) {
	if !Enabled(l) {
		return
	}
	// calldepth 3 skips output and the exported helper so Lshortfile points at the caller
	log.Output(3, "["+levelNames[l]+"] "+msg)
}

func Debug(v ...any)   { output(LevelDebug, fmt.Sprint(v...)) }
func Info(v ...any)    { output(LevelInfo, fmt.Sprint(v...)) }
func Warning(v ...any) { output(LevelWarning, fmt.Sprint(v...)) }
func Error(v ...any)   { output(LevelError, fmt.Sprint(v...)) }

func Debugf(format string, v ...any)   { output(LevelDebug, fmt.Sprintf(format, v...)) }
func Infof(format string, v ...any)    { output(LevelInfo, fmt.Sprintf(format, v...)) }
func Warningf(format string, v ...any) { output(LevelWarning, fmt.Sprintf(format, v...)) }
func Errorf(format string, v ...any)   { output(LevelError, fmt.Sprintf(format, v...)) }

// Fatalf logs at FATAL regardless of the configured level and exits.
func Fatalf(format string, v ...any) {
	log.Output(2, "[FATAL] "+fmt.Sprintf(format, v...))
	os.Exit(1)
}
