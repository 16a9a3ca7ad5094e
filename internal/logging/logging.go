package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/saltyorg/partsroom/internal/config"
)

const (
	DefaultLogFileName = "partsroom.log"
	DefaultMaxSizeMB   = 50
	DefaultMaxBackups  = 5
	DefaultMaxAgeDays  = 30
	DefaultCompress    = true

	timeFormat = "2006-01-02 15:04:05"
)

// Apply sets the global level and writers. An empty level falls back to the
// log.level setting. Human readable output goes to stdout. When the log
// directory is usable, JSON lines also go to a rotating file at logFilePath.
func Apply(level string, loader *config.Loader, logFilePath string) {
	if level == "" {
		level = loader.String("log.level", "info")
	}
	zerolog.SetGlobalLevel(ParseLevel(level))

	console := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: timeFormat}
	file := rotatingWriter(loader, logFilePath)
	if file == nil {
		log.Logger = zerolog.New(console).With().Timestamp().Logger()
		return
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(console, file)).With().Timestamp().Logger()
}

// ParseLevel maps info, debug and trace onto zerolog levels. Anything else is info.
func ParseLevel(level string) zerolog.Level {
	switch level {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	default:
		return zerolog.InfoLevel
	}
}

// LevelFromVerbosity maps a -v count onto a level name
func LevelFromVerbosity(v int) string {
	switch {
	case v >= 2:
		return "trace"
	case v == 1:
		return "debug"
	default:
		return ""
	}
}

func rotatingWriter(loader *config.Loader, logFilePath string) io.Writer {
	if logFilePath == "" {
		logFilePath = DefaultLogFileName
	}
	if err := ensureLogDir(logFilePath); err != nil {
		log.Error().Err(err).Str("path", logFilePath).Msg("Failed to prepare log directory; logging to console only")
		return nil
	}

	maxSize := loader.Int("log.max_size_mb", DefaultMaxSizeMB)
	if maxSize <= 0 {
		maxSize = DefaultMaxSizeMB
	}

	return &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    maxSize,
		MaxBackups: max(loader.Int("log.max_backups", DefaultMaxBackups), 0),
		MaxAge:     max(loader.Int("log.max_age_days", DefaultMaxAgeDays), 0),
		Compress:   loader.Bool("log.compress", DefaultCompress),
	}
}

// FilePathForDB places the log file in the database's directory
func FilePathForDB(dbPath string) string {
	if dbPath == "" {
		return DefaultLogFileName
	}
	if abs, err := filepath.Abs(dbPath); err == nil {
		dbPath = abs
	}
	return filepath.Join(filepath.Dir(dbPath), DefaultLogFileName)
}

func ensureLogDir(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		return os.MkdirAll(dir, 0o755)
	}
	return nil
}
