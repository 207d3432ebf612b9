package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var (
	Logger  = zerolog.Nop()
	logFile *os.File
)

// Options controls where logs go and how much is written
type Options struct {
	Level   string // debug, info, warn, error
	File    string // empty means ~/.local/state/spaces/spaces.log
	Console bool   // also write human-readable lines to stderr
}

// timestampHook adds timestamp at the end of each log event
type timestampHook struct{}

func (h timestampHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	e.Time("ts", time.Now())
}

// DefaultLogPath returns the log file used when none is configured
func DefaultLogPath() string {
	return filepath.Join(os.Getenv("HOME"), ".local", "state", "spaces", "spaces.log")
}

// Init initializes the logging system with zerolog
func Init(opts Options) error {
	logPath := opts.File
	if logPath == "" {
		logPath = DefaultLogPath()
	}
	os.MkdirAll(filepath.Dir(logPath), 0755)

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	Close()
	logFile = f

	zerolog.SetGlobalLevel(ParseLevel(opts.Level))

	// Configure field names
	zerolog.MessageFieldName = "msg"

	var out io.Writer = logFile
	if opts.Console {
		console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		out = zerolog.MultiLevelWriter(logFile, console)
	}

	// Create logger with hook that adds timestamp last
	Logger = zerolog.New(out).Hook(timestampHook{})

	return nil
}

// ParseLevel maps a level name to a zerolog level, defaulting to info
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// SetDebug toggles debug level globally
func SetDebug(on bool) {
	if on {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// Close closes the log file
func Close() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// Debug returns a debug level event
func Debug() *zerolog.Event {
	return Logger.Debug()
}

// Info returns an info level event
func Info() *zerolog.Event {
	return Logger.Info()
}

// Warn returns a warn level event
func Warn() *zerolog.Event {
	return Logger.Warn()
}

// Error returns an error level event
func Error() *zerolog.Event {
	return Logger.Error()
}
