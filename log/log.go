// Package log is the diagnostic logger. The TUI owns the terminal while a
// session runs, so everything goes to a rotating file; callers never check a
// readiness state, logging before Init is a no-op.
package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	diagLog  zerolog.Logger
	rotator  *lumberjack.Logger
	logMu    sync.Mutex
	logReady bool
	dir      string
)

// ResolveDir picks the log directory: flag, then RCRD_LOG_PATH, then the
// OS default next to the config.
func ResolveDir(flagPath string) (string, error) {
	candidate := flagPath
	if candidate == "" {
		candidate = os.Getenv("RCRD_LOG_PATH")
	}
	if candidate != "" {
		if !filepath.IsAbs(candidate) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, candidate), nil
		}
		return candidate, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "rcrd"), nil
}

func Dir() string {
	logMu.Lock()
	defer logMu.Unlock()
	return dir
}

// Init opens the rotating diagnostic log in d.
func Init(d string) error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := os.MkdirAll(d, 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	dir = d

	rotator = &lumberjack.Logger{
		Filename:   filepath.Join(d, "rcrd.log"),
		MaxSize:    20, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
	}
	consoleWriter := zerolog.ConsoleWriter{
		Out:        rotator,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Int("pid", os.Getpid()).Logger()
	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if rotator != nil {
		rotator.Close()
		rotator = nil
	}
	logReady = false
}

func Info(msg string) {
	if ready() {
		diagLog.Info().Msg(msg)
	}
}

func Infof(format string, args ...any) {
	if ready() {
		diagLog.Info().Msg(fmt.Sprintf(format, args...))
	}
}

func Warnf(format string, args ...any) {
	if ready() {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

func Errorf(format string, args ...any) {
	if ready() {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func ready() bool {
	logMu.Lock()
	defer logMu.Unlock()
	return logReady
}

// SessionStart records the resolved taps and output at spawn time.
func SessionStart(monitor, mic, output string) {
	if !ready() {
		return
	}
	ev := diagLog.Info().Str("monitor", monitor).Str("output", output)
	if mic != "" {
		ev = ev.Str("mic", mic)
	}
	ev.Msg("session_start")
}

// SessionEnd records the outcome of a finished session.
func SessionEnd(durationS float64, markers, segments int, err error) {
	if !ready() {
		return
	}
	ev := diagLog.Info().
		Float64("duration_s", durationS).
		Int("markers", markers).
		Int("segments", segments)
	if err != nil {
		ev = ev.Str("error", err.Error())
	}
	ev.Msg("session_end")
}
