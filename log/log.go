// Package log writes the diagnostics log. Logging is off until Init succeeds;
// every call before that is a no-op.
package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

const FileName = "beep_log.txt"

var (
	diagLog  zerolog.Logger
	diagFile *os.File
	logMu    sync.Mutex
	logReady bool
	dir      string
)

// ResolveDir picks the log directory: the --logpath flag, then BEEP_LOG_PATH.
// An empty result means diagnostics logging stays disabled.
func ResolveDir(flagPath string) (string, error) {
	path := flagPath
	if path == "" {
		path = os.Getenv("BEEP_LOG_PATH")
	}
	if path == "" || filepath.IsAbs(path) {
		return path, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, path), nil
}

func SetDir(d string) {
	dir = d
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	var err error
	diagFile, err = os.OpenFile(filepath.Join(dir, FileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05.000",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Int("pid", os.Getpid()).Logger()

	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	logReady = false
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func SessionStart(mode string, tones, totalMs int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("mode", mode).
		Int("tones", tones).
		Int("total_ms", totalMs).
		Msg("session_start")
}

func Device(name string, sampleRate, channels int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("name", name).
		Int("sample_rate", sampleRate).
		Int("channels", channels).
		Msg("device")
}

func Tone(freq, length, repeats, delay int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Int("freq", freq).
		Int("length_ms", length).
		Int("repeats", repeats).
		Int("delay_ms", delay).
		Msg("tone")
}

func SessionEnd(status string, exitCode int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("status", status).
		Int("exit", exitCode).
		Msg("session_end")
}
