package common

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger = log.New(os.Stderr, "[nvcap] ", log.LstdFlags|log.Lmicroseconds)
)

func Logf(format string, args ...interface{}) {
	logger.Printf(format, args...)
}

func Fatalf(format string, args ...interface{}) {
	logger.Fatalf(format, args...)
}

// SetLogOutput redirects the shared logger.
func SetLogOutput(w io.Writer) {
	logger.SetOutput(w)
}

// LogConfig controls the optional rotating log file.
type LogConfig struct {
	Directory  string `yaml:"directory"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	MaxBackups int    `yaml:"maxBackups"`
	Compress   bool   `yaml:"compress"`
}

// WithDefaults fills unset rotation limits.
func (c LogConfig) WithDefaults() LogConfig {
	if c.MaxSizeMB <= 0 {
		c.MaxSizeMB = 5
	}
	if c.MaxAgeDays <= 0 {
		c.MaxAgeDays = 30
	}
	if c.MaxBackups <= 0 {
		c.MaxBackups = 3
	}
	return c
}

// SetupFileLogging tees the shared logger into a rotating file under
// cfg.Directory. The returned function restores stderr-only logging and
// closes the file.
func SetupFileLogging(cfg LogConfig) (func() error, error) {
	cfg = cfg.WithDefaults()
	if cfg.Directory == "" {
		return func() error { return nil }, nil
	}
	if err := os.MkdirAll(cfg.Directory, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Directory, "nvcapctl.log"),
		MaxSize:    cfg.MaxSizeMB,
		MaxAge:     cfg.MaxAgeDays,
		MaxBackups: cfg.MaxBackups,
		Compress:   cfg.Compress,
	}
	logger.SetOutput(io.MultiWriter(os.Stderr, rotator))
	return func() error {
		logger.SetOutput(os.Stderr)
		return rotator.Close()
	}, nil
}
