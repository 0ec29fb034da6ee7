package logger

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/config"
)

// LevelEnv overrides the configured level.
const LevelEnv = "SCA_LOG_LEVEL"

// Options root logger settings
type Options struct {
	Name       string
	Level      string
	JSON       bool
	File       string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Output     io.Writer
}

// FromConfig ambil opsi logger dari config
func FromConfig(cfg *config.Config, name string) Options {
	return Options{
		Name:       name,
		Level:      cfg.Logger.Level,
		JSON:       cfg.Logger.JSON,
		File:       cfg.Logger.File,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
	}
}

// New builds the root logger. The returned closer flushes the rotating file
// when one is configured.
func New(opts Options) (hclog.Logger, io.Closer) {
	out := opts.Output
	var closer io.Closer = nopCloser{}
	if out == nil {
		out = os.Stderr
	}
	if opts.File != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSize,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAge,
			Compress:   true,
		}
		out = lj
		closer = lj
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       opts.Name,
		Level:      Level(opts.Level),
		JSONFormat: opts.JSON,
		Output:     out,
	}), closer
}

// Level resolves SCA_LOG_LEVEL first, then the configured value, default INFO.
func Level(configured string) hclog.Level {
	for _, v := range []string{os.Getenv(LevelEnv), configured} {
		if lvl := hclog.LevelFromString(strings.TrimSpace(v)); lvl != hclog.NoLevel {
			return lvl
		}
	}
	return hclog.Info
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
