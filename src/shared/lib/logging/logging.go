package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/multi"
	"github.com/veedubyou/stem-separator/src/shared/lib/cerr"
	"github.com/veedubyou/stem-separator/src/shared/lib/env"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	Environment env.Environment
	Level       string

	// FilePath turns on a rotated json log file next to the console output
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Setup installs the process-wide apex/log handler and returns a closer for the log file, if any.
func Setup(config Config) (io.Closer, error) {
	level := log.InfoLevel
	if config.Level != "" {
		parsed, err := log.ParseLevel(config.Level)
		if err != nil {
			return nil, cerr.Field("level", config.Level).Wrap(err).Error("Invalid log level")
		}
		level = parsed
	}

	handlers := []log.Handler{consoleHandler(config.Environment)}

	var closer io.Closer = nopCloser{}
	if config.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(config.FilePath), os.ModePerm); err != nil {
			return nil, cerr.Field("path", config.FilePath).Wrap(err).Error("Failed to create log dir")
		}

		rotated := &lumberjack.Logger{
			Filename:   config.FilePath,
			MaxSize:    orDefault(config.MaxSizeMB, 100),
			MaxBackups: orDefault(config.MaxBackups, 5),
			MaxAge:     orDefault(config.MaxAgeDays, 30),
			Compress:   true,
		}
		handlers = append(handlers, json.New(rotated))
		closer = rotated
	}

	log.SetLevel(level)
	if len(handlers) == 1 {
		log.SetHandler(handlers[0])
	} else {
		log.SetHandler(multi.New(handlers...))
	}

	return closer, nil
}

func consoleHandler(environment env.Environment) log.Handler {
	if environment == env.Development {
		return cli.New(os.Stderr)
	}

	return json.New(os.Stderr)
}

func orDefault(value int, fallback int) int {
	if value <= 0 {
		return fallback
	}

	return value
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
