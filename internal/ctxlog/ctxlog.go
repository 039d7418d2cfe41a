// Package ctxlog provides context-aware structured logging utilities.
package ctxlog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type Config struct {
	Dir   string     `yaml:"dir"`
	Level slog.Level `yaml:"level"`
}

var setup sync.Once

// Setup installs the process-wide JSON logger tagged with the program name.
// When config.Dir is set, logs are also written to a timestamped file there.
// Only the first call configures anything; later calls reuse the default logger.
func Setup(ctx context.Context, name string, config Config) context.Context {
	setup.Do(func() {
		var w io.Writer = os.Stderr

		if config.Dir != "" {
			err := os.MkdirAll(config.Dir, 0755)
			if err != nil {
				panic(fmt.Errorf("create log dir: %w", err))
			}

			logFile, err := os.Create(filepath.Join(config.Dir, name+"-"+time.Now().Format("2006-01-02-15-04-05.log")))
			if err != nil {
				panic(fmt.Errorf("create log file: %w", err))
			}

			w = io.MultiWriter(os.Stderr, logFile)
		}

		logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: config.Level}))
		slog.SetDefault(logger.With("app", name))
	})

	return Store(ctx, slog.Default())
}

type ctxKey struct{}

var key ctxKey

func Store(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, key, log)
}

func Get(ctx context.Context) *slog.Logger {
	log, ok := ctx.Value(key).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return log
}

func Close(ctx context.Context, name string, closer io.Closer) error {
	logger := Get(ctx)
	err := closer.Close()
	if err != nil {
		logger.Error("failed to close", "closer", name, "error", err)
		return err
	}
	return nil
}

func With(ctx context.Context, kv ...any) context.Context {
	return Store(ctx, Get(ctx).With(kv...))
}
