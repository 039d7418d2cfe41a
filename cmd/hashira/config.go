package main

import (
	"context"
	"fmt"
	"os"

	"hashira/internal/ctxlog"
	"hashira/internal/db"
	"hashira/internal/server"

	"github.com/goccy/go-yaml"
)

type Config struct {
	Log    ctxlog.Config
	DB     db.Config
	Server server.Config
}

// LoadConfig reads the YAML config file. An empty filename yields the zero Config.
func LoadConfig(ctx context.Context, filename string) (Config, error) {
	if filename == "" {
		return Config{}, nil
	}

	file, err := os.Open(filename)
	if err != nil {
		return Config{}, fmt.Errorf("open %q: %w", filename, err)
	}
	defer ctxlog.Close(ctx, "config file", file)

	dec := yaml.NewDecoder(file, yaml.Strict())

	var config Config
	err = dec.Decode(&config)
	if err != nil {
		return Config{}, fmt.Errorf("yaml: %w", err)
	}

	return config, nil
}
