package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/snipbox/snipbox/cmd/snipctl/internal/client"
)

type contextKey string

const configKey contextKey = "snipctl-config"

// DefaultServerURL is used when neither a flag, the config file nor the
// environment names a server.
const DefaultServerURL = "http://localhost:3000/api"

// FileConfig is the on-disk and environment configuration. Flags given on
// the command line override it.
type FileConfig struct {
	ServerURL      string        `yaml:"server" env:"SNIPBOX_SERVER" env-default:"http://localhost:3000/api"`
	NonInteractive bool          `yaml:"non_interactive" env:"SNIPBOX_NON_INTERACTIVE" env-default:"false"`
	CallbackPort   int           `yaml:"callback_port" env:"SNIPBOX_CALLBACK_PORT" env-default:"8085"`
	CallbackWait   time.Duration `yaml:"callback_timeout" env:"SNIPBOX_CALLBACK_TIMEOUT" env-default:"5m"`
}

// GlobalConfig holds shared configuration for all snipctl commands.
// The root command's PersistentPreRunE injects it into the cobra command
// context and subcommands read it back with MustFromContext.
type GlobalConfig struct {
	ServerURL      string
	NonInteractive bool
	CallbackPort   int
	CallbackWait   time.Duration
	ClientProvider *client.Provider
}

// DefaultPath returns ~/.snipbox/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".snipbox", "config.yaml"), nil
}

// Load reads path when it exists and overlays SNIPBOX_* environment
// variables. A missing file is not an error; an empty path reads the
// environment only.
func Load(path string) (*FileConfig, error) {
	var cfg FileConfig

	if path != "" {
		_, err := os.Stat(path)
		switch {
		case err == nil:
			if err := cleanenv.ReadConfig(path, &cfg); err != nil {
				return nil, fmt.Errorf("failed to read config %q: %w", path, err)
			}
			return &cfg, nil
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("config file %q stat failed: %w", path, err)
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return &cfg, nil
}

// InjectConfig adds config to the cobra command context.
func InjectConfig(ctx context.Context, cfg *GlobalConfig) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from the cobra command context.
// Returns (nil, false) if config is not present.
func FromContext(ctx context.Context) (*GlobalConfig, bool) {
	cfg, ok := ctx.Value(configKey).(*GlobalConfig)
	return cfg, ok
}

// MustFromContext retrieves config from context or panics.
// This should only be used in command RunE functions where we know
// the config has been injected by the root command.
func MustFromContext(ctx context.Context) *GlobalConfig {
	cfg, ok := FromContext(ctx)
	if !ok {
		panic("snipctl: config not found in context - this is a bug in snipctl")
	}
	return cfg
}
