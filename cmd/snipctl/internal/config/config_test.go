package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults when nothing is configured", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultServerURL, cfg.ServerURL)
		assert.False(t, cfg.NonInteractive)
		assert.Equal(t, 8085, cfg.CallbackPort)
		assert.Equal(t, 5*time.Minute, cfg.CallbackWait)
	})

	t.Run("file values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server: https://snip.example/api\ncallback_port: 9999\n"), 0600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "https://snip.example/api", cfg.ServerURL)
		assert.Equal(t, 9999, cfg.CallbackPort)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server: https://file.example/api\n"), 0600))
		t.Setenv("SNIPBOX_SERVER", "https://env.example/api")
		t.Setenv("SNIPBOX_NON_INTERACTIVE", "true")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "https://env.example/api", cfg.ServerURL)
		assert.True(t, cfg.NonInteractive)
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server: [unterminated\n"), 0600))

		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestContextRoundTrip(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)
	assert.Panics(t, func() { MustFromContext(context.Background()) })

	cfg := &GlobalConfig{ServerURL: "http://localhost:3000/api"}
	ctx := InjectConfig(context.Background(), cfg)
	assert.Same(t, cfg, MustFromContext(ctx))
}
