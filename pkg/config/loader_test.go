package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/emailqueue/pkg/config"
)

type batchConfig struct {
	MaxBatchSize int    `env:"TEST_MAX_BATCH_SIZE" envDefault:"50"`
	Environment  string `env:"TEST_APP_ENV" envDefault:"development"`
}

type whitelistConfig struct {
	Whitelist string `env:"TEST_EMAIL_WHITELIST"`
}

type requiredConfig struct {
	Token string `env:"TEST_REQUIRED_TOKEN_UNSET,required"`
}

func TestLoad(t *testing.T) {
	t.Run("defaults applied", func(t *testing.T) {
		var cfg batchConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, 50, cfg.MaxBatchSize)
		assert.Equal(t, "development", cfg.Environment)
	})

	t.Run("value from environment", func(t *testing.T) {
		t.Setenv("TEST_EMAIL_WHITELIST", "qa@example.com\ndev@example.com")

		var cfg whitelistConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "qa@example.com\ndev@example.com", cfg.Whitelist)
	})

	t.Run("cached between calls", func(t *testing.T) {
		var first batchConfig
		require.NoError(t, config.Load(&first))

		var second batchConfig
		require.NoError(t, config.Load(&second))
		assert.Equal(t, first, second)
	})

	t.Run("nil pointer", func(t *testing.T) {
		err := config.Load[batchConfig](nil)
		assert.ErrorIs(t, err, config.ErrNilPointer)
	})

	t.Run("missing required variable", func(t *testing.T) {
		var cfg requiredConfig
		err := config.Load(&cfg)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})
}

func TestMustLoad(t *testing.T) {
	t.Run("panics on failure", func(t *testing.T) {
		assert.Panics(t, func() {
			var cfg requiredConfig
			config.MustLoad(&cfg)
		})
	})

	t.Run("succeeds with defaults", func(t *testing.T) {
		assert.NotPanics(t, func() {
			var cfg batchConfig
			config.MustLoad(&cfg)
		})
	})
}
