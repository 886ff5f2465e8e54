package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/landlord/landlord-server/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.HTTP.Address)
	assert.Equal(t, ":9090", cfg.Server.GRPC.Address)
	assert.Equal(t, "/ws", cfg.Server.WebSocket.Path)
	assert.Equal(t, 300*time.Second, cfg.Server.TurnTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, game.DefaultConfig(), cfg.Rules.GameConfig())
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  http:
    address: ":7000"
  turn_timeout: 45s
logging:
  level: debug
  format: json
database:
  driver: postgres
  dsn: postgres://localhost/landlord
rules:
  starting_cash: 2000
  max_players: 6
replay:
  enabled: true
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("LANDLORD_LOGGING_LEVEL", "warn")
	t.Setenv("LANDLORD_RULES_SALARY", "400")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Server.HTTP.Address)
	assert.Equal(t, 45*time.Second, cfg.Server.TurnTimeout)
	assert.Equal(t, "warn", cfg.Logging.Level, "environment overrides the file")
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.True(t, cfg.Replay.Enabled)

	rules := cfg.Rules.GameConfig()
	assert.Equal(t, 2000, rules.StartingCash)
	assert.Equal(t, 400, rules.Salary)
	assert.Equal(t, 6, rules.MaxPlayers)
	assert.Equal(t, 50, rules.BailCost)
}

func TestLoadEnvOnlyKeys(t *testing.T) {
	t.Setenv("LANDLORD_DATABASE_DRIVER", "postgres")
	t.Setenv("LANDLORD_DATABASE_DSN", "postgres://db/landlord")
	t.Setenv("LANDLORD_REDIS_ADDRESS", "cache:6379")
	t.Setenv("LANDLORD_AUTH_JWT_SECRET", "s3cret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://db/landlord", cfg.Database.DSN)
	assert.Equal(t, "cache:6379", cfg.Redis.Address)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.HTTP.Address)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"postgres without dsn", func(c *Config) { c.Database.Driver = "postgres"; c.Database.DSN = "" }},
		{"sqlite without path", func(c *Config) { c.Database.Path = "" }},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"bad rules", func(c *Config) { c.Rules.MinPlayers = 1 }},
		{"negative timeout", func(c *Config) { c.Server.TurnTimeout = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
