package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/landlord/landlord-server/internal/game"
	"github.com/spf13/viper"
)

// Config is the full server configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Rules    RulesConfig    `mapstructure:"rules"`
	Replay   ReplayConfig   `mapstructure:"replay"`
	Auth     AuthConfig     `mapstructure:"auth"`
}

type ServerConfig struct {
	HTTP           HTTPConfig      `mapstructure:"http"`
	WebSocket      WebSocketConfig `mapstructure:"websocket"`
	GRPC           GRPCConfig      `mapstructure:"grpc"`
	AllowedOrigins []string        `mapstructure:"allowed_origins"`
	TurnTimeout    time.Duration   `mapstructure:"turn_timeout"`
	TimeoutCheck   time.Duration   `mapstructure:"timeout_check"`
}

type HTTPConfig struct {
	Address string `mapstructure:"address"`
}

type WebSocketConfig struct {
	Address         string `mapstructure:"address"`
	Path            string `mapstructure:"path"`
	ReadBufferSize  int    `mapstructure:"read_buffer_size"`
	WriteBufferSize int    `mapstructure:"write_buffer_size"`
}

type GRPCConfig struct {
	Address              string `mapstructure:"address"`
	MaxConcurrentStreams int    `mapstructure:"max_concurrent_streams"`
}

// LoggingConfig selects the zap level and encoder.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DatabaseConfig selects the snapshot store. Driver is one of postgres,
// sqlite or none.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	DSN      string `mapstructure:"dsn"`
	Path     string `mapstructure:"path"`
	MaxConns int    `mapstructure:"max_conns"`
}

// RedisConfig enables the snapshot cache when Address is set.
type RedisConfig struct {
	Address   string        `mapstructure:"address"`
	TTL       time.Duration `mapstructure:"ttl"`
	MaxIdle   int           `mapstructure:"max_idle"`
	KeyPrefix string        `mapstructure:"key_prefix"`
}

// RulesConfig mirrors game.Config for the scalar rules constants.
type RulesConfig struct {
	StartingCash          int `mapstructure:"starting_cash"`
	Salary                int `mapstructure:"salary"`
	BailCost              int `mapstructure:"bail_cost"`
	MaxJailTurns          int `mapstructure:"max_jail_turns"`
	TotalHouses           int `mapstructure:"total_houses"`
	TotalHotels           int `mapstructure:"total_hotels"`
	MinPlayers            int `mapstructure:"min_players"`
	MaxPlayers            int `mapstructure:"max_players"`
	UnmortgageInterestPct int `mapstructure:"unmortgage_interest_pct"`
	DiceHistory           int `mapstructure:"dice_history"`
}

type ReplayConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Directory string `mapstructure:"directory"`
}

// AuthConfig holds the secret player tokens are signed with. An empty
// secret disables token checks and trusts the player id sent by clients.
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// GameConfig converts the rules section into engine constants.
func (r RulesConfig) GameConfig() game.Config {
	return game.Config{
		StartingCash:          r.StartingCash,
		Salary:                r.Salary,
		BailCost:              r.BailCost,
		MaxJailTurns:          r.MaxJailTurns,
		TotalHouses:           r.TotalHouses,
		TotalHotels:           r.TotalHotels,
		MinPlayers:            r.MinPlayers,
		MaxPlayers:            r.MaxPlayers,
		UnmortgageInterestPct: r.UnmortgageInterestPct,
		DiceHistory:           r.DiceHistory,
	}
}

// setDefaults registers every key. Unmarshal only consults the environment
// for keys viper already knows, so keys without a natural default are set
// to their zero value.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http.address", ":8080")
	v.SetDefault("server.websocket.address", ":8081")
	v.SetDefault("server.websocket.path", "/ws")
	v.SetDefault("server.websocket.read_buffer_size", 1024)
	v.SetDefault("server.websocket.write_buffer_size", 1024)
	v.SetDefault("server.grpc.address", ":9090")
	v.SetDefault("server.grpc.max_concurrent_streams", 1000)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.turn_timeout", 300*time.Second)
	v.SetDefault("server.timeout_check", 10*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.path", "landlord.db")
	v.SetDefault("database.max_conns", 10)

	v.SetDefault("redis.address", "")
	v.SetDefault("redis.ttl", 24*time.Hour)
	v.SetDefault("redis.max_idle", 8)
	v.SetDefault("redis.key_prefix", "landlord:game:")

	rules := game.DefaultConfig()
	v.SetDefault("rules.starting_cash", rules.StartingCash)
	v.SetDefault("rules.salary", rules.Salary)
	v.SetDefault("rules.bail_cost", rules.BailCost)
	v.SetDefault("rules.max_jail_turns", rules.MaxJailTurns)
	v.SetDefault("rules.total_houses", rules.TotalHouses)
	v.SetDefault("rules.total_hotels", rules.TotalHotels)
	v.SetDefault("rules.min_players", rules.MinPlayers)
	v.SetDefault("rules.max_players", rules.MaxPlayers)
	v.SetDefault("rules.unmortgage_interest_pct", rules.UnmortgageInterestPct)
	v.SetDefault("rules.dice_history", rules.DiceHistory)

	v.SetDefault("replay.enabled", false)
	v.SetDefault("replay.directory", "replays")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
}

// Load reads configuration from an optional .env file, the YAML file at
// path and LANDLORD_ prefixed environment variables, in increasing order of
// precedence. A missing file at path is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("LANDLORD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the postgres driver")
		}
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	case "none":
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if err := c.Rules.GameConfig().Validate(); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	if c.Server.TurnTimeout < 0 {
		return fmt.Errorf("server.turn_timeout must not be negative")
	}
	return nil
}
