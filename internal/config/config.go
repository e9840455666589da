// Package config loads server settings from an optional YAML file with
// environment variable overrides.
package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/mcoot/hiddengrid/internal/model"
)

// PathEnv names the variable holding the config file path
const PathEnv = "HGRID_CONFIG"

// Storage types
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

// DefaultContract is the account the grid computes as when none is configured
const DefaultContract = "0x0000000000000000000000000000000000001000"

//go:embed config.schema.json
var schemaSource string

var schema = jsonschema.MustCompileString("config.schema.json", schemaSource)

// Config is the full server configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Storage StorageConfig `yaml:"storage"`
	FHE     FHEConfig     `yaml:"fhe"`
	Auth    AuthConfig    `yaml:"auth"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type StorageConfig struct {
	Type   string       `yaml:"type"`
	Redis  RedisConfig  `yaml:"redis"`
	SQLite SQLiteConfig `yaml:"sqlite"`
}

type RedisConfig struct {
	URL            string        `yaml:"url"`
	PoolSize       int           `yaml:"pool_size"`
	MinIdleConns   int           `yaml:"min_idle_conns"`
	GuestPlayerTTL time.Duration `yaml:"guest_player_ttl"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// FHEConfig holds the network key seed and the grid's contract account.
// An empty seed is only accepted with memory storage; keys are then
// generated per process.
type FHEConfig struct {
	Seed     string `yaml:"seed"`
	Contract string `yaml:"contract"`
}

type AuthConfig struct {
	SessionDuration time.Duration `yaml:"session_duration"`
}

// Default returns the configuration used when nothing is overridden
func Default() Config {
	return Config{
		Server:  ServerConfig{Port: 8080},
		Log:     LogConfig{Level: "info"},
		Storage: StorageConfig{
			Type: StorageMemory,
			Redis: RedisConfig{
				URL:            "redis://localhost:6379",
				PoolSize:       10,
				MinIdleConns:   2,
				GuestPlayerTTL: 24 * time.Hour,
			},
			SQLite: SQLiteConfig{Path: "data/hiddengrid.db"},
		},
		FHE:  FHEConfig{Contract: DefaultContract},
		Auth: AuthConfig{SessionDuration: 24 * time.Hour},
	}
}

// Load reads path (if non-empty) over the defaults, applies environment
// overrides and validates the result
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := Decode(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Decode checks raw YAML against the schema and decodes it into cfg
func Decode(raw []byte, cfg *Config) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return err
	}
	if doc != nil {
		// The validator wants JSON-decoded values
		js, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		var instance any
		if err := json.Unmarshal(js, &instance); err != nil {
			return err
		}
		if err := schema.Validate(instance); err != nil {
			return err
		}
	}
	return yaml.Unmarshal(raw, cfg)
}

// ApplyEnv overrides settings from the environment
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("STORAGE_TYPE"); ok && v != "" {
		c.Storage.Type = strings.ToLower(v)
	}
	if v, ok := lookup("REDIS_URL"); ok && v != "" {
		c.Storage.Redis.URL = v
	}
	if v, ok := lookup("SQLITE_PATH"); ok && v != "" {
		c.Storage.SQLite.Path = v
	}
	if v, ok := lookup("FHE_SEED"); ok && v != "" {
		c.FHE.Seed = v
	}
	if v, ok := lookup("CONTRACT_ADDRESS"); ok && v != "" {
		c.FHE.Contract = v
	}
	if v, ok := lookup("PORT"); ok && v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		} else {
			c.Server.Port = -1
		}
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		c.Log.Level = strings.ToLower(v)
	}
}

// Validate checks settings that span fields or come from the environment
func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Type {
	case StorageMemory, StorageRedis, StorageSQLite:
	default:
		errs = append(errs, fmt.Errorf("storage type %q: must be memory, redis or sqlite", c.Storage.Type))
	}
	if c.Storage.Type != StorageMemory && c.FHE.Seed == "" {
		errs = append(errs, errors.New("fhe seed is required with persistent storage"))
	}
	if c.FHE.Seed != "" && len(c.FHE.Seed) < 16 {
		errs = append(errs, errors.New("fhe seed must be at least 16 bytes"))
	}
	if _, err := model.ParsePlayerID(c.FHE.Contract); err != nil {
		errs = append(errs, fmt.Errorf("contract address %q is not an account address", c.FHE.Contract))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, errors.New("port must be between 1 and 65535"))
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// LogLevel returns the configured slog level
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", c.Log.Level, err)
	}
	return level, nil
}
