package factory

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/hiddengrid/internal/config"
	"github.com/mcoot/hiddengrid/internal/dependencies/clock"
	"github.com/mcoot/hiddengrid/internal/dependencies/random"
	"github.com/mcoot/hiddengrid/internal/fhe"
	"github.com/mcoot/hiddengrid/internal/services/auth"
	"github.com/mcoot/hiddengrid/internal/services/grid"
	"github.com/mcoot/hiddengrid/internal/services/movement"
	"github.com/mcoot/hiddengrid/internal/services/relayer"
	"github.com/mcoot/hiddengrid/internal/storage"
	"github.com/mcoot/hiddengrid/internal/storage/memory"
	redisstorage "github.com/mcoot/hiddengrid/internal/storage/redis"
	"github.com/mcoot/hiddengrid/internal/storage/sqlite"
	"github.com/mcoot/hiddengrid/internal/stream"
)

// Storage type constants
const (
	StorageTypeMemory = config.StorageMemory
	StorageTypeRedis  = config.StorageRedis
	StorageTypeSQLite = config.StorageSQLite
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Coprocessor
	Keys     *fhe.Keyset
	Executor *fhe.Executor

	// Services
	Engine         *movement.Engine
	GridController *grid.Controller
	RelayerService *relayer.Service
	AuthService    *auth.Service
	Hub            *stream.Hub
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
	// FHESeed derives the network keys. If empty, fresh keys are generated,
	// which only makes sense for memory storage.
	FHESeed []byte
	// Contract is the account the grid computes as
	Contract fhe.Account
}

// FromConfig maps loaded server configuration onto a factory Config
func FromConfig(cfg config.Config, logger *slog.Logger) Config {
	redisCfg := redisstorage.Config{
		URL:            cfg.Storage.Redis.URL,
		PoolSize:       cfg.Storage.Redis.PoolSize,
		MinIdleConns:   cfg.Storage.Redis.MinIdleConns,
		GuestPlayerTTL: cfg.Storage.Redis.GuestPlayerTTL,
	}
	return Config{
		AuthConfig:  auth.Config{SessionDuration: cfg.Auth.SessionDuration},
		Logger:      logger,
		StorageType: cfg.Storage.Type,
		RedisConfig: &redisCfg,
		SQLitePath:  cfg.Storage.SQLite.Path,
		FHESeed:     []byte(cfg.FHE.Seed),
		Contract:    fhe.Account(cfg.FHE.Contract),
	}
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := openStorage(cfg)
	if err != nil {
		return nil, err
	}

	seed := cfg.FHESeed
	if len(seed) == 0 {
		seed = make([]byte, 32)
		if _, err := rand.Read(seed); err != nil {
			return nil, fmt.Errorf("generate key seed: %w", err)
		}
		logger.Warn("no fhe seed configured, using ephemeral network keys")
	}
	keys, err := fhe.NewKeyset(seed)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	contract := cfg.Contract
	if contract == "" {
		contract = config.DefaultContract
	}

	// Use default auth config if not provided
	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg = auth.DefaultConfig()
	}

	return newWithDependencies(store, keys, contract, clock.New(), random.New(), authCfg, logger), nil
}

func openStorage(cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		return sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'sqlite'", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	keys *fhe.Keyset,
	contract fhe.Account,
	clk clock.Clock,
	rnd random.Random,
	authCfg auth.Config,
	logger *slog.Logger,
) *App {
	exec := fhe.NewExecutor(keys, store, rnd, contract, logger)
	engine := movement.NewEngine(exec)
	hub := stream.NewHub(logger)
	broadcaster := stream.NewBroadcaster(hub, logger)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		Keys:           keys,
		Executor:       exec,
		Engine:         engine,
		GridController: grid.NewController(store, exec, engine, broadcaster, clk, logger),
		RelayerService: relayer.New(exec, logger),
		AuthService:    auth.New(store, clk, authCfg, logger),
		Hub:            hub,
	}
}

// Close releases the storage backend and stops the event hub
func (a *App) Close() error {
	a.Hub.Close()
	return a.Storage.Close()
}
