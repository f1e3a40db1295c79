package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/aweston/flagchase/internal/dependencies/clock"
	"github.com/aweston/flagchase/internal/dependencies/random"
	"github.com/aweston/flagchase/internal/services/account"
	"github.com/aweston/flagchase/internal/services/actor"
	"github.com/aweston/flagchase/internal/services/flag"
	"github.com/aweston/flagchase/internal/services/history"
	"github.com/aweston/flagchase/internal/services/question"
	"github.com/aweston/flagchase/internal/services/run"
	"github.com/aweston/flagchase/internal/sessions"
	sessionmemory "github.com/aweston/flagchase/internal/sessions/memory"
	sessionredis "github.com/aweston/flagchase/internal/sessions/redis"
	"github.com/aweston/flagchase/internal/storage"
	"github.com/aweston/flagchase/internal/storage/memory"
	"github.com/aweston/flagchase/internal/storage/postgres"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypePostgres = "postgres"
)

// Session store type constants
const (
	SessionTypeMemory = "memory"
	SessionTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage  storage.Store
	Sessions sessions.Store

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	AccountService     *account.Service
	ActorResolver      *actor.Resolver
	RunController      *run.Controller
	FlagController     *flag.Controller
	QuestionController *question.Controller
	HistoryController  *history.Controller
}

// Config holds configuration for the application factory
type Config struct {
	// AccountConfig holds configuration for the account service;
	// JWTSecret must be set outside of tests
	AccountConfig account.Config
	// Mailer delivers verification and reset mail (optional)
	// If nil, mail is written to the log
	Mailer account.Mailer
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// PostgresConfig holds Postgres connection settings (required if
	// StorageType is "postgres")
	PostgresConfig *postgres.Config
	// SessionType selects the session backend ("memory" or "redis")
	// If empty, defaults to "memory"
	SessionType string
	// RedisConfig holds Redis connection settings (required if
	// SessionType is "redis")
	RedisConfig *sessionredis.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	// Create storage based on type
	var store storage.Store
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		pgStore, err := postgres.New(*cfg.PostgresConfig)
		if err != nil {
			return nil, err
		}
		store = pgStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'postgres'")
	}

	// Create the session store based on type
	var sessionStore sessions.Store
	sessionType := cfg.SessionType
	if sessionType == "" {
		sessionType = SessionTypeMemory
	}

	switch sessionType {
	case SessionTypeMemory:
		sessionStore = sessionmemory.New(clk)
	case SessionTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when SessionType is redis")
		}
		redisStore, err := sessionredis.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		sessionStore = redisStore
	default:
		return nil, errors.New("invalid SessionType: must be 'memory' or 'redis'")
	}

	mailer := cfg.Mailer
	if mailer == nil {
		mailer = account.NewLogMailer(logger)
	}

	return newWithDependencies(store, sessionStore, mailer, clk, rnd, cfg.AccountConfig, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Store, sessionStore sessions.Store, mailer account.Mailer, clk clock.Clock, rnd random.Random, accountCfg account.Config, logger *slog.Logger) *App {
	// Create services
	accountService := account.New(store, sessionStore, mailer, clk, rnd, accountCfg, logger)
	resolver := actor.NewResolver(accountService, sessionStore)
	runController := run.NewController(store, clk, rnd, logger)
	flagController := flag.NewController(store, logger)
	questionController := question.NewController(store, logger)
	historyController := history.NewController(store, clk, logger)

	return &App{
		Storage:            store,
		Sessions:           sessionStore,
		Clock:              clk,
		Random:             rnd,
		AccountService:     accountService,
		ActorResolver:      resolver,
		RunController:      runController,
		FlagController:     flagController,
		QuestionController: questionController,
		HistoryController:  historyController,
	}
}
