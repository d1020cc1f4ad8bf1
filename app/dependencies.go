package app

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/upb/ciw-intake/config"
	"github.com/upb/ciw-intake/handlers"
	"github.com/upb/ciw-intake/internal/observability"
	"github.com/upb/ciw-intake/repositories"
	"github.com/upb/ciw-intake/repositories/postgres"
	"github.com/upb/ciw-intake/routes"
	"github.com/upb/ciw-intake/services/extract"
	"github.com/upb/ciw-intake/services/notification"
	"github.com/upb/ciw-intake/services/persistence"
	"github.com/upb/ciw-intake/services/pipeline"
	"github.com/upb/ciw-intake/services/validation"
	"go.uber.org/zap"
)

// Version is stamped at build time
var Version = "dev"

const (
	dispatcherStopTimeout = 10 * time.Second
	cacheCleanupInterval  = time.Minute
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config   *config.Config
	DB       *postgres.DB
	Logger   *zap.Logger
	Registry *prometheus.Registry
	Metrics  *observability.Metrics
	Redis    *redis.Client

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Repos     *repositories.Repositories
	TxManager repositories.TransactionManager

	// Services
	LookupCache *validation.LookupCache
	Validator   *validation.Validator
	Persister   *persistence.Service
	Dispatcher  *notification.Dispatcher
	Locker      pipeline.IdentityLocker
	Extractor   *extract.DelimitedExtractor
	Pipeline    *pipeline.Pipeline
	Runner      *pipeline.Runner

	// Ops endpoints
	Health    *handlers.HealthHandler
	OpsServer *routes.Server

	stopCleanup chan struct{}
	opsStarted  bool
	closeOnce   sync.Once
	closeErr    error
}

// NewDependencies opens the database and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	factory, err := postgres.NewRepositoryFactory(cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps, err := wire(ctx, cfg, factory, logger)
	if err != nil {
		_ = factory.Close()
		return nil, err
	}
	return deps, nil
}

// NewDependenciesFromDB wires all dependencies over an already opened pool.
// The pool is closed by Close.
func NewDependenciesFromDB(ctx context.Context, cfg *config.Config, db *sql.DB, logger *zap.Logger) (*Dependencies, error) {
	factory := postgres.NewRepositoryFactoryFromDB(postgres.WrapDB(db, logger), logger)
	return wire(ctx, cfg, factory, logger)
}

func wire(ctx context.Context, cfg *config.Config, factory *postgres.RepositoryFactory, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:      cfg,
		Logger:      logger,
		RepoFactory: factory,
		DB:          factory.GetDB(),
		stopCleanup: make(chan struct{}),
	}

	deps.initMetrics()
	deps.initRepositories()
	deps.initValidation()

	// Initialize the identity locker before anything starts goroutines
	if err := deps.initLocker(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize identity locker: %w", err)
	}

	if err := deps.initNotification(); err != nil {
		deps.closeRedis()
		return nil, fmt.Errorf("failed to initialize notifications: %w", err)
	}

	deps.initPipeline()
	deps.initOps()

	go deps.LookupCache.StartCleanupWorker(cacheCleanupInterval, deps.stopCleanup)

	logger.Info("all dependencies initialized successfully",
		zap.String("lock_backend", cfg.Processing.LockBackend),
		zap.Int("workers", cfg.Processing.Workers))
	return deps, nil
}

func (d *Dependencies) initMetrics() {
	d.Registry = prometheus.NewRegistry()
	d.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	d.Metrics = observability.NewMetrics(d.Registry)
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	d.Repos = d.RepoFactory.NewRepositories()
	d.TxManager = d.RepoFactory.GetTransactionManager()

	d.Logger.Info("repositories initialized")
}

func (d *Dependencies) initValidation() {
	proc := d.Config.Processing

	d.LookupCache = validation.NewLookupCache(proc.LookupCacheSize, proc.LookupCacheTTL)
	lookups := validation.NewCachedLookups(d.Repos.Lookups, d.LookupCache)

	d.Validator = validation.NewValidator(lookups, d.Logger, validation.WithHomeCountry(proc.HomeCountry))
	d.Persister = persistence.NewService(d.Repos, d.TxManager, d.Logger)
}

// initLocker picks the identity lock backend. Redis is pinged up front so a
// bad address fails the run instead of every file.
func (d *Dependencies) initLocker(ctx context.Context) error {
	if d.Config.Processing.LockBackend != config.LockBackendRedis {
		d.Locker = pipeline.NewMemoryLocker()
		return nil
	}

	d.Redis = redis.NewClient(&redis.Options{
		Addr:     d.Config.Redis.Addr,
		Password: d.Config.Redis.Password,
		DB:       d.Config.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := d.Redis.Ping(pingCtx).Err(); err != nil {
		d.closeRedis()
		return fmt.Errorf("redis ping failed: %w", err)
	}

	d.Locker = pipeline.NewRedisLocker(d.Redis, d.Config.Redis.LockTTL, d.Logger)
	d.Logger.Info("redis identity locks enabled", zap.String("addr", d.Config.Redis.Addr))
	return nil
}

func (d *Dependencies) initNotification() error {
	n := d.Config.Notification

	dispatcher, err := notification.NewDispatcher(d.Repos.Outbox, notification.Config{
		From:           n.From,
		SupportAddress: n.SupportAddress,
		BufferSize:     n.BufferSize,
		WorkerCount:    n.Workers,
	}, d.Metrics, d.Logger)
	if err != nil {
		return err
	}
	if err := dispatcher.Start(); err != nil {
		return err
	}

	d.Dispatcher = dispatcher
	return nil
}

func (d *Dependencies) initPipeline() {
	proc := d.Config.Processing

	d.Extractor = extract.NewDelimitedExtractor(d.Logger)
	d.Pipeline = pipeline.NewPipeline(
		pipeline.Config{
			ExpectedVersion: proc.ExpectedVersion,
			ContractSource:  d.Config.ContractSource(),
		},
		d.Extractor,
		d.Validator,
		d.Persister,
		d.Dispatcher,
		d.Repos.ProcessedFiles,
		d.Locker,
		d.Metrics,
		d.Logger,
	)
	d.Runner = pipeline.NewRunner(d.Pipeline, d.Repos.ProcessedFiles, proc.InboxDir, proc.Workers, d.Logger)
}

func (d *Dependencies) initOps() {
	d.Health = handlers.NewHealthHandler(d.DB.DB, d.Redis, handlers.StatusInfo{
		Version:         Version,
		Environment:     d.Config.Environment,
		ExpectedVersion: d.Config.Processing.ExpectedVersion,
		ContractSource:  d.Config.Processing.ContractSource,
		LockBackend:     d.Config.Processing.LockBackend,
		Workers:         d.Config.Processing.Workers,
	}, d.Logger)

	router := routes.SetupRoutes(d.Health, d.Registry, d.Logger)
	d.OpsServer = routes.NewServer(d.Config.Observability.OpsAddr, router, d.Logger)
}

// StartOps serves the ops endpoints when an address is configured
func (d *Dependencies) StartOps() {
	if d.Config.Observability.OpsAddr == "" {
		return
	}
	d.OpsServer.Start()
	d.opsStarted = true
}

// WithMigrator opens a dedicated pool for schema migrations and hands a
// Migrator to fn. The migrate driver closes the pool it is given, so it never
// shares the application's pool.
func WithMigrator(cfg *config.Config, logger *zap.Logger, fn func(*postgres.Migrator) error) error {
	db, err := postgres.NewDB(cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	m, err := postgres.NewMigrator(db, cfg.Database.MigrationsPath, logger)
	if err != nil {
		_ = db.Close()
		return err
	}

	runErr := fn(m)
	if err := m.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to close migrator: %w", err)
	}
	return runErr
}

func (d *Dependencies) closeRedis() {
	if d.Redis != nil {
		_ = d.Redis.Close()
	}
}

// Close gracefully shuts down all dependencies. Queued notifications are
// flushed before the database closes. Calling Close again returns the first
// result.
func (d *Dependencies) Close(ctx context.Context) error {
	d.closeOnce.Do(func() {
		d.closeErr = d.close(ctx)
	})
	return d.closeErr
}

func (d *Dependencies) close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.opsStarted {
		if err := d.OpsServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop ops server: %w", err))
		}
	}

	if d.Dispatcher != nil {
		if err := d.Dispatcher.Stop(dispatcherStopTimeout); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop notification dispatcher: %w", err))
		}
	}

	close(d.stopCleanup)

	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
	}

	// Close database connection
	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	// Sync logger
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
