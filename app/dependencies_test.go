package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/ciw-intake/config"
	"github.com/upb/ciw-intake/services/pipeline"
	"go.uber.org/zap/zaptest"
)

func TestNewDependenciesFromDB(t *testing.T) {
	t.Run("memory locks wire every component", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		mock.ExpectClose()

		deps, err := NewDependenciesFromDB(context.Background(), testConfig(t), db, zaptest.NewLogger(t))
		require.NoError(t, err)
		require.NotNil(t, deps)

		// Verify infrastructure
		assert.NotNil(t, deps.DB)
		assert.NotNil(t, deps.Registry)
		assert.NotNil(t, deps.Metrics)
		assert.Nil(t, deps.Redis)

		// Verify repositories
		require.NotNil(t, deps.Repos)
		assert.NotNil(t, deps.Repos.Persons)
		assert.NotNil(t, deps.Repos.Lookups)
		assert.NotNil(t, deps.Repos.ProcessedFiles)
		assert.NotNil(t, deps.Repos.Outbox)
		assert.NotNil(t, deps.TxManager)

		// Verify services
		assert.NotNil(t, deps.Validator)
		assert.NotNil(t, deps.Persister)
		assert.NotNil(t, deps.Dispatcher)
		assert.IsType(t, &pipeline.MemoryLocker{}, deps.Locker)
		assert.NotNil(t, deps.Pipeline)
		assert.NotNil(t, deps.Runner)
		assert.NotNil(t, deps.OpsServer)

		require.NoError(t, deps.Close(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unreachable redis fails wiring", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		cfg := testConfig(t)
		cfg.Processing.LockBackend = config.LockBackendRedis
		cfg.Redis.Addr = "127.0.0.1:1"

		deps, err := NewDependenciesFromDB(context.Background(), cfg, db, zaptest.NewLogger(t))
		assert.Error(t, err)
		assert.Nil(t, deps)
		assert.Contains(t, err.Error(), "failed to initialize identity locker")
	})
}

func TestNewDependencies_DatabaseFailure(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.Host = "127.0.0.1"
	cfg.Database.Port = 1

	deps, err := NewDependencies(context.Background(), cfg, zaptest.NewLogger(t))
	assert.Error(t, err)
	assert.Nil(t, deps)
	assert.Contains(t, err.Error(), "failed to initialize database")
}

func TestDependencies_StatusEndpoint(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	deps, err := NewDependenciesFromDB(context.Background(), testConfig(t), db, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer deps.Close(context.Background())

	w := httptest.NewRecorder()
	deps.Health.HandleStatus(w, httptest.NewRequest(http.MethodGet, "/status", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"expected_worksheet_version":"2.1"`)
	assert.Contains(t, w.Body.String(), `"lock_backend":"memory"`)
}

func TestDependenciesClose(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	deps, err := NewDependenciesFromDB(context.Background(), testConfig(t), db, zaptest.NewLogger(t))
	require.NoError(t, err)

	// Close should succeed
	require.NoError(t, deps.Close(context.Background()))

	// Second close returns the first result without closing twice
	assert.NoError(t, deps.Close(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Test helpers

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Environment: "test",
		Database: config.DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "ciw",
			Database:        "gcims_test",
			SSLMode:         "disable",
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
			MigrationsPath:  "migrations",
		},
		Processing: config.ProcessingConfig{
			ExpectedVersion: "2.1",
			HomeCountry:     "US",
			InboxDir:        t.TempDir(),
			Workers:         2,
			ContractSource:  "fpds",
			LockBackend:     config.LockBackendMemory,
			LookupCacheSize: 100,
			LookupCacheTTL:  time.Minute,
		},
		Notification: config.NotificationConfig{
			From:           "ciw-intake@gsa.gov",
			SupportAddress: "gcims-support@gsa.gov",
			Workers:        1,
			BufferSize:     10,
		},
		Redis: config.RedisConfig{
			LockTTL: time.Minute,
		},
		Observability: config.ObservabilityConfig{
			LogLevel:  "debug",
			LogFormat: "json",
		},
	}
}
