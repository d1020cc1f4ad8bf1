package postgres

import (
	"database/sql"

	"github.com/upb/ciw-intake/config"
	"github.com/upb/ciw-intake/repositories"
	"go.uber.org/zap"
)

// RepositoryFactory creates and manages all repositories
type RepositoryFactory struct {
	db     *DB
	logger *zap.Logger
}

// NewRepositoryFactory opens the pool and creates a new repository factory
func NewRepositoryFactory(cfg config.DatabaseConfig, logger *zap.Logger) (*RepositoryFactory, error) {
	db, err := NewDB(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &RepositoryFactory{db: db, logger: logger}, nil
}

// NewRepositoryFactoryFromDB creates a factory over an existing pool
func NewRepositoryFactoryFromDB(db *DB, logger *zap.Logger) *RepositoryFactory {
	return &RepositoryFactory{db: db, logger: logger}
}

// NewRepositories creates all repository instances
func (f *RepositoryFactory) NewRepositories() *repositories.Repositories {
	return &repositories.Repositories{
		Persons:        NewPersonRepository(f.db, f.logger),
		Contracts:      NewContractRepository(f.db, f.logger),
		Contacts:       NewContactRepository(f.db, f.logger),
		Lookups:        NewLookupRepository(f.db, f.logger),
		ProcessedFiles: NewProcessedFileRepository(f.db, f.logger),
		Outbox:         NewOutboxRepository(f.db, f.logger),
	}
}

// GetTransactionManager returns a transaction manager. Persistence runs at
// read committed; the duplicate check is serialized by the identity lock.
func (f *RepositoryFactory) GetTransactionManager() repositories.TransactionManager {
	return NewTransactionManager(f.db, f.logger, WithIsolation(sql.LevelReadCommitted))
}

// GetDB returns the database connection
func (f *RepositoryFactory) GetDB() *DB {
	return f.db
}

// Close closes the database connection
func (f *RepositoryFactory) Close() error {
	return f.db.Close()
}
