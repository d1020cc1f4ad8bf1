package postgres

import (
	"context"
	"fmt"

	"github.com/upb/ciw-intake/models"
	"github.com/upb/ciw-intake/repositories"
	"go.uber.org/zap"
)

// ContactRepository implements the repositories.ContactRepository interface
type ContactRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db *DB, logger *zap.Logger) repositories.ContactRepository {
	return &ContactRepository{
		db:     db,
		logger: logger,
	}
}

// InsertVendorContact adds a contract point of contact
func (r *ContactRepository) InsertVendorContact(ctx context.Context, contractID int64, c models.Contact) error {
	query := `
		INSERT INTO vendor_contacts (contract_id, first_name, last_name, phone, email)
		VALUES ($1, $2, $3, $4, $5)
	`

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.ExecContext(ctx, query, contractID, c.FirstName, c.LastName, c.Phone, c.Email); err != nil {
		return fmt.Errorf("failed to insert vendor contact: %w", err)
	}

	return nil
}

// InsertSponsorContact adds a government sponsor for a person
func (r *ContactRepository) InsertSponsorContact(ctx context.Context, personID int64, c models.Contact) error {
	query := `
		INSERT INTO sponsor_contacts (person_id, first_name, last_name, phone, email)
		VALUES ($1, $2, $3, $4, $5)
	`

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.ExecContext(ctx, query, personID, c.FirstName, c.LastName, c.Phone, c.Email); err != nil {
		return fmt.Errorf("failed to insert sponsor contact: %w", err)
	}

	return nil
}
