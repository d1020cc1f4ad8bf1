package postgres

import (
	"context"
	"fmt"

	"github.com/upb/ciw-intake/models"
	"github.com/upb/ciw-intake/repositories"
	"go.uber.org/zap"
)

// ContractRepository implements the repositories.ContractRepository interface
type ContractRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewContractRepository creates a new contract repository
func NewContractRepository(db *DB, logger *zap.Logger) repositories.ContractRepository {
	return &ContractRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert calls ciw_upsert_contract for a contract entered by hand
func (r *ContractRepository) Upsert(ctx context.Context, c *models.ContractHeader) (int64, error) {
	return r.upsert(ctx, "ciw_upsert_contract", c)
}

// UpsertFromFPDS calls ciw_upsert_contract_fpds
func (r *ContractRepository) UpsertFromFPDS(ctx context.Context, c *models.ContractHeader) (int64, error) {
	return r.upsert(ctx, "ciw_upsert_contract_fpds", c)
}

// UpsertFromSAM calls ciw_upsert_contract_sam
func (r *ContractRepository) UpsertFromSAM(ctx context.Context, c *models.ContractHeader) (int64, error) {
	return r.upsert(ctx, "ciw_upsert_contract_sam", c)
}

func (r *ContractRepository) upsert(ctx context.Context, function string, c *models.ContractHeader) (int64, error) {
	// function is one of the fixed names above, never user input
	query := fmt.Sprintf(`SELECT %s($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`, function)

	executor := GetExecutor(ctx, r.db)
	var id int64
	err := executor.QueryRowContext(ctx, query,
		c.ContractNumber,
		c.TaskOrderNumber,
		c.CompanyName,
		c.CompanyUEI,
		c.StartDate,
		c.EndDate,
		c.HasOptionYears,
		c.NumberOfOptionYears,
		c.ContractorType,
		c.RWANumber,
		c.IAANumber,
		c.RWAIAAAgency,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to upsert contract via %s: %w", function, err)
	}

	c.ID = id
	r.logger.Debug("contract upserted", zap.String("function", function), zap.Int64("id", id))
	return id, nil
}

// InsertChildCare calls ciw_insert_child_care_contract. Child care headers
// carry no period of performance.
func (r *ContractRepository) InsertChildCare(ctx context.Context, c *models.ContractHeader) (int64, error) {
	query := `SELECT ciw_insert_child_care_contract($1, $2, $3, $4, $5)`

	executor := GetExecutor(ctx, r.db)
	var id int64
	err := executor.QueryRowContext(ctx, query,
		c.ContractNumber,
		c.TaskOrderNumber,
		c.CompanyName,
		c.CompanyUEI,
		c.ContractorType,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to insert child care contract: %w", err)
	}

	c.ID = id
	r.logger.Debug("child care contract inserted", zap.Int64("id", id))
	return id, nil
}

// AssociatePerson links a person to a contract
func (r *ContractRepository) AssociatePerson(ctx context.Context, personID, contractID int64) error {
	query := `
		INSERT INTO person_contracts (person_id, contract_id, created_at)
		VALUES ($1, $2, NOW())
	`

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.ExecContext(ctx, query, personID, contractID); err != nil {
		return fmt.Errorf("failed to associate person with contract: %w", err)
	}

	return nil
}
