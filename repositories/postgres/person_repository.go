package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/upb/ciw-intake/models"
	"github.com/upb/ciw-intake/repositories"
	"go.uber.org/zap"
)

// uniqueViolation is the SQLSTATE raised when a unique constraint rejects a row
const uniqueViolation = pq.ErrorCode("23505")

// PersonRepository implements the repositories.PersonRepository interface
type PersonRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewPersonRepository creates a new person repository
func NewPersonRepository(db *DB, logger *zap.Logger) repositories.PersonRepository {
	return &PersonRepository{
		db:     db,
		logger: logger,
	}
}

// Insert calls ciw_insert_person. The stored function returns 0 when it
// refuses the row; a unique violation raised by the table is reported the
// same way.
func (r *PersonRepository) Insert(ctx context.Context, p *models.Person) (int64, error) {
	query := `
		SELECT ciw_insert_person(
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24, $25, $26, $27, $28, $29, $30
		)
	`

	executor := GetExecutor(ctx, r.db)
	var id int64
	err := executor.QueryRowContext(ctx, query,
		p.LastName,
		p.FirstName,
		p.MiddleName,
		p.Suffix,
		p.Sex,
		p.BirthDate,
		p.BirthCity,
		p.BirthState,
		p.BirthCountryCode,
		p.SSNHash,
		p.SSNLastFourHash,
		p.HomePhone,
		p.PersonalEmail,
		p.HomeAddress1,
		p.HomeAddress2,
		p.HomeAddress3,
		p.HomeCity,
		p.HomeState,
		p.HomeCountryCode,
		p.HomeZipCode,
		p.CitizenOfUS,
		p.CitizenshipCode,
		p.Region,
		p.MajorOrg,
		p.OfficeSymbol,
		p.BuildingNumber,
		p.InvestigationType,
		p.PIVRequired,
		p.PriorInvestigation,
		p.SponsorTitle,
	).Scan(&id)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			r.logger.Warn("person insert rejected by constraint", zap.String("constraint", pqErr.Constraint))
			return 0, nil
		}
		return 0, fmt.Errorf("failed to insert person: %w", err)
	}

	if id > 0 {
		p.ID = id
		r.logger.Debug("person inserted", zap.Int64("id", id))
	}
	return id, nil
}
