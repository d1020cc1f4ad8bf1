package postgres

import (
	"context"
	"fmt"

	"github.com/upb/ciw-intake/models"
	"github.com/upb/ciw-intake/repositories"
	"go.uber.org/zap"
)

// LookupRepository implements the repositories.LookupRepository interface.
// All queries are read-only.
type LookupRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewLookupRepository creates a new lookup repository
func NewLookupRepository(db *DB, logger *zap.Logger) repositories.LookupRepository {
	return &LookupRepository{
		db:     db,
		logger: logger,
	}
}

// ValidBuilding reports whether the building number exists
func (r *LookupRepository) ValidBuilding(ctx context.Context, buildingID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM buildings WHERE upper(building_id) = upper($1))`
	return r.exists(ctx, "building", query, buildingID)
}

// ValidEmail reports whether the address belongs to a known government user
func (r *LookupRepository) ValidEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM gsa_emails WHERE lower(email) = lower($1))`
	return r.exists(ctx, "email", query, email)
}

// ValidateState reports whether the state/province belongs to the country
func (r *LookupRepository) ValidateState(ctx context.Context, stateCode, countryCode string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM states
			WHERE upper(state_code) = upper($1) AND upper(country_code) = upper($2)
		)
	`
	return r.exists(ctx, "state", query, stateCode, countryCode)
}

// DuplicateSSN reports whether a person with the SSN already exists
func (r *LookupRepository) DuplicateSSN(ctx context.Context, ssn string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM persons WHERE ssn_hash = $1)`
	return r.exists(ctx, "ssn", query, models.DigestSSN(ssn).Full)
}

// DuplicateUser reports whether a person with the same last name, birth date
// and SSN already exists
func (r *LookupRepository) DuplicateUser(ctx context.Context, lastName, birthDate, ssn string) (bool, error) {
	dob, err := models.ParseDate(birthDate)
	if err != nil {
		return false, fmt.Errorf("failed to parse birth date: %w", err)
	}

	query := `
		SELECT EXISTS (
			SELECT 1 FROM persons
			WHERE lower(last_name) = lower($1) AND birth_date = $2 AND ssn_hash = $3
		)
	`
	return r.exists(ctx, "user", query, lastName, dob, models.DigestSSN(ssn).Full)
}

// ResolveCountryCodes maps three country names to their code lists
func (r *LookupRepository) ResolveCountryCodes(ctx context.Context, birthCountry, homeCountry, citizenshipCountry string) ([]string, []string, []string, error) {
	birth, err := r.countryCodes(ctx, birthCountry)
	if err != nil {
		return nil, nil, nil, err
	}
	home, err := r.countryCodes(ctx, homeCountry)
	if err != nil {
		return nil, nil, nil, err
	}
	citizenship, err := r.countryCodes(ctx, citizenshipCountry)
	if err != nil {
		return nil, nil, nil, err
	}
	return birth, home, citizenship, nil
}

func (r *LookupRepository) countryCodes(ctx context.Context, name string) ([]string, error) {
	if name == "" {
		return nil, nil
	}

	query := `
		SELECT country_code FROM countries
		WHERE upper(country_name) = upper($1)
		ORDER BY is_primary DESC, country_code
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, name)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve country %q: %w", name, err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan country code: %w", err)
		}
		codes = append(codes, code)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating country codes: %w", err)
	}

	return codes, nil
}

func (r *LookupRepository) exists(ctx context.Context, what, query string, args ...interface{}) (bool, error) {
	executor := GetExecutor(ctx, r.db)
	var found bool
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&found); err != nil {
		return false, fmt.Errorf("failed to look up %s: %w", what, err)
	}
	return found, nil
}
