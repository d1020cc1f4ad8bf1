package repositories

import (
	"context"

	"github.com/upb/ciw-intake/models"
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// PersonRepository writes principal rows
type PersonRepository interface {
	// Insert stores a person and returns the generated ID. An ID of 0 with a
	// nil error means the store rejected the row.
	Insert(ctx context.Context, person *models.Person) (int64, error)
}

// ContractRepository writes contract headers and person associations
type ContractRepository interface {
	// Upsert inserts a new contract or updates the one with the same number
	Upsert(ctx context.Context, contract *models.ContractHeader) (int64, error)

	// UpsertFromFPDS writes a contract matched against FPDS
	UpsertFromFPDS(ctx context.Context, contract *models.ContractHeader) (int64, error)

	// UpsertFromSAM writes a contract matched against SAM
	UpsertFromSAM(ctx context.Context, contract *models.ContractHeader) (int64, error)

	// InsertChildCare writes a child care contract header
	InsertChildCare(ctx context.Context, contract *models.ContractHeader) (int64, error)

	// AssociatePerson links a person to a contract
	AssociatePerson(ctx context.Context, personID, contractID int64) error
}

// ContactRepository writes vendor and sponsor contact rows
type ContactRepository interface {
	// InsertVendorContact adds a contract point of contact
	InsertVendorContact(ctx context.Context, contractID int64, contact models.Contact) error

	// InsertSponsorContact adds a government sponsor for a person
	InsertSponsorContact(ctx context.Context, personID int64, contact models.Contact) error
}

// LookupRepository answers read-only questions against the system of record.
// Every method is a pure query.
type LookupRepository interface {
	// ValidBuilding reports whether the building number exists
	ValidBuilding(ctx context.Context, buildingID string) (bool, error)

	// ValidEmail reports whether the address belongs to a known government user
	ValidEmail(ctx context.Context, email string) (bool, error)

	// ValidateState reports whether the state/province belongs to the country
	ValidateState(ctx context.Context, stateCode, countryCode string) (bool, error)

	// DuplicateSSN reports whether a person with the SSN already exists
	DuplicateSSN(ctx context.Context, ssn string) (bool, error)

	// DuplicateUser reports whether a person with the same last name, birth
	// date and SSN already exists
	DuplicateUser(ctx context.Context, lastName, birthDate, ssn string) (bool, error)

	// ResolveCountryCodes maps three country names to code lists; the first
	// element of each list is authoritative
	ResolveCountryCodes(ctx context.Context, birthCountry, homeCountry, citizenshipCountry string) (birth, home, citizenship []string, err error)
}

// ProcessedFileRepository is the processed-files ledger
type ProcessedFileRepository interface {
	// MarkProcessed records the terminal code for a file
	MarkProcessed(ctx context.Context, file *models.ProcessedFile) error

	// IsProcessed reports whether the file already has a ledger entry
	IsProcessed(ctx context.Context, fileID string) (bool, error)

	// CountByCode summarizes the ledger for a run
	CountByCode(ctx context.Context, runID string) (map[models.ErrorCode]int, error)
}

// OutboxRepository stores rendered emails for the mail relay
type OutboxRepository interface {
	// Enqueue stores a rendered message
	Enqueue(ctx context.Context, msg *models.OutboxMessage) error
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Persons        PersonRepository
	Contracts      ContractRepository
	Contacts       ContactRepository
	Lookups        LookupRepository
	ProcessedFiles ProcessedFileRepository
	Outbox         OutboxRepository
}
