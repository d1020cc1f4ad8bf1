package pipeline

import (
	"context"

	"github.com/upb/ciw-intake/models"
)

// ExtractStatus reports whether a worksheet file could be read at all
type ExtractStatus int

const (
	ExtractOK ExtractStatus = iota
	ExtractPasswordProtected
	ExtractWrongVersion
)

func (s ExtractStatus) String() string {
	switch s {
	case ExtractOK:
		return "ok"
	case ExtractPasswordProtected:
		return "password_protected"
	case ExtractWrongVersion:
		return "wrong_version"
	default:
		return "unknown"
	}
}

// Extractor turns a worksheet file into ordered {tag, value} pairs
type Extractor interface {
	Extract(ctx context.Context, path string) ([]models.TaggedValue, ExtractStatus, error)
}

// Notifier delivers the terminal notification for a file. Failures are
// logged by the caller and never change the file's outcome.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

// RecordValidator runs the duplicate gate and the form rules
type RecordValidator interface {
	ResolveCountryCodes(ctx context.Context, r *models.Record) error
	CheckDuplicate(ctx context.Context, r *models.Record) models.ValidationSection
	Validate(ctx context.Context, r *models.Record) models.ValidationResult
}

// Persister writes a validated record and returns the principal ID
type Persister interface {
	Persist(ctx context.Context, r *models.Record, source models.ContractSource) (int64, error)
}

// IdentityLocker serializes the duplicate-check-through-persist window for
// submissions that share an identity key. The returned unlock func is safe
// to call more than once.
type IdentityLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Config holds the pipeline's fixed settings
type Config struct {
	ExpectedVersion string
	ContractSource  models.ContractSource
}

// Outcome is the result of processing one file
type Outcome struct {
	File     models.FileRef
	Code     models.ErrorCode
	PersonID int64

	// Record is nil when extraction failed
	Record *models.Record

	// Duplicate is set once the duplicate gate ran
	Duplicate *models.ValidationSection

	// Validation is set once the form rules ran
	Validation *models.ValidationResult

	// Err explains an unknown_error outcome
	Err error
}

// Succeeded reports whether the record was persisted
func (o *Outcome) Succeeded() bool {
	return o.Code == models.ErrorCodeSuccess
}
