package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/upb/ciw-intake/internal/observability"
	"github.com/upb/ciw-intake/models"
	"github.com/upb/ciw-intake/repositories"
	"github.com/upb/ciw-intake/services"
	"go.uber.org/zap"
)

// Pipeline stage names used for latency metrics
const (
	StageExtract   = "extract"
	StageDuplicate = "duplicate"
	StageValidate  = "validate"
	StagePersist   = "persist"
)

var errNoPrincipalID = errors.New("persistence returned no principal ID")

// Pipeline processes one worksheet file end to end: extraction, the gates,
// persistence, the terminal notification and the ledger entry.
type Pipeline struct {
	cfg       Config
	extractor Extractor
	validator RecordValidator
	persister Persister
	notifier  Notifier
	ledger    repositories.ProcessedFileRepository
	locker    IdentityLocker
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewPipeline creates a new pipeline with all dependencies. A nil locker
// defaults to an in-process MemoryLocker.
func NewPipeline(
	cfg Config,
	extractor Extractor,
	validator RecordValidator,
	persister Persister,
	notifier Notifier,
	ledger repositories.ProcessedFileRepository,
	locker IdentityLocker,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Pipeline {
	if locker == nil {
		locker = NewMemoryLocker()
	}
	return &Pipeline{
		cfg:       cfg,
		extractor: extractor,
		validator: validator,
		persister: persister,
		notifier:  notifier,
		ledger:    ledger,
		locker:    locker,
		metrics:   metrics,
		logger:    logger,
	}
}

// Process runs one file through the pipeline. Exactly one notification is
// sent and exactly one ledger entry is written per call. The returned error
// is non-nil only when the ledger entry could not be written.
func (p *Pipeline) Process(ctx context.Context, runID uuid.UUID, file models.FileRef) (*Outcome, error) {
	start := time.Now()

	p.logger.Info("processing worksheet",
		zap.String("run_id", runID.String()),
		zap.String("file_id", file.ID),
		zap.String("file_name", file.Name))

	out := p.evaluate(ctx, file, false)
	p.notify(ctx, out)

	entry := &models.ProcessedFile{
		FileID:      file.ID,
		FileName:    file.Name,
		Code:        out.Code,
		RunID:       runID,
		ProcessedAt: time.Now(),
	}
	if err := p.ledger.MarkProcessed(ctx, entry); err != nil {
		p.logger.Error("failed to record processed file",
			zap.String("file_id", file.ID),
			zap.String("code", out.Code.String()),
			zap.Error(err))
		return out, fmt.Errorf("failed to mark file %s processed: %w", file.ID, err)
	}

	p.metrics.IncrementOutcome(out.Code.String())
	p.metrics.ObserveProcessLatency(time.Since(start))

	fields := []zap.Field{
		zap.String("run_id", runID.String()),
		zap.String("file_id", file.ID),
		zap.String("code", out.Code.String()),
		zap.Duration("duration", time.Since(start)),
	}
	if out.Err != nil {
		fields = append(fields,
			zap.String("error_type", string(services.GetErrorType(out.Err))),
			zap.Error(out.Err))
	}
	p.logger.Info("worksheet processed", fields...)

	return out, nil
}

// Check runs every gate against file without persisting, notifying or
// writing the ledger. A worksheet that passes every gate is reported as
// successfully_processed with no principal ID.
func (p *Pipeline) Check(ctx context.Context, file models.FileRef) *Outcome {
	return p.evaluate(ctx, file, true)
}

// evaluate applies the gates in order; the first failing gate decides the
// code.
func (p *Pipeline) evaluate(ctx context.Context, file models.FileRef, dryRun bool) *Outcome {
	out := &Outcome{File: file, Code: models.ErrorCodeUnknown}

	// Step 1: extract
	p.logger.Debug("step 1: extracting worksheet", zap.String("file_id", file.ID))
	values, status, err := p.extract(ctx, file)
	switch {
	case err != nil:
		p.logger.Warn("worksheet could not be extracted",
			zap.String("file_id", file.ID),
			zap.Error(err))
		out.Code = models.ErrorCodeWrongVersion
		return out
	case status == ExtractPasswordProtected:
		out.Code = models.ErrorCodePasswordProtected
		return out
	case status == ExtractWrongVersion:
		out.Code = models.ErrorCodeWrongVersion
		return out
	}
	r := models.NewRecord(values)
	out.Record = r

	if unknown := models.UnknownTags(values); len(unknown) > 0 {
		p.logger.Debug("ignoring unknown worksheet tags",
			zap.String("file_id", file.ID),
			zap.Strings("tags", unknown))
	}

	// Step 2: version
	if r.Version() != p.cfg.ExpectedVersion {
		p.logger.Debug("worksheet version mismatch",
			zap.String("file_id", file.ID),
			zap.String("version", r.Version()),
			zap.String("expected", p.cfg.ExpectedVersion))
		out.Code = models.ErrorCodeWrongVersion
		return out
	}

	// Step 3: ARRA
	if r.IsARRA() {
		out.Code = models.ErrorCodeARRA
		return out
	}

	// Steps 4 to 6 run under the identity lock so two submissions for the
	// same person cannot both pass the duplicate gate.
	unlock, err := p.locker.Lock(ctx, models.IdentityKey(r))
	if err != nil {
		out.Err = services.WrapError(services.ErrIdentityLocked, err)
		return out
	}
	defer unlock()

	// Step 4: duplicate
	p.logger.Debug("step 4: checking for duplicate user", zap.String("file_id", file.ID))
	dup := p.checkDuplicate(ctx, r)
	out.Duplicate = &dup
	if !dup.Valid() {
		out.Code = models.ErrorCodeDuplicateUser
		return out
	}

	// Step 5: form rules
	p.logger.Debug("step 5: validating worksheet", zap.String("file_id", file.ID))
	result := p.validate(ctx, r)
	out.Validation = &result
	if !result.Valid() {
		out.Code = models.ErrorCodeFailedValidation
		return out
	}

	if dryRun {
		out.Code = models.ErrorCodeSuccess
		return out
	}

	// Step 6: persist
	p.logger.Debug("step 6: persisting worksheet", zap.String("file_id", file.ID))
	personID, err := p.persist(ctx, r)
	if err != nil {
		out.Err = err
		return out
	}
	if personID <= 0 {
		out.Err = errNoPrincipalID
		return out
	}

	out.Code = models.ErrorCodeSuccess
	out.PersonID = personID
	return out
}

func (p *Pipeline) extract(ctx context.Context, file models.FileRef) ([]models.TaggedValue, ExtractStatus, error) {
	defer p.observe(StageExtract, time.Now())
	return p.extractor.Extract(ctx, file.Path)
}

func (p *Pipeline) checkDuplicate(ctx context.Context, r *models.Record) models.ValidationSection {
	defer p.observe(StageDuplicate, time.Now())
	return p.validator.CheckDuplicate(ctx, r)
}

func (p *Pipeline) validate(ctx context.Context, r *models.Record) models.ValidationResult {
	defer p.observe(StageValidate, time.Now())

	// A failed resolution marks the codes unverified and the country rules
	// fail closed.
	if err := p.validator.ResolveCountryCodes(ctx, r); err != nil {
		p.logger.Warn("country codes could not be resolved", zap.Error(err))
	}
	return p.validator.Validate(ctx, r)
}

func (p *Pipeline) persist(ctx context.Context, r *models.Record) (int64, error) {
	defer p.observe(StagePersist, time.Now())
	return p.persister.Persist(ctx, r, p.cfg.ContractSource)
}

func (p *Pipeline) observe(stage string, start time.Time) {
	p.metrics.ObserveStage(stage, time.Since(start))
}

// notify sends the single terminal notification for out
func (p *Pipeline) notify(ctx context.Context, out *Outcome) {
	n := models.NewNotification(models.NotificationKindFor(out.Code), out.File).
		WithRecord(out.Record)
	if out.Validation != nil {
		n.WithValidation(*out.Validation)
	}
	if out.Succeeded() {
		n.WithPersonID(out.PersonID)
	}

	if err := p.notifier.Notify(ctx, *n); err != nil {
		p.logger.Warn("failed to send notification",
			zap.String("file_id", out.File.ID),
			zap.String("kind", string(n.Kind)),
			zap.Error(err))
	}
}
