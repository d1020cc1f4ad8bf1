package validation

import (
	"context"
	"time"

	"github.com/upb/ciw-intake/models"
	"github.com/upb/ciw-intake/repositories"
	"github.com/upb/ciw-intake/services"
	"go.uber.org/zap"
)

// Option configures a Validator
type Option func(*Options)

// WithHomeCountry sets the country code citizens of the home country hold
func WithHomeCountry(code string) Option {
	return func(o *Options) {
		if code != "" {
			o.HomeCountry = code
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		o.Now = now
	}
}

// Validator evaluates whole records: the six form sections, the duplicate
// gate, and the country resolution the form rules depend on.
type Validator struct {
	engine    *Engine
	sections  [models.SectionCount]RuleSet
	duplicate RuleSet
	lookups   repositories.LookupRepository
	logger    *zap.Logger
}

// NewValidator creates a new Validator
func NewValidator(lookups repositories.LookupRepository, logger *zap.Logger, opts ...Option) *Validator {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Validator{
		engine:    NewEngine(logger),
		sections:  Sections(lookups, o),
		duplicate: DuplicateSet(lookups),
		lookups:   lookups,
		logger:    logger,
	}
}

// Validate runs every section against r. A section that passes triggers
// its contact enrichment; enrichment happens at most once per record.
func (v *Validator) Validate(ctx context.Context, r *models.Record) models.ValidationResult {
	var result models.ValidationResult

	for _, s := range models.AllSections() {
		section := v.engine.Evaluate(ctx, v.sections[s], r)
		result.Sections[s] = section

		if !section.Valid() {
			continue
		}
		switch s {
		case models.SectionContract:
			r.EnrichVendorContacts()
		case models.SectionSponsor:
			r.EnrichSponsorContacts()
		}
	}

	v.logger.Debug("record validated",
		zap.Bool("valid", result.Valid()),
		zap.Int("failures", result.FailureCount()))

	return result
}

// CheckDuplicate runs the duplicate-user gate. The returned section is
// valid when no matching person exists.
func (v *Validator) CheckDuplicate(ctx context.Context, r *models.Record) models.ValidationSection {
	return v.engine.Evaluate(ctx, v.duplicate, r)
}

// ResolveCountryCodes looks up the codes of the record's three country names
// and stores them on the record. When the lookup fails the codes are marked
// unverified, which fails the country rules closed.
func (v *Validator) ResolveCountryCodes(ctx context.Context, r *models.Record) error {
	birth, home, citizenship, err := v.lookups.ResolveCountryCodes(ctx,
		r.Get(models.PlaceOfBirthCountry),
		r.Get(models.HomeCountry),
		r.Get(models.CitizenshipCountry))
	if err != nil {
		r.SetCountryCodes(models.CountryCodes{Unverified: true})
		return services.WrapError(services.ErrLookupFailed, err)
	}

	r.SetCountryCodes(models.CountryCodes{
		Birth:       first(birth),
		Home:        first(home),
		Citizenship: first(citizenship),
	})
	return nil
}

func first(codes []string) string {
	if len(codes) == 0 {
		return ""
	}
	return codes[0]
}
