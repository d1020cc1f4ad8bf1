package validation

import (
	"context"

	"github.com/upb/ciw-intake/models"
	"go.uber.org/zap"
)

// UnverifiedMessage is appended to a field label when a lookup-backed check
// could not be evaluated.
const UnverifiedMessage = "Could not be verified at this time"

// Test reports whether a record passes one check. A non-nil error means the
// test could not be evaluated; the engine then fails the rule.
type Test func(ctx context.Context, r *models.Record) (bool, error)

// Guard decides whether a rule applies to a record.
type Guard func(r *models.Record) bool

// Check pairs a test with the finished message reported when it fails.
type Check struct {
	Test    Test
	Message string
}

// Rule validates one field. A nil Guard means the rule always applies.
type Rule struct {
	Field  models.Field
	Label  string
	Guard  Guard
	Checks []Check
}

// Active reports whether the rule applies to r.
func (rl Rule) Active(r *models.Record) bool {
	return rl.Guard == nil || rl.Guard(r)
}

func (rl Rule) unverified() string {
	return rl.Label + ": " + UnverifiedMessage
}

// RuleSet is the ordered rule table of one section.
type RuleSet struct {
	Name  string
	Rules []Rule
}

// Engine evaluates rule sets against records. It holds no per-record state
// and is safe for concurrent use.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates a new Engine
func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{logger: logger}
}

// Evaluate runs every active rule of set against r. Checks run in order and
// stop at the first failure; once a field has failed, later rules for the
// same field are skipped.
func (e *Engine) Evaluate(ctx context.Context, set RuleSet, r *models.Record) models.ValidationSection {
	section := models.ValidationSection{
		Name:     set.Name,
		Failures: make([]models.Failure, 0),
	}
	failed := make(map[models.Field]bool)

	for _, rule := range set.Rules {
		if failed[rule.Field] || !rule.Active(r) {
			continue
		}

		for _, check := range rule.Checks {
			ok, err := check.Test(ctx, r)
			if err != nil {
				e.logger.Warn("check could not be evaluated, failing closed",
					zap.String("section", set.Name),
					zap.String("field", string(rule.Field)),
					zap.Error(err))
				section.Failures = append(section.Failures, models.Failure{Field: rule.Field, Message: rule.unverified()})
				failed[rule.Field] = true
				break
			}
			if !ok {
				section.Failures = append(section.Failures, models.Failure{Field: rule.Field, Message: check.Message})
				failed[rule.Field] = true
				break
			}
		}
	}

	return section
}
