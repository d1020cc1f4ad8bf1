package validation

import (
	"context"
	"strings"

	"github.com/upb/ciw-intake/models"
)

// Lookup-backed tests. Each one is a pure query against the system of
// record; an error from the port fails the rule closed in the engine.

func (b ruleBook) validState(f models.Field, code func(models.CountryCodes) string) Test {
	return func(ctx context.Context, r *models.Record) (bool, error) {
		return b.lookups.ValidateState(ctx, strings.ToUpper(r.Get(f)), code(r.CountryCodes()))
	}
}

func (b ruleBook) validBuilding(f models.Field) Test {
	return func(ctx context.Context, r *models.Record) (bool, error) {
		return b.lookups.ValidBuilding(ctx, strings.ToUpper(r.Get(f)))
	}
}

func (b ruleBook) validEmail(f models.Field) Test {
	return func(ctx context.Context, r *models.Record) (bool, error) {
		return b.lookups.ValidEmail(ctx, r.Get(f))
	}
}

func (b ruleBook) notDuplicateSSN(f models.Field) Test {
	return func(ctx context.Context, r *models.Record) (bool, error) {
		dup, err := b.lookups.DuplicateSSN(ctx, r.Get(f))
		if err != nil {
			return false, err
		}
		return !dup, nil
	}
}

// validSSN rejects numbers the SSA never issues.
func validSSN(f models.Field) Test {
	return pure(func(r *models.Record) bool {
		return !invalidSSNPattern.MatchString(models.SSNDigits(r.Get(f)))
	})
}
