package validation

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/upb/ciw-intake/models"
	"github.com/upb/ciw-intake/utils"
)

var errCountryUnverified = errors.New("country codes could not be resolved")

// rule builds a Rule labelled after f. Check messages are written without the
// label and are prefixed here, so the table holds finished sentences.
func rule(f models.Field, guard Guard, checks ...Check) Rule {
	return labelled(f, f.Label(), guard, checks...)
}

func labelled(f models.Field, label string, guard Guard, checks ...Check) Rule {
	finished := make([]Check, len(checks))
	for i, c := range checks {
		finished[i] = Check{Test: c.Test, Message: label + ": " + c.Message}
	}
	return Rule{Field: f, Label: label, Guard: guard, Checks: finished}
}

func expect(test Test, message string) Check {
	return Check{Test: test, Message: message}
}

// Tests

func pure(fn func(r *models.Record) bool) Test {
	return func(_ context.Context, r *models.Record) (bool, error) {
		return fn(r), nil
	}
}

func required(f models.Field) Test {
	return pure(func(r *models.Record) bool { return r.Has(f) })
}

func blank(f models.Field) Test {
	return pure(func(r *models.Record) bool { return !r.Has(f) })
}

func maxLen(f models.Field, n int) Test {
	return pure(func(r *models.Record) bool { return utf8.RuneCountInString(r.Get(f)) <= n })
}

func pattern(f models.Field, re *regexp.Regexp) Test {
	return pure(func(r *models.Record) bool { return re.MatchString(r.Get(f)) })
}

// upperPattern matches the upper-cased value.
func upperPattern(f models.Field, re *regexp.Regexp) Test {
	return pure(func(r *models.Record) bool { return re.MatchString(strings.ToUpper(r.Get(f))) })
}

// format checks the value against a validator tag such as "email".
func format(f models.Field, tag string) Test {
	return pure(func(r *models.Record) bool { return utils.ValidateVar(r.Get(f), tag) == nil })
}

func oneOf(f models.Field, values ...string) Test {
	return pure(func(r *models.Record) bool {
		v := r.Get(f)
		for _, allowed := range values {
			if v == allowed {
				return true
			}
		}
		return false
	})
}

func equals(f models.Field, value string) Test {
	return pure(func(r *models.Record) bool { return r.Get(f) == value })
}

func date(f models.Field) Test {
	return pure(func(r *models.Record) bool {
		_, err := models.ParseDate(r.Get(f))
		return err == nil
	})
}

// notAfter passes unless both dates parse and start is after end.
func notAfter(start, end models.Field) Test {
	return pure(func(r *models.Record) bool {
		s, err := models.ParseDate(r.Get(start))
		if err != nil {
			return true
		}
		e, err := models.ParseDate(r.Get(end))
		if err != nil {
			return true
		}
		return !s.After(e)
	})
}

func notFuture(f models.Field, now func() time.Time) Test {
	return pure(func(r *models.Record) bool {
		d, err := models.ParseDate(r.Get(f))
		if err != nil {
			return true
		}
		return !d.After(now())
	})
}

func intBetween(f models.Field, min, max int) Test {
	tag := fmt.Sprintf("gte=%d,lte=%d", min, max)
	return pure(func(r *models.Record) bool {
		n, err := strconv.Atoi(r.Get(f))
		if err != nil {
			return false
		}
		return utils.ValidateVar(n, tag) == nil
	})
}

// resolved passes when the country name resolved to a code. A failed
// resolution is reported as an error so the rule fails closed.
func resolved(code func(models.CountryCodes) string) Test {
	return func(_ context.Context, r *models.Record) (bool, error) {
		codes := r.CountryCodes()
		if codes.Unverified {
			return false, errCountryUnverified
		}
		return code(codes) != "", nil
	}
}

// Guards

func present(f models.Field) Guard {
	return func(r *models.Record) bool { return r.Has(f) }
}

func is(f models.Field, value string) Guard {
	return func(r *models.Record) bool { return r.Get(f) == value }
}

func isNot(f models.Field, value string) Guard {
	return not(is(f, value))
}

func not(g Guard) Guard {
	return func(r *models.Record) bool { return !g(r) }
}

func all(guards ...Guard) Guard {
	return func(r *models.Record) bool {
		for _, g := range guards {
			if !g(r) {
				return false
			}
		}
		return true
	}
}

func anyPresent(fields ...models.Field) Guard {
	return func(r *models.Record) bool { return r.AnyOf(fields...) }
}

func childCare(r *models.Record) bool {
	return r.IsChildCare()
}

func codeIn(code func(models.CountryCodes) string, codes ...string) Guard {
	return func(r *models.Record) bool {
		c := code(r.CountryCodes())
		for _, want := range codes {
			if c == want {
				return true
			}
		}
		return false
	}
}

// codeNotIn is the complement of codeIn for records whose countries
// resolved. Unverified records match neither, so no country-dependent rule
// runs on a guess.
func codeNotIn(code func(models.CountryCodes) string, codes ...string) Guard {
	return all(verified, not(codeIn(code, codes...)))
}

func verified(r *models.Record) bool {
	return !r.CountryCodes().Unverified
}

func birthCode(c models.CountryCodes) string       { return c.Birth }
func homeCode(c models.CountryCodes) string        { return c.Home }
func citizenshipCode(c models.CountryCodes) string { return c.Citizenship }
