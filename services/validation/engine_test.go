package validation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/upb/ciw-intake/models"
	"go.uber.org/zap"
)

func TestEngine_Evaluate_ShortCircuitsPerField(t *testing.T) {
	calls := 0
	never := func(_ context.Context, _ *models.Record) (bool, error) {
		calls++
		return false, nil
	}
	fail := pure(func(*models.Record) bool { return false })
	off := func(*models.Record) bool { return false }

	set := RuleSet{Name: "Test", Rules: []Rule{
		rule(models.LastName, nil,
			expect(required(models.LastName), "Required"),
			expect(never, "Unreachable")),
		rule(models.LastName, nil, expect(never, "Second rule")),
		rule(models.FirstName, off, expect(never, "Guarded")),
		rule(models.Sex, nil, expect(fail, "Bad")),
	}}

	section := NewEngine(zap.NewNop()).Evaluate(context.Background(), set, models.NewRecord(nil))

	assert.Equal(t, "Test", section.Name)
	assert.Equal(t, []models.Failure{
		{Field: models.LastName, Message: "Last Name: Required"},
		{Field: models.Sex, Message: "Sex: Bad"},
	}, section.Failures)
	assert.Zero(t, calls)
}

func TestEngine_Evaluate_ErrorFailsClosed(t *testing.T) {
	broken := func(context.Context, *models.Record) (bool, error) {
		return true, errors.New("unavailable")
	}
	set := RuleSet{Name: "Test", Rules: []Rule{
		rule(models.BuildingNumber, nil, expect(broken, "Not a valid GSA building")),
	}}

	section := NewEngine(zap.NewNop()).Evaluate(context.Background(), set, models.NewRecord(nil))

	assert.False(t, section.Valid())
	assert.Equal(t, []string{"Building Number: Could not be verified at this time"}, section.Messages())
}

func TestEngine_Evaluate_EmptySetIsValid(t *testing.T) {
	section := NewEngine(zap.NewNop()).Evaluate(context.Background(), RuleSet{Name: "Empty"}, models.NewRecord(nil))

	assert.True(t, section.Valid())
	assert.NotNil(t, section.Failures)
}

func TestChecks(t *testing.T) {
	r := models.NewRecordFromMap(map[models.Field]string{
		models.ContractStartDate:   "2/29/2024",
		models.ContractEndDate:     "not a date",
		models.NumberOfOptionYears: "11",
		models.PersonalEmail:       "a@b.co",
		models.CompanyName:         "ÅÄÖ Corp",
	})
	ctx := context.Background()

	tests := []struct {
		name string
		test Test
		want bool
	}{
		{"leap day parses", date(models.ContractStartDate), true},
		{"garbage date", date(models.ContractEndDate), false},
		{"notAfter ignores unparseable end", notAfter(models.ContractStartDate, models.ContractEndDate), true},
		{"intBetween upper bound", intBetween(models.NumberOfOptionYears, 1, 10), false},
		{"intBetween in range", intBetween(models.NumberOfOptionYears, 1, 11), true},
		{"email format", format(models.PersonalEmail, "email"), true},
		{"maxLen counts runes", maxLen(models.CompanyName, 8), true},
		{"blank on empty", blank(models.TaskOrderNumber), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := tt.test(ctx, r)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestValidSSN(t *testing.T) {
	tests := []struct {
		ssn  string
		want bool
	}{
		{"123-45-6789", true},
		{"000-12-3456", false},
		{"666-12-3456", false},
		{"912-34-5678", false},
		{"123-00-4567", false},
		{"123-45-0000", false},
	}

	for _, tt := range tests {
		t.Run(tt.ssn, func(t *testing.T) {
			r := models.NewRecordFromMap(map[models.Field]string{models.SocialSecurityNumber: tt.ssn})
			ok, err := validSSN(models.SocialSecurityNumber)(context.Background(), r)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}
