package validation

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/upb/ciw-intake/models"
	"github.com/upb/ciw-intake/repositories"
)

// Country codes the employee rules branch on.
const (
	CountryUS     = "US"
	CountryMexico = "MX"
	CountryCanada = "CA"
)

const (
	nameMaxLen    = 60
	addressMaxLen = 60
	companyMaxLen = 100
	numberMaxLen  = 50
)

var (
	namePattern       = regexp.MustCompile(`^[\p{L}][\p{L}' .\-]*$`)
	ssnPattern        = regexp.MustCompile(`^(\d{3}-\d{2}-\d{4}|\d{9})$`)
	usZipPattern      = regexp.MustCompile(`^\d{5}(-?\d{4})?$`)
	canadaZipPattern  = regexp.MustCompile(`^[A-Z]\d[A-Z] ?\d[A-Z]\d$`)
	ueiPattern        = regexp.MustCompile(`^[A-Z0-9]{12}$`)
	contractPattern   = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9\-]*$`)
	regionPattern     = regexp.MustCompile(`^(CO|NCR|0[1-9]|1[01])$`)
	phonePattern      = regexp.MustCompile(`^\d{10,15}$`)
	invalidSSNPattern = regexp.MustCompile(`^(000|666|9\d\d)|^\d{3}00|0000$`)
)

// Categorical values accepted on the worksheet.
var (
	suffixes        = []string{"Jr", "Sr", "II", "III", "IV", "V"}
	sexes           = []string{"Male", "Female"}
	yesNo           = []string{models.Yes, models.No}
	contractorTypes = []string{"Contractor", models.ContractorTypeChildCare, "Consultant", "Volunteer"}
	rwaIAAValues    = []string{"RWA", "IAA", models.No}
	investigations  = []string{"Tier 1", models.InvestigationTier1C, "Tier 2", "Tier 2S", "Tier 4", "Tier 5"}
)

// Options tune the rule tables.
type Options struct {
	// HomeCountry is the code a citizen of the home country must be
	// citizen of, such as "US".
	HomeCountry string
	// Now returns the current time; dates of birth cannot be later.
	Now func() time.Time
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{HomeCountry: CountryUS, Now: time.Now}
}

// ruleBook builds the section tables around a lookup port.
type ruleBook struct {
	lookups repositories.LookupRepository
	opts    Options
}

// Sections returns the six form sections' rule tables in section order.
func Sections(lookups repositories.LookupRepository, opts Options) [models.SectionCount]RuleSet {
	b := ruleBook{lookups: lookups, opts: opts}
	var sets [models.SectionCount]RuleSet
	sets[models.SectionEmployee] = RuleSet{Name: models.SectionEmployee.String(), Rules: b.employee()}
	sets[models.SectionContract] = RuleSet{Name: models.SectionContract.String(), Rules: b.contract()}
	sets[models.SectionRWAIAA] = RuleSet{Name: models.SectionRWAIAA.String(), Rules: b.rwaIAA()}
	sets[models.SectionProjectLocation] = RuleSet{Name: models.SectionProjectLocation.String(), Rules: b.projectLocation()}
	sets[models.SectionInvestigation] = RuleSet{Name: models.SectionInvestigation.String(), Rules: b.investigation()}
	sets[models.SectionSponsor] = RuleSet{Name: models.SectionSponsor.String(), Rules: b.sponsor()}
	return sets
}

// DuplicateSet is the single-rule table of the duplicate-user gate. The rule
// only applies once the identifying fields are usable; otherwise the form
// rules report them.
func DuplicateSet(lookups repositories.LookupRepository) RuleSet {
	identifiable := all(present(models.LastName), present(models.SocialSecurityNumber), func(r *models.Record) bool {
		_, err := models.ParseDate(r.Get(models.BirthDate))
		return err == nil
	})
	notDuplicate := func(ctx context.Context, r *models.Record) (bool, error) {
		dup, err := lookups.DuplicateUser(ctx, r.Get(models.LastName), r.Get(models.BirthDate), r.Get(models.SocialSecurityNumber))
		if err != nil {
			return false, err
		}
		return !dup, nil
	}
	return RuleSet{
		Name: "Duplicate",
		Rules: []Rule{
			labelled(models.SocialSecurityNumber, "Employee", identifiable,
				expect(notDuplicate, "Already exists in GCIMS")),
		},
	}
}

func (b ruleBook) employee() []Rule {
	rules := []Rule{
		rule(models.LastName, nil, b.name(models.LastName)...),
		rule(models.FirstName, nil, b.name(models.FirstName)...),
		rule(models.MiddleName, present(models.MiddleName),
			expect(maxLen(models.MiddleName, nameMaxLen), "Cannot exceed 60 characters"),
			expect(pattern(models.MiddleName, namePattern), "Contains invalid characters")),
		rule(models.Suffix, present(models.Suffix),
			expect(oneOf(models.Suffix, suffixes...), "Must be one of "+strings.Join(suffixes, ", "))),
		rule(models.Sex, nil,
			expect(required(models.Sex), "Required"),
			expect(oneOf(models.Sex, sexes...), "Must be Male or Female")),
		rule(models.BirthDate, nil,
			expect(required(models.BirthDate), "Required"),
			expect(date(models.BirthDate), "Must be a valid date (M/D/YYYY)"),
			expect(notFuture(models.BirthDate, b.opts.Now), "Cannot be in the future")),
		rule(models.PlaceOfBirthCity, nil,
			expect(required(models.PlaceOfBirthCity), "Required"),
			expect(maxLen(models.PlaceOfBirthCity, nameMaxLen), "Cannot exceed 60 characters")),
		rule(models.PlaceOfBirthCountry, nil,
			expect(required(models.PlaceOfBirthCountry), "Required"),
			expect(resolved(birthCode), "Not a recognized country")),
	}
	rules = append(rules, b.stateRules(models.PlaceOfBirthState, models.PlaceOfBirthMexicoCanada, birthCode, "Place of Birth Country")...)
	rules = append(rules,
		rule(models.SocialSecurityNumber, nil,
			expect(required(models.SocialSecurityNumber), "Required"),
			expect(pattern(models.SocialSecurityNumber, ssnPattern), "Must be 9 digits (###-##-####)"),
			expect(validSSN(models.SocialSecurityNumber), "Not a valid Social Security Number"),
			expect(b.notDuplicateSSN(models.SocialSecurityNumber), "Already in GCIMS")),
		rule(models.HomePhone, nil,
			expect(required(models.HomePhone), "Required"),
			expect(pattern(models.HomePhone, phonePattern), "Must be 10 to 15 digits")),
		rule(models.PersonalEmail, nil,
			expect(required(models.PersonalEmail), "Required"),
			expect(format(models.PersonalEmail, "email"), "Must be a valid email address")),
		rule(models.HomeAddress1, nil,
			expect(required(models.HomeAddress1), "Required"),
			expect(maxLen(models.HomeAddress1, addressMaxLen), "Cannot exceed 60 characters")),
		rule(models.HomeAddress2, present(models.HomeAddress2),
			expect(maxLen(models.HomeAddress2, addressMaxLen), "Cannot exceed 60 characters")),
		rule(models.HomeAddress3, present(models.HomeAddress3),
			expect(maxLen(models.HomeAddress3, addressMaxLen), "Cannot exceed 60 characters")),
		rule(models.HomeCity, nil,
			expect(required(models.HomeCity), "Required"),
			expect(maxLen(models.HomeCity, nameMaxLen), "Cannot exceed 60 characters")),
		rule(models.HomeCountry, nil,
			expect(required(models.HomeCountry), "Required"),
			expect(resolved(homeCode), "Not a recognized country")),
	)
	rules = append(rules, b.stateRules(models.HomeState, models.HomeMexicoCanada, homeCode, "Home Country")...)
	rules = append(rules, zipRules()...)
	rules = append(rules, b.citizenshipRules()...)
	return rules
}

func (b ruleBook) name(f models.Field) []Check {
	return []Check{
		expect(required(f), "Required"),
		expect(maxLen(f, nameMaxLen), "Cannot exceed 60 characters"),
		expect(pattern(f, namePattern), "Contains invalid characters"),
	}
}

// stateRules builds the two guarded pairs of a state field and its
// Mexico/Canada province field: required and looked up for the matching
// countries, blank for every other resolved country.
func (b ruleBook) stateRules(state, province models.Field, code func(models.CountryCodes) string, countryLabel string) []Rule {
	us := codeIn(code, CountryUS)
	mxca := codeIn(code, CountryMexico, CountryCanada)
	notUS := codeNotIn(code, CountryUS)
	notMXCA := codeNotIn(code, CountryMexico, CountryCanada)

	return []Rule{
		rule(state, us,
			expect(required(state), "Required"),
			expect(b.validState(state, code), "Not a valid US state")),
		rule(state, notUS,
			expect(blank(state), "Must be blank unless "+countryLabel+" is United States")),
		rule(province, mxca,
			expect(required(province), "Required"),
			expect(b.validState(province, code), "Not a valid province or state for the selected country")),
		rule(province, notMXCA,
			expect(blank(province), "Must be blank unless "+countryLabel+" is Mexico or Canada")),
	}
}

// zipRules are mutually exclusive on the home country code. None applies
// while the country is unverified.
func zipRules() []Rule {
	usmx := codeIn(homeCode, CountryUS, CountryMexico)
	ca := codeIn(homeCode, CountryCanada)
	other := codeNotIn(homeCode, CountryUS, CountryMexico, CountryCanada)

	return []Rule{
		rule(models.HomeZipCode, usmx,
			expect(required(models.HomeZipCode), "Required"),
			expect(pattern(models.HomeZipCode, usZipPattern), "Must be 5 or 9 digits")),
		rule(models.HomeZipCode, ca,
			expect(required(models.HomeZipCode), "Required"),
			expect(upperPattern(models.HomeZipCode, canadaZipPattern), "Must be in the format A1A 1A1")),
		rule(models.HomeZipCode, other,
			expect(blank(models.HomeZipCode), "Not accepted for the selected Home Country")),
	}
}

func (b ruleBook) citizenshipRules() []Rule {
	home := b.opts.HomeCountry
	citizen := codeIn(citizenshipCode, home)
	foreign := codeNotIn(citizenshipCode, home)

	return []Rule{
		rule(models.CitizenshipCountry, nil,
			expect(required(models.CitizenshipCountry), "Required"),
			expect(resolved(citizenshipCode), "Not a recognized country")),
		rule(models.CitizenOfUS, nil,
			expect(required(models.CitizenOfUS), "Required"),
			expect(oneOf(models.CitizenOfUS, yesNo...), "Must be Yes or No")),
		rule(models.CitizenOfUS, citizen,
			expect(equals(models.CitizenOfUS, models.Yes), "Must be Yes when Citizenship Country is "+home)),
		rule(models.CitizenOfUS, foreign,
			expect(equals(models.CitizenOfUS, models.No), "Must be No when Citizenship Country is not "+home)),
	}
}

func (b ruleBook) contract() []Rule {
	rules := []Rule{
		rule(models.CompanyName, nil,
			expect(required(models.CompanyName), "Required"),
			expect(maxLen(models.CompanyName, companyMaxLen), "Cannot exceed 100 characters")),
		rule(models.CompanyUEI, nil,
			expect(required(models.CompanyUEI), "Required"),
			expect(upperPattern(models.CompanyUEI, ueiPattern), "Must be 12 letters or digits")),
		rule(models.ContractNumber, nil,
			expect(required(models.ContractNumber), "Required"),
			expect(maxLen(models.ContractNumber, numberMaxLen), "Cannot exceed 50 characters"),
			expect(pattern(models.ContractNumber, contractPattern), "Must contain only letters, digits and dashes")),
		rule(models.TaskOrderNumber, present(models.TaskOrderNumber),
			expect(maxLen(models.TaskOrderNumber, numberMaxLen), "Cannot exceed 50 characters"),
			expect(pattern(models.TaskOrderNumber, contractPattern), "Must contain only letters, digits and dashes")),
	}
	rules = append(rules, contractDateRules()...)
	rules = append(rules,
		rule(models.HasOptionYears, nil,
			expect(required(models.HasOptionYears), "Required"),
			expect(oneOf(models.HasOptionYears, yesNo...), "Must be Yes or No")),
		rule(models.NumberOfOptionYears, is(models.HasOptionYears, models.Yes),
			expect(required(models.NumberOfOptionYears), "Required when Has Option Years is Yes"),
			expect(intBetween(models.NumberOfOptionYears, 1, 10), "Must be a number from 1 to 10")),
		rule(models.NumberOfOptionYears, isNot(models.HasOptionYears, models.Yes),
			expect(blank(models.NumberOfOptionYears), "Must be blank unless Has Option Years is Yes")),
		rule(models.ContractorType, nil,
			expect(required(models.ContractorType), "Required"),
			expect(oneOf(models.ContractorType, contractorTypes...), "Must be one of "+strings.Join(contractorTypes, ", "))),
		rule(models.ContractorType, is(models.InvestigationType, models.InvestigationTier1C),
			expect(equals(models.ContractorType, models.ContractorTypeChildCare), "Must be Child Care when Investigation Type is Tier 1C")),
	)
	return append(rules, contactRules(models.VendorSlots, nil)...)
}

// contractDateRules make both dates optional for child care submissions. A
// date that is present is always format-checked.
func contractDateRules() []Rule {
	dates := func(f models.Field, guard Guard) Rule {
		checks := []Check{
			expect(required(f), "Required"),
			expect(date(f), "Must be a valid date (M/D/YYYY)"),
		}
		if f == models.ContractStartDate {
			checks = append(checks, expect(notAfter(models.ContractStartDate, models.ContractEndDate), "Cannot be later than Contract End Date"))
		}
		return rule(f, guard, checks...)
	}

	return []Rule{
		dates(models.ContractStartDate, not(childCare)),
		dates(models.ContractStartDate, all(childCare, present(models.ContractStartDate))),
		dates(models.ContractEndDate, not(childCare)),
		dates(models.ContractEndDate, all(childCare, present(models.ContractEndDate))),
	}
}

func (b ruleBook) rwaIAA() []Rule {
	agreement := func(f models.Field, kind string) []Rule {
		return []Rule{
			rule(f, is(models.RWAIAAIndicator, kind),
				expect(required(f), "Required when RWA/IAA is "+kind),
				expect(maxLen(f, numberMaxLen), "Cannot exceed 50 characters"),
				expect(pattern(f, contractPattern), "Must contain only letters, digits and dashes")),
			rule(f, isNot(models.RWAIAAIndicator, kind),
				expect(blank(f), "Must be blank unless RWA/IAA is "+kind)),
		}
	}
	hasAgreement := func(r *models.Record) bool {
		v := r.Get(models.RWAIAAIndicator)
		return v == "RWA" || v == "IAA"
	}

	rules := []Rule{
		rule(models.RWAIAAIndicator, nil,
			expect(required(models.RWAIAAIndicator), "Required"),
			expect(oneOf(models.RWAIAAIndicator, rwaIAAValues...), "Must be RWA, IAA or No")),
	}
	rules = append(rules, agreement(models.RWANumber, "RWA")...)
	rules = append(rules, agreement(models.IAANumber, "IAA")...)
	rules = append(rules,
		rule(models.RWAIAAAgency, hasAgreement,
			expect(required(models.RWAIAAAgency), "Required when RWA/IAA is RWA or IAA"),
			expect(maxLen(models.RWAIAAAgency, companyMaxLen), "Cannot exceed 100 characters")),
		rule(models.RWAIAAAgency, not(hasAgreement),
			expect(blank(models.RWAIAAAgency), "Must be blank unless RWA/IAA is RWA or IAA")),
	)
	return rules
}

func (b ruleBook) projectLocation() []Rule {
	notListed := present(models.BuildingNotListed)

	return []Rule{
		rule(models.Region, nil,
			expect(required(models.Region), "Required"),
			expect(upperPattern(models.Region, regionPattern), "Must be a GSA region (01-11, NCR or CO)")),
		rule(models.MajorOrg, nil,
			expect(required(models.MajorOrg), "Required"),
			expect(format(models.MajorOrg, "alpha,max=10"), "Must be letters only")),
		rule(models.OfficeSymbol, nil,
			expect(required(models.OfficeSymbol), "Required"),
			expect(format(models.OfficeSymbol, "alphanum,max=20"), "Must be letters and digits only")),
		rule(models.BuildingNumber, not(notListed),
			expect(required(models.BuildingNumber), "Required unless Building Not Listed is filled in"),
			expect(b.validBuilding(models.BuildingNumber), "Not a valid GSA building")),
		rule(models.BuildingNumber, notListed,
			expect(blank(models.BuildingNumber), "Must be blank when Building Not Listed is filled in")),
		rule(models.BuildingNotListed, notListed,
			expect(maxLen(models.BuildingNotListed, addressMaxLen), "Cannot exceed 60 characters")),
	}
}

func (b ruleBook) investigation() []Rule {
	return []Rule{
		rule(models.IsARRA, nil,
			expect(required(models.IsARRA), "Required"),
			expect(oneOf(models.IsARRA, yesNo...), "Must be Yes or No")),
		rule(models.InvestigationType, nil,
			expect(required(models.InvestigationType), "Required"),
			expect(oneOf(models.InvestigationType, investigations...), "Must be one of "+strings.Join(investigations, ", "))),
		rule(models.InvestigationType, is(models.ContractorType, models.ContractorTypeChildCare),
			expect(equals(models.InvestigationType, models.InvestigationTier1C), "Must be Tier 1C when Contractor Type is Child Care")),
		rule(models.PIVRequired, nil,
			expect(required(models.PIVRequired), "Required"),
			expect(oneOf(models.PIVRequired, yesNo...), "Must be Yes or No")),
		rule(models.PriorInvestigation, nil,
			expect(required(models.PriorInvestigation), "Required"),
			expect(oneOf(models.PriorInvestigation, yesNo...), "Must be Yes or No")),
		rule(models.PriorInvestigationAgency, is(models.PriorInvestigation, models.Yes),
			expect(required(models.PriorInvestigationAgency), "Required when Prior Investigation is Yes"),
			expect(maxLen(models.PriorInvestigationAgency, companyMaxLen), "Cannot exceed 100 characters")),
		rule(models.PriorInvestigationAgency, isNot(models.PriorInvestigation, models.Yes),
			expect(blank(models.PriorInvestigationAgency), "Must be blank unless Prior Investigation is Yes")),
	}
}

func (b ruleBook) sponsor() []Rule {
	rules := []Rule{
		rule(models.SponsorTitle, nil,
			expect(required(models.SponsorTitle), "Required"),
			expect(maxLen(models.SponsorTitle, nameMaxLen), "Cannot exceed 60 characters")),
	}
	return append(rules, contactRules(models.SponsorSlots, b.validEmail)...)
}

// contactRules validates a primary row and four alternates. An alternate row
// is only checked once any of its fields is filled in; then every field is
// required. emailLookup, when set, runs after the email format check.
func contactRules(slots [models.ContactSlots]models.ContactSlot, emailLookup func(models.Field) Test) []Rule {
	rules := make([]Rule, 0, len(slots)*4)
	for _, s := range slots {
		var active Guard
		if !s.IsPrimary() {
			active = anyPresent(s.Fields()...)
		}

		emailChecks := []Check{
			expect(required(s.Email), "Required"),
			expect(format(s.Email, "email"), "Must be a valid email address"),
		}
		if emailLookup != nil {
			emailChecks = append(emailChecks, expect(emailLookup(s.Email), "Not a recognized government email address"))
		}

		rules = append(rules,
			rule(s.FirstName, active,
				expect(required(s.FirstName), "Required"),
				expect(maxLen(s.FirstName, nameMaxLen), "Cannot exceed 60 characters"),
				expect(pattern(s.FirstName, namePattern), "Contains invalid characters")),
			rule(s.LastName, active,
				expect(required(s.LastName), "Required"),
				expect(maxLen(s.LastName, nameMaxLen), "Cannot exceed 60 characters"),
				expect(pattern(s.LastName, namePattern), "Contains invalid characters")),
			rule(s.Phone, active,
				expect(required(s.Phone), "Required"),
				expect(pattern(s.Phone, phonePattern), "Must be 10 to 15 digits")),
			rule(s.Email, active, emailChecks...),
		)
	}
	return rules
}
