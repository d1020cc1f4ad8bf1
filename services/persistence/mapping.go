package persistence

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/upb/ciw-intake/models"
	"github.com/upb/ciw-intake/services"
)

// pick returns the primary field's value, or the fallback's when the
// primary is blank.
func pick(r *models.Record, primary, fallback models.Field) string {
	if v := r.Get(primary); v != "" {
		return v
	}
	return r.Get(fallback)
}

// PersonFromRecord maps a validated record to the person row. The SSN only
// leaves the record as digests.
func PersonFromRecord(r *models.Record) (*models.Person, error) {
	birthDate, err := models.ParseDate(r.Get(models.BirthDate))
	if err != nil {
		return nil, services.WrapError(services.ErrInvalidBirthDate, err)
	}

	codes := r.CountryCodes()
	ssn := models.DigestSSN(r.Get(models.SocialSecurityNumber))

	return &models.Person{
		LastName:           r.Get(models.LastName),
		FirstName:          r.Get(models.FirstName),
		MiddleName:         r.Get(models.MiddleName),
		Suffix:             r.Get(models.Suffix),
		Sex:                r.Get(models.Sex),
		BirthDate:          birthDate,
		BirthCity:          r.Get(models.PlaceOfBirthCity),
		BirthState:         strings.ToUpper(pick(r, models.PlaceOfBirthState, models.PlaceOfBirthMexicoCanada)),
		BirthCountryCode:   codes.Birth,
		SSNHash:            ssn.Full,
		SSNLastFourHash:    ssn.LastFour,
		HomePhone:          r.Get(models.HomePhone),
		PersonalEmail:      r.Get(models.PersonalEmail),
		HomeAddress1:       r.Get(models.HomeAddress1),
		HomeAddress2:       r.Get(models.HomeAddress2),
		HomeAddress3:       r.Get(models.HomeAddress3),
		HomeCity:           r.Get(models.HomeCity),
		HomeState:          strings.ToUpper(pick(r, models.HomeState, models.HomeMexicoCanada)),
		HomeCountryCode:    codes.Home,
		HomeZipCode:        strings.ToUpper(r.Get(models.HomeZipCode)),
		CitizenOfUS:        r.Get(models.CitizenOfUS) == models.Yes,
		CitizenshipCode:    codes.Citizenship,
		Region:             strings.ToUpper(r.Get(models.Region)),
		MajorOrg:           strings.ToUpper(r.Get(models.MajorOrg)),
		OfficeSymbol:       strings.ToUpper(r.Get(models.OfficeSymbol)),
		BuildingNumber:     strings.ToUpper(pick(r, models.BuildingNumber, models.BuildingNotListed)),
		InvestigationType:  r.Get(models.InvestigationType),
		PIVRequired:        r.Get(models.PIVRequired) == models.Yes,
		PriorInvestigation: pick(r, models.PriorInvestigationAgency, models.PriorInvestigation),
		SponsorTitle:       r.Get(models.SponsorTitle),
	}, nil
}

// ContractFromRecord maps a validated record to the contract header. Dates
// are optional for child care submissions and stay nil when blank.
func ContractFromRecord(r *models.Record) (*models.ContractHeader, error) {
	start, err := optionalDate(r, models.ContractStartDate)
	if err != nil {
		return nil, err
	}
	end, err := optionalDate(r, models.ContractEndDate)
	if err != nil {
		return nil, err
	}

	optionYears := 0
	if v := r.Get(models.NumberOfOptionYears); v != "" {
		if optionYears, err = strconv.Atoi(v); err != nil {
			return nil, services.WrapError(services.ErrInvalidInput, fmt.Errorf("number of option years %q: %w", v, err))
		}
	}

	return &models.ContractHeader{
		ContractNumber:      strings.ToUpper(r.Get(models.ContractNumber)),
		TaskOrderNumber:     strings.ToUpper(r.Get(models.TaskOrderNumber)),
		CompanyName:         r.Get(models.CompanyName),
		CompanyUEI:          strings.ToUpper(r.Get(models.CompanyUEI)),
		StartDate:           start,
		EndDate:             end,
		HasOptionYears:      r.Get(models.HasOptionYears) == models.Yes,
		NumberOfOptionYears: optionYears,
		ContractorType:      r.Get(models.ContractorType),
		RWANumber:           r.Get(models.RWANumber),
		IAANumber:           r.Get(models.IAANumber),
		RWAIAAAgency:        r.Get(models.RWAIAAAgency),
	}, nil
}

func optionalDate(r *models.Record, f models.Field) (*time.Time, error) {
	v := r.Get(f)
	if v == "" {
		return nil, nil
	}
	d, err := models.ParseDate(v)
	if err != nil {
		return nil, services.WrapError(services.ErrInvalidInput, fmt.Errorf("%s: %w", f.Label(), err))
	}
	return &d, nil
}
