package models

import "time"

// Person is the principal row written for an accepted submission. The SSN is
// only ever carried as digests.
type Person struct {
	ID                 int64     `json:"id" db:"id"`
	LastName           string    `json:"last_name" db:"last_name"`
	FirstName          string    `json:"first_name" db:"first_name"`
	MiddleName         string    `json:"middle_name" db:"middle_name"`
	Suffix             string    `json:"suffix" db:"suffix"`
	Sex                string    `json:"sex" db:"sex"`
	BirthDate          time.Time `json:"birth_date" db:"birth_date"`
	BirthCity          string    `json:"birth_city" db:"birth_city"`
	BirthState         string    `json:"birth_state" db:"birth_state"`
	BirthCountryCode   string    `json:"birth_country_code" db:"birth_country_code"`
	SSNHash            string    `json:"-" db:"ssn_hash"`
	SSNLastFourHash    string    `json:"-" db:"ssn_last_four_hash"`
	HomePhone          string    `json:"home_phone" db:"home_phone"`
	PersonalEmail      string    `json:"personal_email" db:"personal_email"`
	HomeAddress1       string    `json:"home_address_1" db:"home_address_1"`
	HomeAddress2       string    `json:"home_address_2" db:"home_address_2"`
	HomeAddress3       string    `json:"home_address_3" db:"home_address_3"`
	HomeCity           string    `json:"home_city" db:"home_city"`
	HomeState          string    `json:"home_state" db:"home_state"`
	HomeCountryCode    string    `json:"home_country_code" db:"home_country_code"`
	HomeZipCode        string    `json:"home_zip_code" db:"home_zip_code"`
	CitizenOfUS        bool      `json:"citizen_of_us" db:"citizen_of_us"`
	CitizenshipCode    string    `json:"citizenship_code" db:"citizenship_code"`
	Region             string    `json:"region" db:"region"`
	MajorOrg           string    `json:"major_org" db:"major_org"`
	OfficeSymbol       string    `json:"office_symbol" db:"office_symbol"`
	BuildingNumber     string    `json:"building_number" db:"building_number"`
	InvestigationType  string    `json:"investigation_type" db:"investigation_type"`
	PIVRequired        bool      `json:"piv_required" db:"piv_required"`
	PriorInvestigation string    `json:"prior_investigation" db:"prior_investigation"`
	SponsorTitle       string    `json:"sponsor_title" db:"sponsor_title"`
}

// TableName returns the table name for the Person model
func (Person) TableName() string {
	return "persons"
}

// ContractSource says where the caller found the contract a submission
// belongs to; it selects the contract header write variant.
type ContractSource string

const (
	ContractSourceNew  ContractSource = "new"
	ContractSourceFPDS ContractSource = "fpds"
	ContractSourceSAM  ContractSource = "sam"
)

// IsValid reports whether s is a known source
func (s ContractSource) IsValid() bool {
	switch s {
	case ContractSourceNew, ContractSourceFPDS, ContractSourceSAM:
		return true
	}
	return false
}

// ContractHeader is the contract row a person is associated with
type ContractHeader struct {
	ID                  int64      `json:"id" db:"id"`
	ContractNumber      string     `json:"contract_number" db:"contract_number"`
	TaskOrderNumber     string     `json:"task_order_number" db:"task_order_number"`
	CompanyName         string     `json:"company_name" db:"company_name"`
	CompanyUEI          string     `json:"company_uei" db:"company_uei"`
	StartDate           *time.Time `json:"start_date,omitempty" db:"start_date"`
	EndDate             *time.Time `json:"end_date,omitempty" db:"end_date"`
	HasOptionYears      bool       `json:"has_option_years" db:"has_option_years"`
	NumberOfOptionYears int        `json:"number_of_option_years" db:"number_of_option_years"`
	ContractorType      string     `json:"contractor_type" db:"contractor_type"`
	RWANumber           string     `json:"rwa_number" db:"rwa_number"`
	IAANumber           string     `json:"iaa_number" db:"iaa_number"`
	RWAIAAAgency        string     `json:"rwa_iaa_agency" db:"rwa_iaa_agency"`
}

// TableName returns the table name for the ContractHeader model
func (ContractHeader) TableName() string {
	return "contracts"
}
