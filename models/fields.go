package models

import "fmt"

// Field names one flat value of a CIW submission. The extractor's tag names
// are the field names.
type Field string

// Version tag written by the worksheet template.
const Version Field = "Version"

// Employee section fields
const (
	LastName                 Field = "LastName"
	FirstName                Field = "FirstName"
	MiddleName               Field = "MiddleName"
	Suffix                   Field = "Suffix"
	Sex                      Field = "Sex"
	BirthDate                Field = "BirthDate"
	PlaceOfBirthCity         Field = "PlaceOfBirthCity"
	PlaceOfBirthCountry      Field = "PlaceOfBirthCountry"
	PlaceOfBirthState        Field = "PlaceOfBirthState"
	PlaceOfBirthMexicoCanada Field = "PlaceOfBirthMexicoCanada"
	SocialSecurityNumber     Field = "SocialSecurityNumber"
	HomePhone                Field = "HomePhone"
	PersonalEmail            Field = "PersonalEmail"
	HomeAddress1             Field = "HomeAddress1"
	HomeAddress2             Field = "HomeAddress2"
	HomeAddress3             Field = "HomeAddress3"
	HomeCity                 Field = "HomeCity"
	HomeCountry              Field = "HomeCountry"
	HomeState                Field = "HomeState"
	HomeMexicoCanada         Field = "HomeMexicoCanada"
	HomeZipCode              Field = "HomeZipCode"
	CitizenOfUS              Field = "CitizenOfUS"
	CitizenshipCountry       Field = "CitizenshipCountry"
)

// Contract section fields
const (
	CompanyName         Field = "CompanyName"
	CompanyUEI          Field = "CompanyUEI"
	ContractNumber      Field = "ContractNumber"
	TaskOrderNumber     Field = "TaskOrderNumber"
	ContractStartDate   Field = "ContractStartDate"
	ContractEndDate     Field = "ContractEndDate"
	HasOptionYears      Field = "HasOptionYears"
	NumberOfOptionYears Field = "NumberOfOptionYears"
	ContractorType      Field = "ContractorType"
)

// RWA/IAA section fields
const (
	RWAIAAIndicator Field = "RWAIAAIndicator"
	RWANumber       Field = "RWANumber"
	IAANumber       Field = "IAANumber"
	RWAIAAAgency    Field = "RWAIAAAgency"
)

// Project location section fields
const (
	Region            Field = "Region"
	MajorOrg          Field = "MajorOrg"
	OfficeSymbol      Field = "OfficeSymbol"
	BuildingNumber    Field = "BuildingNumber"
	BuildingNotListed Field = "BuildingNotListed"
)

// Investigation section fields
const (
	IsARRA                   Field = "IsARRA"
	InvestigationType        Field = "InvestigationType"
	PIVRequired              Field = "PIVRequired"
	PriorInvestigation       Field = "PriorInvestigation"
	PriorInvestigationAgency Field = "PriorInvestigationAgency"
)

// Sponsor section fields
const (
	SponsorTitle Field = "SponsorTitle"
)

// ContactSlots is the number of contact rows per contact block: one primary
// row and four alternates.
const ContactSlots = 5

// ContactSlot groups the four fields of one contact row.
type ContactSlot struct {
	Index     int // 0 is the primary row
	FirstName Field
	LastName  Field
	Phone     Field
	Email     Field
}

// Fields returns the row's fields in form order.
func (s ContactSlot) Fields() []Field {
	return []Field{s.FirstName, s.LastName, s.Phone, s.Email}
}

// IsPrimary reports whether this is the required first row.
func (s ContactSlot) IsPrimary() bool {
	return s.Index == 0
}

var (
	// VendorSlots are the contract point-of-contact rows.
	VendorSlots = contactSlots("ContractPOC")
	// SponsorSlots are the government sponsor rows.
	SponsorSlots = contactSlots("Sponsor")
)

func contactSlots(prefix string) [ContactSlots]ContactSlot {
	var slots [ContactSlots]ContactSlot
	for i := range slots {
		p := prefix
		if i > 0 {
			p = fmt.Sprintf("%sAlt%d", prefix, i)
		}
		slots[i] = ContactSlot{
			Index:     i,
			FirstName: Field(p + "FirstName"),
			LastName:  Field(p + "LastName"),
			Phone:     Field(p + "Phone"),
			Email:     Field(p + "Email"),
		}
	}
	return slots
}

// fieldKind selects the normalization applied on construction.
type fieldKind int

const (
	kindText fieldKind = iota
	kindPhone
	kindEmail
)

type fieldSpec struct {
	label    string
	kind     fieldKind
	optional bool
}

var fieldSpecs = map[Field]fieldSpec{
	Version: {label: "Version"},

	LastName:                 {label: "Last Name"},
	FirstName:                {label: "First Name"},
	MiddleName:               {label: "Middle Name", optional: true},
	Suffix:                   {label: "Suffix", optional: true},
	Sex:                      {label: "Sex"},
	BirthDate:                {label: "Date of Birth"},
	PlaceOfBirthCity:         {label: "Place of Birth City"},
	PlaceOfBirthCountry:      {label: "Place of Birth Country"},
	PlaceOfBirthState:        {label: "Place of Birth State", optional: true},
	PlaceOfBirthMexicoCanada: {label: "Place of Birth Mexico/Canada", optional: true},
	SocialSecurityNumber:     {label: "Social Security Number"},
	HomePhone:                {label: "Home Phone", kind: kindPhone},
	PersonalEmail:            {label: "Personal Email Address", kind: kindEmail},
	HomeAddress1:             {label: "Home Address 1"},
	HomeAddress2:             {label: "Home Address 2", optional: true},
	HomeAddress3:             {label: "Home Address 3", optional: true},
	HomeCity:                 {label: "Home City"},
	HomeCountry:              {label: "Home Country"},
	HomeState:                {label: "Home State", optional: true},
	HomeMexicoCanada:         {label: "Home Mexico/Canada", optional: true},
	HomeZipCode:              {label: "Home Zip Code", optional: true},
	CitizenOfUS:              {label: "Citizen of the US"},
	CitizenshipCountry:       {label: "Citizenship Country"},

	CompanyName:         {label: "Company Name"},
	CompanyUEI:          {label: "Company UEI"},
	ContractNumber:      {label: "Contract Number"},
	TaskOrderNumber:     {label: "Task Order Number", optional: true},
	ContractStartDate:   {label: "Contract Start Date"},
	ContractEndDate:     {label: "Contract End Date"},
	HasOptionYears:      {label: "Has Option Years"},
	NumberOfOptionYears: {label: "Number of Option Years", optional: true},
	ContractorType:      {label: "Contractor Type"},

	RWAIAAIndicator: {label: "RWA/IAA"},
	RWANumber:       {label: "RWA Number", optional: true},
	IAANumber:       {label: "IAA Number", optional: true},
	RWAIAAAgency:    {label: "RWA/IAA Agency", optional: true},

	Region:            {label: "Region"},
	MajorOrg:          {label: "Major Org"},
	OfficeSymbol:      {label: "Office Symbol"},
	BuildingNumber:    {label: "Building Number", optional: true},
	BuildingNotListed: {label: "Building Not Listed", optional: true},

	IsARRA:                   {label: "ARRA"},
	InvestigationType:        {label: "Investigation Type"},
	PIVRequired:              {label: "PIV Required"},
	PriorInvestigation:       {label: "Prior Investigation"},
	PriorInvestigationAgency: {label: "Prior Investigation Agency", optional: true},

	SponsorTitle: {label: "Sponsor Title"},
}

func init() {
	registerContactSpecs(VendorSlots, "Contract POC", "Alternate Contract POC")
	registerContactSpecs(SponsorSlots, "Sponsor", "Alternate Sponsor")
}

func registerContactSpecs(slots [ContactSlots]ContactSlot, primary, alternate string) {
	for _, s := range slots {
		prefix := primary
		if !s.IsPrimary() {
			prefix = fmt.Sprintf("%s %d", alternate, s.Index)
		}
		optional := !s.IsPrimary()
		fieldSpecs[s.FirstName] = fieldSpec{label: prefix + " First Name", optional: optional}
		fieldSpecs[s.LastName] = fieldSpec{label: prefix + " Last Name", optional: optional}
		fieldSpecs[s.Phone] = fieldSpec{label: prefix + " Work Phone", kind: kindPhone, optional: optional}
		fieldSpecs[s.Email] = fieldSpec{label: prefix + " Work Email", kind: kindEmail, optional: optional}
	}
}

// Label returns the user-facing label of a field. Unknown fields are labelled
// with their raw name.
func (f Field) Label() string {
	if spec, ok := fieldSpecs[f]; ok {
		return spec.label
	}
	return string(f)
}

// Known reports whether f is a field of the worksheet.
func (f Field) Known() bool {
	_, ok := fieldSpecs[f]
	return ok
}

// KnownFields returns the number of fields the worksheet defines.
func KnownFields() int {
	return len(fieldSpecs)
}
