package models

import (
	"strings"
	"unicode"
)

// BaselineVersion is assumed when a worksheet carries no version tag.
const BaselineVersion = "1.0"

// NotApplicable is the sentinel users type into optional fields.
const NotApplicable = "N/A"

// Categorical values the rules and the pipeline branch on.
const (
	Yes = "Yes"
	No  = "No"

	ContractorTypeChildCare = "Child Care"
	InvestigationTier1C     = "Tier 1C"
)

// TaggedValue is one {tag, value} pair produced by the document extractor.
type TaggedValue struct {
	Tag   string `json:"tag"`
	Value string `json:"value"`
}

// CountryCodes holds the system-of-record codes resolved from the country
// names typed on the worksheet. An empty code means the name did not resolve.
// Unverified is set when the lookup itself failed.
type CountryCodes struct {
	Birth       string `json:"birth"`
	Home        string `json:"home"`
	Citizenship string `json:"citizenship"`
	Unverified  bool   `json:"unverified,omitempty"`
}

// Contact is one fully populated point-of-contact row.
type Contact struct {
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`
	Phone     string `json:"phone" db:"phone"`
	Email     string `json:"email" db:"email"`
}

// Record is one CIW submission. Values are normalized when the record is
// built and never change afterwards; only the derived collections and the
// resolved country codes are filled in later by the pipeline.
type Record struct {
	values map[Field]string
	codes  CountryCodes

	vendorContacts  []Contact
	sponsorContacts []Contact
	vendorEnriched  bool
	sponsorEnriched bool
}

// NewRecord builds a record from the extractor's ordered output. Unknown tags
// are ignored; when a tag repeats, the first occurrence wins.
func NewRecord(values []TaggedValue) *Record {
	r := &Record{values: make(map[Field]string, len(values))}
	for _, tv := range values {
		f := Field(strings.TrimSpace(tv.Tag))
		if !f.Known() {
			continue
		}
		if _, seen := r.values[f]; seen {
			continue
		}
		r.values[f] = normalize(f, tv.Value)
	}
	if r.values[Version] == "" {
		r.values[Version] = BaselineVersion
	}
	return r
}

// NewRecordFromMap builds a record from field values, applying the same
// normalization as NewRecord.
func NewRecordFromMap(values map[Field]string) *Record {
	tagged := make([]TaggedValue, 0, len(values))
	for f, v := range values {
		tagged = append(tagged, TaggedValue{Tag: string(f), Value: v})
	}
	return NewRecord(tagged)
}

// UnknownTags returns the tags in values that are not worksheet fields.
func UnknownTags(values []TaggedValue) []string {
	var unknown []string
	for _, tv := range values {
		if !Field(strings.TrimSpace(tv.Tag)).Known() {
			unknown = append(unknown, tv.Tag)
		}
	}
	return unknown
}

// Get returns the normalized value of f, or "" when the field was absent.
func (r *Record) Get(f Field) string {
	return r.values[f]
}

// Has reports whether f holds a non-empty value.
func (r *Record) Has(f Field) bool {
	return r.values[f] != ""
}

// AnyOf reports whether at least one of fields is non-empty.
func (r *Record) AnyOf(fields ...Field) bool {
	for _, f := range fields {
		if r.Has(f) {
			return true
		}
	}
	return false
}

// Version returns the worksheet version.
func (r *Record) Version() string {
	return r.values[Version]
}

// IsARRA reports whether the submission is funded under ARRA.
func (r *Record) IsARRA() bool {
	return strings.EqualFold(r.values[IsARRA], Yes)
}

// IsChildCare reports whether the submission is for a child care worker,
// either by contractor type or by investigation tier.
func (r *Record) IsChildCare() bool {
	return r.values[ContractorType] == ContractorTypeChildCare ||
		r.values[InvestigationType] == InvestigationTier1C
}

// CountryCodes returns the resolved country codes.
func (r *Record) CountryCodes() CountryCodes {
	return r.codes
}

// SetCountryCodes stores the codes resolved for the worksheet's country names.
func (r *Record) SetCountryCodes(codes CountryCodes) {
	r.codes = CountryCodes{
		Birth:       strings.ToUpper(strings.TrimSpace(codes.Birth)),
		Home:        strings.ToUpper(strings.TrimSpace(codes.Home)),
		Citizenship: strings.ToUpper(strings.TrimSpace(codes.Citizenship)),
		Unverified:  codes.Unverified,
	}
}

// VendorContacts returns the contract POC rows selected during enrichment.
func (r *Record) VendorContacts() []Contact {
	return r.vendorContacts
}

// SponsorContacts returns the sponsor rows selected during enrichment.
func (r *Record) SponsorContacts() []Contact {
	return r.sponsorContacts
}

// EnrichVendorContacts fills VendorContacts from the contract POC rows. It
// runs at most once per record and reports whether it ran.
func (r *Record) EnrichVendorContacts() bool {
	if r.vendorEnriched {
		return false
	}
	r.vendorContacts = r.completeContacts(VendorSlots)
	r.vendorEnriched = true
	return true
}

// EnrichSponsorContacts fills SponsorContacts from the sponsor rows. It runs
// at most once per record and reports whether it ran.
func (r *Record) EnrichSponsorContacts() bool {
	if r.sponsorEnriched {
		return false
	}
	r.sponsorContacts = r.completeContacts(SponsorSlots)
	r.sponsorEnriched = true
	return true
}

// completeContacts keeps only rows where every sub-field is filled in.
func (r *Record) completeContacts(slots [ContactSlots]ContactSlot) []Contact {
	contacts := make([]Contact, 0, len(slots))
	for _, s := range slots {
		c := Contact{
			FirstName: r.Get(s.FirstName),
			LastName:  r.Get(s.LastName),
			Phone:     r.Get(s.Phone),
			Email:     r.Get(s.Email),
		}
		if c.FirstName == "" || c.LastName == "" || c.Phone == "" || c.Email == "" {
			continue
		}
		contacts = append(contacts, c)
	}
	return contacts
}

func normalize(f Field, raw string) string {
	spec := fieldSpecs[f]
	v := strings.TrimSpace(raw)
	if spec.optional {
		v = CollapseSentinel(v)
	}
	switch spec.kind {
	case kindPhone:
		v = NormalizePhone(v)
	case kindEmail:
		v = NormalizeEmail(v)
	}
	return v
}

// NormalizePhone keeps only the digits of a phone number.
func NormalizePhone(v string) string {
	var b strings.Builder
	b.Grow(len(v))
	for _, r := range v {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// CollapseSentinel maps "N/A" (any case) to the empty string.
func CollapseSentinel(v string) string {
	if strings.EqualFold(strings.TrimSpace(v), NotApplicable) {
		return ""
	}
	return v
}
