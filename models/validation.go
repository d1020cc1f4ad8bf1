package models

// Section identifies one of the worksheet's validation sections.
type Section int

const (
	SectionEmployee Section = iota
	SectionContract
	SectionRWAIAA
	SectionProjectLocation
	SectionInvestigation
	SectionSponsor

	// SectionCount is the number of form sections.
	SectionCount
)

var sectionTitles = [SectionCount]string{
	SectionEmployee:        "Employee",
	SectionContract:        "Contract",
	SectionRWAIAA:          "RWA/IAA",
	SectionProjectLocation: "Project Location",
	SectionInvestigation:   "Investigation",
	SectionSponsor:         "Sponsor",
}

// AllSections lists the form sections in worksheet order.
func AllSections() []Section {
	sections := make([]Section, 0, SectionCount)
	for s := Section(0); s < SectionCount; s++ {
		sections = append(sections, s)
	}
	return sections
}

// String returns the section title shown to users.
func (s Section) String() string {
	if s < 0 || s >= SectionCount {
		return "Unknown"
	}
	return sectionTitles[s]
}

// Failure is one failed rule. Message is a finished sentence that is shown
// to the submitter as is.
type Failure struct {
	Field   Field  `json:"field"`
	Message string `json:"message"`
}

// ValidationSection is the outcome of evaluating one section's rules.
type ValidationSection struct {
	Name     string    `json:"name"`
	Failures []Failure `json:"failures"`
}

// Valid reports whether no rule in the section failed.
func (v ValidationSection) Valid() bool {
	return len(v.Failures) == 0
}

// Messages returns the failure messages in rule order.
func (v ValidationSection) Messages() []string {
	msgs := make([]string, 0, len(v.Failures))
	for _, f := range v.Failures {
		msgs = append(msgs, f.Message)
	}
	return msgs
}

// ValidationResult holds one ValidationSection per form section.
type ValidationResult struct {
	Sections [SectionCount]ValidationSection `json:"sections"`
}

// Valid reports whether every section passed.
func (r ValidationResult) Valid() bool {
	for _, s := range r.Sections {
		if !s.Valid() {
			return false
		}
	}
	return true
}

// Section returns the result for s.
func (r ValidationResult) Section(s Section) ValidationSection {
	return r.Sections[s]
}

// FailureCount returns the total number of failures across sections.
func (r ValidationResult) FailureCount() int {
	n := 0
	for _, s := range r.Sections {
		n += len(s.Failures)
	}
	return n
}
