package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Participant is an immutable census snapshot of one employee for a single
// calculation run. The census collaborator owns the record; the engine only
// reads it.
type Participant struct {
	ID              string          `yaml:"id" json:"id"`
	BirthDate       time.Time       `yaml:"birth_date" json:"birth_date"`
	HireDate        time.Time       `yaml:"hire_date" json:"hire_date"`
	TerminationDate *time.Time      `yaml:"termination_date,omitempty" json:"termination_date,omitempty"`
	Compensation    decimal.Decimal `yaml:"compensation" json:"compensation"`

	// Contribution amounts already on record for the plan year, before any
	// proposed after-tax contribution is layered on.
	ExistingDeferral decimal.Decimal `yaml:"existing_deferral" json:"existing_deferral"`
	ExistingMatch    decimal.Decimal `yaml:"existing_match" json:"existing_match"`
	ExistingAfterTax decimal.Decimal `yaml:"existing_after_tax" json:"existing_after_tax"`

	// HCE is the stored highly-compensated flag, consulted only by the
	// explicit classifier mode.
	HCE bool `yaml:"hce" json:"hce"`
}

// ExistingAnnualAdditions returns the participant's annual additions already
// counted against the section 415(c) limit.
func (p *Participant) ExistingAnnualAdditions() decimal.Decimal {
	return p.ExistingDeferral.Add(p.ExistingMatch).Add(p.ExistingAfterTax)
}

// AgeOn calculates the participant's age in whole years at a given date.
func (p *Participant) AgeOn(atDate time.Time) int {
	age := atDate.Year() - p.BirthDate.Year()
	if atDate.YearDay() < p.BirthDate.YearDay() {
		age--
	}
	return age
}

// ExclusionReason explains why a participant is not includable in the test
// population for a plan year.
type ExclusionReason string

const (
	// ExclusionNone marks an includable participant.
	ExclusionNone ExclusionReason = ""
	// ExclusionTerminatedBeforeEntry marks a participant who terminated
	// before ever reaching their plan entry date.
	ExclusionTerminatedBeforeEntry ExclusionReason = "terminated_before_entry"
	// ExclusionNotEligibleDuringYear marks a participant whose entry date
	// falls after the end of the tested plan year.
	ExclusionNotEligibleDuringYear ExclusionReason = "not_eligible_during_year"
)

// EligibilityResult records the eligibility determination for one participant
// in one plan year. Recomputed fresh whenever the plan year changes.
type EligibilityResult struct {
	ParticipantID   string          `yaml:"participant_id" json:"participant_id"`
	Includable      bool            `yaml:"includable" json:"includable"`
	EntryDate       time.Time       `yaml:"entry_date" json:"entry_date"`
	ExclusionReason ExclusionReason `yaml:"exclusion_reason,omitempty" json:"exclusion_reason,omitempty"`
}
