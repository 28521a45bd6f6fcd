package calculation

import (
	"time"

	"github.com/acpgo/acptest/internal/domain"
)

// Plan entry conventions: eligibility requires age 21 and one year of
// service, and entry happens on the next semi-annual entry date.
const (
	eligibilityAgeYears     = 21
	eligibilityServiceYears = 1
)

// EntryDate computes the participant's plan entry date: the later of the
// 21st birthday and the one-year service anniversary, rolled forward to the
// next semi-annual entry point (January 1 or July 1) on or after it.
func EntryDate(p *domain.Participant) time.Time {
	ageDate := p.BirthDate.AddDate(eligibilityAgeYears, 0, 0)
	serviceDate := p.HireDate.AddDate(eligibilityServiceYears, 0, 0)

	eligible := ageDate
	if serviceDate.After(eligible) {
		eligible = serviceDate
	}
	return nextSemiAnnualEntry(eligible)
}

// nextSemiAnnualEntry rolls a date forward to the next January 1 or July 1 on
// or after it.
func nextSemiAnnualEntry(d time.Time) time.Time {
	jan1 := time.Date(d.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	jul1 := time.Date(d.Year(), time.July, 1, 0, 0, 0, 0, time.UTC)

	switch {
	case !d.After(jan1):
		return jan1
	case !d.After(jul1):
		return jul1
	default:
		return time.Date(d.Year()+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
}

// ResolveEligibility determines whether one participant is includable in the
// test population for a plan year. It is total: every participant yields
// exactly one result, never an error. Exclusion rules apply in order:
// termination before entry, then entry after the plan year end.
func ResolveEligibility(p *domain.Participant, planYear int) domain.EligibilityResult {
	entry := EntryDate(p)
	result := domain.EligibilityResult{
		ParticipantID: p.ID,
		EntryDate:     entry,
	}

	if p.TerminationDate != nil && p.TerminationDate.Before(entry) {
		result.ExclusionReason = domain.ExclusionTerminatedBeforeEntry
		return result
	}

	planYearEnd := time.Date(planYear, time.December, 31, 0, 0, 0, 0, time.UTC)
	if entry.After(planYearEnd) {
		result.ExclusionReason = domain.ExclusionNotEligibleDuringYear
		return result
	}

	result.Includable = true
	return result
}

// ResolveCensusEligibility runs the resolver over a whole census, preserving
// census order.
func ResolveCensusEligibility(participants []domain.Participant, planYear int) []domain.EligibilityResult {
	results := make([]domain.EligibilityResult, len(participants))
	for i := range participants {
		results[i] = ResolveEligibility(&participants[i], planYear)
	}
	return results
}
