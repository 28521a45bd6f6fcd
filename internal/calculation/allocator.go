package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/acpgo/acptest/internal/domain"
)

// AllocateContributions computes the proposed after-tax contribution for
// every includable participant under the section 415(c) annual-additions
// ceiling. NHCEs and unselected HCEs are never candidates and come back as
// not_selected with a zero request. Selected HCEs request
// compensation × contributionRate and receive the smaller of the request and
// their remaining room. The logic is strictly per-participant; no outcome
// depends on another.
func AllocateContributions(
	census *Census,
	selected map[string]bool,
	contributionRate decimal.Decimal,
	limits domain.PlanYearLimits,
) []domain.ContributionOutcome {
	outcomes := make([]domain.ContributionOutcome, 0, len(census.IncludableIDs))

	for _, id := range census.IncludableIDs {
		p := census.Participant(id)
		room := limits.AdditionsLimit.Sub(p.ExistingAnnualAdditions())

		outcome := domain.ContributionOutcome{
			ParticipantID:    id,
			RequestedAmount:  decimal.Zero,
			AllocatedAmount:  decimal.Zero,
			AvailableRoom:    room,
			ConstraintStatus: domain.ConstraintNotSelected,
		}

		if selected[id] {
			requested := p.Compensation.Mul(contributionRate)
			allocatable := decimal.Max(decimal.Zero, room)
			allocated := decimal.Min(requested, allocatable)

			outcome.RequestedAmount = requested
			outcome.AllocatedAmount = allocated
			switch {
			case requested.IsPositive() && allocated.IsZero():
				outcome.ConstraintStatus = domain.ConstraintAtLimit
			case allocated.LessThan(requested):
				outcome.ConstraintStatus = domain.ConstraintReduced
			default:
				// Includes the trivial zero-request case.
				outcome.ConstraintStatus = domain.ConstraintUnconstrained
			}
		}

		outcomes = append(outcomes, outcome)
	}
	return outcomes
}
