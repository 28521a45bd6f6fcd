package calculation

import (
	"fmt"

	"github.com/acpgo/acptest/internal/domain"
)

// ClassifierMode selects how includable participants are split into HCE and
// NHCE groups. The mode is chosen per census.
type ClassifierMode string

const (
	// ClassifierExplicit trusts the stored HCE flag on each participant.
	ClassifierExplicit ClassifierMode = "explicit"
	// ClassifierCompensationThreshold derives HCE status by comparing
	// compensation against the plan year's HCE threshold.
	ClassifierCompensationThreshold ClassifierMode = "compensation_threshold"
)

// Classify splits includable participants into disjoint HCE and NHCE ID
// lists, preserving census order. Non-includable participants appear in
// neither group. The returned ordering feeds the sampler, so it must be
// stable for a given census.
func Classify(
	participants []domain.Participant,
	eligibility []domain.EligibilityResult,
	limits domain.PlanYearLimits,
	mode ClassifierMode,
) (hceIDs, nhceIDs []string, err error) {
	if len(eligibility) != len(participants) {
		return nil, nil, fmt.Errorf("eligibility results (%d) do not match participants (%d)",
			len(eligibility), len(participants))
	}

	for i := range participants {
		if !eligibility[i].Includable {
			continue
		}
		p := &participants[i]

		var isHCE bool
		switch mode {
		case ClassifierExplicit:
			isHCE = p.HCE
		case ClassifierCompensationThreshold:
			isHCE = p.Compensation.GreaterThanOrEqual(limits.HCEThreshold)
		default:
			return nil, nil, fmt.Errorf("unknown classifier mode %q", mode)
		}

		if isHCE {
			hceIDs = append(hceIDs, p.ID)
		} else {
			nhceIDs = append(nhceIDs, p.ID)
		}
	}
	return hceIDs, nhceIDs, nil
}
