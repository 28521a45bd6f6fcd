package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/acpgo/acptest/internal/domain"
)

var (
	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)
)

// individualACP returns a participant's actual contribution percentage:
// (match + after-tax + newly allocated) / compensation × 100. The second
// return reports whether the percentage is defined; it is not when
// compensation is zero, and such participants stay out of group averages
// while still counting as group members.
func individualACP(p *domain.Participant, allocated decimal.Decimal) (decimal.Decimal, bool) {
	if p.Compensation.IsZero() {
		return decimal.Zero, false
	}
	counted := p.ExistingMatch.Add(p.ExistingAfterTax).Add(allocated)
	return counted.Div(p.Compensation).Mul(hundred), true
}

// groupACPStats summarizes one test group.
type groupACPStats struct {
	mean             decimal.Decimal
	definedCount     int
	memberCount      int
	contributorCount int
}

// groupACP averages individual ACPs over a group. An empty group, or one with
// no defined percentages, averages to zero; the caller decides whether that
// is a defined result (NHCE side) or makes the test inapplicable (HCE side).
func groupACP(census *Census, ids []string, allocatedByID map[string]decimal.Decimal) groupACPStats {
	stats := groupACPStats{memberCount: len(ids)}

	sum := decimal.Zero
	for _, id := range ids {
		p := census.Participant(id)
		allocated := allocatedByID[id]

		if p.ExistingMatch.Add(p.ExistingAfterTax).Add(allocated).IsPositive() {
			stats.contributorCount++
		}

		acp, defined := individualACP(p, allocated)
		if !defined {
			continue
		}
		sum = sum.Add(acp)
		stats.definedCount++
	}

	if stats.definedCount > 0 {
		stats.mean = sum.Div(decimal.NewFromInt(int64(stats.definedCount)))
	}
	return stats
}

// ThresholdSet holds every intermediate of the dual regulatory test for one
// NHCE average, so downstream consumers can display the full derivation.
type ThresholdSet struct {
	LimitMultiple         decimal.Decimal
	LimitAdditiveUncapped decimal.Decimal
	CapDouble             decimal.Decimal
	LimitAdditiveCapped   decimal.Decimal
	EffectiveThreshold    decimal.Decimal
	BindingRule           domain.BindingRule
}

// DualThresholds evaluates the two-part ACP threshold test: the
// multiplicative limit (NHCE × multiplier) against the additive limit
// (NHCE + adder) capped at twice the NHCE average. The effective threshold is
// the more generous of the two, and BindingRule records which one it was.
// No rounding happens here; display rounding is strictly downstream.
func DualThresholds(nhceACP decimal.Decimal, limits domain.PlanYearLimits) ThresholdSet {
	ts := ThresholdSet{
		LimitMultiple:         nhceACP.Mul(limits.ACPMultiplier),
		LimitAdditiveUncapped: nhceACP.Add(limits.ACPAdder),
		CapDouble:             nhceACP.Mul(two),
	}
	ts.LimitAdditiveCapped = decimal.Min(ts.LimitAdditiveUncapped, ts.CapDouble)
	ts.EffectiveThreshold = decimal.Max(ts.LimitMultiple, ts.LimitAdditiveCapped)

	if ts.LimitMultiple.GreaterThanOrEqual(ts.LimitAdditiveCapped) {
		ts.BindingRule = domain.BindingMultiple
	} else {
		ts.BindingRule = domain.BindingAdditive
	}
	return ts
}

// classifyMargin maps a margin to PASS, RISK or FAIL. The risk band is
// [0, riskThreshold] in ACP percentage points.
func classifyMargin(margin, riskThreshold decimal.Decimal) domain.ScenarioStatus {
	switch {
	case margin.IsNegative():
		return domain.StatusFail
	case margin.LessThanOrEqual(riskThreshold):
		return domain.StatusRisk
	default:
		return domain.StatusPass
	}
}
