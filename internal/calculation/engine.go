package calculation

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/acpgo/acptest/internal/domain"
)

// DefaultRiskMarginThreshold is the PASS/RISK boundary in ACP percentage
// points. Deliberately a named default rather than a literal at the
// classification site; callers with a different risk appetite override it
// via SetRiskMarginThreshold.
var DefaultRiskMarginThreshold = decimal.NewFromFloat(0.50)

// ScenarioParams identifies one scenario to test.
type ScenarioParams struct {
	AdoptionRate     decimal.Decimal
	ContributionRate decimal.Decimal
	Seed             int64
}

// Engine runs ACP test scenarios against one prepared census. It holds no
// mutable state across calls: every scenario recomputes its sample,
// allocations and averages from scratch, which is the basis for bit-identical
// reproducibility and lock-free parallel grids.
type Engine struct {
	census              *Census
	limits              domain.PlanYearLimits
	riskMarginThreshold decimal.Decimal
	logger              zerolog.Logger
}

// NewEngine creates an engine for a census and its plan-year limits.
func NewEngine(census *Census, limits domain.PlanYearLimits) *Engine {
	return &Engine{
		census:              census,
		limits:              limits,
		riskMarginThreshold: DefaultRiskMarginThreshold,
		logger:              zerolog.Nop(),
	}
}

// SetLogger wires a structured logger. The engine defaults to a no-op logger
// so library callers stay silent unless they opt in.
func (e *Engine) SetLogger(logger zerolog.Logger) {
	e.logger = logger
}

// SetRiskMarginThreshold overrides the PASS/RISK boundary.
func (e *Engine) SetRiskMarginThreshold(threshold decimal.Decimal) {
	e.riskMarginThreshold = threshold
}

// RunScenario evaluates one scenario and always returns a result: conditions
// that make the test inapplicable (no eligible HCEs, no HCE with
// compensation) come back as an ERROR result rather than a Go error, so a
// failing cell never aborts a surrounding sweep.
func (e *Engine) RunScenario(params ScenarioParams) domain.ScenarioResult {
	one := decimal.NewFromInt(1)
	if params.AdoptionRate.IsNegative() || params.AdoptionRate.GreaterThan(one) {
		return e.errorResult(params, fmt.Sprintf("adoption rate %s outside [0, 1]", params.AdoptionRate))
	}
	if params.ContributionRate.IsNegative() || params.ContributionRate.GreaterThan(one) {
		return e.errorResult(params, fmt.Sprintf("contribution rate %s outside [0, 1]", params.ContributionRate))
	}
	if len(e.census.HCEIDs) == 0 {
		return e.errorResult(params, "no eligible HCEs in census; ACP test is not applicable")
	}

	selected := SampleHCEs(e.census.HCEIDs, params.AdoptionRate, params.Seed)
	outcomes := AllocateContributions(e.census, selected, params.ContributionRate, e.limits)

	allocatedByID := make(map[string]decimal.Decimal, len(outcomes))
	totalAllocated := decimal.Zero
	for i := range outcomes {
		allocatedByID[outcomes[i].ParticipantID] = outcomes[i].AllocatedAmount
		totalAllocated = totalAllocated.Add(outcomes[i].AllocatedAmount)
	}

	hceStats := groupACP(e.census, e.census.HCEIDs, allocatedByID)
	if hceStats.definedCount == 0 {
		return e.errorResult(params, "no eligible HCE has nonzero compensation; HCE ACP is undefined")
	}
	// An empty (or compensation-less) NHCE group averages to zero by
	// definition: the maximal-leeway case, not an error.
	nhceStats := groupACP(e.census, e.census.NHCEIDs, allocatedByID)

	thresholds := DualThresholds(nhceStats.mean, e.limits)
	margin := thresholds.EffectiveThreshold.Sub(hceStats.mean)

	return domain.ScenarioResult{
		AdoptionRate:     params.AdoptionRate,
		ContributionRate: params.ContributionRate,
		Seed:             params.Seed,
		Status:           classifyMargin(margin, e.riskMarginThreshold),

		NHCEACP:               nhceStats.mean,
		HCEACP:                hceStats.mean,
		LimitMultiple:         thresholds.LimitMultiple,
		LimitAdditiveUncapped: thresholds.LimitAdditiveUncapped,
		CapDouble:             thresholds.CapDouble,
		LimitAdditiveCapped:   thresholds.LimitAdditiveCapped,
		EffectiveThreshold:    thresholds.EffectiveThreshold,
		BindingRule:           thresholds.BindingRule,
		Margin:                margin,

		HCEContributorCount:  hceStats.contributorCount,
		NHCEContributorCount: nhceStats.contributorCount,
		TotalAllocatedAmount: totalAllocated,
		Outcomes:             outcomes,
	}
}

// errorResult builds the ERROR variant: coordinates, seed and message only.
func (e *Engine) errorResult(params ScenarioParams, msg string) domain.ScenarioResult {
	e.logger.Warn().
		Str("adoption_rate", params.AdoptionRate.String()).
		Str("contribution_rate", params.ContributionRate.String()).
		Str("reason", msg).
		Msg("Scenario not applicable")

	return domain.ScenarioResult{
		AdoptionRate:     params.AdoptionRate,
		ContributionRate: params.ContributionRate,
		Seed:             params.Seed,
		Status:           domain.StatusError,
		ErrorMessage:     msg,
	}
}
