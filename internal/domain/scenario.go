package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ConstraintStatus describes how the section 415(c) additions limit affected
// one participant's proposed contribution.
type ConstraintStatus string

const (
	// ConstraintNotSelected marks a participant who was never a candidate
	// for the proposed contribution (all NHCEs, unselected HCEs).
	ConstraintNotSelected ConstraintStatus = "not_selected"
	// ConstraintUnconstrained marks a nonzero request allocated in full.
	ConstraintUnconstrained ConstraintStatus = "unconstrained"
	// ConstraintReduced marks a request partially allocated.
	ConstraintReduced ConstraintStatus = "reduced"
	// ConstraintAtLimit marks a nonzero request with no room left at all.
	ConstraintAtLimit ConstraintStatus = "at_limit"
)

// ContributionOutcome records the proposed-contribution allocation for one
// includable participant in one scenario.
type ContributionOutcome struct {
	ParticipantID    string           `yaml:"participant_id" json:"participant_id"`
	RequestedAmount  decimal.Decimal  `yaml:"requested_amount" json:"requested_amount"`
	AllocatedAmount  decimal.Decimal  `yaml:"allocated_amount" json:"allocated_amount"`
	AvailableRoom    decimal.Decimal  `yaml:"available_room" json:"available_room"`
	ConstraintStatus ConstraintStatus `yaml:"constraint_status" json:"constraint_status"`
}

// CheckInvariants verifies the allocation bounds. A violation indicates an
// implementation defect, not bad input; tests fail loudly on it.
func (co *ContributionOutcome) CheckInvariants() error {
	if co.AllocatedAmount.IsNegative() {
		return fmt.Errorf("participant %s: allocated amount %s is negative", co.ParticipantID, co.AllocatedAmount)
	}
	if co.AllocatedAmount.GreaterThan(co.RequestedAmount) {
		return fmt.Errorf("participant %s: allocated %s exceeds requested %s", co.ParticipantID, co.AllocatedAmount, co.RequestedAmount)
	}
	room := co.AvailableRoom
	if room.IsNegative() {
		room = decimal.Zero
	}
	if co.AllocatedAmount.GreaterThan(room) {
		return fmt.Errorf("participant %s: allocated %s exceeds available room %s", co.ParticipantID, co.AllocatedAmount, room)
	}
	return nil
}

// ScenarioStatus is the outcome classification of one tested scenario.
type ScenarioStatus string

const (
	StatusPass  ScenarioStatus = "PASS"
	StatusRisk  ScenarioStatus = "RISK"
	StatusFail  ScenarioStatus = "FAIL"
	StatusError ScenarioStatus = "ERROR"
)

// BindingRule identifies which half of the dual regulatory test produced the
// effective threshold.
type BindingRule string

const (
	// BindingMultiple means the 1.25x multiplicative limit was binding.
	BindingMultiple BindingRule = "MULTIPLE"
	// BindingAdditive means the capped additive (+2.0, at most 2x) limit
	// was binding.
	BindingAdditive BindingRule = "ADDITIVE"
)

// ScenarioResult is the full outcome of one (adoption rate, contribution rate)
// scenario. It is a tagged variant: when Status is ERROR only the coordinates,
// the seed, and ErrorMessage are meaningful; every other status carries the
// complete numeric field set. Downstream consumers (visualization, export,
// transport) read these fields without recomputation.
type ScenarioResult struct {
	AdoptionRate     decimal.Decimal `yaml:"adoption_rate" json:"adoption_rate"`
	ContributionRate decimal.Decimal `yaml:"contribution_rate" json:"contribution_rate"`
	Seed             int64           `yaml:"seed" json:"seed"`
	Status           ScenarioStatus  `yaml:"status" json:"status"`

	NHCEACP               decimal.Decimal `yaml:"nhce_acp" json:"nhce_acp"`
	HCEACP                decimal.Decimal `yaml:"hce_acp" json:"hce_acp"`
	LimitMultiple         decimal.Decimal `yaml:"limit_multiple" json:"limit_multiple"`
	LimitAdditiveUncapped decimal.Decimal `yaml:"limit_additive_uncapped" json:"limit_additive_uncapped"`
	CapDouble             decimal.Decimal `yaml:"cap_double" json:"cap_double"`
	LimitAdditiveCapped   decimal.Decimal `yaml:"limit_additive_capped" json:"limit_additive_capped"`
	EffectiveThreshold    decimal.Decimal `yaml:"effective_threshold" json:"effective_threshold"`
	BindingRule           BindingRule     `yaml:"binding_rule,omitempty" json:"binding_rule,omitempty"`
	Margin                decimal.Decimal `yaml:"margin" json:"margin"`

	HCEContributorCount  int             `yaml:"hce_contributor_count" json:"hce_contributor_count"`
	NHCEContributorCount int             `yaml:"nhce_contributor_count" json:"nhce_contributor_count"`
	TotalAllocatedAmount decimal.Decimal `yaml:"total_allocated_amount" json:"total_allocated_amount"`

	// Outcomes holds the per-participant allocation detail backing the
	// employee-impact view. Empty on ERROR results.
	Outcomes []ContributionOutcome `yaml:"outcomes,omitempty" json:"outcomes,omitempty"`

	ErrorMessage string `yaml:"error_message,omitempty" json:"error_message,omitempty"`
}

// CheckInvariants verifies the threshold identities and allocation bounds of a
// non-ERROR result.
func (sr *ScenarioResult) CheckInvariants() error {
	if sr.Status == StatusError {
		if sr.ErrorMessage == "" {
			return fmt.Errorf("ERROR result missing error message")
		}
		return nil
	}
	capped := decimal.Min(sr.LimitAdditiveUncapped, sr.CapDouble)
	if !sr.LimitAdditiveCapped.Equal(capped) {
		return fmt.Errorf("limit_additive_capped %s != min(%s, %s)", sr.LimitAdditiveCapped, sr.LimitAdditiveUncapped, sr.CapDouble)
	}
	effective := decimal.Max(sr.LimitMultiple, sr.LimitAdditiveCapped)
	if !sr.EffectiveThreshold.Equal(effective) {
		return fmt.Errorf("effective_threshold %s != max(%s, %s)", sr.EffectiveThreshold, sr.LimitMultiple, sr.LimitAdditiveCapped)
	}
	switch sr.BindingRule {
	case BindingMultiple:
		if sr.LimitMultiple.LessThan(sr.LimitAdditiveCapped) {
			return fmt.Errorf("binding rule MULTIPLE but additive limit %s is larger", sr.LimitAdditiveCapped)
		}
	case BindingAdditive:
		if sr.LimitMultiple.GreaterThanOrEqual(sr.LimitAdditiveCapped) {
			return fmt.Errorf("binding rule ADDITIVE but multiple limit %s is not smaller", sr.LimitMultiple)
		}
	default:
		return fmt.Errorf("missing binding rule on %s result", sr.Status)
	}
	for i := range sr.Outcomes {
		if err := sr.Outcomes[i].CheckInvariants(); err != nil {
			return err
		}
	}
	return nil
}

// GridCoordinates locates one cell of a scenario grid.
type GridCoordinates struct {
	AdoptionRate     decimal.Decimal `yaml:"adoption_rate" json:"adoption_rate"`
	ContributionRate decimal.Decimal `yaml:"contribution_rate" json:"contribution_rate"`
}

// GridSummary aggregates a full grid sweep. Margin statistics cover non-ERROR
// cells only; MinMarginAt and MaxMarginAt are nil when every cell errored.
type GridSummary struct {
	TotalCount int `yaml:"total_count" json:"total_count"`
	PassCount  int `yaml:"pass_count" json:"pass_count"`
	RiskCount  int `yaml:"risk_count" json:"risk_count"`
	FailCount  int `yaml:"fail_count" json:"fail_count"`
	ErrorCount int `yaml:"error_count" json:"error_count"`

	MinMargin   decimal.Decimal  `yaml:"min_margin" json:"min_margin"`
	MinMarginAt *GridCoordinates `yaml:"min_margin_at,omitempty" json:"min_margin_at,omitempty"`
	MaxMargin   decimal.Decimal  `yaml:"max_margin" json:"max_margin"`
	MaxMarginAt *GridCoordinates `yaml:"max_margin_at,omitempty" json:"max_margin_at,omitempty"`
	AvgMargin   decimal.Decimal  `yaml:"avg_margin" json:"avg_margin"`

	// MaxSafeContributionAtMaxAdoption is the highest tested contribution
	// rate at the maximum tested adoption rate whose status is PASS or
	// RISK; nil when no such cell exists.
	MaxSafeContributionAtMaxAdoption *decimal.Decimal `yaml:"max_safe_contribution_at_max_adoption,omitempty" json:"max_safe_contribution_at_max_adoption,omitempty"`

	// FirstFailureAt is the first FAIL cell in ascending (adoption rate,
	// contribution rate) order, or nil when the whole grid is clean.
	FirstFailureAt *GridCoordinates `yaml:"first_failure_at,omitempty" json:"first_failure_at,omitempty"`
}
