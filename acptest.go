// Package acptest determines whether a retirement plan's mega-backdoor
// after-tax contribution program satisfies the ACP nondiscrimination test,
// for a single proposed scenario or a full sweep over an
// adoption-rate x contribution-rate grid.
//
// The package is a pure calculation library: it performs no I/O, holds no
// cross-call state, and is safe for concurrent use. Census import, result
// persistence, rendering, export and transport all belong to the caller.
package acptest

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/acpgo/acptest/internal/calculation"
	"github.com/acpgo/acptest/internal/config"
	"github.com/acpgo/acptest/internal/domain"
)

// Domain types re-exported as the public contract. Downstream consumers
// (visualization, export, transport) read these fields without recomputation.
type (
	Participant         = domain.Participant
	PlanYearLimits      = domain.PlanYearLimits
	EligibilityResult   = domain.EligibilityResult
	ContributionOutcome = domain.ContributionOutcome
	ScenarioResult      = domain.ScenarioResult
	GridSummary         = domain.GridSummary
	GridCoordinates     = domain.GridCoordinates
	ScenarioStatus      = domain.ScenarioStatus
	BindingRule         = domain.BindingRule
	ConstraintStatus    = domain.ConstraintStatus
	ExclusionReason     = domain.ExclusionReason

	ClassifierMode = calculation.ClassifierMode
	ScenarioParams = calculation.ScenarioParams
	GridParams     = calculation.GridParams
	GridResult     = calculation.GridResult
)

const (
	StatusPass  = domain.StatusPass
	StatusRisk  = domain.StatusRisk
	StatusFail  = domain.StatusFail
	StatusError = domain.StatusError

	BindingMultiple = domain.BindingMultiple
	BindingAdditive = domain.BindingAdditive

	ClassifierExplicit              = calculation.ClassifierExplicit
	ClassifierCompensationThreshold = calculation.ClassifierCompensationThreshold
)

// ErrNoLimitsKnown is the configuration error for a plan year that no known
// limits can cover, even by the nearest-earlier-year fallback.
var ErrNoLimitsKnown = config.ErrNoLimitsKnown

// CensusInput is the already-validated participant collection for one plan
// year, as produced by the import subsystem.
type CensusInput struct {
	Participants []Participant
	PlanYear     int
	Classifier   ClassifierMode
}

// Tester is the package entry point: a limits table plus engine settings.
// Construct one and reuse it; it is immutable during calculation calls.
type Tester struct {
	limits              *config.LimitsTable
	logger              zerolog.Logger
	riskMarginThreshold decimal.Decimal
}

// NewTester creates a Tester backed by the statutory limits embedded in the
// binary.
func NewTester() (*Tester, error) {
	table, err := config.LoadDefaultLimits()
	if err != nil {
		return nil, err
	}
	return newTester(table), nil
}

// NewTesterWithLimitsFile creates a Tester from an external limits YAML file.
func NewTesterWithLimitsFile(filename string) (*Tester, error) {
	table, err := config.LoadLimitsFile(filename)
	if err != nil {
		return nil, err
	}
	return newTester(table), nil
}

func newTester(table *config.LimitsTable) *Tester {
	return &Tester{
		limits:              table,
		logger:              zerolog.Nop(),
		riskMarginThreshold: calculation.DefaultRiskMarginThreshold,
	}
}

// SetLogger wires a structured logger; the default is a no-op logger.
func (t *Tester) SetLogger(logger zerolog.Logger) {
	t.logger = logger
}

// SetRiskMarginThreshold overrides the PASS/RISK margin boundary, in ACP
// percentage points.
func (t *Tester) SetRiskMarginThreshold(threshold decimal.Decimal) {
	t.riskMarginThreshold = threshold
}

// Limits resolves the statutory limits for a plan year, applying the
// documented nearest-earlier-year fallback.
func (t *Tester) Limits(planYear int) (PlanYearLimits, error) {
	return t.limits.Lookup(planYear)
}

// ResolveEligibility previews the eligibility determination for a census
// without running any scenario.
func ResolveEligibility(participants []Participant, planYear int) []EligibilityResult {
	return calculation.ResolveCensusEligibility(participants, planYear)
}

// engineFor prepares the census once and builds an engine for it.
func (t *Tester) engineFor(census CensusInput) (*calculation.Engine, error) {
	limits, err := t.limits.Lookup(census.PlanYear)
	if err != nil {
		return nil, err
	}
	prepared, err := calculation.NewCensus(census.Participants, census.PlanYear, limits, census.Classifier)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare census: %w", err)
	}
	engine := calculation.NewEngine(prepared, limits)
	engine.SetLogger(t.logger)
	engine.SetRiskMarginThreshold(t.riskMarginThreshold)
	return engine, nil
}

// RunScenario evaluates one proposed scenario. Conditions that make the test
// inapplicable come back as a ScenarioResult with status ERROR; the returned
// Go error is reserved for whole-calculation problems (unknown plan year,
// malformed census).
func (t *Tester) RunScenario(census CensusInput, params ScenarioParams) (ScenarioResult, error) {
	engine, err := t.engineFor(census)
	if err != nil {
		return ScenarioResult{}, err
	}
	return engine.RunScenario(params), nil
}

// RunGrid sweeps the full adoption x contribution grid, evaluating cells in
// parallel, and returns the per-cell results in canonical ascending order
// together with their summary.
func (t *Tester) RunGrid(ctx context.Context, census CensusInput, params GridParams) (*GridResult, error) {
	engine, err := t.engineFor(census)
	if err != nil {
		return nil, err
	}
	return engine.RunGrid(ctx, params)
}
