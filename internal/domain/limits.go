package domain

import (
	"github.com/shopspring/decimal"
)

// PlanYearLimits contains the statutory dollar limits and ACP test factors for
// one plan year. Values are loaded once by the limits table and passed into
// every calculation; the engine never mutates them.
type PlanYearLimits struct {
	PlanYear        int             `yaml:"plan_year" json:"plan_year"`
	CompensationCap decimal.Decimal `yaml:"compensation_cap" json:"compensation_cap"`
	HCEThreshold    decimal.Decimal `yaml:"hce_threshold" json:"hce_threshold"`
	AdditionsLimit  decimal.Decimal `yaml:"additions_limit" json:"additions_limit"`
	ACPMultiplier   decimal.Decimal `yaml:"acp_multiplier" json:"acp_multiplier"`
	ACPAdder        decimal.Decimal `yaml:"acp_adder" json:"acp_adder"`

	// Approximate is set when the requested plan year was absent from the
	// table and these limits were carried forward from SourceYear.
	Approximate bool `yaml:"-" json:"approximate,omitempty"`
	SourceYear  int  `yaml:"-" json:"source_year,omitempty"`
}
