package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultLimits(t *testing.T) {
	table, err := LoadDefaultLimits()

	require.NoError(t, err, "embedded table should parse")
	assert.Equal(t, []int{2023, 2024, 2025}, table.Years(), "should know 2023 through 2025")
	assert.NotEmpty(t, table.Metadata().LastUpdated, "metadata should carry last_updated")
}

func TestLimitsTable_Lookup_ExactYear(t *testing.T) {
	table, err := LoadDefaultLimits()
	require.NoError(t, err)

	limits, err := table.Lookup(2024)

	require.NoError(t, err)
	assert.Equal(t, 2024, limits.PlanYear)
	assert.False(t, limits.Approximate, "exact year should not be flagged")
	assert.True(t, limits.CompensationCap.Equal(decimal.NewFromInt(345000)), "2024 compensation cap")
	assert.True(t, limits.HCEThreshold.Equal(decimal.NewFromInt(155000)), "2024 HCE threshold")
	assert.True(t, limits.AdditionsLimit.Equal(decimal.NewFromInt(69000)), "2024 additions limit")
	assert.True(t, limits.ACPMultiplier.Equal(decimal.NewFromFloat(1.25)), "default multiplier applied")
	assert.True(t, limits.ACPAdder.Equal(decimal.NewFromFloat(2.0)), "default adder applied")
}

func TestLimitsTable_Lookup_FallbackToEarlierYear(t *testing.T) {
	table, err := LoadDefaultLimits()
	require.NoError(t, err)

	limits, err := table.Lookup(2027)

	require.NoError(t, err, "future year should fall back, not fail")
	assert.Equal(t, 2027, limits.PlanYear, "result is stamped with the requested year")
	assert.True(t, limits.Approximate, "fallback must be flagged as an approximation")
	assert.Equal(t, 2025, limits.SourceYear, "should borrow from the latest earlier year")
	assert.True(t, limits.AdditionsLimit.Equal(decimal.NewFromInt(70000)), "carries 2025 values")
}

func TestLimitsTable_Lookup_BeforeAllKnownYears(t *testing.T) {
	table, err := LoadDefaultLimits()
	require.NoError(t, err)

	_, err = table.Lookup(1999)

	require.Error(t, err, "nothing reachable by fallback")
	assert.True(t, errors.Is(err, ErrNoLimitsKnown), "should wrap ErrNoLimitsKnown")
}

func TestLoadLimitsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "limits.yaml")
	content := []byte(`
years:
  - plan_year: 2030
    compensation_cap: 400000
    hce_threshold: 180000
    additions_limit: 80000
    acp_multiplier: 1.5
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	table, err := LoadLimitsFile(path)
	require.NoError(t, err)

	limits, err := table.Lookup(2030)
	require.NoError(t, err)
	assert.True(t, limits.ACPMultiplier.Equal(decimal.NewFromFloat(1.5)), "explicit multiplier kept")
	assert.True(t, limits.ACPAdder.Equal(decimal.NewFromFloat(2.0)), "omitted adder defaulted")
}

func TestLoadLimitsFile_MissingFile(t *testing.T) {
	_, err := LoadLimitsFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err, "missing file should error")
}

func TestParseLimits_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no years", "metadata:\n  description: empty\n"},
		{"duplicate year", `
years:
  - plan_year: 2024
    compensation_cap: 345000
    hce_threshold: 155000
    additions_limit: 69000
  - plan_year: 2024
    compensation_cap: 345000
    hce_threshold: 155000
    additions_limit: 69000
`},
		{"non-positive limit", `
years:
  - plan_year: 2024
    compensation_cap: 345000
    hce_threshold: 155000
    additions_limit: 0
`},
		{"missing plan year", `
years:
  - compensation_cap: 345000
    hce_threshold: 155000
    additions_limit: 69000
`},
		{"not yaml", "{{{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseLimits([]byte(tt.content))
			assert.Error(t, err)
		})
	}
}
