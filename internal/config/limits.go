package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/acpgo/acptest/internal/domain"
)

//go:embed limits.yaml
var defaultLimitsYAML []byte

// ErrNoLimitsKnown is returned when a lookup cannot be satisfied by any known
// plan year, even after the nearest-earlier-year fallback.
var ErrNoLimitsKnown = errors.New("no regulatory limits known for any usable plan year")

// Default ACP test factors, applied when a year entry omits them.
var (
	defaultACPMultiplier = decimal.NewFromFloat(1.25)
	defaultACPAdder      = decimal.NewFromFloat(2.0)
)

// LimitsMetadata describes the provenance of a limits table.
type LimitsMetadata struct {
	LastUpdated string `yaml:"last_updated" json:"last_updated"`
	Description string `yaml:"description" json:"description"`
}

// limitsFile is the on-disk shape of a limits table.
type limitsFile struct {
	Metadata LimitsMetadata          `yaml:"metadata"`
	Years    []domain.PlanYearLimits `yaml:"years"`
}

// LimitsTable holds the statutory limits for every known plan year and
// resolves lookups with the documented nearest-earlier-year fallback. The
// table is immutable after load.
type LimitsTable struct {
	metadata LimitsMetadata
	years    []domain.PlanYearLimits // ascending by plan year
}

// LoadDefaultLimits parses the limits table embedded in the binary.
func LoadDefaultLimits() (*LimitsTable, error) {
	table, err := parseLimits(defaultLimitsYAML)
	if err != nil {
		return nil, fmt.Errorf("embedded limits table: %w", err)
	}
	return table, nil
}

// LoadLimitsFile parses a limits table from a YAML file, for deployments that
// maintain their own statutory data.
func LoadLimitsFile(filename string) (*LimitsTable, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read limits file %s: %w", filename, err)
	}
	table, err := parseLimits(data)
	if err != nil {
		return nil, fmt.Errorf("limits file %s: %w", filename, err)
	}
	return table, nil
}

func parseLimits(data []byte) (*LimitsTable, error) {
	var file limitsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(file.Years) == 0 {
		return nil, fmt.Errorf("limits table has no plan years")
	}

	seen := make(map[int]bool, len(file.Years))
	for i := range file.Years {
		y := &file.Years[i]
		if err := validateYear(y); err != nil {
			return nil, fmt.Errorf("plan year entry %d: %w", i, err)
		}
		if seen[y.PlanYear] {
			return nil, fmt.Errorf("duplicate plan year %d", y.PlanYear)
		}
		seen[y.PlanYear] = true
		if y.ACPMultiplier.IsZero() {
			y.ACPMultiplier = defaultACPMultiplier
		}
		if y.ACPAdder.IsZero() {
			y.ACPAdder = defaultACPAdder
		}
	}

	years := make([]domain.PlanYearLimits, len(file.Years))
	copy(years, file.Years)
	sort.Slice(years, func(i, j int) bool { return years[i].PlanYear < years[j].PlanYear })

	return &LimitsTable{metadata: file.Metadata, years: years}, nil
}

func validateYear(y *domain.PlanYearLimits) error {
	if y.PlanYear <= 0 {
		return fmt.Errorf("plan_year is required")
	}
	if !y.CompensationCap.IsPositive() {
		return fmt.Errorf("compensation_cap must be positive, got %s", y.CompensationCap)
	}
	if !y.HCEThreshold.IsPositive() {
		return fmt.Errorf("hce_threshold must be positive, got %s", y.HCEThreshold)
	}
	if !y.AdditionsLimit.IsPositive() {
		return fmt.Errorf("additions_limit must be positive, got %s", y.AdditionsLimit)
	}
	if y.ACPMultiplier.IsNegative() || y.ACPAdder.IsNegative() {
		return fmt.Errorf("acp factors must not be negative")
	}
	return nil
}

// Metadata returns the table's provenance block.
func (lt *LimitsTable) Metadata() LimitsMetadata {
	return lt.metadata
}

// Years lists every plan year the table knows, ascending.
func (lt *LimitsTable) Years() []int {
	years := make([]int, len(lt.years))
	for i := range lt.years {
		years[i] = lt.years[i].PlanYear
	}
	return years
}

// Lookup resolves the limits for a plan year. An exact match is returned
// as-is. Otherwise the latest known year strictly below the requested one is
// carried forward with Approximate set and SourceYear recording the donor
// year, so callers can surface the assumption. Only when no year at or below
// the request exists does Lookup fail, wrapping ErrNoLimitsKnown.
func (lt *LimitsTable) Lookup(planYear int) (domain.PlanYearLimits, error) {
	idx := sort.Search(len(lt.years), func(i int) bool { return lt.years[i].PlanYear > planYear })
	if idx == 0 {
		return domain.PlanYearLimits{}, fmt.Errorf("plan year %d predates all known limits (earliest %d): %w",
			planYear, lt.years[0].PlanYear, ErrNoLimitsKnown)
	}

	limits := lt.years[idx-1]
	if limits.PlanYear != planYear {
		limits.SourceYear = limits.PlanYear
		limits.PlanYear = planYear
		limits.Approximate = true
	}
	return limits, nil
}
