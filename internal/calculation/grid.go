package calculation

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/acpgo/acptest/internal/domain"
)

// GridParams describes a full sweep: every (adoption rate, contribution rate)
// pair is evaluated with the same base seed, so any single cell can be
// reproduced in isolation by calling RunScenario with the grid's seed.
type GridParams struct {
	AdoptionRates     []decimal.Decimal
	ContributionRates []decimal.Decimal
	Seed              int64
}

// GridResult pairs the per-cell results, in canonical ascending
// (adoption rate, contribution rate) order, with their summary.
type GridResult struct {
	Results []domain.ScenarioResult `yaml:"results" json:"results"`
	Summary domain.GridSummary      `yaml:"summary" json:"summary"`
}

// RunGrid evaluates every cell of the grid. Cells are independent, so they
// run on a bounded worker pool with no locking; each result is written to its
// canonical slot, which keeps the output order stable regardless of
// completion order. A failure inside one cell becomes that cell's ERROR
// result and never aborts the sweep. Cancellation is cooperative at cell
// granularity: cells not yet started when ctx is done come back as ERROR
// "cancelled", never torn.
//
// Only whole-calculation problems (empty axes, rates outside [0, 1]) return a
// Go error.
func (e *Engine) RunGrid(ctx context.Context, params GridParams) (*GridResult, error) {
	if len(params.AdoptionRates) == 0 {
		return nil, fmt.Errorf("no adoption rates provided")
	}
	if len(params.ContributionRates) == 0 {
		return nil, fmt.Errorf("no contribution rates provided")
	}

	adoptionRates, err := canonicalRates("adoption", params.AdoptionRates)
	if err != nil {
		return nil, err
	}
	contributionRates, err := canonicalRates("contribution", params.ContributionRates)
	if err != nil {
		return nil, err
	}

	total := len(adoptionRates) * len(contributionRates)
	results := make([]domain.ScenarioResult, total)

	cellParams := func(idx int) ScenarioParams {
		return ScenarioParams{
			AdoptionRate:     adoptionRates[idx/len(contributionRates)],
			ContributionRate: contributionRates[idx%len(contributionRates)],
			Seed:             params.Seed,
		}
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > total {
		workers = total
	}

	e.logger.Info().
		Int("cells", total).
		Int("workers", workers).
		Int64("seed", params.Seed).
		Msg("Starting scenario grid sweep")

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				p := cellParams(idx)
				if ctx.Err() != nil {
					results[idx] = e.errorResult(p, "cancelled")
					continue
				}
				results[idx] = e.runCellSafe(p)
			}
		}()
	}
	for idx := 0; idx < total; idx++ {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	summary := summarizeGrid(results, adoptionRates)

	e.logger.Info().
		Int("pass", summary.PassCount).
		Int("risk", summary.RiskCount).
		Int("fail", summary.FailCount).
		Int("error", summary.ErrorCount).
		Msg("Scenario grid sweep complete")

	return &GridResult{Results: results, Summary: summary}, nil
}

// runCellSafe evaluates one cell, converting a panic into that cell's ERROR
// result so an unexpected numeric defect cannot take down the sweep.
func (e *Engine) runCellSafe(params ScenarioParams) (result domain.ScenarioResult) {
	defer func() {
		if r := recover(); r != nil {
			result = e.errorResult(params, fmt.Sprintf("internal calculation failure: %v", r))
		}
	}()
	return e.RunScenario(params)
}

// canonicalRates validates a rate axis and returns an ascending copy. The
// canonical order is what FirstFailureAt and the result layout are defined
// over, independent of the caller's ordering.
func canonicalRates(axis string, rates []decimal.Decimal) ([]decimal.Decimal, error) {
	one := decimal.NewFromInt(1)
	sorted := make([]decimal.Decimal, len(rates))
	copy(sorted, rates)
	for _, r := range sorted {
		if r.IsNegative() || r.GreaterThan(one) {
			return nil, fmt.Errorf("%s rate %s outside [0, 1]", axis, r)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })
	return sorted, nil
}

// summarizeGrid folds canonical-order results into a GridSummary. Margin
// statistics exclude ERROR cells.
func summarizeGrid(results []domain.ScenarioResult, adoptionRates []decimal.Decimal) domain.GridSummary {
	summary := domain.GridSummary{TotalCount: len(results)}
	maxAdoption := adoptionRates[len(adoptionRates)-1]

	marginSum := decimal.Zero
	nonErrorCount := 0

	for i := range results {
		r := &results[i]
		switch r.Status {
		case domain.StatusPass:
			summary.PassCount++
		case domain.StatusRisk:
			summary.RiskCount++
		case domain.StatusFail:
			summary.FailCount++
			if summary.FirstFailureAt == nil {
				summary.FirstFailureAt = &domain.GridCoordinates{
					AdoptionRate:     r.AdoptionRate,
					ContributionRate: r.ContributionRate,
				}
			}
		case domain.StatusError:
			summary.ErrorCount++
		}
		if r.Status == domain.StatusError {
			continue
		}

		coords := domain.GridCoordinates{AdoptionRate: r.AdoptionRate, ContributionRate: r.ContributionRate}
		if summary.MinMarginAt == nil || r.Margin.LessThan(summary.MinMargin) {
			summary.MinMargin = r.Margin
			summary.MinMarginAt = &domain.GridCoordinates{AdoptionRate: coords.AdoptionRate, ContributionRate: coords.ContributionRate}
		}
		if summary.MaxMarginAt == nil || r.Margin.GreaterThan(summary.MaxMargin) {
			summary.MaxMargin = r.Margin
			summary.MaxMarginAt = &domain.GridCoordinates{AdoptionRate: coords.AdoptionRate, ContributionRate: coords.ContributionRate}
		}
		marginSum = marginSum.Add(r.Margin)
		nonErrorCount++

		if r.AdoptionRate.Equal(maxAdoption) && (r.Status == domain.StatusPass || r.Status == domain.StatusRisk) {
			if summary.MaxSafeContributionAtMaxAdoption == nil ||
				r.ContributionRate.GreaterThan(*summary.MaxSafeContributionAtMaxAdoption) {
				rate := r.ContributionRate
				summary.MaxSafeContributionAtMaxAdoption = &rate
			}
		}
	}

	if nonErrorCount > 0 {
		summary.AvgMargin = marginSum.Div(decimal.NewFromInt(int64(nonErrorCount)))
	}
	return summary
}
