package calculation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/acpgo/acptest/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func timePtr(t time.Time) *time.Time {
	return &t
}

// testLimits returns the 2025 statutory limits used throughout these tests.
func testLimits() domain.PlanYearLimits {
	return domain.PlanYearLimits{
		PlanYear:        2025,
		CompensationCap: dec("350000"),
		HCEThreshold:    dec("160000"),
		AdditionsLimit:  dec("70000"),
		ACPMultiplier:   dec("1.25"),
		ACPAdder:        dec("2"),
	}
}

// testParticipant builds a long-tenured participant (entry date 2016-01-01)
// with the given compensation and no existing contributions.
func testParticipant(id, compensation string) domain.Participant {
	return domain.Participant{
		ID:           id,
		BirthDate:    date(1980, time.March, 15),
		HireDate:     date(2015, time.January, 1),
		Compensation: dec(compensation),
	}
}

func mustCensus(t *testing.T, participants []domain.Participant, planYear int, mode ClassifierMode) *Census {
	t.Helper()
	census, err := NewCensus(participants, planYear, testLimits(), mode)
	require.NoError(t, err, "census construction should succeed")
	return census
}
