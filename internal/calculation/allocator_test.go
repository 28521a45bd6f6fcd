package calculation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acpgo/acptest/internal/domain"
)

func outcomeByID(t *testing.T, outcomes []domain.ContributionOutcome, id string) domain.ContributionOutcome {
	t.Helper()
	for i := range outcomes {
		if outcomes[i].ParticipantID == id {
			return outcomes[i]
		}
	}
	t.Fatalf("no outcome for participant %s", id)
	return domain.ContributionOutcome{}
}

func TestAllocateContributions_Unconstrained(t *testing.T) {
	p := testParticipant("h1", "200000")
	p.ExistingDeferral = dec("23000")
	census := mustCensus(t, []domain.Participant{p}, 2025, ClassifierCompensationThreshold)

	outcomes := AllocateContributions(census, map[string]bool{"h1": true}, dec("0.10"), testLimits())

	require.Len(t, outcomes, 1)
	o := outcomes[0]
	assert.True(t, o.RequestedAmount.Equal(dec("20000")), "requested = compensation x rate")
	assert.True(t, o.AllocatedAmount.Equal(dec("20000")), "full request fits in the room")
	assert.True(t, o.AvailableRoom.Equal(dec("47000")))
	assert.Equal(t, domain.ConstraintUnconstrained, o.ConstraintStatus)
}

func TestAllocateContributions_Reduced(t *testing.T) {
	p := testParticipant("h1", "200000")
	p.ExistingDeferral = dec("23000")
	p.ExistingMatch = dec("14000")
	p.ExistingAfterTax = dec("28000") // room = 70000 - 65000 = 5000
	census := mustCensus(t, []domain.Participant{p}, 2025, ClassifierCompensationThreshold)

	outcomes := AllocateContributions(census, map[string]bool{"h1": true}, dec("0.10"), testLimits())

	o := outcomes[0]
	assert.True(t, o.RequestedAmount.Equal(dec("20000")))
	assert.True(t, o.AllocatedAmount.Equal(dec("5000")), "allocation is clipped to the room")
	assert.Equal(t, domain.ConstraintReduced, o.ConstraintStatus)
}

func TestAllocateContributions_AtAdditionsLimit(t *testing.T) {
	// 415(c) saturation: existing additions already equal the limit.
	p := testParticipant("h1", "200000")
	p.ExistingDeferral = dec("23000")
	p.ExistingMatch = dec("14000")
	p.ExistingAfterTax = dec("33000") // total exactly 70000
	census := mustCensus(t, []domain.Participant{p}, 2025, ClassifierCompensationThreshold)

	outcomes := AllocateContributions(census, map[string]bool{"h1": true}, dec("0.10"), testLimits())

	o := outcomes[0]
	assert.True(t, o.RequestedAmount.IsPositive())
	assert.True(t, o.AllocatedAmount.IsZero(), "no room means nothing allocated")
	assert.True(t, o.AvailableRoom.IsZero())
	assert.Equal(t, domain.ConstraintAtLimit, o.ConstraintStatus)
}

func TestAllocateContributions_NegativeRoom(t *testing.T) {
	// Existing additions above the limit (bad data upstream, or a prior-year
	// correction); room is reported negative but allocation floors at zero.
	p := testParticipant("h1", "200000")
	p.ExistingAfterTax = dec("75000")
	census := mustCensus(t, []domain.Participant{p}, 2025, ClassifierCompensationThreshold)

	outcomes := AllocateContributions(census, map[string]bool{"h1": true}, dec("0.10"), testLimits())

	o := outcomes[0]
	assert.True(t, o.AvailableRoom.Equal(dec("-5000")), "room may be negative")
	assert.True(t, o.AllocatedAmount.IsZero())
	assert.Equal(t, domain.ConstraintAtLimit, o.ConstraintStatus)
	assert.NoError(t, o.CheckInvariants())
}

func TestAllocateContributions_NotSelected(t *testing.T) {
	participants := []domain.Participant{
		testParticipant("h1", "200000"),
		testParticipant("h2", "250000"),
		testParticipant("n1", "60000"),
	}
	census := mustCensus(t, participants, 2025, ClassifierCompensationThreshold)

	outcomes := AllocateContributions(census, map[string]bool{"h1": true}, dec("0.05"), testLimits())

	require.Len(t, outcomes, 3, "one outcome per includable participant")
	assert.Equal(t, domain.ConstraintUnconstrained, outcomeByID(t, outcomes, "h1").ConstraintStatus)

	for _, id := range []string{"h2", "n1"} {
		o := outcomeByID(t, outcomes, id)
		assert.Equal(t, domain.ConstraintNotSelected, o.ConstraintStatus)
		assert.True(t, o.RequestedAmount.IsZero(), "%s never requests anything", id)
		assert.True(t, o.AllocatedAmount.IsZero())
	}
}

func TestAllocateContributions_BoundsInvariant(t *testing.T) {
	participants := []domain.Participant{
		testParticipant("h1", "200000"),
		testParticipant("h2", "300000"),
		testParticipant("n1", "60000"),
	}
	participants[0].ExistingAfterTax = dec("69999.99")
	participants[1].ExistingDeferral = dec("80000")
	census := mustCensus(t, participants, 2025, ClassifierCompensationThreshold)

	rates := []string{"0", "0.01", "0.05", "0.25", "1"}
	for _, rate := range rates {
		selected := map[string]bool{"h1": true, "h2": true}
		for _, o := range AllocateContributions(census, selected, dec(rate), testLimits()) {
			assert.NoError(t, o.CheckInvariants(), "rate %s participant %s", rate, o.ParticipantID)
		}
	}
}
