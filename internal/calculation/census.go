package calculation

import (
	"fmt"

	"github.com/acpgo/acptest/internal/domain"
)

// Census is the prepared test population for one plan year: the caller's
// participant snapshots plus eligibility and HCE classification, computed once
// and reused across every scenario of a sweep. A Census is immutable after
// construction, which is what makes concurrent grid evaluation safe.
type Census struct {
	PlanYear     int
	Participants []domain.Participant
	Eligibility  []domain.EligibilityResult

	// IncludableIDs, HCEIDs and NHCEIDs preserve census order. HCEIDs and
	// NHCEIDs are disjoint and together cover IncludableIDs exactly.
	IncludableIDs []string
	HCEIDs        []string
	NHCEIDs       []string

	byID map[string]*domain.Participant
}

// NewCensus resolves eligibility and classification for a participant
// collection. Participant IDs must be unique; the import collaborator
// guarantees the rest of the input contract.
func NewCensus(
	participants []domain.Participant,
	planYear int,
	limits domain.PlanYearLimits,
	mode ClassifierMode,
) (*Census, error) {
	c := &Census{
		PlanYear:     planYear,
		Participants: participants,
		byID:         make(map[string]*domain.Participant, len(participants)),
	}

	for i := range participants {
		p := &participants[i]
		if p.ID == "" {
			return nil, fmt.Errorf("participant %d has no ID", i)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate participant ID %q", p.ID)
		}
		c.byID[p.ID] = p
	}

	c.Eligibility = ResolveCensusEligibility(participants, planYear)
	for i := range c.Eligibility {
		if c.Eligibility[i].Includable {
			c.IncludableIDs = append(c.IncludableIDs, c.Eligibility[i].ParticipantID)
		}
	}

	hceIDs, nhceIDs, err := Classify(participants, c.Eligibility, limits, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to classify census: %w", err)
	}
	c.HCEIDs = hceIDs
	c.NHCEIDs = nhceIDs

	return c, nil
}

// Participant returns the census record for an ID, or nil if unknown.
func (c *Census) Participant(id string) *domain.Participant {
	return c.byID[id]
}
