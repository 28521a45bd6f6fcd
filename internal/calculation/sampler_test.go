package calculation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("hce-%03d", i)
	}
	return ids
}

func TestSampleHCEs_Deterministic(t *testing.T) {
	ids := sampleIDs(25)

	first := SampleHCEs(ids, dec("0.4"), 42)
	second := SampleHCEs(ids, dec("0.4"), 42)

	assert.Equal(t, first, second, "identical inputs must yield the identical set")
}

func TestSampleHCEs_IndependentOfCallOrder(t *testing.T) {
	ids := sampleIDs(25)

	// Interleave unrelated draws; they must not disturb each other because
	// every call owns its generator.
	a1 := SampleHCEs(ids, dec("0.4"), 7)
	_ = SampleHCEs(ids, dec("0.8"), 99)
	a2 := SampleHCEs(ids, dec("0.4"), 7)

	assert.Equal(t, a1, a2)
}

func TestSampleHCEs_SeedVariesSelection(t *testing.T) {
	ids := sampleIDs(20)

	distinct := make(map[string]bool)
	for seed := int64(0); seed < 20; seed++ {
		selected := SampleHCEs(ids, dec("0.5"), seed)
		key := ""
		for _, id := range ids {
			if selected[id] {
				key += id + ","
			}
		}
		distinct[key] = true
	}

	assert.Greater(t, len(distinct), 1, "different seeds should not all draw the same set")
}

func TestSampleHCEs_SampleSizeRounding(t *testing.T) {
	tests := []struct {
		name     string
		poolSize int
		rate     string
		want     int
	}{
		{"zero rate", 10, "0", 0},
		{"full rate", 10, "1", 10},
		{"exact half", 10, "0.5", 5},
		{"fractional count rounds half up", 3, "0.5", 2},
		{"small fraction rounds down", 10, "0.04", 0},
		{"rounds to nearest", 3, "0.33", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selected := SampleHCEs(sampleIDs(tt.poolSize), dec(tt.rate), 1)
			assert.Len(t, selected, tt.want)
		})
	}
}

func TestSampleHCEs_EmptyPool(t *testing.T) {
	selected := SampleHCEs(nil, dec("0.5"), 1)
	assert.Empty(t, selected, "empty HCE list yields an empty selection, not an error")
}

func TestSampleHCEs_SubsetWithoutReplacement(t *testing.T) {
	ids := sampleIDs(12)
	valid := make(map[string]bool, len(ids))
	for _, id := range ids {
		valid[id] = true
	}

	for seed := int64(0); seed < 10; seed++ {
		selected := SampleHCEs(ids, dec("0.75"), seed)
		require.Len(t, selected, 9)
		for id := range selected {
			assert.True(t, valid[id], "selected ID %s must come from the pool", id)
		}
	}
}
