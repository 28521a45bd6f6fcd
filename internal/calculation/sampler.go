package calculation

import (
	"math/rand"

	"github.com/shopspring/decimal"
)

// SampleHCEs draws a deterministic without-replacement sample of HCE IDs for
// a partial-adoption scenario. The sample size is round(len × adoptionRate),
// half up, clamped to [0, len].
//
// The generator is constructed from the supplied seed inside this call and
// never escapes it, so identical (ordering, rate, seed) inputs produce the
// identical set regardless of call order, goroutine, or process. A zero rate
// or an empty ID list yields an empty selection, not an error.
func SampleHCEs(hceIDs []string, adoptionRate decimal.Decimal, seed int64) map[string]bool {
	selected := make(map[string]bool)
	if len(hceIDs) == 0 {
		return selected
	}

	n := int(decimal.NewFromInt(int64(len(hceIDs))).Mul(adoptionRate).Round(0).IntPart())
	if n <= 0 {
		return selected
	}
	if n > len(hceIDs) {
		n = len(hceIDs)
	}

	// Partial Fisher-Yates over a copy; the first n slots are the sample.
	pool := make([]string, len(hceIDs))
	copy(pool, hceIDs)
	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < n; i++ {
		j := i + rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}

	for _, id := range pool[:n] {
		selected[id] = true
	}
	return selected
}
