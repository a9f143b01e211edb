package selection

import (
	"math/rand/v2"
	"time"

	"github.com/matheuskafuri/factlet/internal/corpus"
)

// Picker draws factlets at random. It is not safe for concurrent use; each
// surface owns its own.
type Picker struct {
	rng    *rand.Rand
	corpus []corpus.Factlet
}

// NewPicker returns a picker over the full corpus. A nil rng uses a
// time-seeded generator.
func NewPicker(all []corpus.Factlet, rng *rand.Rand) *Picker {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return &Picker{rng: rng, corpus: all}
}

// NewSeededPicker is a deterministic picker.
func NewSeededPicker(all []corpus.Factlet, seed1, seed2 uint64) *Picker {
	return NewPicker(all, rand.New(rand.NewPCG(seed1, seed2)))
}

// Pick chooses a factlet from filtered that differs from excludeID whenever
// an alternative exists. An empty filtered set falls back to the full
// corpus; a single-element set is returned as is.
func (p *Picker) Pick(filtered []corpus.Factlet, excludeID string) corpus.Factlet {
	switch len(filtered) {
	case 0:
		return p.any()
	case 1:
		return filtered[0]
	}

	i := p.rng.IntN(len(filtered))
	for attempt := 1; filtered[i].ID == excludeID && attempt < len(filtered); attempt++ {
		i = p.rng.IntN(len(filtered))
	}
	if filtered[i].ID == excludeID {
		// ids are unique, so the neighbour differs
		i = (i + 1) % len(filtered)
	}
	return filtered[i]
}

// Random is an independent uniform draw with the same empty-set fallback as
// Pick. Repeats across calls are allowed.
func (p *Picker) Random(filtered []corpus.Factlet) corpus.Factlet {
	if len(filtered) == 0 {
		return p.any()
	}
	return filtered[p.rng.IntN(len(filtered))]
}

func (p *Picker) any() corpus.Factlet {
	if len(p.corpus) == 0 {
		return corpus.Factlet{}
	}
	return p.corpus[p.rng.IntN(len(p.corpus))]
}
