package bandit

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// pcgStream decorrelates the second PCG word from the seed
const pcgStream = 0x9e3779b97f4a7c15

// posteriorSampler draws Beta variates from a generator owned by a single Expert
type posteriorSampler struct {
	src rand.Source
}

func newPosteriorSampler(seed int64) *posteriorSampler {
	return &posteriorSampler{src: rand.NewPCG(uint64(seed), pcgStream)}
}

func (p *posteriorSampler) beta(alpha, beta float64) float64 {
	return distuv.Beta{Alpha: alpha, Beta: beta, Src: p.src}.Rand()
}
