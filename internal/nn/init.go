package nn

import "math/rand/v2"

// InitConfig controls parameter initialisation.
type InitConfig struct {
	Seed uint64 // PCG seed; equal seeds give identical models
}

// initializer draws parameter values uniformly from [-1, 1).
type initializer struct {
	rng *rand.Rand
}

func newInitializer(cfg InitConfig) *initializer {
	//nolint:gosec // Using math/rand for weight initialization (not security-critical)
	return &initializer{rng: rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))}
}

func (in *initializer) uniform() float64 {
	return in.rng.Float64()*2 - 1
}
