package train

// Sample is one training example.
type Sample struct {
	Input  []float64 `json:"input" yaml:"input"`
	Target []float64 `json:"target" yaml:"target"`
}

// DefaultSamples returns the reference dataset: percentages normalised to
// [0, 1], labelled 1 above one half and -1 otherwise.
func DefaultSamples() []Sample {
	return []Sample{
		{Input: []float64{0.75}, Target: []float64{1}},
		{Input: []float64{0.25}, Target: []float64{-1}},
		{Input: []float64{1.0}, Target: []float64{1}},
		{Input: []float64{0.1}, Target: []float64{-1}},
		{Input: []float64{0.505}, Target: []float64{1}},
		{Input: []float64{0.495}, Target: []float64{-1}},
		{Input: []float64{0.8}, Target: []float64{1}},
		{Input: []float64{0.3}, Target: []float64{-1}},
	}
}
