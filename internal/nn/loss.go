package nn

import (
	"fmt"

	"github.com/born-ml/micrograd/internal/autodiff"
)

// SquaredError returns (out - target)² built from Add and Mul only:
// d = out + (-1·target), loss = d·d.
func SquaredError(out autodiff.Value, target float64) autodiff.Value {
	g := out.Graph()
	d := g.Add(out, g.Leaf(-target))
	return g.Mul(d, d)
}

// MSELoss sums the squared errors of a prediction against its targets.
//
// The sum (not the mean) matches the per-sample loss used during training,
// so gradients scale with the number of outputs.
func MSELoss(outs []autodiff.Value, targets []float64) (autodiff.Value, error) {
	if len(outs) == 0 || len(outs) != len(targets) {
		return autodiff.Value{}, fmt.Errorf("%w: %d outputs, %d targets", ErrInputSize, len(outs), len(targets))
	}
	g := outs[0].Graph()
	loss := SquaredError(outs[0], targets[0])
	for i := 1; i < len(outs); i++ {
		loss = g.Add(loss, SquaredError(outs[i], targets[i]))
	}
	return loss, nil
}
