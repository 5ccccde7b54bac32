// Package optim implements optimization algorithms for training neural networks.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation
//
// Optimizers read the gradients accumulated on each nn.Parameter.
//
// Example usage:
//
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.01})
//
//	for epoch := range epochs {
//	    g := autodiff.NewGraph()
//	    b := nn.NewBinding(g)
//	    out, _ := model.Forward(b, b.Inputs(x))
//	    loss, _ := nn.MSELoss(out, y)
//	    _ = loss.Backward()
//	    b.Accumulate()
//
//	    optimizer.Step()
//	    optimizer.ZeroGrad()
//	}
package optim

import (
	"fmt"

	"github.com/born-ml/micrograd/internal/nn"
)

// Optimizer is the base interface for all optimization algorithms.
//
// All optimizers must implement:
//   - Step: Apply gradient updates to parameters
//   - ZeroGrad: Clear gradients before next iteration
//   - GetLR: Get current learning rate (for monitoring/scheduling)
type Optimizer interface {
	// Step applies the accumulated parameter gradients.
	Step()

	// ZeroGrad clears all parameter gradients.
	//
	// This should be called after each Step to prevent gradient
	// accumulation across iterations.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float64
}

// Config is the base configuration for all optimizers.
type Config struct {
	LR float64 // Learning rate
}

// New creates an optimizer by name ("sgd" or "adam").
func New(name string, params []*nn.Parameter, lr, momentum float64) (Optimizer, error) {
	switch name {
	case "", "sgd":
		return NewSGD(params, SGDConfig{LR: lr, Momentum: momentum}), nil
	case "adam":
		return NewAdam(params, AdamConfig{LR: lr}), nil
	default:
		return nil, fmt.Errorf("optim: unknown optimizer %q", name)
	}
}

func zeroGrad(params []*nn.Parameter) {
	for _, p := range params {
		p.ZeroGrad()
	}
}
