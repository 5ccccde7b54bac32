// Package nn implements scalar neural network modules on top of autodiff.
//
// This package provides:
//   - Parameter: trainable scalar that outlives individual graphs
//   - Binding: maps parameters to leaves of one autodiff.Graph
//   - Neuron, Layer, MLP: tanh multi-layer perceptron
//   - Loss functions: SquaredError, MSELoss
//   - Checkpoint: JSON model state with checksum
//
// Every forward pass builds a fresh graph. Parameters are bound into it as
// leaves, and after Backward the Binding folds leaf gradients back into the
// parameters.
package nn

// Module is the base interface for all neural network components.
type Module interface {
	// Parameters returns all trainable parameters of this module, in a
	// stable order.
	Parameters() []*Parameter
}

// ZeroGrad clears the gradients of every parameter of m.
func ZeroGrad(m Module) {
	for _, p := range m.Parameters() {
		p.ZeroGrad()
	}
}
