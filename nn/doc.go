// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides multi-layer perceptrons built on scalar autodiff.
//
// # Overview
//
// This package contains:
//   - Parameter: a trainable scalar that lives across graphs
//   - Neuron, Layer, MLP: fully connected tanh networks
//   - Binding: one graph leaf per parameter for a forward pass
//   - Loss functions: SquaredError, MSELoss
//   - Checkpoints: JSON snapshots with a SHA-256 weight checksum
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/micrograd/autodiff"
//	    "github.com/born-ml/micrograd/nn"
//	)
//
//	func main() {
//	    model, _ := nn.NewMLP(1, []int{3, 4, 4, 1}, nn.InitConfig{Seed: 42})
//
//	    g := autodiff.NewGraph()
//	    b := nn.NewBinding(g)
//	    out, _ := model.Forward(b, b.Inputs([]float64{0.75}))
//	    loss, _ := nn.MSELoss(out, []float64{1})
//
//	    _ = loss.Backward()
//	    b.Accumulate() // copy leaf gradients into the parameters
//	}
//
// # Concurrency
//
// Parameters are never touched by Backward. Build one graph and one Binding
// per goroutine, then fold their Gradients into the parameters from a single
// goroutine.
package nn
