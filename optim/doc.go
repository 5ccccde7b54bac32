// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimization algorithms for training neural networks.
//
// # Overview
//
// This package contains:
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation with bias correction
//   - Optimizer interface for custom optimizers
//
// Optimizers read the gradient stored on each nn.Parameter, so gradients
// must be accumulated into the parameters (nn.Binding.Accumulate) before
// calling Step.
//
// # Training Loop Pattern
//
//	model, _ := nn.NewMLP(1, []int{3, 4, 4, 1}, nn.InitConfig{Seed: 42})
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.01})
//
//	for epoch := range numEpochs {
//	    for _, s := range samples {
//	        g := autodiff.NewGraph()
//	        b := nn.NewBinding(g)
//	        out, _ := model.Forward(b, b.Inputs(s.Input))
//	        loss, _ := nn.MSELoss(out, s.Target)
//	        _ = loss.Backward()
//	        b.Accumulate()
//	    }
//
//	    optimizer.Step()
//	    optimizer.ZeroGrad()
//	}
//
// # Optimizers
//
// SGD:
//
//	optimizer := optim.NewSGD(
//	    model.Parameters(),
//	    optim.SGDConfig{
//	        LR:       0.01,
//	        Momentum: 0.9,
//	    },
//	)
//
// Adam:
//
//	optimizer := optim.NewAdam(
//	    model.Parameters(),
//	    optim.AdamConfig{
//	        LR:    0.001,
//	        Betas: [2]float64{0.9, 0.999},
//	        Eps:   1e-8,
//	    },
//	)
package optim
