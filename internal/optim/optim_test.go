package optim_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/micrograd/internal/autodiff"
	"github.com/born-ml/micrograd/internal/nn"
	"github.com/born-ml/micrograd/internal/optim"
)

// TestSGD_SimpleUpdate tests SGD without momentum.
func TestSGD_SimpleUpdate(t *testing.T) {
	param := nn.NewParameter("x", 2.0)
	optimizer := optim.NewSGD([]*nn.Parameter{param}, optim.SGDConfig{LR: 0.1})

	param.AddGrad(1.0)
	optimizer.Step()

	// x_new = x_old - lr * grad = 2.0 - 0.1 * 1.0 = 1.9
	assert.InDelta(t, 1.9, param.Data(), 1e-12)
}

// TestSGD_WithMomentum tests SGD with momentum.
func TestSGD_WithMomentum(t *testing.T) {
	param := nn.NewParameter("x", 1.0)
	optimizer := optim.NewSGD([]*nn.Parameter{param}, optim.SGDConfig{LR: 0.1, Momentum: 0.9})

	// Step 1: v = 1.0, x = 1.0 - 0.1 = 0.9
	param.AddGrad(1.0)
	optimizer.Step()
	optimizer.ZeroGrad()
	assert.InDelta(t, 0.9, param.Data(), 1e-12)

	// Step 2: v = 0.9*1.0 + 1.0 = 1.9, x = 0.9 - 0.19 = 0.71
	param.AddGrad(1.0)
	optimizer.Step()
	assert.InDelta(t, 0.71, param.Data(), 1e-12)
}

// TestSGD_Defaults tests the default learning rate.
func TestSGD_Defaults(t *testing.T) {
	optimizer := optim.NewSGD(nil, optim.SGDConfig{})
	assert.Equal(t, 0.01, optimizer.GetLR())

	optimizer.SetLR(0.5)
	assert.Equal(t, 0.5, optimizer.GetLR())
}

// TestAdam_FirstStep tests that the first bias-corrected step moves by ~lr.
func TestAdam_FirstStep(t *testing.T) {
	param := nn.NewParameter("x", 1.0)
	optimizer := optim.NewAdam([]*nn.Parameter{param}, optim.AdamConfig{LR: 0.01})

	param.AddGrad(4.0)
	optimizer.Step()

	// m_hat = g, v_hat = g², update = lr * g / (|g| + eps) ≈ lr.
	assert.InDelta(t, 0.99, param.Data(), 1e-8)
	assert.Equal(t, 1, optimizer.GetStep())
}

// TestAdam_Defaults tests default hyperparameters.
func TestAdam_Defaults(t *testing.T) {
	optimizer := optim.NewAdam(nil, optim.AdamConfig{})
	assert.Equal(t, 0.001, optimizer.GetLR())
}

// TestZeroGrad tests that optimizers clear parameter gradients.
func TestZeroGrad(t *testing.T) {
	params := []*nn.Parameter{nn.NewParameter("a", 1), nn.NewParameter("b", 2)}
	for _, p := range params {
		p.AddGrad(3)
	}

	optim.NewSGD(params, optim.SGDConfig{}).ZeroGrad()
	for _, p := range params {
		assert.Equal(t, 0.0, p.Grad())
	}
}

// TestNew tests optimizer selection by name.
func TestNew(t *testing.T) {
	opt, err := optim.New("sgd", nil, 0.05, 0.9)
	require.NoError(t, err)
	assert.IsType(t, &optim.SGD{}, opt)
	assert.Equal(t, 0.05, opt.GetLR())

	opt, err = optim.New("adam", nil, 0.002, 0)
	require.NoError(t, err)
	assert.IsType(t, &optim.Adam{}, opt)

	_, err = optim.New("rmsprop", nil, 0.1, 0)
	assert.Error(t, err)
}

// TestOptimizers_MinimizeQuadratic tests convergence on (w - 3)² through the autodiff engine.
func TestOptimizers_MinimizeQuadratic(t *testing.T) {
	tests := []struct {
		name  string
		build func(params []*nn.Parameter) optim.Optimizer
		steps int
	}{
		{"sgd", func(p []*nn.Parameter) optim.Optimizer {
			return optim.NewSGD(p, optim.SGDConfig{LR: 0.1})
		}, 200},
		{"sgd_momentum", func(p []*nn.Parameter) optim.Optimizer {
			return optim.NewSGD(p, optim.SGDConfig{LR: 0.05, Momentum: 0.9})
		}, 300},
		{"adam", func(p []*nn.Parameter) optim.Optimizer {
			return optim.NewAdam(p, optim.AdamConfig{LR: 0.1})
		}, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := nn.NewParameter("w", 0.0)
			optimizer := tt.build([]*nn.Parameter{w})

			for i := 0; i < tt.steps; i++ {
				g := autodiff.NewGraph()
				b := nn.NewBinding(g)
				loss := nn.SquaredError(b.Leaf(w), 3.0)
				require.NoError(t, loss.Backward())
				b.Accumulate()

				optimizer.Step()
				optimizer.ZeroGrad()
			}

			assert.Less(t, math.Abs(w.Data()-3.0), 1e-2)
		})
	}
}
