package train

import (
	"bytes"
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/micrograd/internal/autodiff"
	"github.com/born-ml/micrograd/internal/logging"
	"github.com/born-ml/micrograd/internal/nn"
)

// recorder is an optimizer that captures gradients instead of applying them.
type recorder struct {
	params []*nn.Parameter
	grads  [][]float64
}

func (r *recorder) Step() {
	g := make([]float64, len(r.params))
	for i, p := range r.params {
		g[i] = p.Grad()
	}
	r.grads = append(r.grads, g)
}

func (r *recorder) ZeroGrad() {
	for _, p := range r.params {
		p.ZeroGrad()
	}
}

func (r *recorder) GetLR() float64 { return 0 }

func testConfig(workers int) Config {
	cfg := DefaultConfig()
	cfg.Model.Layers = []int{3, 1}
	cfg.Model.Seed = 7
	cfg.Epochs = 5
	cfg.Parallel = ParallelConfig{Enabled: workers > 1, Workers: workers}
	return cfg
}

func newTrainer(t *testing.T, cfg Config, opts ...Option) (*Trainer, *nn.MLP) {
	t.Helper()
	model, err := NewModel(cfg)
	require.NoError(t, err)
	tr, err := New(model, cfg, opts...)
	require.NoError(t, err)
	return tr, model
}

// TestStep_GradientsMatchSerialSum checks that folding per-sample graphs
// gives the gradient of the summed loss.
func TestStep_GradientsMatchSerialSum(t *testing.T) {
	cfg := testConfig(4)
	samples := DefaultSamples()
	model, err := NewModel(cfg)
	require.NoError(t, err)

	// Reference: one graph per sample, backward, accumulate in order.
	want := make([]float64, len(model.Parameters()))
	var wantLoss float64
	for _, s := range samples {
		b := nn.NewBinding(autodiff.NewGraph())
		out, err := model.Forward(b, b.Inputs(s.Input))
		require.NoError(t, err)
		loss, err := nn.MSELoss(out, s.Target)
		require.NoError(t, err)
		require.NoError(t, loss.Backward())
		wantLoss += loss.Data()
		grads := b.Gradients()
		for i, p := range model.Parameters() {
			want[i] += grads[p]
		}
	}

	rec := &recorder{params: model.Parameters()}
	tr, err := New(model, cfg, WithOptimizer(rec))
	require.NoError(t, err)

	loss, err := tr.Step(context.Background(), samples)
	require.NoError(t, err)
	assert.Equal(t, wantLoss, loss)
	require.Len(t, rec.grads, 1)
	assert.Equal(t, want, rec.grads[0])

	// ZeroGrad ran after the step.
	for _, p := range model.Parameters() {
		assert.Equal(t, 0.0, p.Grad())
	}
}

// TestStep_ParallelMatchesSequential checks bit-identical results regardless of workers.
func TestStep_ParallelMatchesSequential(t *testing.T) {
	samples := DefaultSamples()

	seq, seqModel := newTrainer(t, testConfig(1))
	par, parModel := newTrainer(t, testConfig(8))

	for i := 0; i < 3; i++ {
		l1, err := seq.Step(context.Background(), samples)
		require.NoError(t, err)
		l2, err := par.Step(context.Background(), samples)
		require.NoError(t, err)
		assert.Equal(t, l1, l2)
	}

	for i, p := range seqModel.Parameters() {
		assert.Equal(t, p.Data(), parModel.Parameters()[i].Data(), p.Name())
	}
}

func TestStep_Evaluate(t *testing.T) {
	tr, _ := newTrainer(t, testConfig(2))
	samples := DefaultSamples()

	before, err := tr.Evaluate(context.Background(), samples)
	require.NoError(t, err)

	loss, err := tr.Step(context.Background(), samples)
	require.NoError(t, err)
	assert.InDelta(t, before, loss, 1e-12)
}

func TestStep_BadSample(t *testing.T) {
	tr, _ := newTrainer(t, testConfig(2))

	_, err := tr.Step(context.Background(), []Sample{{Input: []float64{1, 2}, Target: []float64{1}}})
	assert.ErrorIs(t, err, nn.ErrInputSize)

	_, err = tr.Evaluate(context.Background(), []Sample{{Input: []float64{1}, Target: []float64{1, 2}}})
	assert.ErrorIs(t, err, nn.ErrInputSize)
}

func TestFit_ReducesLoss(t *testing.T) {
	cfg := testConfig(4)
	cfg.Model.Layers = []int{4, 1}
	cfg.Epochs = 100
	cfg.Optimizer.LR = 0.05
	cfg.LogEvery = 25

	var logs bytes.Buffer
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	tr, _ := newTrainer(t, cfg,
		WithLogger(logging.New(logging.Config{Output: &logs})),
		WithMetrics(metrics),
	)

	history, err := tr.Fit(context.Background(), DefaultSamples())
	require.NoError(t, err)
	require.Len(t, history.Losses, 100)
	assert.Less(t, history.Final(), history.Losses[0])

	assert.Equal(t, 100.0, testutil.ToFloat64(metrics.steps))
	assert.Equal(t, history.Final(), testutil.ToFloat64(metrics.loss))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.backward))
	assert.Contains(t, logs.String(), "training finished")
	assert.Contains(t, logs.String(), "epoch=25")
}

func TestFit_Canceled(t *testing.T) {
	tr, _ := newTrainer(t, testConfig(2))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	history, err := tr.Fit(ctx, DefaultSamples())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, history.Losses)
	assert.Equal(t, 0.0, history.Final())
}

func TestNew_UnknownOptimizer(t *testing.T) {
	cfg := testConfig(1)
	cfg.Optimizer.Name = "lbfgs"
	model, err := NewModel(cfg)
	require.NoError(t, err)

	_, err = New(model, cfg)
	assert.Error(t, err)
}
