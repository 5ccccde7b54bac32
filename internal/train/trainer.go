// Package train runs the supervised training loop for nn.MLP models.
//
// Every sample gets its own autodiff graph per step. Per-sample forward and
// backward passes run in parallel; their parameter gradients are folded into
// the shared parameters serially before the optimizer step, so no node or
// parameter is written by two passes at once.
package train

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/born-ml/micrograd/internal/autodiff"
	"github.com/born-ml/micrograd/internal/logging"
	"github.com/born-ml/micrograd/internal/nn"
	"github.com/born-ml/micrograd/internal/optim"
	"github.com/born-ml/micrograd/internal/parallel"
)

// History holds the loss of every completed epoch.
type History struct {
	Losses []float64
}

// Final returns the last recorded loss, 0 if none.
func (h History) Final() float64 {
	if len(h.Losses) == 0 {
		return 0
	}
	return h.Losses[len(h.Losses)-1]
}

// Trainer fits an MLP to samples.
type Trainer struct {
	model     *nn.MLP
	optimizer optim.Optimizer
	cfg       Config
	logger    *slog.Logger
	metrics   *Metrics
}

// Option configures a Trainer.
type Option func(*Trainer)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(t *Trainer) {
		t.logger = l
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *Metrics) Option {
	return func(t *Trainer) {
		t.metrics = m
	}
}

// WithOptimizer overrides the optimizer built from the config.
func WithOptimizer(o optim.Optimizer) Option {
	return func(t *Trainer) {
		t.optimizer = o
	}
}

// New creates a trainer for model.
func New(model *nn.MLP, cfg Config, opts ...Option) (*Trainer, error) {
	t := &Trainer{
		model:  model,
		cfg:    cfg,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.optimizer == nil {
		o, err := optim.New(cfg.Optimizer.Name, model.Parameters(), cfg.Optimizer.LR, cfg.Optimizer.Momentum)
		if err != nil {
			return nil, fmt.Errorf("train: %w", err)
		}
		t.optimizer = o
	}
	return t, nil
}

// NewModel builds the MLP described by cfg.Model.
func NewModel(cfg Config) (*nn.MLP, error) {
	return nn.NewMLP(cfg.Model.Inputs, cfg.Model.Layers, nn.InitConfig{Seed: cfg.Model.Seed})
}

// sampleResult is the outcome of one per-sample backward pass.
type sampleResult struct {
	loss  float64
	grads map[*nn.Parameter]float64
}

// Step runs one optimizer step over samples and returns the summed loss
// measured before the update.
func (t *Trainer) Step(ctx context.Context, samples []Sample) (float64, error) {
	results := make([]sampleResult, len(samples))

	err := parallel.For(ctx, len(samples), func(_ context.Context, i int) error {
		r, err := t.backward(samples[i])
		if err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
		results[i] = r
		return nil
	}, t.cfg.parallelConfig())
	if err != nil {
		return 0, err
	}

	// Fold gradients serially, in sample order.
	var loss float64
	for _, r := range results {
		loss += r.loss
		for p, g := range r.grads {
			p.AddGrad(g)
		}
	}

	t.optimizer.Step()
	t.optimizer.ZeroGrad()
	t.metrics.observeStep(loss)
	return loss, nil
}

// backward builds a fresh graph for s and returns its loss and parameter
// gradients. It reads parameter data but never writes parameters.
func (t *Trainer) backward(s Sample) (sampleResult, error) {
	g := autodiff.NewGraph()
	b := nn.NewBinding(g)

	out, err := t.model.Forward(b, b.Inputs(s.Input))
	if err != nil {
		return sampleResult{}, err
	}
	loss, err := nn.MSELoss(out, s.Target)
	if err != nil {
		return sampleResult{}, err
	}

	start := time.Now()
	if err := loss.Backward(); err != nil {
		return sampleResult{}, err
	}
	t.metrics.observeBackward(time.Since(start), g.Len())

	return sampleResult{loss: loss.Data(), grads: b.Gradients()}, nil
}

// Fit runs cfg.Epochs steps over samples.
//
// Cancellation is checked between steps; the history of completed epochs is
// returned together with the context error.
func (t *Trainer) Fit(ctx context.Context, samples []Sample) (History, error) {
	history := History{Losses: make([]float64, 0, t.cfg.Epochs)}
	started := time.Now()

	t.logger.Info("training started",
		"epochs", t.cfg.Epochs,
		"samples", len(samples),
		"parameters", len(t.model.Parameters()),
		"lr", t.optimizer.GetLR(),
	)

	for epoch := 1; epoch <= t.cfg.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			t.logger.Warn("training interrupted", "epoch", epoch, "error", err)
			return history, err
		}

		loss, err := t.Step(ctx, samples)
		if err != nil {
			t.logger.Error("training step failed", "epoch", epoch, "error", err)
			return history, fmt.Errorf("epoch %d: %w", epoch, err)
		}
		history.Losses = append(history.Losses, loss)

		if t.cfg.LogEvery > 0 && (epoch%t.cfg.LogEvery == 0 || epoch == 1) {
			t.logger.Info("epoch", "epoch", epoch, "loss", loss)
		} else {
			t.logger.Debug("epoch", "epoch", epoch, "loss", loss)
		}
	}

	t.logger.Info("training finished",
		"loss", history.Final(),
		"duration", time.Since(started),
	)
	return history, nil
}

// Evaluate returns the summed loss over samples without touching gradients.
func (t *Trainer) Evaluate(ctx context.Context, samples []Sample) (float64, error) {
	losses := make([]float64, len(samples))

	err := parallel.For(ctx, len(samples), func(_ context.Context, i int) error {
		ys, err := t.model.Predict(samples[i].Input)
		if err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
		if len(ys) != len(samples[i].Target) {
			return fmt.Errorf("sample %d: %w: %d outputs, %d targets",
				i, nn.ErrInputSize, len(ys), len(samples[i].Target))
		}
		for j, y := range ys {
			d := y - samples[i].Target[j]
			losses[i] += d * d
		}
		return nil
	}, t.cfg.parallelConfig())
	if err != nil {
		return 0, err
	}

	var total float64
	for _, l := range losses {
		total += l
	}
	return total, nil
}
