// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"io"

	"github.com/google/uuid"

	"github.com/born-ml/micrograd/autodiff"
	"github.com/born-ml/micrograd/internal/nn"
)

// Module is anything that owns trainable parameters.
type Module = nn.Module

// ZeroGrad clears the gradient of every parameter of m.
func ZeroGrad(m Module) {
	nn.ZeroGrad(m)
}

// Parameter is a trainable scalar that outlives individual graphs.
type Parameter = nn.Parameter

// NewParameter creates a parameter with the given name and initial value.
func NewParameter(name string, data float64) *Parameter {
	return nn.NewParameter(name, data)
}

// Binding maps parameters to leaves of one graph.
type Binding = nn.Binding

// NewBinding creates a binding for g.
func NewBinding(g *autodiff.Graph) *Binding {
	return nn.NewBinding(g)
}

// InitConfig controls weight initialization.
type InitConfig = nn.InitConfig

// Layers

// Neuron computes tanh(b + Σ wᵢxᵢ).
type Neuron = nn.Neuron

// NewNeuron creates a neuron with nin weights.
func NewNeuron(nin int, cfg InitConfig) *Neuron {
	return nn.NewNeuron(nin, cfg)
}

// Layer is a row of neurons sharing the same inputs.
type Layer = nn.Layer

// NewLayer creates a layer of nout neurons with nin inputs each.
func NewLayer(nin, nout int, cfg InitConfig) *Layer {
	return nn.NewLayer(nin, nout, cfg)
}

// MLP is a stack of fully connected tanh layers.
type MLP = nn.MLP

// NewMLP creates a network with nin inputs and one layer per entry of sizes.
//
// Example:
//
//	model, err := nn.NewMLP(1, []int{3, 4, 4, 1}, nn.InitConfig{Seed: 42})
func NewMLP(nin int, sizes []int, cfg InitConfig) (*MLP, error) {
	return nn.NewMLP(nin, sizes, cfg)
}

// Loss functions

// SquaredError returns (out - target)².
func SquaredError(out autodiff.Value, target float64) autodiff.Value {
	return nn.SquaredError(out, target)
}

// MSELoss returns the summed squared error of outs against targets.
func MSELoss(outs []autodiff.Value, targets []float64) (autodiff.Value, error) {
	return nn.MSELoss(outs, targets)
}

// Checkpoints

// CheckpointVersion is the current checkpoint format version.
const CheckpointVersion = nn.CheckpointVersion

// Checkpoint is a model snapshot plus training metadata.
type Checkpoint = nn.Checkpoint

// NeuronState is the serialised form of one neuron.
type NeuronState = nn.NeuronState

// NewCheckpoint snapshots m.
func NewCheckpoint(m *MLP, runID uuid.UUID, epoch int, loss float64) (*Checkpoint, error) {
	return nn.NewCheckpoint(m, runID, epoch, loss)
}

// ReadCheckpoint decodes and validates a checkpoint.
func ReadCheckpoint(r io.Reader) (*Checkpoint, error) {
	return nn.ReadCheckpoint(r)
}

// SaveFile writes a checkpoint of m to path.
func SaveFile(path string, m *MLP, runID uuid.UUID, epoch int, loss float64) (*Checkpoint, error) {
	return nn.SaveFile(path, m, runID, epoch, loss)
}

// LoadFile reads the checkpoint at path and rebuilds its network.
func LoadFile(path string) (*MLP, *Checkpoint, error) {
	return nn.LoadFile(path)
}

// Errors

var (
	ErrInvalidShape       = nn.ErrInvalidShape
	ErrInputSize          = nn.ErrInputSize
	ErrInvalidCheckpoint  = nn.ErrInvalidCheckpoint
	ErrChecksumMismatch   = nn.ErrChecksumMismatch
	ErrUnsupportedVersion = nn.ErrUnsupportedVersion
)
