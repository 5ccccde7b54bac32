package nn

import (
	"fmt"

	"github.com/born-ml/micrograd/internal/autodiff"
)

// Neuron computes tanh(b + Σ wᵢ·xᵢ).
type Neuron struct {
	W []*Parameter
	B *Parameter
}

// NewNeuron creates a neuron with nin weights.
func NewNeuron(nin int, cfg InitConfig) *Neuron {
	return newNeuron("", nin, newInitializer(cfg))
}

func newNeuron(prefix string, nin int, in *initializer) *Neuron {
	w := make([]*Parameter, nin)
	for i := range w {
		w[i] = NewParameter(fmt.Sprintf("%sw%d", prefix, i), in.uniform())
	}
	return &Neuron{
		W: w,
		B: NewParameter(prefix+"b", in.uniform()),
	}
}

// Forward builds the neuron's output node in the binding's graph.
func (n *Neuron) Forward(b *Binding, x []autodiff.Value) (autodiff.Value, error) {
	if len(x) != len(n.W) {
		return autodiff.Value{}, fmt.Errorf("%w: neuron expects %d inputs, got %d", ErrInputSize, len(n.W), len(x))
	}
	g := b.Graph()
	sum := b.Leaf(n.B)
	for i, w := range n.W {
		sum = g.Add(sum, g.Mul(b.Leaf(w), x[i]))
	}
	return g.Tanh(sum), nil
}

// Parameters returns the weights followed by the bias.
func (n *Neuron) Parameters() []*Parameter {
	params := make([]*Parameter, 0, len(n.W)+1)
	params = append(params, n.W...)
	return append(params, n.B)
}

// Layer is a set of neurons reading the same inputs.
type Layer struct {
	Neurons []*Neuron
}

// NewLayer creates a layer of nout neurons with nin inputs each.
func NewLayer(nin, nout int, cfg InitConfig) *Layer {
	return newLayer("", nin, nout, newInitializer(cfg))
}

func newLayer(prefix string, nin, nout int, in *initializer) *Layer {
	neurons := make([]*Neuron, nout)
	for i := range neurons {
		neurons[i] = newNeuron(fmt.Sprintf("%sn%d.", prefix, i), nin, in)
	}
	return &Layer{Neurons: neurons}
}

// Forward returns one output per neuron.
func (l *Layer) Forward(b *Binding, x []autodiff.Value) ([]autodiff.Value, error) {
	outputs := make([]autodiff.Value, len(l.Neurons))
	for i, neuron := range l.Neurons {
		out, err := neuron.Forward(b, x)
		if err != nil {
			return nil, err
		}
		outputs[i] = out
	}
	return outputs, nil
}

// Parameters returns the parameters of every neuron in order.
func (l *Layer) Parameters() []*Parameter {
	var params []*Parameter
	for _, neuron := range l.Neurons {
		params = append(params, neuron.Parameters()...)
	}
	return params
}

// MLP is a multi-layer perceptron of tanh neurons.
type MLP struct {
	Layers []*Layer
	nin    int
}

// NewMLP creates a network with nin inputs and one layer per entry of sizes.
//
// Example:
//
//	// 1 input, three hidden layers, 1 output
//	mlp, err := nn.NewMLP(1, []int{3, 4, 4, 1}, nn.InitConfig{Seed: 42})
func NewMLP(nin int, sizes []int, cfg InitConfig) (*MLP, error) {
	if nin <= 0 || len(sizes) == 0 {
		return nil, fmt.Errorf("%w: %d inputs, layers %v", ErrInvalidShape, nin, sizes)
	}
	in := newInitializer(cfg)
	layers := make([]*Layer, len(sizes))

	// current size represents the number of inputs for the next layer
	current := nin
	for i, size := range sizes {
		if size <= 0 {
			return nil, fmt.Errorf("%w: layer %d has %d neurons", ErrInvalidShape, i, size)
		}
		layers[i] = newLayer(fmt.Sprintf("l%d.", i), current, size, in)
		current = size
	}
	return &MLP{Layers: layers, nin: nin}, nil
}

// NumInputs returns the input width.
func (m *MLP) NumInputs() int {
	return m.nin
}

// LayerSizes returns the number of neurons in each layer.
func (m *MLP) LayerSizes() []int {
	sizes := make([]int, len(m.Layers))
	for i, l := range m.Layers {
		sizes[i] = len(l.Neurons)
	}
	return sizes
}

// Forward chains every layer.
func (m *MLP) Forward(b *Binding, x []autodiff.Value) ([]autodiff.Value, error) {
	if len(x) != m.nin {
		return nil, fmt.Errorf("%w: mlp expects %d inputs, got %d", ErrInputSize, m.nin, len(x))
	}
	var err error
	for _, layer := range m.Layers {
		if x, err = layer.Forward(b, x); err != nil {
			return nil, err
		}
	}
	return x, nil
}

// Predict evaluates the network on raw inputs using a throwaway graph.
func (m *MLP) Predict(x []float64) ([]float64, error) {
	b := NewBinding(autodiff.NewGraph())
	out, err := m.Forward(b, b.Inputs(x))
	if err != nil {
		return nil, err
	}
	ys := make([]float64, len(out))
	for i, v := range out {
		ys[i] = v.Data()
	}
	return ys, nil
}

// Parameters returns the parameters of every layer in order.
func (m *MLP) Parameters() []*Parameter {
	var params []*Parameter
	for _, layer := range m.Layers {
		params = append(params, layer.Parameters()...)
	}
	return params
}
