package nn

// Parameter represents a trainable scalar in a neural network.
//
// Parameters hold their data across graphs; a Binding creates one leaf per
// parameter in each graph and feeds its gradient back here.
//
// Example:
//
//	w := nn.NewParameter("w0", 0.5)
//	g := autodiff.NewGraph()
//	b := nn.NewBinding(g)
//	y := b.Leaf(w).Tanh()
//	_ = y.Backward()
//	b.Accumulate()
//	dw := w.Grad()
type Parameter struct {
	name string  // Parameter name (e.g., "l0.n1.w2")
	data float64 // Current value
	grad float64 // Accumulated gradient
}

// NewParameter creates a new trainable parameter.
func NewParameter(name string, data float64) *Parameter {
	return &Parameter{name: name, data: data}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Data returns the current value.
func (p *Parameter) Data() float64 {
	return p.data
}

// SetData replaces the current value. Optimizers call this on Step.
func (p *Parameter) SetData(x float64) {
	p.data = x
}

// Grad returns the accumulated gradient.
func (p *Parameter) Grad() float64 {
	return p.grad
}

// AddGrad adds g to the accumulated gradient.
func (p *Parameter) AddGrad(g float64) {
	p.grad += g
}

// ZeroGrad clears the gradient.
//
// This should be called before each training iteration to avoid
// accumulating gradients from previous iterations.
func (p *Parameter) ZeroGrad() {
	p.grad = 0
}
