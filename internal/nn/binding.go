package nn

import "github.com/born-ml/micrograd/internal/autodiff"

// Binding attaches parameters to one graph.
//
// Each parameter gets exactly one leaf per graph, however many times a
// module asks for it, so shared weights accumulate their gradient on a
// single node.
type Binding struct {
	graph  *autodiff.Graph
	leaves map[*Parameter]autodiff.Value
	order  []*Parameter
}

// NewBinding creates a binding over g.
func NewBinding(g *autodiff.Graph) *Binding {
	return &Binding{
		graph:  g,
		leaves: make(map[*Parameter]autodiff.Value),
	}
}

// Graph returns the graph parameters are bound into.
func (b *Binding) Graph() *autodiff.Graph {
	return b.graph
}

// Leaf returns the leaf for p, creating it on first use.
func (b *Binding) Leaf(p *Parameter) autodiff.Value {
	if v, ok := b.leaves[p]; ok {
		return v
	}
	v := b.graph.Leaf(p.data).WithLabel(p.name)
	b.leaves[p] = v
	b.order = append(b.order, p)
	return v
}

// Inputs creates unlabelled leaves for raw input data.
func (b *Binding) Inputs(xs []float64) []autodiff.Value {
	vals := make([]autodiff.Value, len(xs))
	for i, x := range xs {
		vals[i] = b.graph.Leaf(x)
	}
	return vals
}

// Len returns the number of bound parameters.
func (b *Binding) Len() int {
	return len(b.order)
}

// Gradients returns the leaf gradient of every bound parameter.
func (b *Binding) Gradients() map[*Parameter]float64 {
	grads := make(map[*Parameter]float64, len(b.order))
	for _, p := range b.order {
		grads[p] = b.leaves[p].Grad()
	}
	return grads
}

// Accumulate adds each bound leaf's gradient into its parameter.
//
// Parameters may be shared by bindings on other goroutines; callers must
// serialise Accumulate calls that touch the same parameters.
func (b *Binding) Accumulate() {
	for _, p := range b.order {
		p.AddGrad(b.leaves[p].Grad())
	}
}
