package autodiff

import "fmt"

// Value is a handle to a node in a Graph.
//
// Values are small and copied by value. The zero Value refers to no node;
// using it as an operand panics.
type Value struct {
	g  *Graph
	id int
}

// Graph returns the graph the value belongs to.
func (v Value) Graph() *Graph {
	return v.g
}

// ID returns the arena index of the node.
func (v Value) ID() int {
	return v.id
}

// Valid reports whether v refers to a node.
func (v Value) Valid() bool {
	return v.g != nil && v.id >= 0 && v.id < len(v.g.nodes)
}

// Data returns the forward value.
func (v Value) Data() float64 {
	return v.node().data
}

// Grad returns the accumulated gradient.
//
// It is zero until a backward pass reaches the node.
func (v Value) Grad() float64 {
	return v.node().grad
}

// Op returns the operation that produced the node.
func (v Value) Op() Op {
	return v.node().op
}

// Label returns the node label, empty if none was set.
func (v Value) Label() string {
	return v.node().label
}

// WithLabel names the node and returns v for chaining.
// Labels are display metadata only.
func (v Value) WithLabel(label string) Value {
	v.node().label = label
	return v
}

// Parents returns the nodes this one was derived from, in operand order.
func (v Value) Parents() []Value {
	n := v.node()
	parents := make([]Value, 0, 2)
	for _, p := range n.parents {
		if p != noParent {
			parents = append(parents, Value{g: v.g, id: p})
		}
	}
	return parents
}

// Add returns v + other.
func (v Value) Add(other Value) Value {
	return v.graph("+").Add(v, other)
}

// Mul returns v * other.
func (v Value) Mul(other Value) Value {
	return v.graph("*").Mul(v, other)
}

// Tanh returns tanh(v).
func (v Value) Tanh() Value {
	return v.graph("tanh").Tanh(v)
}

// Backward populates gradients for v and all of its ancestors.
// See Graph.Backward.
func (v Value) Backward() error {
	return v.graph("backward").Backward(v)
}

// String implements fmt.Stringer.
func (v Value) String() string {
	if !v.Valid() {
		return "Value(<nil>)"
	}
	n := v.node()
	if n.label == "" {
		return fmt.Sprintf("Value(%.4f, grad=%.4f)", n.data, n.grad)
	}
	return fmt.Sprintf("Value(%s: %.4f, grad=%.4f)", n.label, n.data, n.grad)
}

func (v Value) graph(op string) *Graph {
	if v.g == nil {
		panic(fmt.Sprintf("%s: zero Value receiver", op))
	}
	return v.g
}

func (v Value) node() *node {
	if !v.Valid() {
		panic(fmt.Sprintf("autodiff: invalid Value handle (id %d)", v.id))
	}
	return &v.g.nodes[v.id]
}
