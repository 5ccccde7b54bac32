// Package autodiff implements reverse-mode automatic differentiation over
// scalar values.
//
// A Graph is an arena of nodes addressed by index. Leaves are created with
// Graph.Leaf and combined with Add, Mul and Tanh; every derived node computes
// its value eagerly and records its parents. Backward walks the sub-DAG of a
// root in reverse topological order and accumulates the exact partial
// derivative of the root into every reachable node.
//
// Usage:
//
//	g := autodiff.NewGraph()
//	x := g.Leaf(2.0)
//	w := g.Leaf(-3.0)
//	y := x.Mul(w).Tanh()
//	if err := y.Backward(); err != nil {
//	    return err
//	}
//	dx := x.Grad() // ∂y/∂x
//
// A Graph is not safe for concurrent use. Independent computations should
// build independent graphs.
package autodiff

import "fmt"

// noParent marks an unused parent slot.
const noParent = -1

// node is a single arena entry.
type node struct {
	op      Op
	data    float64 // forward value, fixed at construction
	grad    float64 // accumulated ∂root/∂node
	parents [2]int  // arena indices, noParent when unused
	label   string
}

// Graph owns every node created for one computation.
//
// Nodes are appended in dependency order: a node's parents always have
// smaller indices. The graph lives as long as any Value handle into it.
type Graph struct {
	nodes []node
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes: make([]node, 0, 32), // Pre-allocate for small expressions
	}
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Leaf creates an input node holding x.
func (g *Graph) Leaf(x float64) Value {
	return g.push(node{op: OpLeaf, data: x, parents: [2]int{noParent, noParent}})
}

// Add creates a node for a + b.
func (g *Graph) Add(a, b Value) Value {
	return g.binary(OpAdd, a, b)
}

// Mul creates a node for a * b.
func (g *Graph) Mul(a, b Value) Value {
	return g.binary(OpMul, a, b)
}

// Tanh creates a node for tanh(a).
func (g *Graph) Tanh(a Value) Value {
	g.own("tanh", a)
	return g.push(node{
		op:      OpTanh,
		data:    OpTanh.forward(g.nodes[a.id].data, 0),
		parents: [2]int{a.id, noParent},
	})
}

// ZeroGrad resets the gradient of every node in the graph to zero.
//
// Call it before reusing a graph for another backward pass; without it,
// gradients from consecutive passes add up.
func (g *Graph) ZeroGrad() {
	for i := range g.nodes {
		g.nodes[i].grad = 0
	}
}

func (g *Graph) binary(op Op, a, b Value) Value {
	g.own(op.String(), a)
	g.own(op.String(), b)
	return g.push(node{
		op:      op,
		data:    op.forward(g.nodes[a.id].data, g.nodes[b.id].data),
		parents: [2]int{a.id, b.id},
	})
}

func (g *Graph) push(n node) Value {
	g.nodes = append(g.nodes, n)
	return Value{g: g, id: len(g.nodes) - 1}
}

// own panics if v does not belong to g. Mixing graphs is a construction bug.
func (g *Graph) own(op string, v Value) {
	if v.g == nil {
		panic(fmt.Sprintf("%s: zero Value operand", op))
	}
	if v.g != g {
		panic(fmt.Sprintf("%s: operand belongs to a different graph", op))
	}
}
