// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides scalar reverse-mode automatic differentiation.
//
// Expressions are recorded as nodes of a Graph. Each node holds a forward
// value and an accumulated gradient; Backward walks the graph in reverse
// topological order and applies the chain rule once per node.
//
// Example:
//
//	import "github.com/born-ml/micrograd/autodiff"
//
//	func main() {
//	    g := autodiff.NewGraph()
//	    x := g.Leaf(2.0).WithLabel("x")
//	    w := g.Leaf(-3.0).WithLabel("w")
//	    b := g.Leaf(6.8).WithLabel("b")
//
//	    out := x.Mul(w).Add(b).Tanh()
//	    if err := out.Backward(); err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(x.Grad(), w.Grad(), b.Grad())
//	}
package autodiff

import (
	"io"

	"github.com/born-ml/micrograd/internal/autodiff"
)

// Graph is an arena of scalar nodes.
type Graph = autodiff.Graph

// Value is a handle to a node in a Graph.
type Value = autodiff.Value

// Op identifies the primitive that produced a node.
type Op = autodiff.Op

// Operation kinds.
const (
	OpLeaf = autodiff.OpLeaf
	OpAdd  = autodiff.OpAdd
	OpMul  = autodiff.OpMul
	OpTanh = autodiff.OpTanh
)

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return autodiff.NewGraph()
}

// GraphCycleError reports a cycle found during a backward pass.
type GraphCycleError = autodiff.GraphCycleError

// ErrGraphCycle is matched by every *GraphCycleError via errors.Is.
var ErrGraphCycle = autodiff.ErrGraphCycle

// Render writes the sub-graph rooted at root as an indented tree.
func Render(w io.Writer, root Value) error {
	return autodiff.Render(w, root)
}
