package autodiff

import (
	"fmt"
	"math"
)

// Op identifies the primitive that produced a node.
//
// The set is closed: every Op defines a forward rule and a backward rule,
// and both dispatch through exhaustive switches below.
//
// Supported operations:
//   - OpLeaf: input node, no parents
//   - OpAdd:  a + b        (d/da = 1, d/db = 1)
//   - OpMul:  a * b        (d/da = b, d/db = a)
//   - OpTanh: tanh(a)      (d/da = 1 - tanh²(a), taken from the node's own output)
type Op uint8

// Operation kinds.
const (
	OpLeaf Op = iota
	OpAdd
	OpMul
	OpTanh
)

// String returns the operator symbol used when rendering graphs.
func (op Op) String() string {
	switch op {
	case OpLeaf:
		return "leaf"
	case OpAdd:
		return "+"
	case OpMul:
		return "*"
	case OpTanh:
		return "tanh"
	default:
		return fmt.Sprintf("Op(%d)", uint8(op))
	}
}

// Arity returns the number of parents a node of this kind has.
func (op Op) Arity() int {
	switch op {
	case OpLeaf:
		return 0
	case OpTanh:
		return 1
	case OpAdd, OpMul:
		return 2
	default:
		panic(fmt.Sprintf("arity: unknown op %d", uint8(op)))
	}
}

// forward computes the node value from its parent values.
// b is ignored for unary operations.
func (op Op) forward(a, b float64) float64 {
	switch op {
	case OpAdd:
		return a + b
	case OpMul:
		return a * b
	case OpTanh:
		return math.Tanh(a)
	default:
		panic(fmt.Sprintf("forward: op %s has no forward rule", op))
	}
}

// backward returns the gradient contributions to the node's parents given
// the node's own gradient. Contributions for unused parent slots are zero.
func (op Op) backward(n *node, parentData [2]float64, grad float64) (da, db float64) {
	switch op {
	case OpLeaf:
		return 0, 0
	case OpAdd:
		return grad, grad
	case OpMul:
		return grad * parentData[1], grad * parentData[0]
	case OpTanh:
		return grad * (1 - n.data*n.data), 0
	default:
		panic(fmt.Sprintf("backward: op %s has no backward rule", op))
	}
}
