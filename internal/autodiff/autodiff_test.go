package autodiff_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/micrograd/internal/autodiff"
)

// neuron holds the handles of the single-neuron example graph:
// tanh(x1*w1 + x2*w2 + b).
type neuron struct {
	x1, x2, w1, w2, b      autodiff.Value
	mul1, mul2, add1, add2 autodiff.Value
	out                    autodiff.Value
}

func buildNeuron(g *autodiff.Graph) neuron {
	var n neuron
	n.x1 = g.Leaf(2.0).WithLabel("x1")
	n.x2 = g.Leaf(0.5).WithLabel("x2")
	n.w1 = g.Leaf(-3.0).WithLabel("w1")
	n.w2 = g.Leaf(1.0).WithLabel("w2")
	n.b = g.Leaf(6.8).WithLabel("b")

	n.mul1 = g.Mul(n.x1, n.w1).WithLabel("x1*w1")
	n.mul2 = g.Mul(n.x2, n.w2).WithLabel("x2*w2")
	n.add1 = g.Add(n.mul1, n.mul2).WithLabel("sum")
	n.add2 = g.Add(n.add1, n.b).WithLabel("pre_act")
	n.out = g.Tanh(n.add2).WithLabel("out")
	return n
}

// TestLeaf tests leaf construction.
func TestLeaf(t *testing.T) {
	g := autodiff.NewGraph()
	x := g.Leaf(3.5)

	assert.Equal(t, 3.5, x.Data())
	assert.Equal(t, 0.0, x.Grad())
	assert.Equal(t, autodiff.OpLeaf, x.Op())
	assert.Empty(t, x.Parents())
	assert.Equal(t, 1, g.Len())
}

// TestForward tests eager forward values of every operation.
func TestForward(t *testing.T) {
	g := autodiff.NewGraph()
	a := g.Leaf(2.0)
	b := g.Leaf(3.0)

	sum := g.Add(a, b)
	prod := g.Mul(a, b)
	act := g.Tanh(a)

	assert.Equal(t, 5.0, sum.Data())
	assert.Equal(t, 6.0, prod.Data())
	assert.InDelta(t, math.Tanh(2.0), act.Data(), 1e-15)

	assert.Equal(t, []autodiff.Value{a, b}, sum.Parents())
	assert.Equal(t, []autodiff.Value{a}, act.Parents())

	// Operands are untouched.
	assert.Equal(t, 2.0, a.Data())
	assert.Equal(t, 0.0, a.Grad())
}

// TestMethodForms tests the Value composition methods.
func TestMethodForms(t *testing.T) {
	g := autodiff.NewGraph()
	a := g.Leaf(0.5)
	b := g.Leaf(-1.5)

	y := a.Mul(b).Add(a).Tanh()

	assert.InDelta(t, math.Tanh(0.5*-1.5+0.5), y.Data(), 1e-15)
	assert.Equal(t, autodiff.OpTanh, y.Op())
	assert.Same(t, g, y.Graph())
}

// TestOp_Arity tests the parent count of every operation kind.
func TestOp_Arity(t *testing.T) {
	tests := []struct {
		op    autodiff.Op
		arity int
		name  string
	}{
		{autodiff.OpLeaf, 0, "leaf"},
		{autodiff.OpAdd, 2, "+"},
		{autodiff.OpMul, 2, "*"},
		{autodiff.OpTanh, 1, "tanh"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.arity, tt.op.Arity())
			assert.Equal(t, tt.name, tt.op.String())
		})
	}
}

// TestBackward_Neuron tests the single-neuron example end to end.
func TestBackward_Neuron(t *testing.T) {
	g := autodiff.NewGraph()
	n := buildNeuron(g)

	assert.InDelta(t, 1.3, n.add2.Data(), 1e-12)
	assert.InDelta(t, 0.8617, n.out.Data(), 1e-4)

	require.NoError(t, n.out.Backward())

	// Reference values from PyTorch on the same graph.
	assert.Equal(t, 1.0, n.out.Grad())
	assert.InDelta(t, 0.2574, n.add2.Grad(), 1e-4)
	assert.InDelta(t, 0.2574, n.add1.Grad(), 1e-4)
	assert.InDelta(t, 0.2574, n.b.Grad(), 1e-4)
	assert.InDelta(t, 0.2574, n.mul1.Grad(), 1e-4)
	assert.InDelta(t, 0.2574, n.mul2.Grad(), 1e-4)
	assert.InDelta(t, -0.7723, n.x1.Grad(), 1e-4)
	assert.InDelta(t, 0.5149, n.w1.Grad(), 1e-4)
	assert.InDelta(t, 0.2574, n.x2.Grad(), 1e-4)
	assert.InDelta(t, 0.1287, n.w2.Grad(), 1e-4)

	// Exact chain rule relations.
	local := 1 - n.out.Data()*n.out.Data()
	assert.InDelta(t, local, n.add2.Grad(), 1e-15)
	assert.InDelta(t, n.mul1.Grad()*n.w1.Data(), n.x1.Grad(), 1e-15)
	assert.InDelta(t, n.mul2.Grad()*n.x2.Data(), n.w2.Grad(), 1e-15)
}

// TestBackward_SharedNode tests that a node consumed twice sums both paths.
func TestBackward_SharedNode(t *testing.T) {
	g := autodiff.NewGraph()
	a := g.Leaf(2.0)

	b := g.Add(a, a)
	require.NoError(t, b.Backward())
	assert.Equal(t, 2.0, a.Grad())

	// y = a*a + tanh(a): dy/da = 2a + (1 - tanh²(a)).
	g2 := autodiff.NewGraph()
	x := g2.Leaf(0.7)
	sq := g2.Mul(x, x)
	th := g2.Tanh(x)
	y := g2.Add(sq, th)
	require.NoError(t, y.Backward())

	pathSq := 2 * x.Data()
	pathTanh := 1 - th.Data()*th.Data()
	assert.InDelta(t, pathSq+pathTanh, x.Grad(), 1e-12)
}

// TestBackward_SharedIntermediate tests a diamond through an intermediate node.
func TestBackward_SharedIntermediate(t *testing.T) {
	g := autodiff.NewGraph()
	x := g.Leaf(0.3)
	w := g.Leaf(1.7)
	h := g.Mul(x, w)
	y := g.Mul(g.Tanh(h), h) // h feeds two consumers

	require.NoError(t, y.Backward())

	th := math.Tanh(h.Data())
	dh := (1-th*th)*h.Data() + th
	assert.InDelta(t, dh, h.Grad(), 1e-12)
	assert.InDelta(t, dh*w.Data(), x.Grad(), 1e-12)
	assert.InDelta(t, dh*x.Data(), w.Grad(), 1e-12)
}

// TestBackward_AccumulatesAcrossPasses tests that a second pass without
// ZeroGrad doubles every gradient, root included.
func TestBackward_AccumulatesAcrossPasses(t *testing.T) {
	g := autodiff.NewGraph()
	n := buildNeuron(g)

	require.NoError(t, n.out.Backward())
	first := make([]float64, 0, g.Len())
	for _, v := range []autodiff.Value{n.x1, n.x2, n.w1, n.w2, n.b, n.mul1, n.mul2, n.add1, n.add2, n.out} {
		first = append(first, v.Grad())
	}

	require.NoError(t, n.out.Backward())
	for i, v := range []autodiff.Value{n.x1, n.x2, n.w1, n.w2, n.b, n.mul1, n.mul2, n.add1, n.add2, n.out} {
		assert.InDelta(t, 2*first[i], v.Grad(), 1e-12, "node %s", v.Label())
	}
}

// TestZeroGrad tests that resetting restores single-pass gradients.
func TestZeroGrad(t *testing.T) {
	g := autodiff.NewGraph()
	n := buildNeuron(g)

	require.NoError(t, n.out.Backward())
	want := n.w1.Grad()

	g.ZeroGrad()
	assert.Equal(t, 0.0, n.w1.Grad())
	assert.Equal(t, 0.0, n.out.Grad())

	require.NoError(t, n.out.Backward())
	assert.Equal(t, want, n.w1.Grad())
}

// TestBackward_Unreachable tests that nodes outside the root's ancestry keep a zero gradient.
func TestBackward_Unreachable(t *testing.T) {
	g := autodiff.NewGraph()
	a := g.Leaf(1.0)
	b := g.Leaf(2.0)
	other := g.Leaf(5.0)
	_ = g.Mul(other, a) // consumes a but is not an ancestor of y
	y := g.Add(a, b)

	require.NoError(t, y.Backward())

	assert.Equal(t, 1.0, a.Grad())
	assert.Equal(t, 1.0, b.Grad())
	assert.Equal(t, 0.0, other.Grad())
}

// TestBackward_IntermediateRoot tests backward from a node that is not the last one built.
func TestBackward_IntermediateRoot(t *testing.T) {
	g := autodiff.NewGraph()
	n := buildNeuron(g)

	require.NoError(t, n.add1.Backward())

	assert.Equal(t, 1.0, n.add1.Grad())
	assert.Equal(t, 0.0, n.add2.Grad())
	assert.Equal(t, 0.0, n.out.Grad())
	assert.Equal(t, 0.0, n.b.Grad())
	assert.Equal(t, n.w1.Data(), n.x1.Grad())
}

// TestBackward_LeafRoot tests backward on a lone leaf.
func TestBackward_LeafRoot(t *testing.T) {
	g := autodiff.NewGraph()
	x := g.Leaf(4.0)

	require.NoError(t, x.Backward())
	assert.Equal(t, 1.0, x.Grad())
}

// TestBackward_Saturation tests that extreme inputs yield vanishing gradients, not errors.
func TestBackward_Saturation(t *testing.T) {
	g := autodiff.NewGraph()
	x := g.Leaf(50.0)
	y := x.Tanh()

	require.NoError(t, y.Backward())
	assert.Equal(t, 1.0, y.Data())
	assert.Equal(t, 0.0, x.Grad())
	assert.False(t, math.IsNaN(x.Grad()))
}

// TestBackward_Cycle tests cycle detection through a rewired parent.
func TestBackward_Cycle(t *testing.T) {
	g := autodiff.NewGraph()
	a := g.Leaf(1.0)
	b := g.Tanh(a).WithLabel("b")
	c := g.Add(b, a).WithLabel("c")

	autodiff.SetParentForTest(b, 0, c)

	err := c.Backward()
	require.Error(t, err)
	assert.True(t, errors.Is(err, autodiff.ErrGraphCycle))

	var cycleErr *autodiff.GraphCycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, c.ID(), cycleErr.Node)
	assert.Equal(t, "c", cycleErr.Label)

	// Nothing was written.
	assert.Equal(t, 0.0, a.Grad())
	assert.Equal(t, 0.0, b.Grad())
	assert.Equal(t, 0.0, c.Grad())
}

// TestBackward_SelfCycle tests a node listed as its own parent.
func TestBackward_SelfCycle(t *testing.T) {
	g := autodiff.NewGraph()
	a := g.Leaf(1.0)
	b := g.Tanh(a)
	autodiff.SetParentForTest(b, 0, b)

	err := g.Backward(b)
	assert.ErrorIs(t, err, autodiff.ErrGraphCycle)

	_, err = g.TopoOrder(b)
	assert.ErrorIs(t, err, autodiff.ErrGraphCycle)
}

// TestTopoOrder tests that parents precede children and nodes appear once.
func TestTopoOrder(t *testing.T) {
	g := autodiff.NewGraph()
	n := buildNeuron(g)
	unrelated := g.Leaf(9.0)

	order, err := g.TopoOrder(n.out)
	require.NoError(t, err)
	require.Len(t, order, 10)
	assert.Equal(t, n.out, order[len(order)-1])

	pos := make(map[int]int, len(order))
	for i, v := range order {
		_, dup := pos[v.ID()]
		require.False(t, dup, "node %d emitted twice", v.ID())
		pos[v.ID()] = i
	}
	for _, v := range order {
		for _, p := range v.Parents() {
			assert.Less(t, pos[p.ID()], pos[v.ID()])
		}
	}
	assert.NotContains(t, pos, unrelated.ID())
}

// TestDeterminism tests that identical construction gives bit-identical results.
func TestDeterminism(t *testing.T) {
	run := func() (float64, float64) {
		g := autodiff.NewGraph()
		n := buildNeuron(g)
		require.NoError(t, n.out.Backward())
		return n.out.Data(), n.w1.Grad()
	}

	v1, g1 := run()
	v2, g2 := run()
	assert.Equal(t, math.Float64bits(v1), math.Float64bits(v2))
	assert.Equal(t, math.Float64bits(g1), math.Float64bits(g2))
}

// TestDeepChain tests that long graphs do not exhaust the stack.
func TestDeepChain(t *testing.T) {
	g := autodiff.NewGraph()
	x := g.Leaf(1.0)
	one := g.Leaf(1.0)

	y := x
	for i := 0; i < 100_000; i++ {
		y = g.Mul(y, one)
	}

	require.NoError(t, y.Backward())
	assert.Equal(t, 1.0, x.Grad())
	assert.Equal(t, 100_000.0, one.Grad())
}

// TestMixedGraphsPanic tests that operands from another graph are rejected.
func TestMixedGraphsPanic(t *testing.T) {
	g1 := autodiff.NewGraph()
	g2 := autodiff.NewGraph()
	a := g1.Leaf(1.0)
	b := g2.Leaf(2.0)

	assert.PanicsWithValue(t, "+: operand belongs to a different graph", func() {
		g1.Add(a, b)
	})
	assert.Panics(t, func() {
		var zero autodiff.Value
		zero.Tanh()
	})
	assert.Panics(t, func() {
		_ = g2.Backward(a)
	})
}

// TestValue_String tests the one-line representation.
func TestValue_String(t *testing.T) {
	g := autodiff.NewGraph()
	x := g.Leaf(2.0)
	assert.Equal(t, "Value(2.0000, grad=0.0000)", x.String())

	x.WithLabel("x")
	assert.Equal(t, "x", x.Label())
	assert.Equal(t, "Value(x: 2.0000, grad=0.0000)", x.String())

	var zero autodiff.Value
	assert.False(t, zero.Valid())
	assert.Equal(t, "Value(<nil>)", zero.String())
}

// TestRender tests tree rendering after a backward pass.
func TestRender(t *testing.T) {
	g := autodiff.NewGraph()
	a := g.Leaf(2.0).WithLabel("a")
	b := g.Leaf(-3.0).WithLabel("b")
	c := g.Mul(a, b).WithLabel("c")
	d := g.Tanh(c).WithLabel("d")
	require.NoError(t, d.Backward())

	var sb strings.Builder
	require.NoError(t, autodiff.Render(&sb, d))

	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "└── Value(d: "))
	assert.True(t, strings.HasSuffix(lines[0], "(tanh)"))
	assert.True(t, strings.HasPrefix(lines[1], "    └── Value(c: -6.0000"))
	assert.True(t, strings.HasSuffix(lines[1], "(*)"))
	assert.True(t, strings.HasPrefix(lines[2], "        ├── Value(a: 2.0000"))
	assert.True(t, strings.HasPrefix(lines[3], "        └── Value(b: -3.0000"))
}

// TestRender_Cycle tests that rendering refuses cyclic graphs.
func TestRender_Cycle(t *testing.T) {
	g := autodiff.NewGraph()
	a := g.Leaf(1.0)
	b := g.Tanh(a)
	autodiff.SetParentForTest(b, 0, b)

	var sb strings.Builder
	assert.ErrorIs(t, autodiff.Render(&sb, b), autodiff.ErrGraphCycle)
}
