package autodiff

// Visit states for the topological sort.
const (
	unvisited uint8 = iota
	inProgress
	finished
)

// Backward computes ∂root/∂n for root and every node reachable from it.
//
// Algorithm:
//  1. Topologically sort the ancestors of root (parents before children)
//  2. Seed the root adjoint with 1.0
//  3. Walk the order in reverse, applying each node's backward rule
//  4. Add the adjoints of this pass into the stored gradients
//
// Gradients accumulate: a second pass without ZeroGrad adds the same
// derivatives again, doubling every reachable gradient.
//
// Returns a *GraphCycleError if the sub-DAG contains a cycle. Detection
// happens before any gradient is written, so a failed pass has no effect.
func (g *Graph) Backward(root Value) error {
	g.own("backward", root)

	order, err := g.topoOrder(root.id)
	if err != nil {
		return err
	}

	// Adjoints for this pass only, indexed by arena position.
	adj := make([]float64, len(g.nodes))
	adj[root.id] = 1.0

	var parentData [2]float64
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		n := &g.nodes[id]
		arity := n.op.Arity()
		if arity == 0 {
			continue
		}
		for slot := 0; slot < arity; slot++ {
			parentData[slot] = g.nodes[n.parents[slot]].data
		}
		da, db := n.op.backward(n, parentData, adj[id])
		adj[n.parents[0]] += da
		if arity == 2 {
			adj[n.parents[1]] += db
		}
	}

	for _, id := range order {
		g.nodes[id].grad += adj[id]
	}
	return nil
}

// TopoOrder returns root and its ancestors so that every node appears after
// all of its parents.
func (g *Graph) TopoOrder(root Value) ([]Value, error) {
	g.own("topo", root)

	order, err := g.topoOrder(root.id)
	if err != nil {
		return nil, err
	}
	values := make([]Value, len(order))
	for i, id := range order {
		values[i] = Value{g: g, id: id}
	}
	return values, nil
}

// topoOrder runs an iterative depth-first search from root, emitting a node
// once all of its parents have been emitted. A parent found in progress
// closes a cycle.
func (g *Graph) topoOrder(root int) ([]int, error) {
	type frame struct {
		id   int
		next int // next parent slot to visit
	}

	state := make([]uint8, len(g.nodes))
	order := make([]int, 0, len(g.nodes))
	stack := []frame{{id: root}}
	state[root] = inProgress

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		n := &g.nodes[top.id]

		if top.next < n.op.Arity() {
			p := n.parents[top.next]
			top.next++

			switch state[p] {
			case inProgress:
				return nil, &GraphCycleError{Node: p, Label: g.nodes[p].label}
			case finished:
				continue
			}
			state[p] = inProgress
			stack = append(stack, frame{id: p})
			continue
		}

		state[top.id] = finished
		order = append(order, top.id)
		stack = stack[:len(stack)-1]
	}
	return order, nil
}
