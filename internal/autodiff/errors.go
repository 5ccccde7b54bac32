package autodiff

import (
	"errors"
	"fmt"
)

// ErrGraphCycle is matched by every *GraphCycleError via errors.Is.
var ErrGraphCycle = errors.New("autodiff: graph contains a cycle")

// GraphCycleError reports a node that was reached again while its own
// ancestors were still being visited.
//
// Graphs built through Graph operations are acyclic by construction, so this
// error always points at a corrupted graph.
type GraphCycleError struct {
	Node  int    // Arena index of the node closing the cycle
	Label string // Node label, empty if unset
}

// Error implements the error interface.
func (e *GraphCycleError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("autodiff: graph cycle through node %d (%q)", e.Node, e.Label)
	}
	return fmt.Sprintf("autodiff: graph cycle through node %d", e.Node)
}

// Is reports whether target is ErrGraphCycle.
func (e *GraphCycleError) Is(target error) bool {
	return target == ErrGraphCycle
}
