package autodiff

import (
	"fmt"
	"io"
)

// Render writes the sub-DAG rooted at root as an indented tree:
//
//	└── Value(out: 0.8617, grad=1.0000) (tanh)
//	    └── Value(n: 1.3000, grad=0.2574) (+)
//	        ├── ...
//
// Shared nodes are printed once per path that reaches them.
func Render(w io.Writer, root Value) error {
	if !root.Valid() {
		return fmt.Errorf("render: invalid root")
	}
	// Reject cyclic graphs up front so the recursion below terminates.
	if _, err := root.g.topoOrder(root.id); err != nil {
		return err
	}
	return render(w, root, "", true)
}

func render(w io.Writer, v Value, prefix string, last bool) error {
	branch, indent := "├── ", "│   "
	if last {
		branch, indent = "└── ", "    "
	}

	op := ""
	if v.Op() != OpLeaf {
		op = fmt.Sprintf(" (%s)", v.Op())
	}
	if _, err := fmt.Fprintf(w, "%s%s%s%s\n", prefix, branch, v, op); err != nil {
		return err
	}

	parents := v.Parents()
	for i, p := range parents {
		if err := render(w, p, prefix+indent, i == len(parents)-1); err != nil {
			return err
		}
	}
	return nil
}
