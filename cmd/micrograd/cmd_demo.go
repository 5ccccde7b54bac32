package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/born-ml/micrograd/autodiff"
)

// newDemoCmd differentiates tanh(x1*w1 + x2*w2 + b) and prints the graph
// before and after the backward pass.
func newDemoCmd() *cobra.Command {
	var x1, x2, w1, w2, b float64

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Differentiate a single tanh neuron",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			g := autodiff.NewGraph()
			leaves := []autodiff.Value{
				g.Leaf(x1).WithLabel("x1"),
				g.Leaf(x2).WithLabel("x2"),
				g.Leaf(w1).WithLabel("w1"),
				g.Leaf(w2).WithLabel("w2"),
				g.Leaf(b).WithLabel("b"),
			}
			mul1 := g.Mul(leaves[0], leaves[2]).WithLabel("x1*w1")
			mul2 := g.Mul(leaves[1], leaves[3]).WithLabel("x2*w2")
			sum := g.Add(mul1, mul2).WithLabel("sum")
			preAct := g.Add(sum, leaves[4]).WithLabel("pre_act")
			output := g.Tanh(preAct).WithLabel("output")

			fmt.Fprintln(out, "=== Forward Pass ===")
			if err := autodiff.Render(out, output); err != nil {
				return err
			}

			if err := output.Backward(); err != nil {
				return fmt.Errorf("backward: %w", err)
			}

			fmt.Fprintln(out, "\n=== After Backward Pass ===")
			if err := autodiff.Render(out, output); err != nil {
				return err
			}

			fmt.Fprintln(out, "\n=== Gradients ===")
			for _, leaf := range leaves {
				fmt.Fprintf(out, "%s.grad %.4f\n", leaf.Label(), leaf.Grad())
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&x1, "x1", 2.0, "first input")
	cmd.Flags().Float64Var(&x2, "x2", 0.5, "second input")
	cmd.Flags().Float64Var(&w1, "w1", -3.0, "first weight")
	cmd.Flags().Float64Var(&w2, "w2", 1.0, "second weight")
	cmd.Flags().Float64Var(&b, "b", 6.8, "bias")
	return cmd
}
