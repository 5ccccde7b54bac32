package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newRootCmd assembles the command tree. Tests build a fresh tree per case.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "micrograd",
		Short: "Scalar reverse-mode autodiff engine and tiny MLP trainer",
		Long: `micrograd builds scalar expression graphs, differentiates them with
reverse-mode autodiff, and trains small tanh networks on top.

Examples:
  micrograd demo                       # single neuron, gradients by backprop
  micrograd train --out model.json     # train the reference network
  micrograd predict --model model.json 0.6 0.4`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newDemoCmd())
	root.AddCommand(newTrainCmd())
	root.AddCommand(newPredictCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "micrograd %s\n", version)
		},
	}
}
