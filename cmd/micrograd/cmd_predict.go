package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/born-ml/micrograd/internal/nn"
)

func newPredictCmd() *cobra.Command {
	var modelPath string

	cmd := &cobra.Command{
		Use:   "predict [inputs...]",
		Short: "Run a saved model on one input vector",
		Example: `  micrograd predict --model model.json 0.6
  micrograd predict -m model.json -- -0.3`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			xs := make([]float64, len(args))
			for i, a := range args {
				x, err := strconv.ParseFloat(a, 64)
				if err != nil {
					return fmt.Errorf("input %d: %w", i, err)
				}
				xs[i] = x
			}

			model, ckpt, err := nn.LoadFile(modelPath)
			if err != nil {
				return err
			}
			ys, err := model.Predict(xs)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "run %s (epoch %d, loss %.6f)\n", ckpt.RunID, ckpt.Epoch, ckpt.Loss)
			fmt.Fprintf(out, "%v -> %s\n", xs, formatFloats(ys))
			return nil
		},
	}

	cmd.Flags().StringVarP(&modelPath, "model", "m", "model.json", "checkpoint to load")
	return cmd
}
