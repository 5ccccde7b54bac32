package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/born-ml/micrograd/internal/logging"
	"github.com/born-ml/micrograd/internal/nn"
	"github.com/born-ml/micrograd/internal/train"
)

type trainFlags struct {
	configPath  string
	outPath     string
	resume      bool
	metricsAddr string
	logFormat   string
}

func newTrainCmd() *cobra.Command {
	var flags trainFlags

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train an MLP and save a checkpoint",
		Long: `Train a tanh MLP with squared-error loss.

Configuration is read from defaults, then --config (YAML or JSON), then
MICROGRAD_* environment variables. A .env file in the working directory
is loaded before anything else.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runTrain(ctx, cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "config file (YAML or JSON)")
	cmd.Flags().StringVarP(&flags.outPath, "out", "o", "model.json", "checkpoint output path (empty to skip saving)")
	cmd.Flags().BoolVar(&flags.resume, "resume", false, "continue from the checkpoint at --out if it exists")
	cmd.Flags().StringVar(&flags.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	cmd.Flags().StringVar(&flags.logFormat, "log-format", "text", "log format: text or json")
	return cmd
}

func runTrain(ctx context.Context, cmd *cobra.Command, flags trainFlags) error {
	cfg, err := train.LoadConfig(flags.configPath)
	if err != nil {
		return err
	}

	logger := logging.New(logging.Config{
		Level:  cfg.LogLevel,
		Format: flags.logFormat,
		Output: cmd.ErrOrStderr(),
	})

	model, resumed, err := loadOrBuildModel(cfg, flags)
	if err != nil {
		return err
	}
	if resumed {
		logger.Info("resuming from checkpoint", "path", flags.outPath)
	}

	reg := prometheus.NewRegistry()
	metrics := train.NewMetrics(reg)
	if flags.metricsAddr != "" {
		srv := &http.Server{
			Addr:              flags.metricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "addr", flags.metricsAddr, "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		logger.Info("serving metrics", "addr", flags.metricsAddr)
	}

	trainer, err := train.New(model, cfg, train.WithLogger(logger), train.WithMetrics(metrics))
	if err != nil {
		return err
	}

	history, err := trainer.Fit(ctx, cfg.Data)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "epochs: %d\n", len(history.Losses))
	fmt.Fprintf(out, "final loss: %.6f\n", history.Final())
	for _, s := range cfg.Data {
		ys, perr := model.Predict(s.Input)
		if perr != nil {
			return perr
		}
		fmt.Fprintf(out, "%v -> %s (target %v)\n", s.Input, formatFloats(ys), s.Target)
	}

	if flags.outPath != "" && len(history.Losses) > 0 {
		c, serr := nn.SaveFile(flags.outPath, model, uuid.New(), len(history.Losses), history.Final())
		if serr != nil {
			return serr
		}
		logger.Info("checkpoint saved", "path", flags.outPath, "run_id", c.RunID)
	}
	return err
}

// loadOrBuildModel resumes from flags.outPath when asked and the file
// exists, otherwise builds a fresh network from cfg.Model.
func loadOrBuildModel(cfg train.Config, flags trainFlags) (*nn.MLP, bool, error) {
	if flags.resume && flags.outPath != "" {
		if _, err := os.Stat(flags.outPath); err == nil {
			m, _, err := nn.LoadFile(flags.outPath)
			return m, err == nil, err
		}
	}
	m, err := train.NewModel(cfg)
	return m, false, err
}

func formatFloats(xs []float64) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.FormatFloat(x, 'f', 4, 64)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
