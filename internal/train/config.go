package train

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/micrograd/internal/parallel"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("train: invalid config")

// Config contains everything needed for a training run.
//
// Thread Safety: Safe to read concurrently. Not safe to modify after creation.
type Config struct {
	// Model describes the network shape.
	Model ModelConfig `json:"model" yaml:"model"`

	// Optimizer selects and tunes the update rule.
	Optimizer OptimizerConfig `json:"optimizer" yaml:"optimizer"`

	// Epochs is the number of full passes over Data.
	Epochs int `json:"epochs" yaml:"epochs"`

	// LogEvery logs progress every N epochs (0 disables periodic logs).
	LogEvery int `json:"log_every" yaml:"log_every"`

	// Parallel controls per-sample graph parallelism.
	Parallel ParallelConfig `json:"parallel" yaml:"parallel"`

	// LogLevel is passed to the logger (debug, info, warn, error).
	LogLevel string `json:"log_level" yaml:"log_level"`

	// Data is the training set. Defaults to DefaultSamples.
	Data []Sample `json:"data" yaml:"data"`
}

// ModelConfig describes an MLP.
type ModelConfig struct {
	Inputs int    `json:"inputs" yaml:"inputs"`
	Layers []int  `json:"layers" yaml:"layers"`
	Seed   uint64 `json:"seed" yaml:"seed"`
}

// OptimizerConfig selects the optimizer.
type OptimizerConfig struct {
	Name     string  `json:"name" yaml:"name"` // sgd or adam
	LR       float64 `json:"lr" yaml:"lr"`
	Momentum float64 `json:"momentum" yaml:"momentum"`
}

// ParallelConfig contains parallel execution settings.
type ParallelConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	Workers int  `json:"workers" yaml:"workers"`
}

// DefaultConfig returns the configuration of the reference training run:
// a 1-3-4-4-1 tanh network trained with plain SGD at lr 0.01.
func DefaultConfig() Config {
	p := parallel.DefaultConfig()
	return Config{
		Model: ModelConfig{
			Inputs: 1,
			Layers: []int{3, 4, 4, 1},
			Seed:   42,
		},
		Optimizer: OptimizerConfig{
			Name: "sgd",
			LR:   0.01,
		},
		Epochs:   100,
		LogEvery: 10,
		Parallel: ParallelConfig{
			Enabled: p.Enabled,
			Workers: p.NumWorkers,
		},
		LogLevel: "info",
		Data:     DefaultSamples(),
	}
}

// LoadConfig loads configuration with priority: env > file > defaults.
//
// An empty path skips the file. A missing file is an error: the caller
// asked for it explicitly.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	if path != "" {
		if err := loadConfigFile(path, &config); err != nil {
			return config, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := loadConfigFromEnv(&config); err != nil {
		return config, err
	}

	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

func loadConfigFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	// Try YAML first, then JSON
	if err := yaml.Unmarshal(data, config); err != nil {
		if jsonErr := json.Unmarshal(data, config); jsonErr != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): YAML error: %v, JSON error: %w", err, jsonErr)
		}
	}
	return nil
}

func loadConfigFromEnv(config *Config) error {
	if v := os.Getenv("MICROGRAD_EPOCHS"); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: MICROGRAD_EPOCHS=%q", ErrInvalidConfig, v)
		}
		config.Epochs = i
	}
	if v := os.Getenv("MICROGRAD_LR"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: MICROGRAD_LR=%q", ErrInvalidConfig, v)
		}
		config.Optimizer.LR = f
	}
	if v := os.Getenv("MICROGRAD_OPTIMIZER"); v != "" {
		config.Optimizer.Name = v
	}
	if v := os.Getenv("MICROGRAD_SEED"); v != "" {
		u, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: MICROGRAD_SEED=%q", ErrInvalidConfig, v)
		}
		config.Model.Seed = u
	}
	if v := os.Getenv("MICROGRAD_WORKERS"); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: MICROGRAD_WORKERS=%q", ErrInvalidConfig, v)
		}
		config.Parallel.Workers = i
		config.Parallel.Enabled = i > 1
	}
	if v := os.Getenv("MICROGRAD_LOG_LEVEL"); v != "" {
		config.LogLevel = v
	}
	return nil
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if c.Model.Inputs <= 0 {
		return fmt.Errorf("%w: model.inputs must be positive, got %d", ErrInvalidConfig, c.Model.Inputs)
	}
	if len(c.Model.Layers) == 0 {
		return fmt.Errorf("%w: model.layers must not be empty", ErrInvalidConfig)
	}
	for i, n := range c.Model.Layers {
		if n <= 0 {
			return fmt.Errorf("%w: model.layers[%d] must be positive, got %d", ErrInvalidConfig, i, n)
		}
	}
	if c.Epochs <= 0 {
		return fmt.Errorf("%w: epochs must be positive, got %d", ErrInvalidConfig, c.Epochs)
	}
	if c.LogEvery < 0 {
		return fmt.Errorf("%w: log_every must not be negative", ErrInvalidConfig)
	}
	switch c.Optimizer.Name {
	case "", "sgd", "adam":
	default:
		return fmt.Errorf("%w: unknown optimizer %q", ErrInvalidConfig, c.Optimizer.Name)
	}
	if c.Optimizer.LR <= 0 {
		return fmt.Errorf("%w: optimizer.lr must be positive, got %g", ErrInvalidConfig, c.Optimizer.LR)
	}
	if c.Optimizer.Momentum < 0 || c.Optimizer.Momentum >= 1 {
		return fmt.Errorf("%w: optimizer.momentum must be in [0, 1), got %g", ErrInvalidConfig, c.Optimizer.Momentum)
	}
	if c.Parallel.Enabled && c.Parallel.Workers < 1 {
		return fmt.Errorf("%w: parallel.workers must be at least 1", ErrInvalidConfig)
	}
	if len(c.Data) == 0 {
		return fmt.Errorf("%w: data must not be empty", ErrInvalidConfig)
	}
	outputs := c.Model.Layers[len(c.Model.Layers)-1]
	for i, s := range c.Data {
		if len(s.Input) != c.Model.Inputs {
			return fmt.Errorf("%w: data[%d] has %d inputs, want %d", ErrInvalidConfig, i, len(s.Input), c.Model.Inputs)
		}
		if len(s.Target) != outputs {
			return fmt.Errorf("%w: data[%d] has %d targets, want %d", ErrInvalidConfig, i, len(s.Target), outputs)
		}
	}
	return nil
}

func (c Config) parallelConfig() parallel.Config {
	return parallel.Config{Enabled: c.Parallel.Enabled, NumWorkers: c.Parallel.Workers}
}
