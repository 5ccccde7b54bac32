package nn

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
)

// CheckpointVersion is the current checkpoint format version.
const CheckpointVersion = 1

// NeuronState is the serialised form of one neuron.
type NeuronState struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

// Checkpoint represents a model snapshot plus training metadata.
//
// Format (JSON):
//
//	{
//	  "format_version": 1,
//	  "run_id": "5b1e...",
//	  "epoch": 100,
//	  "loss": 0.0123,
//	  "num_inputs": 1,
//	  "layer_sizes": [3, 4, 4, 1],
//	  "layer_states": [[{"weights": [...], "bias": 0.1}, ...], ...],
//	  "checksum": "sha256 hex of the weight payload"
//	}
//
// The checksum covers num_inputs, layer_sizes and layer_states so a hand
// edited or truncated file is rejected on load.
type Checkpoint struct {
	FormatVersion int             `json:"format_version"`
	RunID         uuid.UUID       `json:"run_id"`
	Epoch         int             `json:"epoch"`
	Loss          float64         `json:"loss"`
	NumInputs     int             `json:"num_inputs"`
	LayerSizes    []int           `json:"layer_sizes"`
	LayerStates   [][]NeuronState `json:"layer_states"`
	Checksum      string          `json:"checksum"`
}

// weightPayload is the checksummed subset of a checkpoint.
type weightPayload struct {
	NumInputs   int             `json:"num_inputs"`
	LayerSizes  []int           `json:"layer_sizes"`
	LayerStates [][]NeuronState `json:"layer_states"`
}

// NewCheckpoint snapshots m. A nil runID is replaced with a fresh UUID.
func NewCheckpoint(m *MLP, runID uuid.UUID, epoch int, loss float64) (*Checkpoint, error) {
	if runID == uuid.Nil {
		runID = uuid.New()
	}
	c := &Checkpoint{
		FormatVersion: CheckpointVersion,
		RunID:         runID,
		Epoch:         epoch,
		Loss:          loss,
		NumInputs:     m.NumInputs(),
		LayerSizes:    m.LayerSizes(),
		LayerStates:   make([][]NeuronState, len(m.Layers)),
	}
	for i, layer := range m.Layers {
		c.LayerStates[i] = make([]NeuronState, len(layer.Neurons))
		for j, neuron := range layer.Neurons {
			weights := make([]float64, len(neuron.W))
			for k, w := range neuron.W {
				weights[k] = w.Data()
			}
			c.LayerStates[i][j] = NeuronState{Weights: weights, Bias: neuron.B.Data()}
		}
	}

	sum, err := c.computeChecksum()
	if err != nil {
		return nil, err
	}
	c.Checksum = sum
	return c, nil
}

// Validate checks version, checksum and that the weight payload matches the
// declared shape.
func (c *Checkpoint) Validate() error {
	if c.FormatVersion != CheckpointVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, c.FormatVersion)
	}
	sum, err := c.computeChecksum()
	if err != nil {
		return err
	}
	if sum != c.Checksum {
		return ErrChecksumMismatch
	}
	if c.NumInputs <= 0 || len(c.LayerSizes) == 0 || len(c.LayerStates) != len(c.LayerSizes) {
		return fmt.Errorf("%w: %d inputs, %d layer sizes, %d layer states",
			ErrInvalidCheckpoint, c.NumInputs, len(c.LayerSizes), len(c.LayerStates))
	}

	nin := c.NumInputs
	for i, states := range c.LayerStates {
		if len(states) != c.LayerSizes[i] {
			return fmt.Errorf("%w: layer %d has %d neurons, want %d",
				ErrInvalidCheckpoint, i, len(states), c.LayerSizes[i])
		}
		for j, s := range states {
			if len(s.Weights) != nin {
				return fmt.Errorf("%w: layer %d neuron %d has %d weights, want %d",
					ErrInvalidCheckpoint, i, j, len(s.Weights), nin)
			}
		}
		nin = c.LayerSizes[i]
	}
	return nil
}

// MLP rebuilds the network stored in the checkpoint.
func (c *Checkpoint) MLP() (*MLP, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	m, err := NewMLP(c.NumInputs, c.LayerSizes, InitConfig{})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCheckpoint, err)
	}
	for i, layer := range m.Layers {
		for j, neuron := range layer.Neurons {
			state := c.LayerStates[i][j]
			for k, w := range neuron.W {
				w.SetData(state.Weights[k])
			}
			neuron.B.SetData(state.Bias)
		}
	}
	return m, nil
}

// computeChecksum returns the SHA-256 of the canonical JSON weight payload.
func (c *Checkpoint) computeChecksum() (string, error) {
	data, err := json.Marshal(weightPayload{
		NumInputs:   c.NumInputs,
		LayerSizes:  c.LayerSizes,
		LayerStates: c.LayerStates,
	})
	if err != nil {
		return "", fmt.Errorf("checkpoint: encode payload: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// WriteTo encodes the checkpoint as indented JSON.
func (c *Checkpoint) WriteTo(w io.Writer) (int64, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("checkpoint: encode: %w", err)
	}
	data = append(data, '\n')
	n, err := w.Write(data)
	return int64(n), err
}

// ReadCheckpoint decodes and validates a checkpoint.
func ReadCheckpoint(r io.Reader) (*Checkpoint, error) {
	var c Checkpoint
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCheckpoint, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// SaveFile writes a checkpoint of m to path.
func SaveFile(path string, m *MLP, runID uuid.UUID, epoch int, loss float64) (*Checkpoint, error) {
	c, err := NewCheckpoint(m, runID, epoch, loss)
	if err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: create %s: %w", path, err)
	}
	if _, err := c.WriteTo(f); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("checkpoint: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("checkpoint: close %s: %w", path, err)
	}
	return c, nil
}

// LoadFile reads the checkpoint at path and rebuilds its network.
func LoadFile(path string) (*MLP, *Checkpoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("checkpoint: open %s: %w", path, err)
	}
	defer f.Close()

	c, err := ReadCheckpoint(f)
	if err != nil {
		return nil, nil, fmt.Errorf("checkpoint: %s: %w", path, err)
	}
	m, err := c.MLP()
	if err != nil {
		return nil, nil, err
	}
	return m, c, nil
}
