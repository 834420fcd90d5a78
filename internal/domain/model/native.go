package model

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/predictwell/riskcore/internal/domain/types"
)

// artifact is the on-disk JSON layout of a native model: an ensemble of
// one-hidden-layer networks (ReLU hidden, sigmoid heads) sharing one
// topology.
type artifact struct {
	Version       string   `json:"version"`
	SchemaVersion string   `json:"schema_version"`
	InputSize     int      `json:"input_size"`
	HiddenSize    int      `json:"hidden_size"`
	Outputs       []string `json:"outputs"`
	Members       []member `json:"members"`
}

type member struct {
	W1 [][]float64 `json:"w1"` // [hidden][input]
	B1 []float64   `json:"b1"` // [hidden]
	W2 [][]float64 `json:"w2"` // [outputs][hidden]
	B2 []float64   `json:"b2"` // [outputs]
}

// Native is the built-in inference backend. All state is read-only
// after load, so concurrent Predict calls need no locking.
type Native struct {
	art artifact
}

// LoadNative reads and validates a native model artifact. Every matrix
// dimension and the declared output order are checked here so that a
// malformed artifact fails the process at boot, not a request at
// inference time.
func LoadNative(path string) (*Native, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("native: %w: %w", ErrArtifact, err)
	}

	var art artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("native: %w: %w", ErrArtifact, err)
	}

	if art.InputSize <= 0 || art.HiddenSize <= 0 {
		return nil, fmt.Errorf("native: %w: non-positive layer size", ErrArtifact)
	}
	if len(art.Members) == 0 {
		return nil, fmt.Errorf("native: %w: empty ensemble", ErrArtifact)
	}
	if len(art.Outputs) != types.NumDiseases {
		return nil, fmt.Errorf("native: %w: expected %d outputs, got %d",
			ErrArtifact, types.NumDiseases, len(art.Outputs))
	}
	for i, d := range types.Diseases {
		if art.Outputs[i] != string(d) {
			return nil, fmt.Errorf("native: %w: output %d is %q, want %q",
				ErrArtifact, i, art.Outputs[i], d)
		}
	}
	for i, m := range art.Members {
		if err := m.validate(art.InputSize, art.HiddenSize); err != nil {
			return nil, fmt.Errorf("native: %w: member %d: %w", ErrArtifact, i, err)
		}
	}

	return &Native{art: art}, nil
}

func (m member) validate(inputSize, hiddenSize int) error {
	if len(m.W1) != hiddenSize || len(m.B1) != hiddenSize {
		return fmt.Errorf("hidden layer shape mismatch")
	}
	for _, row := range m.W1 {
		if len(row) != inputSize {
			return fmt.Errorf("w1 row length %d, want %d", len(row), inputSize)
		}
	}
	if len(m.W2) != types.NumDiseases || len(m.B2) != types.NumDiseases {
		return fmt.Errorf("output layer shape mismatch")
	}
	for _, row := range m.W2 {
		if len(row) != hiddenSize {
			return fmt.Errorf("w2 row length %d, want %d", len(row), hiddenSize)
		}
	}
	return nil
}

// Predict runs the ensemble forward pass: per-member probabilities,
// then mean and standard deviation across members. Outputs are clamped
// to [0,1]; non-finite values are rejected as ErrBadOutput.
func (n *Native) Predict(vec []float64) (Outputs, error) {
	if len(vec) != n.art.InputSize {
		return Outputs{}, fmt.Errorf("native: %w: got %d, want %d",
			ErrInputSize, len(vec), n.art.InputSize)
	}

	perMember := make([][types.NumDiseases]float64, len(n.art.Members))
	for i, m := range n.art.Members {
		perMember[i] = m.forward(vec)
	}

	var out Outputs
	count := float64(len(perMember))
	for o := 0; o < types.NumDiseases; o++ {
		var sum float64
		for _, probs := range perMember {
			sum += probs[o]
		}
		mean := sum / count

		var varSum float64
		for _, probs := range perMember {
			d := probs[o] - mean
			varSum += d * d
		}
		spread := math.Sqrt(varSum / count)

		if math.IsNaN(mean) || math.IsInf(mean, 0) || math.IsNaN(spread) {
			return Outputs{}, fmt.Errorf("native: %w", ErrBadOutput)
		}
		out.Probabilities[o] = clamp01(mean)
		out.Spread[o] = spread
	}
	return out, nil
}

// forward computes one member's sigmoid head outputs.
func (m member) forward(vec []float64) [types.NumDiseases]float64 {
	hidden := make([]float64, len(m.W1))
	for h, row := range m.W1 {
		sum := m.B1[h]
		for j, w := range row {
			sum += w * vec[j]
		}
		if sum > 0 { // ReLU
			hidden[h] = sum
		}
	}

	var probs [types.NumDiseases]float64
	for o, row := range m.W2 {
		sum := m.B2[o]
		for h, w := range row {
			sum += w * hidden[h]
		}
		probs[o] = sigmoid(sum)
	}
	return probs
}

// InputSize returns the expected feature vector length.
func (n *Native) InputSize() int {
	return n.art.InputSize
}

// SchemaVersion returns the feature schema the artifact declares.
func (n *Native) SchemaVersion() string {
	return n.art.SchemaVersion
}

// Version returns the artifact version string.
func (n *Native) Version() string {
	return n.art.Version
}

// Close is a no-op for the native backend.
func (n *Native) Close() error {
	return nil
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
