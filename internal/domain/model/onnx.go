package model

import (
	"fmt"
	"math"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/predictwell/riskcore/internal/domain/types"
)

// ortEnv manages global ONNX Runtime initialization (process-wide singleton).
var ortEnv struct {
	once sync.Once
	err  error
}

// initORT initializes the ONNX Runtime environment. Safe to call
// multiple times; only the first call has any effect.
func initORT(libPath string) error {
	ortEnv.once.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

// ONNX runs a risk model exported to ONNX. The session is created once
// at load; ONNX Runtime sessions are safe for concurrent Run calls. The
// ONNX format carries no feature-schema metadata, so the expected
// schema version and artifact version are declared by configuration and
// checked against the tensor shapes here.
type ONNX struct {
	session       *ort.DynamicAdvancedSession
	inputName     string
	outputName    string
	inputSize     int
	schemaVersion string
	version       string
}

// LoadONNX loads an ONNX risk model and validates its (input-length,
// output-count) contract against the declared input size.
func LoadONNX(modelPath, libPath, schemaVersion, version string, inputSize int) (*ONNX, error) {
	if err := initORT(libPath); err != nil {
		return nil, fmt.Errorf("onnx: %w: failed to initialize runtime: %w", ErrArtifact, err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("onnx: %w: failed to read model info: %w", ErrArtifact, err)
	}
	if len(inputs) != 1 {
		return nil, fmt.Errorf("onnx: %w: expected 1 input tensor, got %d", ErrArtifact, len(inputs))
	}
	if len(outputs) != 1 {
		return nil, fmt.Errorf("onnx: %w: expected 1 output tensor, got %d", ErrArtifact, len(outputs))
	}

	inDims := inputs[0].Dimensions
	if len(inDims) != 2 || (inDims[1] > 0 && int(inDims[1]) != inputSize) {
		return nil, fmt.Errorf("onnx: %w: input shape %v incompatible with vector length %d",
			ErrArtifact, inDims, inputSize)
	}
	outDims := outputs[0].Dimensions
	if len(outDims) != 2 || (outDims[1] > 0 && int(outDims[1]) != types.NumDiseases) {
		return nil, fmt.Errorf("onnx: %w: output shape %v, want [batch %d]",
			ErrArtifact, outDims, types.NumDiseases)
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("onnx: %w: failed to create session options: %w", ErrArtifact, err)
	}
	defer opts.Destroy()

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{inputs[0].Name},
		[]string{outputs[0].Name},
		opts,
	)
	if err != nil {
		return nil, fmt.Errorf("onnx: %w: failed to create session: %w", ErrArtifact, err)
	}

	return &ONNX{
		session:       session,
		inputName:     inputs[0].Name,
		outputName:    outputs[0].Name,
		inputSize:     inputSize,
		schemaVersion: schemaVersion,
		version:       version,
	}, nil
}

// Predict runs a single inference call. A single network has no
// ensemble, so Spread is zero; confidence estimation then rests on
// output entropy and input completeness alone.
func (o *ONNX) Predict(vec []float64) (Outputs, error) {
	if len(vec) != o.inputSize {
		return Outputs{}, fmt.Errorf("onnx: %w: got %d, want %d", ErrInputSize, len(vec), o.inputSize)
	}

	input := make([]float32, len(vec))
	for i, v := range vec {
		input[i] = float32(v)
	}

	tIn, err := ort.NewTensor(ort.NewShape(1, int64(o.inputSize)), input)
	if err != nil {
		return Outputs{}, fmt.Errorf("onnx: failed to create input tensor: %w", err)
	}
	defer tIn.Destroy()

	tOut, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(types.NumDiseases)))
	if err != nil {
		return Outputs{}, fmt.Errorf("onnx: failed to create output tensor: %w", err)
	}
	defer tOut.Destroy()

	if err := o.session.Run([]ort.Value{tIn}, []ort.Value{tOut}); err != nil {
		return Outputs{}, fmt.Errorf("onnx: inference failed: %w", err)
	}

	var out Outputs
	data := tOut.GetData()
	for i := 0; i < types.NumDiseases; i++ {
		p := float64(data[i])
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return Outputs{}, fmt.Errorf("onnx: %w", ErrBadOutput)
		}
		out.Probabilities[i] = clamp01(p)
	}
	return out, nil
}

// InputSize returns the expected feature vector length.
func (o *ONNX) InputSize() int {
	return o.inputSize
}

// SchemaVersion returns the configured feature schema version.
func (o *ONNX) SchemaVersion() string {
	return o.schemaVersion
}

// Version returns the configured artifact version.
func (o *ONNX) Version() string {
	return o.version
}

// Close releases the ONNX session resources.
func (o *ONNX) Close() error {
	if o.session != nil {
		return o.session.Destroy()
	}
	return nil
}
