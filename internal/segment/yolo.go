package segment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/MeKo-Tech/seglabel/internal/mempool"
	"github.com/MeKo-Tech/seglabel/internal/models"
	"github.com/MeKo-Tech/seglabel/internal/onnx"
	"github.com/MeKo-Tech/seglabel/internal/utils"
	"github.com/yalue/onnxruntime_go"
)

// YOLOSegmenter runs a YOLO instance-segmentation ONNX export.
type YOLOSegmenter struct {
	config      Config
	session     *onnxruntime_go.DynamicAdvancedSession
	inputName   string
	outputNames []string
	mu          sync.Mutex
}

// NewYOLOSegmenter loads the model named by config. An empty ModelPath
// resolves to the default export under the models directory.
func NewYOLOSegmenter(config Config) (*YOLOSegmenter, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid segmenter config: %w", err)
	}
	config.ModelPath = models.GetSegmentationModelPath(config.ModelsDir, config.ModelPath)
	if err := models.ValidateModelExists(config.ModelPath); err != nil {
		return nil, err
	}

	slog.Debug("Initializing segmenter",
		"model_path", config.ModelPath,
		"input_size", config.InputSize,
		"gpu_enabled", config.GPU.UseGPU)

	if err := onnx.InitEnvironment(config.GPU.UseGPU); err != nil {
		return nil, err
	}

	inputName, outputNames, err := modelIO(config.ModelPath)
	if err != nil {
		return nil, err
	}

	opts, err := onnxruntime_go.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer func() {
		if err := opts.Destroy(); err != nil {
			slog.Warn("failed to destroy session options", "error", err)
		}
	}()
	if err := onnx.ConfigureSessionForGPU(opts, config.GPU); err != nil {
		return nil, fmt.Errorf("failed to configure GPU: %w", err)
	}
	if config.NumThreads > 0 {
		if err := opts.SetIntraOpNumThreads(config.NumThreads); err != nil {
			return nil, fmt.Errorf("failed to set thread count: %w", err)
		}
	}

	session, err := onnxruntime_go.NewDynamicAdvancedSession(config.ModelPath,
		[]string{inputName}, outputNames, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	slog.Debug("Segmenter initialized", "input", inputName, "outputs", outputNames)
	return &YOLOSegmenter{
		config:      config,
		session:     session,
		inputName:   inputName,
		outputNames: outputNames,
	}, nil
}

// modelIO checks the model has one image input and the two YOLO-seg
// outputs, and returns their names.
func modelIO(modelPath string) (string, []string, error) {
	inputs, outputs, err := onnxruntime_go.GetInputOutputInfo(modelPath)
	if err != nil {
		return "", nil, fmt.Errorf("failed to get model input/output info: %w", err)
	}
	if len(inputs) != 1 {
		return "", nil, fmt.Errorf("expected 1 input, got %d", len(inputs))
	}
	if len(inputs[0].Dimensions) != 4 {
		return "", nil, fmt.Errorf("expected 4D input tensor, got %dD", len(inputs[0].Dimensions))
	}
	if len(outputs) != 2 {
		return "", nil, fmt.Errorf("expected 2 outputs (predictions, prototypes), got %d", len(outputs))
	}
	return inputs[0].Name, []string{outputs[0].Name, outputs[1].Name}, nil
}

// Config returns the resolved configuration.
func (s *YOLOSegmenter) Config() Config { return s.config }

// Close releases the ONNX session. The runtime environment stays up for
// other sessions.
func (s *YOLOSegmenter) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	err := s.session.Destroy()
	s.session = nil
	return err
}

// Segment runs the model on the image at imagePath. ctx is checked before
// preprocessing and before decoding; a running inference is not interrupted.
func (s *YOLOSegmenter) Segment(ctx context.Context, imagePath string) ([]Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	img, meta, err := utils.LoadImage(imagePath)
	if err != nil {
		return nil, err
	}
	boxed, lb, err := utils.LetterboxImage(img, s.config.InputSize)
	if err != nil {
		return nil, fmt.Errorf("preprocessing failed: %w", err)
	}
	data, w, h, err := utils.NormalizeImagePooled(boxed)
	if err != nil {
		return nil, fmt.Errorf("preprocessing failed: %w", err)
	}
	defer mempool.Float32.Put(data)

	tensor, err := onnx.NewImageTensor(data, 3, h, w)
	if err != nil {
		return nil, fmt.Errorf("failed to create tensor: %w", err)
	}
	outs, err := s.run(tensor)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	preds, protos, err := splitOutputs(outs)
	if err != nil {
		return nil, err
	}
	dets, err := Decode(preds, protos, lb, s.config)
	if err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}

	slog.Debug("Segmentation complete",
		"image", imagePath,
		"width", meta.Width,
		"height", meta.Height,
		"detections", len(dets),
		"duration_ms", time.Since(start).Milliseconds())
	return dets, nil
}

func (s *YOLOSegmenter) run(tensor onnx.Tensor) ([]onnx.Output, error) {
	if err := onnx.VerifyImageTensor(tensor); err != nil {
		return nil, fmt.Errorf("invalid tensor: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil, errors.New("segmenter session is closed")
	}

	input, err := onnxruntime_go.NewTensor(onnxruntime_go.NewShape(tensor.Shape...), tensor.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer func() {
		if err := input.Destroy(); err != nil {
			slog.Warn("failed to destroy input tensor", "error", err)
		}
	}()

	values := make([]onnxruntime_go.Value, len(s.outputNames))
	if err := s.session.Run([]onnxruntime_go.Value{input}, values); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	defer func() {
		for _, v := range values {
			if v == nil {
				continue
			}
			if err := v.Destroy(); err != nil {
				slog.Warn("failed to destroy output tensor", "error", err)
			}
		}
	}()

	outs := make([]onnx.Output, len(values))
	for i, v := range values {
		ft, ok := v.(*onnxruntime_go.Tensor[float32])
		if !ok {
			return nil, fmt.Errorf("output %s: expected float32 tensor, got %T", s.outputNames[i], v)
		}
		outs[i] = onnx.Output{
			Name:  s.outputNames[i],
			Data:  append([]float32(nil), ft.GetData()...),
			Shape: append([]int64(nil), v.GetShape()...),
		}
	}
	return outs, nil
}

// splitOutputs tells predictions (rank 3) from prototypes (rank 4)
// regardless of export order.
func splitOutputs(outs []onnx.Output) (onnx.Output, onnx.Output, error) {
	var preds, protos onnx.Output
	for _, o := range outs {
		switch len(o.Shape) {
		case 3:
			preds = o
		case 4:
			protos = o
		}
	}
	if preds.Shape == nil || protos.Shape == nil {
		return preds, protos, errors.New("model outputs are not a YOLO-seg prediction/prototype pair")
	}
	return preds, protos, nil
}
