// Package segmentation provides the binary cover-mask segmentation task:
// binary cross entropy on logits with intersection-over-union reported,
// reading the "image" field and predicting the "mask" field unless
// reconfigured. Predict returns sigmoid probabilities rather than logits.
package segmentation

import "math"

import "gorgonia.org/tensor"

import "github.com/neurlang/eotask/datasets"
import "github.com/neurlang/eotask/losses"
import "github.com/neurlang/eotask/metrics"
import "github.com/neurlang/eotask/task"

// Default batch fields.
const FieldImage = "image"
const FieldMask = "mask"

// Task wraps the base task with a probability-space Predict.
type Task struct {
	*task.Task
}

// New builds a segmentation task around model. Later options override the
// defaults.
func New(model task.Model, opts ...task.Option) (*Task, error) {
	defaults := []task.Option{
		task.WithInputs(FieldImage),
		task.WithOutputs(FieldMask),
		task.WithDefaultLoss(losses.BCEWithLogits{}),
		task.WithMetric("iou", metrics.IoU(0.5)),
	}
	base, err := task.New(model, append(defaults, opts...)...)
	if err != nil {
		return nil, err
	}
	return &Task{Task: base}, nil
}

// Predict runs a forward pass and squashes the logits through a sigmoid, so
// callers get per-pixel cover probabilities.
func (t *Task) Predict(b datasets.Batch) (tensor.Tensor, error) {
	logits, err := t.Forward(b)
	if err != nil {
		return nil, err
	}
	data, err := datasets.Floats(logits)
	if err != nil {
		return nil, err
	}
	probs := make([]float64, len(data))
	for i, v := range data {
		probs[i] = 1 / (1 + math.Exp(-v))
	}
	return tensor.New(tensor.WithShape(logits.Shape().Clone()...), tensor.WithBacking(probs)), nil
}
