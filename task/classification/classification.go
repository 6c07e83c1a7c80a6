// Package classification provides the scene-classification task: cross
// entropy over class logits with accuracy reported, reading the "image"
// field and predicting the "label" field unless reconfigured.
package classification

import "github.com/neurlang/eotask/losses"
import "github.com/neurlang/eotask/metrics"
import "github.com/neurlang/eotask/task"

// Default batch fields.
const FieldImage = "image"
const FieldLabel = "label"

// New builds a classification task around model. Later options override the
// defaults, so callers can swap the loss, metrics or field mapping.
func New(model task.Model, opts ...task.Option) (*task.Task, error) {
	defaults := []task.Option{
		task.WithInputs(FieldImage),
		task.WithOutputs(FieldLabel),
		task.WithDefaultLoss(losses.CrossEntropy{}),
		task.WithMetric("accuracy", metrics.Accuracy),
	}
	return task.New(model, append(defaults, opts...)...)
}
