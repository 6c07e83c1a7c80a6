package task

import "errors"

import gorgonia "gorgonia.org/gorgonia"
import "gorgonia.org/tensor"

import "github.com/neurlang/eotask/datasets"
import "github.com/neurlang/eotask/losses"
import "github.com/neurlang/eotask/metrics"
import "github.com/neurlang/eotask/optim"

// Stage tags a compute step as training, validation or test.
type Stage string

const (
	Train Stage = "train"
	Val   Stage = "val"
	Test  Stage = "test"
)

// Model maps a tuple of input tensors to an output tensor. Models may come
// from anywhere; the task imposes no other contract.
type Model interface {
	Forward(inputs ...tensor.Tensor) (tensor.Tensor, error)
}

// Trainable is implemented by models that expose learnable parameters.
type Trainable interface {
	Model
	Parameters() []*optim.Param
}

// Backprop is implemented by models that can push a loss gradient back into
// their parameter gradients.
type Backprop interface {
	Trainable
	Backward(dout *tensor.Dense) error
}

// Task binds a model, a loss, a metric set and an input/output field mapping
// into one trainable unit. It is immutable for the duration of a run except
// for the model's own parameters, which the driver's optimizer mutates.
type Task struct {
	model   Model
	hparams Hparams
	inputs  []string
	outputs []string
	loss    losses.Loss
	metrics map[string]metrics.Metric

	// defaultLoss backs concrete tasks; it loses to a direct loss and to a
	// loss named in the bag.
	defaultLoss losses.Loss
}

// Option configures a Task under construction.
type Option func(*Task)

// WithHparams supplies the hyperparameter bag.
func WithHparams(h Hparams) Option {
	return func(t *Task) { t.hparams = h }
}

// WithInputs sets the ordered batch fields passed positionally to the model.
func WithInputs(fields ...string) Option {
	return func(t *Task) { t.inputs = fields }
}

// WithOutputs sets the ordered batch fields extracted as targets.
func WithOutputs(fields ...string) Option {
	return func(t *Task) { t.outputs = fields }
}

// WithLoss supplies a loss directly, overriding any name in the bag.
func WithLoss(l losses.Loss) Option {
	return func(t *Task) { t.loss = l }
}

// WithDefaultLoss sets the loss used when neither WithLoss nor the bag names
// one. Concrete tasks use it to carry their conventional default.
func WithDefaultLoss(l losses.Loss) Option {
	return func(t *Task) { t.defaultLoss = l }
}

// WithMetrics replaces the metric set wholesale.
func WithMetrics(m map[string]metrics.Metric) Option {
	return func(t *Task) {
		t.metrics = make(map[string]metrics.Metric, len(m))
		for name, metric := range m {
			t.metrics[name] = metric
		}
	}
}

// WithMetric adds one named metric to the set.
func WithMetric(name string, m metrics.Metric) Option {
	return func(t *Task) { t.metrics[name] = m }
}

// New builds a task. A loss must come either directly via WithLoss or by
// name from the bag; a named loss resolves here, so an unknown name fails at
// construction. Field presence against a data source is only checked at the
// first step.
func New(model Model, opts ...Option) (*Task, error) {
	if model == nil {
		return nil, errors.New("task: nil model")
	}
	t := &Task{model: model, metrics: make(map[string]metrics.Metric)}
	for _, opt := range opts {
		opt(t)
	}
	if len(t.inputs) == 0 {
		return nil, errors.New("task: no input fields configured")
	}
	if len(t.outputs) == 0 {
		return nil, errors.New("task: no output fields configured")
	}
	if t.loss == nil && t.hparams.Loss != "" {
		loss, err := losses.New(t.hparams.Loss, t.hparams.LossParams)
		if err != nil {
			return nil, err
		}
		t.loss = loss
	}
	if t.loss == nil {
		t.loss = t.defaultLoss
	}
	if t.loss == nil {
		return nil, errors.New("task: no loss configured")
	}
	return t, nil
}

// Model returns the bound model.
func (t *Task) Model() Model {
	return t.model
}

// Hparams returns the hyperparameter bag.
func (t *Task) Hparams() Hparams {
	return t.hparams
}

// Loss returns the resolved loss.
func (t *Task) Loss() losses.Loss {
	return t.loss
}

// Forward extracts the configured input fields from the batch in order and
// passes them positionally to the model. Every field is checked before the
// model runs.
func (t *Task) Forward(b datasets.Batch) (tensor.Tensor, error) {
	inputs := make([]tensor.Tensor, len(t.inputs))
	for i, name := range t.inputs {
		field, err := b.Field(name)
		if err != nil {
			return nil, err
		}
		inputs[i] = field
	}
	return t.model.Forward(inputs...)
}

// Predict runs a forward pass for inference.
func (t *Task) Predict(b datasets.Batch) (tensor.Tensor, error) {
	return t.Forward(b)
}

// targets extracts every configured output field. The first one is the
// primary target fed to loss and metrics.
func (t *Task) targets(b datasets.Batch) ([]tensor.Tensor, error) {
	out := make([]tensor.Tensor, len(t.outputs))
	for i, name := range t.outputs {
		field, err := b.Field(name)
		if err != nil {
			return nil, err
		}
		out[i] = field
	}
	return out, nil
}

// StepResult carries the scalar results of one compute step.
type StepResult struct {
	Stage   Stage
	Loss    float64
	Metrics map[string]float64
}

// Scalars flattens the result into stage-prefixed name/value pairs for a
// logging sink, e.g. "val_loss", "val_accuracy".
func (r StepResult) Scalars() map[string]float64 {
	out := make(map[string]float64, len(r.Metrics)+1)
	out[string(r.Stage)+"_loss"] = r.Loss
	for name, value := range r.Metrics {
		out[string(r.Stage)+"_"+name] = value
	}
	return out
}

// ComputeStep runs a forward pass, computes the loss against the primary
// target and evaluates every configured metric on the same pair. It is a
// pure computation: no logging, no gradient work, no parameter updates.
func (t *Task) ComputeStep(b datasets.Batch, stage Stage) (StepResult, error) {
	result := StepResult{Stage: stage}
	pred, err := t.Forward(b)
	if err != nil {
		return result, err
	}
	targets, err := t.targets(b)
	if err != nil {
		return result, err
	}
	result.Loss, err = t.loss.Forward(pred, targets[0])
	if err != nil {
		return result, err
	}
	result.Metrics = make(map[string]float64, len(t.metrics))
	for name, metric := range t.metrics {
		value, err := metric(pred, targets[0])
		if err != nil {
			return result, err
		}
		result.Metrics[name] = value
	}
	return result, nil
}

// TrainStep is the driver's training hook: a ComputeStep at the train stage
// that additionally pushes the loss gradient into the model when the model
// supports backpropagation. Optimizer stepping stays with the driver.
func (t *Task) TrainStep(b datasets.Batch) (StepResult, error) {
	result := StepResult{Stage: Train}
	pred, err := t.Forward(b)
	if err != nil {
		return result, err
	}
	targets, err := t.targets(b)
	if err != nil {
		return result, err
	}
	result.Loss, err = t.loss.Forward(pred, targets[0])
	if err != nil {
		return result, err
	}
	result.Metrics = make(map[string]float64, len(t.metrics))
	for name, metric := range t.metrics {
		value, err := metric(pred, targets[0])
		if err != nil {
			return result, err
		}
		result.Metrics[name] = value
	}
	if model, ok := t.model.(Backprop); ok {
		dout, err := t.loss.Backward(pred, targets[0])
		if err != nil {
			return result, err
		}
		if err := model.Backward(dout); err != nil {
			return result, err
		}
	}
	return result, nil
}

// ConfigureOptimization instantiates the optimizer and optional scheduler
// named in the bag, bound to the model's learnable parameters. The optimizer
// defaults to adam when the bag names none; the scheduler is optional and
// resolves to nil when absent.
func (t *Task) ConfigureOptimization() (gorgonia.Solver, optim.Schedule, error) {
	if _, ok := t.model.(Trainable); !ok {
		return nil, nil, errors.New("task: model has no learnable parameters")
	}
	name := t.hparams.Optimizer
	if name == "" {
		name = "adam"
	}
	solver, err := optim.NewSolver(name, t.hparams.OptimParams)
	if err != nil {
		return nil, nil, err
	}
	if t.hparams.Scheduler == "" {
		return solver, nil, nil
	}
	schedule, err := optim.NewSchedule(t.hparams.Scheduler, t.hparams.SchedulerParams)
	if err != nil {
		return nil, nil, err
	}
	return solver, schedule, nil
}
