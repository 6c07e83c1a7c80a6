package task_test

import "math"
import "testing"

import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"
import "gorgonia.org/tensor"

import "github.com/neurlang/eotask/datasets"
import "github.com/neurlang/eotask/losses"
import "github.com/neurlang/eotask/metrics"
import "github.com/neurlang/eotask/models/linear"
import "github.com/neurlang/eotask/optim"
import "github.com/neurlang/eotask/task"

// recordingModel counts forward passes and returns a fixed output.
type recordingModel struct {
	calls int
	out   tensor.Tensor
}

func (m *recordingModel) Forward(inputs ...tensor.Tensor) (tensor.Tensor, error) {
	m.calls++
	return m.out, nil
}

func imageBatch(n int) datasets.Batch {
	pixels := make([]float64, n*3*8*8)
	for i := range pixels {
		pixels[i] = float64(i%7) * 0.1
	}
	labels := make([]float64, n)
	for i := range labels {
		labels[i] = float64(i % 10)
	}
	return datasets.Batch{
		"abc": tensor.New(tensor.WithShape(n, 3, 8, 8), tensor.WithBacking(pixels)),
		"def": tensor.New(tensor.WithShape(n, 1), tensor.WithBacking(labels)),
	}
}

func classifierTask(t *testing.T, opts ...task.Option) *task.Task {
	t.Helper()
	model := linear.New(3*8*8, 10, 7)
	base := []task.Option{
		task.WithInputs("abc"),
		task.WithOutputs("def"),
		task.WithLoss(losses.CrossEntropy{}),
		task.WithMetric("accuracy", metrics.Accuracy),
	}
	tk, err := task.New(model, append(base, opts...)...)
	require.NoError(t, err)
	return tk
}

func TestComputeStepReturnsLossAndEveryMetric(t *testing.T) {
	tk := classifierTask(t, task.WithMetric("top1", metrics.Accuracy))

	res, err := tk.ComputeStep(imageBatch(32), task.Train)
	require.NoError(t, err)
	assert.Equal(t, task.Train, res.Stage)
	assert.False(t, math.IsNaN(res.Loss))
	assert.Contains(t, res.Metrics, "accuracy")
	assert.Contains(t, res.Metrics, "top1")
	assert.GreaterOrEqual(t, res.Metrics["accuracy"], 0.0)
	assert.LessOrEqual(t, res.Metrics["accuracy"], 1.0)

	scalars := res.Scalars()
	assert.Contains(t, scalars, "train_loss")
	assert.Contains(t, scalars, "train_accuracy")
}

func TestMissingFieldFailsBeforeModelRuns(t *testing.T) {
	model := &recordingModel{out: tensor.New(tensor.WithShape(1, 2), tensor.WithBacking([]float64{0, 0}))}
	tk, err := task.New(model,
		task.WithInputs("abc"),
		task.WithOutputs("def"),
		task.WithLoss(losses.CrossEntropy{}),
	)
	require.NoError(t, err)

	b := datasets.Batch{"def": tensor.New(tensor.WithShape(1, 1), tensor.WithBacking([]float64{0}))}
	_, err = tk.ComputeStep(b, task.Train)
	var missing *datasets.MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "abc", missing.Field)
	assert.Zero(t, model.calls, "model ran despite the missing input field")
}

func TestMissingOutputField(t *testing.T) {
	tk := classifierTask(t)
	b := imageBatch(4)
	delete(b, "def")
	_, err := tk.ComputeStep(b, task.Val)
	var missing *datasets.MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "def", missing.Field)
}

func TestZeroMetricsStillYieldsLoss(t *testing.T) {
	model := linear.New(3*8*8, 10, 7)
	tk, err := task.New(model,
		task.WithInputs("abc"),
		task.WithOutputs("def"),
		task.WithLoss(losses.CrossEntropy{}),
	)
	require.NoError(t, err)
	res, err := tk.ComputeStep(imageBatch(8), task.Test)
	require.NoError(t, err)
	assert.Empty(t, res.Metrics)
	assert.Equal(t, map[string]float64{"test_loss": res.Loss}, res.Scalars())
}

func TestComputeStepDeterministic(t *testing.T) {
	tk := classifierTask(t)
	b := imageBatch(16)
	first, err := tk.ComputeStep(b, task.Val)
	require.NoError(t, err)
	second, err := tk.ComputeStep(b, task.Val)
	require.NoError(t, err)
	assert.Equal(t, first.Loss, second.Loss)
	assert.Equal(t, first.Metrics, second.Metrics)
}

func TestUnknownLossNameFailsAtConstruction(t *testing.T) {
	_, err := task.New(linear.New(4, 2, 1),
		task.WithInputs("abc"),
		task.WithOutputs("def"),
		task.WithHparams(task.Hparams{Loss: "hinge"}),
	)
	var unknown *losses.UnknownLossError
	require.ErrorAs(t, err, &unknown)
}

func TestConfigureOptimizationDefaults(t *testing.T) {
	tk := classifierTask(t)
	solver, schedule, err := tk.ConfigureOptimization()
	require.NoError(t, err)
	assert.NotNil(t, solver)
	assert.Nil(t, schedule)
}

func TestConfigureOptimizationResolvesNames(t *testing.T) {
	tk := classifierTask(t, task.WithHparams(task.Hparams{
		Optimizer:       "sgd",
		OptimParams:     map[string]float64{"lr": 0.5},
		Scheduler:       "cosine",
		SchedulerParams: map[string]float64{"t_max": 5},
	}))
	solver, schedule, err := tk.ConfigureOptimization()
	require.NoError(t, err)
	assert.NotNil(t, solver)
	require.NotNil(t, schedule)
	assert.Equal(t, 1.0, schedule.Rate(0))
}

func TestConfigureOptimizationUnknownNames(t *testing.T) {
	tk := classifierTask(t, task.WithHparams(task.Hparams{Optimizer: "lbfgs"}))
	_, _, err := tk.ConfigureOptimization()
	var unknownOpt *optim.UnknownOptimizerError
	require.ErrorAs(t, err, &unknownOpt)

	tk = classifierTask(t, task.WithHparams(task.Hparams{Scheduler: "plateau"}))
	_, _, err = tk.ConfigureOptimization()
	var unknownSched *optim.UnknownSchedulerError
	require.ErrorAs(t, err, &unknownSched)
}

func TestConfigureOptimizationNeedsTrainableModel(t *testing.T) {
	model := &recordingModel{out: tensor.New(tensor.WithShape(1, 2), tensor.WithBacking([]float64{0, 0}))}
	tk, err := task.New(model,
		task.WithInputs("abc"),
		task.WithOutputs("def"),
		task.WithLoss(losses.MSE{}),
	)
	require.NoError(t, err)
	_, _, err = tk.ConfigureOptimization()
	require.Error(t, err)
}

func TestTrainStepAccumulatesGradients(t *testing.T) {
	model := linear.New(3*8*8, 10, 7)
	tk, err := task.New(model,
		task.WithInputs("abc"),
		task.WithOutputs("def"),
		task.WithLoss(losses.CrossEntropy{}),
	)
	require.NoError(t, err)

	res, err := tk.TrainStep(imageBatch(8))
	require.NoError(t, err)
	assert.Equal(t, task.Train, res.Stage)

	var nonzero bool
	for _, p := range model.Parameters() {
		if _, err := p.Grad(); err == nil {
			for _, g := range p.GradDense().Data().([]float64) {
				if g != 0 {
					nonzero = true
				}
			}
		}
	}
	assert.True(t, nonzero, "no gradient accumulated by TrainStep")
}

func TestNewValidation(t *testing.T) {
	_, err := task.New(nil)
	require.Error(t, err)

	model := linear.New(4, 2, 1)
	_, err = task.New(model, task.WithOutputs("def"), task.WithLoss(losses.MSE{}))
	require.Error(t, err, "missing inputs accepted")

	_, err = task.New(model, task.WithInputs("abc"), task.WithLoss(losses.MSE{}))
	require.Error(t, err, "missing outputs accepted")

	_, err = task.New(model, task.WithInputs("abc"), task.WithOutputs("def"))
	require.Error(t, err, "missing loss accepted")
}
