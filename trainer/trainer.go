package trainer

import "math"
import "path/filepath"

import "github.com/google/uuid"
import "github.com/sirupsen/logrus"
import gorgonia "gorgonia.org/gorgonia"

import "github.com/neurlang/eotask/datasets"
import "github.com/neurlang/eotask/optim"
import "github.com/neurlang/eotask/parallel"
import "github.com/neurlang/eotask/task"

// Persister is implemented by models whose weights can be checkpointed.
type Persister interface {
	WriteJsonToFile(name string) error
}

// Options configures a fit run.
type Options struct {
	Epochs    int
	BatchSize int
	Seed      uint64

	// Workers bounds the batch-materialization fan-out; non-positive means
	// one per logical core.
	Workers int

	// CheckpointDir, when set, receives the best-validation weights and the
	// hparams bag of the run.
	CheckpointDir string

	Logger *logrus.Logger
}

// EpochStats carries the aggregated scalars of one epoch.
type EpochStats struct {
	Epoch int
	Train map[string]float64
	Val   map[string]float64
}

// History is the record of a fit run.
type History struct {
	RunID  string
	Epochs []EpochStats
}

// Fit drives the task over the split for the configured number of epochs:
// shuffled train batches through TrainStep with optimizer stepping, then a
// validation pass, then logging and best-checkpoint saving.
func Fit(t *task.Task, data datasets.Split, opts Options) (*History, error) {
	if opts.Epochs <= 0 {
		opts.Epochs = 1
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 32
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	history := &History{RunID: uuid.NewString()[:8]}

	var params []*optim.Param
	var solver gorgonia.Solver
	var schedule optim.Schedule
	if model, ok := t.Model().(task.Backprop); ok {
		s, sched, err := t.ConfigureOptimization()
		if err != nil {
			return nil, err
		}
		solver, schedule = s, sched
		params = model.Parameters()
	}

	best := math.Inf(1)
	for epoch := 0; epoch < opts.Epochs; epoch++ {
		rate := 1.0
		if schedule != nil {
			rate = schedule.Rate(epoch)
		}

		trainAgg := newAggregate()
		err := datasets.ForEachBatch(data.Train, opts.BatchSize, opts.Seed+uint64(epoch), func(b datasets.Batch) error {
			res, err := t.TrainStep(b)
			if err != nil {
				return err
			}
			trainAgg.add(res.Scalars())
			if solver != nil {
				if rate != 1 {
					optim.ScaleGrads(params, rate)
				}
				if err := solver.Step(optim.ValueGrads(params)); err != nil {
					return err
				}
				optim.ZeroGrads(params)
			}
			return nil
		})
		if err != nil {
			return history, err
		}

		valStats, err := Evaluate(t, data.Val, opts.BatchSize, task.Val, opts.Workers)
		if err != nil {
			return history, err
		}

		stats := EpochStats{Epoch: epoch, Train: trainAgg.means(), Val: valStats}
		history.Epochs = append(history.Epochs, stats)

		fields := logrus.Fields{"run": history.RunID, "epoch": epoch, "lr_scale": rate}
		for name, value := range stats.Train {
			fields[name] = value
		}
		for name, value := range stats.Val {
			fields[name] = value
		}
		logger.WithFields(fields).Info("epoch done")

		if opts.CheckpointDir != "" {
			if valLoss, ok := stats.Val["val_loss"]; ok && valLoss < best {
				best = valLoss
				if err := checkpoint(t, history.RunID, opts.CheckpointDir); err != nil {
					return history, err
				}
			}
		}
	}
	return history, nil
}

// Evaluate runs a pure compute-step pass over the dataset and returns the
// stage-prefixed scalar means. Batch materialization fans out over workers;
// the compute steps themselves run serially, since models may cache forward
// state.
func Evaluate(t *task.Task, d datasets.Dataset, batchSize int, stage task.Stage, workers int) (map[string]float64, error) {
	if d == nil || d.Len() == 0 {
		return map[string]float64{}, nil
	}
	if batchSize <= 0 {
		batchSize = 32
	}
	count := (d.Len() + batchSize - 1) / batchSize
	batches := make([]datasets.Batch, count)
	errs := make([]error, count)
	parallel.ForEach(count, workers, func(i int) {
		at := i * batchSize
		end := at + batchSize
		if end > d.Len() {
			end = d.Len()
		}
		indices := make([]int, end-at)
		for j := range indices {
			indices[j] = at + j
		}
		batches[i], errs[i] = datasets.Collate(d, indices)
	})
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	agg := newAggregate()
	for _, b := range batches {
		res, err := t.ComputeStep(b, stage)
		if err != nil {
			return nil, err
		}
		agg.add(res.Scalars())
	}
	return agg.means(), nil
}

func checkpoint(t *task.Task, runID, dir string) error {
	if err := t.Hparams().SaveFile(filepath.Join(dir, runID+".hparams.yaml")); err != nil {
		return err
	}
	if model, ok := t.Model().(Persister); ok {
		return model.WriteJsonToFile(filepath.Join(dir, runID+".weights.json"))
	}
	return nil
}

// aggregate keeps running sums of scalar maps.
type aggregate struct {
	sums  map[string]float64
	count float64
}

func newAggregate() *aggregate {
	return &aggregate{sums: make(map[string]float64)}
}

func (a *aggregate) add(scalars map[string]float64) {
	for name, value := range scalars {
		a.sums[name] += value
	}
	a.count++
}

func (a *aggregate) means() map[string]float64 {
	out := make(map[string]float64, len(a.sums))
	for name, sum := range a.sums {
		out[name] = sum / a.count
	}
	return out
}
