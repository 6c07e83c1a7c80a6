package main

import "flag"

import "github.com/sirupsen/logrus"

import "github.com/neurlang/eotask/datasets"
import "github.com/neurlang/eotask/datasets/landcover"
import "github.com/neurlang/eotask/models/linear"
import "github.com/neurlang/eotask/task"
import "github.com/neurlang/eotask/task/segmentation"
import "github.com/neurlang/eotask/trainer"

func main() {

	epochs := flag.Int("epochs", 10, "number of training epochs")
	batch := flag.Int("batch", 32, "mini-batch size")
	lr := flag.Float64("lr", 0.05, "learning rate")
	dstmodel := flag.String("dstmodel", "", "model destination .json file")
	resume := flag.Bool("resume", false, "resume training from dstmodel")
	flag.Parse()

	scenes := landcover.Medium()
	split := datasets.SplitShuffled(scenes, 0.15, 0.15, 42)

	// one logit per mask pixel
	model := linear.New(landcover.Bands*landcover.Size*landcover.Size, landcover.Size*landcover.Size, 1)
	if *resume && *dstmodel != "" {
		if err := model.ReadJsonFromFile(*dstmodel); err != nil {
			println(err.Error())
		}
	}

	t, err := segmentation.New(model, task.WithHparams(task.Hparams{
		Model:           "linear",
		Optimizer:       "adam",
		OptimParams:     map[string]float64{"lr": *lr},
		Scheduler:       "cosine",
		SchedulerParams: map[string]float64{"t_max": float64(*epochs)},
	}))
	if err != nil {
		panic(err.Error())
	}

	history, err := trainer.Fit(t.Task, split, trainer.Options{
		Epochs:    *epochs,
		BatchSize: *batch,
		Seed:      42,
	})
	if err != nil {
		panic(err.Error())
	}

	stats, err := trainer.Evaluate(t.Task, split.Test, *batch, task.Test, 0)
	if err != nil {
		panic(err.Error())
	}
	logrus.WithFields(logrus.Fields{
		"run":       history.RunID,
		"test_loss": stats["test_loss"],
		"test_iou":  stats["test_iou"],
	}).Info("test done")

	if *dstmodel != "" {
		if err := model.WriteJsonToFile(*dstmodel); err != nil {
			panic(err.Error())
		}
	}
}
