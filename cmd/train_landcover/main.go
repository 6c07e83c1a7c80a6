package main

import "flag"

import "github.com/sirupsen/logrus"

import "github.com/neurlang/eotask/datasets"
import "github.com/neurlang/eotask/datasets/landcover"
import "github.com/neurlang/eotask/models/linear"
import "github.com/neurlang/eotask/task"
import "github.com/neurlang/eotask/task/classification"
import "github.com/neurlang/eotask/trainer"

func main() {

	epochs := flag.Int("epochs", 10, "number of training epochs")
	batch := flag.Int("batch", 32, "mini-batch size")
	lr := flag.Float64("lr", 0.05, "learning rate")
	dstmodel := flag.String("dstmodel", "", "model destination .json file")
	resume := flag.Bool("resume", false, "resume training from dstmodel")
	checkpoints := flag.String("checkpoints", "", "directory for best-validation checkpoints")
	flag.Parse()

	scenes := landcover.Medium()
	split := datasets.SplitShuffled(scenes, 0.15, 0.15, 42)

	model := linear.New(landcover.Bands*landcover.Size*landcover.Size, landcover.Classes, 1)
	if *resume && *dstmodel != "" {
		if err := model.ReadJsonFromFile(*dstmodel); err != nil {
			println(err.Error())
		}
	}

	t, err := classification.New(model, task.WithHparams(task.Hparams{
		Model:       "linear",
		Optimizer:   "adam",
		OptimParams: map[string]float64{"lr": *lr},
	}))
	if err != nil {
		panic(err.Error())
	}

	history, err := trainer.Fit(t, split, trainer.Options{
		Epochs:        *epochs,
		BatchSize:     *batch,
		Seed:          42,
		CheckpointDir: *checkpoints,
	})
	if err != nil {
		panic(err.Error())
	}

	stats, err := trainer.Evaluate(t, split.Test, *batch, task.Test, 0)
	if err != nil {
		panic(err.Error())
	}
	logrus.WithFields(logrus.Fields{
		"run":           history.RunID,
		"test_loss":     stats["test_loss"],
		"test_accuracy": stats["test_accuracy"],
	}).Info("test done")

	if *dstmodel != "" {
		if err := model.WriteJsonToFile(*dstmodel); err != nil {
			panic(err.Error())
		}
	}
}
