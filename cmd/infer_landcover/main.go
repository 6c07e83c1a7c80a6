package main

import "flag"
import "fmt"

import "github.com/neurlang/eotask/datasets"
import "github.com/neurlang/eotask/datasets/landcover"
import "github.com/neurlang/eotask/models/linear"
import "github.com/neurlang/eotask/task"
import "github.com/neurlang/eotask/task/classification"
import "github.com/neurlang/eotask/trainer"

func main() {

	srcmodel := flag.String("srcmodel", "", "trained model .json file")
	batch := flag.Int("batch", 32, "mini-batch size")
	show := flag.Int("show", 8, "number of individual predictions to print")
	flag.Parse()

	scenes := landcover.Small()

	model := linear.New(landcover.Bands*landcover.Size*landcover.Size, landcover.Classes, 1)
	if *srcmodel != "" {
		if err := model.ReadJsonFromFile(*srcmodel); err != nil {
			panic(err.Error())
		}
	}

	t, err := classification.New(model, task.WithHparams(task.Hparams{Model: "linear"}))
	if err != nil {
		panic(err.Error())
	}

	stats, err := trainer.Evaluate(t, scenes, *batch, task.Test, 0)
	if err != nil {
		panic(err.Error())
	}
	fmt.Printf("accuracy: %.4f loss: %.4f\n", stats["test_accuracy"], stats["test_loss"])

	for i := 0; i < *show && i < scenes.Len(); i++ {
		b, err := datasets.Collate(scenes, []int{i})
		if err != nil {
			panic(err.Error())
		}
		pred, err := t.Predict(b)
		if err != nil {
			panic(err.Error())
		}
		logits, err := datasets.Floats(pred)
		if err != nil {
			panic(err.Error())
		}
		best := 0
		for j, v := range logits {
			if v > logits[best] {
				best = j
			}
		}
		fmt.Printf("scene %d: predicted %d actual %d\n", i, best, scenes.Label(i))
	}
}
