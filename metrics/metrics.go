// Package metrics implements scalar evaluation functions compared against
// model predictions and targets. A metric is any func(pred, target) scalar;
// tasks carry them in a name-keyed map and impose no further contract.
package metrics

import "math"

import "gorgonia.org/tensor"

import "github.com/neurlang/eotask/datasets"

// Metric scores a prediction against a target.
type Metric func(pred, target tensor.Tensor) (float64, error)

// Accuracy is the fraction of samples whose argmax class matches the target
// class index. Predictions must be (samples, classes).
func Accuracy(pred, target tensor.Tensor) (float64, error) {
	logits, err := datasets.Floats(pred)
	if err != nil {
		return 0, err
	}
	classes, err := datasets.Floats(target)
	if err != nil {
		return 0, err
	}
	shape := pred.Shape()
	if len(shape) < 2 || shape[0] == 0 {
		return 0, &datasets.ShapeMismatchError{Op: "accuracy", Detail: "predictions need a class axis"}
	}
	n := shape[0]
	k := len(logits) / n
	if n*k != len(logits) || len(classes) != n {
		return 0, &datasets.ShapeMismatchError{Op: "accuracy", Detail: "one class index per sample required"}
	}
	var hits float64
	for i := 0; i < n; i++ {
		row := logits[i*k : (i+1)*k]
		best := 0
		for j, v := range row {
			if v > row[best] {
				best = j
			}
		}
		if best == int(classes[i]) {
			hits++
		}
	}
	return hits / float64(n), nil
}

// MSE is the mean squared error metric.
func MSE(pred, target tensor.Tensor) (float64, error) {
	p, t, err := pair(pred, target)
	if err != nil {
		return 0, err
	}
	var sum float64
	for i := range p {
		diff := p[i] - t[i]
		sum += diff * diff
	}
	return sum / float64(len(p)), nil
}

// MAE is the mean absolute error metric.
func MAE(pred, target tensor.Tensor) (float64, error) {
	p, t, err := pair(pred, target)
	if err != nil {
		return 0, err
	}
	var sum float64
	for i := range p {
		sum += math.Abs(p[i] - t[i])
	}
	return sum / float64(len(p)), nil
}

// IoU builds an intersection-over-union metric for binary masks. Prediction
// logits pass through a sigmoid and threshold; targets threshold at 0.5.
// When both masks are empty the score is 1.
func IoU(threshold float64) Metric {
	return func(pred, target tensor.Tensor) (float64, error) {
		p, t, err := pair(pred, target)
		if err != nil {
			return 0, err
		}
		var inter, union float64
		for i := range p {
			hit := 1/(1+math.Exp(-p[i])) > threshold
			want := t[i] > 0.5
			if hit && want {
				inter++
			}
			if hit || want {
				union++
			}
		}
		if union == 0 {
			return 1, nil
		}
		return inter / union, nil
	}
}

func pair(pred, target tensor.Tensor) ([]float64, []float64, error) {
	p, err := datasets.Floats(pred)
	if err != nil {
		return nil, nil, err
	}
	t, err := datasets.Floats(target)
	if err != nil {
		return nil, nil, err
	}
	if len(p) != len(t) || len(p) == 0 {
		return nil, nil, &datasets.ShapeMismatchError{Op: "metric", Detail: "prediction and target sizes differ"}
	}
	return p, t, nil
}
