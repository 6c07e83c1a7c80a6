package losses

import "math"

import "gorgonia.org/tensor"

import "github.com/neurlang/eotask/datasets"

// flatPair flattens prediction and target to equally long float64 slices.
func flatPair(pred, target tensor.Tensor) ([]float64, []float64, error) {
	p, err := datasets.Floats(pred)
	if err != nil {
		return nil, nil, err
	}
	t, err := datasets.Floats(target)
	if err != nil {
		return nil, nil, err
	}
	if len(p) != len(t) {
		return nil, nil, &datasets.ShapeMismatchError{Op: "loss", Detail: "prediction and target sizes differ"}
	}
	if len(p) == 0 {
		return nil, nil, &datasets.ShapeMismatchError{Op: "loss", Detail: "empty prediction"}
	}
	return p, t, nil
}

func gradLike(pred tensor.Tensor, backing []float64) *tensor.Dense {
	return tensor.New(tensor.WithShape(pred.Shape().Clone()...), tensor.WithBacking(backing))
}

// MSE is the mean squared error loss.
type MSE struct{}

func (MSE) Forward(pred, target tensor.Tensor) (float64, error) {
	p, t, err := flatPair(pred, target)
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

func (MSE) Backward(pred, target tensor.Tensor) (*tensor.Dense, error) {
	p, t, err := flatPair(pred, target)
	if err != nil {
		return nil, err
	}
	grad := make([]float64, len(p))
	for i := range p {
		grad[i] = 2 * (p[i] - t[i]) / float64(len(p))
	}
	return gradLike(pred, grad), nil
}

// MAE is the mean absolute error loss.
type MAE struct{}

func (MAE) Forward(pred, target tensor.Tensor) (float64, error) {
	p, t, err := flatPair(pred, target)
	if err != nil {
		return 0, err
	}
	var sum float64
	for i := range p {
		sum += math.Abs(p[i] - t[i])
	}
	return sum / float64(len(p)), nil
}

func (MAE) Backward(pred, target tensor.Tensor) (*tensor.Dense, error) {
	p, t, err := flatPair(pred, target)
	if err != nil {
		return nil, err
	}
	grad := make([]float64, len(p))
	for i := range p {
		switch {
		case p[i] > t[i]:
			grad[i] = 1 / float64(len(p))
		case p[i] < t[i]:
			grad[i] = -1 / float64(len(p))
		}
	}
	return gradLike(pred, grad), nil
}
