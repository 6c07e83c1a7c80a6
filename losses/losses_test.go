package losses

import "errors"
import "math"
import "testing"

import "gorgonia.org/tensor"

import "github.com/neurlang/eotask/datasets"

func vec(shape tensor.Shape, backing []float64) tensor.Tensor {
	return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(backing))
}

func TestRegistry(t *testing.T) {
	for _, name := range []string{"mse", "MSE", "mae", "l1", "crossentropy", "bcewithlogits"} {
		if _, err := New(name, nil); err != nil {
			t.Errorf("New(%q) errored: %v", name, err)
		}
	}
	_, err := New("hinge", nil)
	var unknown *UnknownLossError
	if !errors.As(err, &unknown) {
		t.Errorf("expected UnknownLossError, got %v", err)
	}
}

func TestMSE(t *testing.T) {
	pred := vec(tensor.Shape{2}, []float64{1, 2})
	target := vec(tensor.Shape{2}, []float64{0, 0})
	loss, err := MSE{}.Forward(pred, target)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(loss-2.5) > 1e-12 {
		t.Errorf("mse = %v, want 2.5", loss)
	}
	grad, err := MSE{}.Backward(pred, target)
	if err != nil {
		t.Fatal(err)
	}
	g := grad.Data().([]float64)
	if math.Abs(g[0]-1) > 1e-12 || math.Abs(g[1]-2) > 1e-12 {
		t.Errorf("mse grad = %v, want [1 2]", g)
	}
}

func TestCrossEntropy(t *testing.T) {
	pred := vec(tensor.Shape{1, 2}, []float64{0, 0})
	target := vec(tensor.Shape{1}, []float64{0})
	loss, err := CrossEntropy{}.Forward(pred, target)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(loss-math.Log(2)) > 1e-12 {
		t.Errorf("crossentropy = %v, want ln 2", loss)
	}
	grad, err := CrossEntropy{}.Backward(pred, target)
	if err != nil {
		t.Fatal(err)
	}
	g := grad.Data().([]float64)
	if math.Abs(g[0]+0.5) > 1e-12 || math.Abs(g[1]-0.5) > 1e-12 {
		t.Errorf("crossentropy grad = %v, want [-0.5 0.5]", g)
	}
}

func TestBCEWithLogits(t *testing.T) {
	pred := vec(tensor.Shape{1}, []float64{0})
	target := vec(tensor.Shape{1}, []float64{1})
	loss, err := BCEWithLogits{}.Forward(pred, target)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(loss-math.Log(2)) > 1e-12 {
		t.Errorf("bce = %v, want ln 2", loss)
	}
	// pos_weight doubles the positive term
	weighted, err := BCEWithLogits{PosWeight: 2}.Forward(pred, target)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(weighted-2*math.Log(2)) > 1e-12 {
		t.Errorf("weighted bce = %v, want 2 ln 2", weighted)
	}
}

// gradient check against central finite differences
func TestBackwardMatchesFiniteDifference(t *testing.T) {
	cases := []struct {
		name   string
		loss   Loss
		pred   []float64
		shape  tensor.Shape
		target tensor.Tensor
	}{
		{"mse", MSE{}, []float64{0.3, -1.2, 2.0}, tensor.Shape{3}, vec(tensor.Shape{3}, []float64{0, 1, -1})},
		{"crossentropy", CrossEntropy{}, []float64{0.5, -0.5, 1.5, 0.1, 0.2, -0.3}, tensor.Shape{2, 3}, vec(tensor.Shape{2}, []float64{2, 0})},
		{"bcewithlogits", BCEWithLogits{PosWeight: 1.5}, []float64{0.7, -1.1, 0.0, 3.0}, tensor.Shape{4}, vec(tensor.Shape{4}, []float64{1, 0, 1, 0})},
	}
	const eps = 1e-6
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pred := vec(tc.shape, append([]float64{}, tc.pred...))
			grad, err := tc.loss.Backward(pred, tc.target)
			if err != nil {
				t.Fatal(err)
			}
			g := grad.Data().([]float64)
			for i := range tc.pred {
				bumped := append([]float64{}, tc.pred...)
				bumped[i] += eps
				up, err := tc.loss.Forward(vec(tc.shape, bumped), tc.target)
				if err != nil {
					t.Fatal(err)
				}
				bumped[i] -= 2 * eps
				down, err := tc.loss.Forward(vec(tc.shape, bumped), tc.target)
				if err != nil {
					t.Fatal(err)
				}
				numeric := (up - down) / (2 * eps)
				if math.Abs(numeric-g[i]) > 1e-5 {
					t.Errorf("%s grad[%d] = %v, finite difference %v", tc.name, i, g[i], numeric)
				}
			}
		})
	}
}

func TestShapeMismatch(t *testing.T) {
	pred := vec(tensor.Shape{2}, []float64{1, 2})
	target := vec(tensor.Shape{3}, []float64{1, 2, 3})
	_, err := MSE{}.Forward(pred, target)
	var mismatch *datasets.ShapeMismatchError
	if !errors.As(err, &mismatch) {
		t.Errorf("expected ShapeMismatchError, got %v", err)
	}
	_, err = CrossEntropy{}.Forward(vec(tensor.Shape{4}, []float64{1, 2, 3, 4}), target)
	if !errors.As(err, &mismatch) {
		t.Errorf("expected ShapeMismatchError for rank-1 logits, got %v", err)
	}
}
