package losses

import "math"

import "gorgonia.org/tensor"

import "github.com/neurlang/eotask/datasets"

// CrossEntropy is softmax cross entropy over class logits. Predictions must
// be (samples, classes); targets hold one class index per sample.
type CrossEntropy struct{}

// rows validates the (N, K) logits against N class-index targets.
func rows(pred, target tensor.Tensor) (logits []float64, classes []float64, n, k int, err error) {
	logits, err = datasets.Floats(pred)
	if err != nil {
		return nil, nil, 0, 0, err
	}
	classes, err = datasets.Floats(target)
	if err != nil {
		return nil, nil, 0, 0, err
	}
	shape := pred.Shape()
	if len(shape) < 2 {
		return nil, nil, 0, 0, &datasets.ShapeMismatchError{Op: "crossentropy", Detail: "logits need a class axis"}
	}
	n = shape[0]
	k = len(logits) / n
	if n == 0 || k < 2 || n*k != len(logits) {
		return nil, nil, 0, 0, &datasets.ShapeMismatchError{Op: "crossentropy", Detail: "bad logits shape"}
	}
	if len(classes) != n {
		return nil, nil, 0, 0, &datasets.ShapeMismatchError{Op: "crossentropy", Detail: "one class index per sample required"}
	}
	return logits, classes, n, k, nil
}

// softmaxRow fills out with softmax of row and returns the row max-shifted
// log partition, for a numerically stable log softmax.
func softmaxRow(row []float64, out []float64) float64 {
	max := row[0]
	for _, v := range row[1:] {
		if v > max {
			max = v
		}
	}
	var sum float64
	for i, v := range row {
		out[i] = math.Exp(v - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return max + math.Log(sum)
}

func (CrossEntropy) Forward(pred, target tensor.Tensor) (float64, error) {
	logits, classes, n, k, err := rows(pred, target)
	if err != nil {
		return 0, err
	}
	probs := make([]float64, k)
	var sum float64
	for i := 0; i < n; i++ {
		row := logits[i*k : (i+1)*k]
		logZ := softmaxRow(row, probs)
		class := int(classes[i])
		if class < 0 || class >= k {
			return 0, &datasets.ShapeMismatchError{Op: "crossentropy", Detail: "class index out of range"}
		}
		sum += logZ - row[class]
	}
	return sum / float64(n), nil
}

func (CrossEntropy) Backward(pred, target tensor.Tensor) (*tensor.Dense, error) {
	logits, classes, n, k, err := rows(pred, target)
	if err != nil {
		return nil, err
	}
	grad := make([]float64, len(logits))
	for i := 0; i < n; i++ {
		row := grad[i*k : (i+1)*k]
		softmaxRow(logits[i*k:(i+1)*k], row)
		class := int(classes[i])
		if class < 0 || class >= k {
			return nil, &datasets.ShapeMismatchError{Op: "crossentropy", Detail: "class index out of range"}
		}
		row[class] -= 1
		for j := range row {
			row[j] /= float64(n)
		}
	}
	return gradLike(pred, grad), nil
}

// BCEWithLogits is elementwise binary cross entropy on logits, computed in
// the log-sum-exp form so large logits do not overflow. PosWeight scales the
// positive-target term.
type BCEWithLogits struct {
	PosWeight float64
}

func (l BCEWithLogits) weight() float64 {
	if l.PosWeight == 0 {
		return 1
	}
	return l.PosWeight
}

func (l BCEWithLogits) Forward(pred, target tensor.Tensor) (float64, error) {
	p, t, err := flatPair(pred, target)
	if err != nil {
		return 0, err
	}
	w := l.weight()
	var sum float64
	for i := range p {
		x, z := p[i], t[i]
		// -w*z*log(sigmoid(x)) - (1-z)*log(1-sigmoid(x))
		softplus := math.Log1p(math.Exp(-math.Abs(x)))
		if x > 0 {
			sum += w*z*softplus + (1-z)*(x+softplus)
		} else {
			sum += w*z*(softplus-x) + (1-z)*softplus
		}
	}
	return sum / float64(len(p)), nil
}

func (l BCEWithLogits) Backward(pred, target tensor.Tensor) (*tensor.Dense, error) {
	p, t, err := flatPair(pred, target)
	if err != nil {
		return nil, err
	}
	w := l.weight()
	grad := make([]float64, len(p))
	for i := range p {
		s := 1 / (1 + math.Exp(-p[i]))
		z := t[i]
		grad[i] = (s*(1-z+w*z) - w*z) / float64(len(p))
	}
	return gradLike(pred, grad), nil
}
