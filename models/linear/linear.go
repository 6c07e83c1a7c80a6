// Package linear implements a linear model collaborator for tasks: a dense
// affine map with learnable weights, gradient backpropagation and Json
// weight persistence. It exists so tasks, the trainer and the demo programs
// have a concrete model to drive; real deployments plug in their own.
package linear

import "math"
import "math/rand"

import "gorgonia.org/tensor"

import "github.com/neurlang/eotask/datasets"
import "github.com/neurlang/eotask/optim"

// Model is y = x·W + b over inputs flattened to (samples, in) rows.
type Model struct {
	in, out int
	w, b    *optim.Param

	// input of the last forward pass, kept for the backward pass
	lastX *tensor.Dense
}

// New creates a linear model with weights drawn from a seeded source scaled
// by 1/sqrt(in), so runs are reproducible.
func New(in, out int, seed int64) *Model {
	rng := rand.New(rand.NewSource(seed))
	scale := 1 / math.Sqrt(float64(in))
	weights := make([]float64, in*out)
	for i := range weights {
		weights[i] = rng.NormFloat64() * scale
	}
	bias := make([]float64, out)
	return &Model{
		in:  in,
		out: out,
		w:   optim.NewParam("w", tensor.New(tensor.WithShape(in, out), tensor.WithBacking(weights))),
		b:   optim.NewParam("b", tensor.New(tensor.WithShape(out), tensor.WithBacking(bias))),
	}
}

// In returns the flattened input width.
func (m *Model) In() int {
	return m.in
}

// Out returns the output width.
func (m *Model) Out() int {
	return m.out
}

// Parameters exposes the learnable parameters for optimizer binding.
func (m *Model) Parameters() []*optim.Param {
	return []*optim.Param{m.w, m.b}
}

// Forward flattens the leading-axis batch to (samples, in) rows and applies
// the affine map.
func (m *Model) Forward(inputs ...tensor.Tensor) (tensor.Tensor, error) {
	if len(inputs) == 0 {
		return nil, &datasets.ShapeMismatchError{Op: "linear", Detail: "no input"}
	}
	data, err := datasets.Floats(inputs[0])
	if err != nil {
		return nil, err
	}
	shape := inputs[0].Shape()
	if len(shape) == 0 || shape[0] == 0 {
		return nil, &datasets.ShapeMismatchError{Op: "linear", Detail: "input has no sample axis"}
	}
	n := shape[0]
	if len(data) != n*m.in {
		return nil, &datasets.ShapeMismatchError{Op: "linear", Detail: "input does not flatten to the configured width"}
	}
	x := tensor.New(tensor.WithShape(n, m.in), tensor.WithBacking(data))
	prod, err := tensor.Dot(x, m.w.Dense())
	if err != nil {
		return nil, err
	}
	y, err := datasets.Dense(prod)
	if err != nil {
		return nil, err
	}
	out := y.Data().([]float64)
	bias := m.b.Dense().Data().([]float64)
	for i := 0; i < n; i++ {
		for j := 0; j < m.out; j++ {
			out[i*m.out+j] += bias[j]
		}
	}
	m.lastX = x
	return y, nil
}

// Backward accumulates parameter gradients from the loss gradient of the
// last forward pass.
func (m *Model) Backward(dout *tensor.Dense) error {
	if m.lastX == nil {
		return &datasets.ShapeMismatchError{Op: "linear", Detail: "backward before forward"}
	}
	douts, err := datasets.Floats(dout)
	if err != nil {
		return err
	}
	x := m.lastX.Data().([]float64)
	n := m.lastX.Shape()[0]
	if len(douts) != n*m.out {
		return &datasets.ShapeMismatchError{Op: "linear", Detail: "loss gradient does not match the output width"}
	}
	dw := m.w.GradDense().Data().([]float64)
	db := m.b.GradDense().Data().([]float64)
	for i := 0; i < n; i++ {
		for j := 0; j < m.out; j++ {
			g := douts[i*m.out+j]
			db[j] += g
			for k := 0; k < m.in; k++ {
				dw[k*m.out+j] += x[i*m.in+k] * g
			}
		}
	}
	return nil
}
