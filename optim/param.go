// Package optim binds model parameters to the gorgonia solver registry and
// provides the named learning-rate schedules tasks resolve against.
package optim

import "errors"

import gorgonia "gorgonia.org/gorgonia"
import "gorgonia.org/tensor"

// Param is a named learnable parameter: a dense value plus the gradient the
// training-loop driver accumulates into it. Param implements
// gorgonia.ValueGrad so gorgonia solvers can step it directly.
type Param struct {
	name  string
	value *tensor.Dense
	grad  *tensor.Dense
}

// NewParam wraps a dense tensor as a learnable parameter.
func NewParam(name string, value *tensor.Dense) *Param {
	return &Param{name: name, value: value}
}

func (p *Param) Name() string {
	return p.name
}

// Dense returns the parameter value tensor.
func (p *Param) Dense() *tensor.Dense {
	return p.value
}

// Value implements gorgonia.Valuer.
func (p *Param) Value() gorgonia.Value {
	return p.value
}

// Grad implements gorgonia.ValueGrad. It fails until a gradient has been
// accumulated.
func (p *Param) Grad() (gorgonia.Value, error) {
	if p.grad == nil {
		return nil, errors.New("optim: no gradient accumulated for " + p.name)
	}
	return p.grad, nil
}

// GradDense returns the gradient tensor, allocating a zero one on first use.
func (p *Param) GradDense() *tensor.Dense {
	if p.grad == nil {
		backing := make([]float64, p.value.DataSize())
		p.grad = tensor.New(tensor.WithShape(p.value.Shape().Clone()...), tensor.WithBacking(backing))
	}
	return p.grad
}

// AccumGrad adds g into the parameter gradient.
func (p *Param) AccumGrad(g *tensor.Dense) error {
	grad := p.GradDense()
	dst := grad.Data().([]float64)
	src, ok := g.Data().([]float64)
	if !ok || len(src) != len(dst) {
		return errors.New("optim: gradient size mismatch for " + p.name)
	}
	for i := range dst {
		dst[i] += src[i]
	}
	return nil
}

// ZeroGrad clears the accumulated gradient.
func (p *Param) ZeroGrad() {
	if p.grad == nil {
		return
	}
	data := p.grad.Data().([]float64)
	for i := range data {
		data[i] = 0
	}
}

// ValueGrads adapts a parameter list for gorgonia's Solver.Step.
func ValueGrads(params []*Param) []gorgonia.ValueGrad {
	out := make([]gorgonia.ValueGrad, len(params))
	for i, p := range params {
		out[i] = p
	}
	return out
}

// ZeroGrads clears every accumulated gradient.
func ZeroGrads(params []*Param) {
	for _, p := range params {
		p.ZeroGrad()
	}
}

// ScaleGrads multiplies every accumulated gradient by f. Drivers use it to
// apply schedule multipliers, since gorgonia solvers fix their learn rate at
// construction.
func ScaleGrads(params []*Param, f float64) {
	for _, p := range params {
		if p.grad == nil {
			continue
		}
		data := p.grad.Data().([]float64)
		for i := range data {
			data[i] *= f
		}
	}
}
