package datasets

import "gorgonia.org/tensor"

// InMemory is a dataset backed by field-keyed dense tensors whose leading
// axis is the sample axis. All fields must agree on the sample count.
type InMemory struct {
	n      int
	fields map[string]*tensor.Dense
}

// NewInMemory builds an in-memory dataset from field tensors.
func NewInMemory(fields map[string]tensor.Tensor) (*InMemory, error) {
	d := &InMemory{n: -1, fields: make(map[string]*tensor.Dense, len(fields))}
	for name, t := range fields {
		dense, err := Dense(t)
		if err != nil {
			return nil, err
		}
		if dense.Dims() == 0 || dense.Shape()[0] == 0 {
			return nil, &ShapeMismatchError{Op: "inmemory", Detail: "field " + name + " has no sample axis"}
		}
		if d.n >= 0 && dense.Shape()[0] != d.n {
			return nil, &ShapeMismatchError{Op: "inmemory", Detail: "field " + name + " disagrees on sample count"}
		}
		d.n = dense.Shape()[0]
		d.fields[name] = dense
	}
	if d.n < 0 {
		d.n = 0
	}
	return d, nil
}

func (d *InMemory) Len() int {
	return d.n
}

func (d *InMemory) Sample(i int) (Batch, error) {
	if i < 0 || i >= d.n {
		return nil, &ShapeMismatchError{Op: "sample", Detail: "index out of range"}
	}
	b := make(Batch, len(d.fields))
	for name, field := range d.fields {
		shape := field.Shape()
		row := 1
		for _, dim := range shape[1:] {
			row *= dim
		}
		data := field.Data().([]float64)
		backing := make([]float64, row)
		copy(backing, data[i*row:(i+1)*row])
		sampleShape := tensor.Shape{1}
		if len(shape) > 1 {
			sampleShape = shape[1:].Clone()
		}
		b[name] = tensor.New(tensor.WithShape(sampleShape...), tensor.WithBacking(backing))
	}
	return b, nil
}
