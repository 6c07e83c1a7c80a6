// Package datasets implements field-keyed batches and dataset splits for task training
package datasets

import "sort"

import "gorgonia.org/tensor"

// Batch is one field-keyed collection of tensors produced per training step.
type Batch map[string]tensor.Tensor

// Field extracts the named tensor from the batch.
func (b Batch) Field(name string) (tensor.Tensor, error) {
	t, ok := b[name]
	if !ok {
		return nil, &MissingFieldError{Field: name}
	}
	return t, nil
}

// Fields lists the field names present in the batch, sorted.
func (b Batch) Fields() []string {
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dataset is a source of per-sample batches.
type Dataset interface {

	// Len returns the number of samples
	Len() int

	// Sample returns the i-th sample as a single-sample batch
	Sample(i int) (Batch, error)
}

// Dense converts a batch tensor to a float64 dense tensor.
func Dense(t tensor.Tensor) (*tensor.Dense, error) {
	d, ok := t.(*tensor.Dense)
	if !ok {
		return nil, &ShapeMismatchError{Op: "dense", Detail: "tensor is not dense"}
	}
	if d.Dtype() != tensor.Float64 {
		return nil, &ShapeMismatchError{Op: "dense", Detail: "tensor is not float64"}
	}
	return d, nil
}

// Floats returns the flat float64 backing of a batch tensor.
func Floats(t tensor.Tensor) ([]float64, error) {
	d, err := Dense(t)
	if err != nil {
		return nil, err
	}
	return d.Data().([]float64), nil
}

// Collate stacks the listed samples of d along a new leading axis, field by field.
// Every sample must carry the same fields with the same shapes.
func Collate(d Dataset, indices []int) (Batch, error) {
	if len(indices) == 0 {
		return Batch{}, nil
	}
	first, err := d.Sample(indices[0])
	if err != nil {
		return nil, err
	}
	type column struct {
		shape   tensor.Shape
		backing []float64
	}
	columns := make(map[string]*column, len(first))
	for _, name := range first.Fields() {
		data, err := Floats(first[name])
		if err != nil {
			return nil, err
		}
		columns[name] = &column{
			shape:   first[name].Shape().Clone(),
			backing: make([]float64, 0, len(data)*len(indices)),
		}
	}
	for _, i := range indices {
		sample, err := d.Sample(i)
		if err != nil {
			return nil, err
		}
		for name, col := range columns {
			t, err := sample.Field(name)
			if err != nil {
				return nil, err
			}
			data, err := Floats(t)
			if err != nil {
				return nil, err
			}
			if !t.Shape().Eq(col.shape) {
				return nil, &ShapeMismatchError{Op: "collate", Detail: "field " + name + " shape varies across samples"}
			}
			col.backing = append(col.backing, data...)
		}
	}
	out := make(Batch, len(columns))
	for name, col := range columns {
		shape := append(tensor.Shape{len(indices)}, col.shape...)
		out[name] = tensor.New(tensor.WithShape(shape...), tensor.WithBacking(col.backing))
	}
	return out, nil
}

// ForEachBatch splits d into shuffled mini-batches of at most size samples and
// calls fn on each. The shuffle is deterministic in seed. A trailing partial
// batch is delivered last.
func ForEachBatch(d Dataset, size int, seed uint64, fn func(b Batch) error) error {
	if size <= 0 {
		size = 1
	}
	order := StrideOrder(d.Len(), seed)
	for at := 0; at < len(order); at += size {
		end := at + size
		if end > len(order) {
			end = len(order)
		}
		b, err := Collate(d, order[at:end])
		if err != nil {
			return err
		}
		if err := fn(b); err != nil {
			return err
		}
	}
	return nil
}
