package datasets

import "github.com/jbarham/primegen"

// StrideOrder returns a deterministic permutation of [0, n) built by walking
// the indices with a prime stride larger than n. A prime stride is always
// coprime with n, so the walk visits every index exactly once.
func StrideOrder(n int, seed uint64) []int {
	if n <= 0 {
		return nil
	}
	gen := primegen.New()
	var stride uint64
	for skip := seed % 16; ; {
		stride = gen.Next()
		if stride <= uint64(n) {
			continue
		}
		if skip == 0 {
			break
		}
		skip--
	}
	order := make([]int, n)
	at := seed % uint64(n)
	for i := range order {
		order[i] = int(at)
		at = (at + stride) % uint64(n)
	}
	return order
}

// Subset is a view over a parent dataset restricted to a fixed index list.
type Subset struct {
	parent  Dataset
	indices []int
}

func (s *Subset) Len() int {
	return len(s.indices)
}

func (s *Subset) Sample(i int) (Batch, error) {
	return s.parent.Sample(s.indices[i])
}

// NewSubset builds a subset view of parent over the given indices.
func NewSubset(parent Dataset, indices []int) *Subset {
	return &Subset{parent: parent, indices: indices}
}

// Split holds the standard three-way division of a dataset.
type Split struct {
	Train Dataset
	Val   Dataset
	Test  Dataset
}

// SplitShuffled shuffles d deterministically and divides it into disjoint
// train, validation and test subsets. valFrac and testFrac are fractions of
// the whole; the train subset receives the remainder.
func SplitShuffled(d Dataset, valFrac, testFrac float64, seed uint64) Split {
	order := StrideOrder(d.Len(), seed)
	nVal := int(float64(len(order)) * valFrac)
	nTest := int(float64(len(order)) * testFrac)
	nTrain := len(order) - nVal - nTest
	return Split{
		Train: NewSubset(d, order[:nTrain]),
		Val:   NewSubset(d, order[nTrain:nTrain+nVal]),
		Test:  NewSubset(d, order[nTrain+nVal:]),
	}
}
