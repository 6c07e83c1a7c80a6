package landcover

import "math"

import "gorgonia.org/tensor"

import "github.com/neurlang/eotask/datasets"

// Scene geometry. Bands mimic a small multispectral stack (B, G, R, NIR).
const Bands = 4
const Size = 8
const Classes = 4

// Batch field names produced by this dataset.
const FieldImage = "image"
const FieldLabel = "label"
const FieldMask = "mask"

// Scenes is a deterministic synthetic scene dataset.
type Scenes struct {
	n int
}

// New returns a dataset of n synthetic scenes.
func New(n int) *Scenes {
	return &Scenes{n: n}
}

func Small() *Scenes {
	return New(1 << 8)
}

func Medium() *Scenes {
	return New(1 << 10)
}

func Big() *Scenes {
	return New(1 << 12)
}

func (s *Scenes) Len() int {
	return s.n
}

// Label returns the land-cover class of scene i.
func (s *Scenes) Label(i int) int {
	return i % Classes
}

// bandGain separates the classes by their mean band response, the way
// land-cover types separate in real multispectral imagery (e.g. vegetation
// is bright in NIR, water is dark in it).
func bandGain(class, band int) float64 {
	if (class+band)%2 == 0 {
		return 0.55 + 0.1*float64(class)
	}
	return 0.2 + 0.05*float64(band)
}

func (s *Scenes) Sample(i int) (datasets.Batch, error) {
	class := s.Label(i)
	phase := float64(i%17) * 0.37

	image := make([]float64, Bands*Size*Size)
	mask := make([]float64, Size*Size)
	for band := 0; band < Bands; band++ {
		gain := bandGain(class, band)
		for y := 0; y < Size; y++ {
			for x := 0; x < Size; x++ {
				texture := 0.08 * math.Sin(phase+float64(x+y*Size+band))
				image[(band*Size+y)*Size+x] = gain + texture
			}
		}
	}
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			// covered where the synthetic NIR response dominates the red one
			nir := image[((Bands-1)*Size+y)*Size+x]
			red := image[(2*Size+y)*Size+x]
			if nir > red {
				mask[y*Size+x] = 1
			}
		}
	}

	return datasets.Batch{
		FieldImage: tensor.New(tensor.WithShape(Bands, Size, Size), tensor.WithBacking(image)),
		FieldLabel: tensor.New(tensor.WithShape(1), tensor.WithBacking([]float64{float64(class)})),
		FieldMask:  tensor.New(tensor.WithShape(1, Size, Size), tensor.WithBacking(mask)),
	}, nil
}
