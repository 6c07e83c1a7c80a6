package linear

import "encoding/json"
import "io"
import "os"

import "github.com/neurlang/eotask/datasets"

type weightsJson struct {
	In  int       `json:"in"`
	Out int       `json:"out"`
	W   []float64 `json:"w"`
	B   []float64 `json:"b"`
}

// WriteJson writes model weights to a writer
func (m *Model) WriteJson(w io.Writer) error {
	return json.NewEncoder(w).Encode(weightsJson{
		In:  m.in,
		Out: m.out,
		W:   m.w.Dense().Data().([]float64),
		B:   m.b.Dense().Data().([]float64),
	})
}

// ReadJson reads model weights from a reader
func (m *Model) ReadJson(r io.Reader) error {
	var stored weightsJson
	if err := json.NewDecoder(r).Decode(&stored); err != nil {
		return err
	}
	if stored.In != m.in || stored.Out != m.out || len(stored.W) != m.in*m.out || len(stored.B) != m.out {
		return &datasets.ShapeMismatchError{Op: "linear", Detail: "stored weights do not fit the model"}
	}
	copy(m.w.Dense().Data().([]float64), stored.W)
	copy(m.b.Dense().Data().([]float64), stored.B)
	return nil
}

// WriteJsonToFile writes model weights to a json file
func (m *Model) WriteJsonToFile(name string) error {
	file, err := os.Create(name)
	if err != nil {
		return err
	}
	err = m.WriteJson(file)
	file.Close()
	return err
}

// ReadJsonFromFile reads model weights from a json file
func (m *Model) ReadJsonFromFile(name string) error {
	file, err := os.Open(name)
	if err != nil {
		return err
	}
	err = m.ReadJson(file)
	file.Close()
	return err
}
