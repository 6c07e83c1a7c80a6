package task

import "path/filepath"
import "testing"

func TestHparamsRoundtripKeepsExtraKeys(t *testing.T) {
	name := filepath.Join(t.TempDir(), "hparams.yaml")
	h := Hparams{
		Model:       "linear",
		Loss:        "crossentropy",
		Optimizer:   "adam",
		OptimParams: map[string]float64{"lr": 0.05},
		Extra: map[string]any{
			"experiment": "landcover-v2",
			"fold":       3,
		},
	}
	if err := h.SaveFile(name); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadHparams(name)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Loss != "crossentropy" || loaded.Optimizer != "adam" {
		t.Errorf("recognized keys lost: %+v", loaded)
	}
	if loaded.OptimParams["lr"] != 0.05 {
		t.Errorf("optim_params lost: %+v", loaded.OptimParams)
	}
	if loaded.Extra["experiment"] != "landcover-v2" {
		t.Errorf("extra key lost: %+v", loaded.Extra)
	}
}
