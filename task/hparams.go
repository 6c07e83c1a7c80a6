package task

import "os"

import "gopkg.in/yaml.v3"

// Hparams is the hyperparameter bag persisted alongside model state. The
// recognized keys drive loss/optimizer/scheduler resolution; any extra keys
// ride along for reproducibility and are not interpreted.
type Hparams struct {
	Model           string             `yaml:"model,omitempty"`
	Loss            string             `yaml:"loss,omitempty"`
	LossParams      map[string]float64 `yaml:"loss_params,omitempty"`
	Optimizer       string             `yaml:"optimizer,omitempty"`
	OptimParams     map[string]float64 `yaml:"optim_params,omitempty"`
	Scheduler       string             `yaml:"scheduler,omitempty"`
	SchedulerParams map[string]float64 `yaml:"scheduler_params,omitempty"`

	Extra map[string]any `yaml:",inline"`
}

// SaveFile writes the bag as YAML.
func (h Hparams) SaveFile(name string) error {
	data, err := yaml.Marshal(h)
	if err != nil {
		return err
	}
	return os.WriteFile(name, data, 0644)
}

// LoadHparams reads a YAML bag written by SaveFile.
func LoadHparams(name string) (Hparams, error) {
	var h Hparams
	data, err := os.ReadFile(name)
	if err != nil {
		return h, err
	}
	err = yaml.Unmarshal(data, &h)
	return h, err
}
