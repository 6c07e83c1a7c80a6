package optim

import "math"
import "strings"

// Schedule yields the learning-rate multiplier for an epoch. Multipliers
// start at 1; the driver applies them on top of the solver's base rate.
type Schedule interface {
	Rate(epoch int) float64
}

// UnknownSchedulerError reports a scheduler name absent from the registry.
type UnknownSchedulerError struct {
	Name string
}

func (e *UnknownSchedulerError) Error() string {
	return "optim: unknown scheduler " + e.Name
}

type stepSchedule struct {
	stepSize int
	gamma    float64
}

func (s stepSchedule) Rate(epoch int) float64 {
	return math.Pow(s.gamma, float64(epoch/s.stepSize))
}

type expSchedule struct {
	gamma float64
}

func (s expSchedule) Rate(epoch int) float64 {
	return math.Pow(s.gamma, float64(epoch))
}

type cosineSchedule struct {
	tMax      int
	minFactor float64
}

func (s cosineSchedule) Rate(epoch int) float64 {
	if epoch >= s.tMax {
		return s.minFactor
	}
	cos := 0.5 * (1 + math.Cos(math.Pi*float64(epoch)/float64(s.tMax)))
	return s.minFactor + (1-s.minFactor)*cos
}

func param(params map[string]float64, key string, fallback float64) float64 {
	if v, ok := params[key]; ok {
		return v
	}
	return fallback
}

// NewSchedule resolves a learning-rate schedule by name. Names are
// case-insensitive; omitted parameters take defaults.
func NewSchedule(name string, params map[string]float64) (Schedule, error) {
	switch strings.ToLower(name) {
	case "step":
		stepSize := int(param(params, "step_size", 10))
		if stepSize < 1 {
			stepSize = 1
		}
		return stepSchedule{stepSize: stepSize, gamma: param(params, "gamma", 0.1)}, nil
	case "exponential":
		return expSchedule{gamma: param(params, "gamma", 0.95)}, nil
	case "cosine":
		tMax := int(param(params, "t_max", 10))
		if tMax < 1 {
			tMax = 1
		}
		return cosineSchedule{tMax: tMax, minFactor: param(params, "min_factor", 0)}, nil
	}
	return nil, &UnknownSchedulerError{Name: name}
}
