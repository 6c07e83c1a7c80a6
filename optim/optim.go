package optim

import "strings"

import gorgonia "gorgonia.org/gorgonia"

// UnknownOptimizerError reports an optimizer name absent from the registry.
type UnknownOptimizerError struct {
	Name string
}

func (e *UnknownOptimizerError) Error() string {
	return "optim: unknown optimizer " + e.Name
}

// UnknownParamError reports a hyperparameter a solver does not recognize.
type UnknownParamError struct {
	Solver string
	Param  string
}

func (e *UnknownParamError) Error() string {
	return "optim: solver " + e.Solver + " does not recognize parameter " + e.Param
}

// opt translates one recognized hyperparameter key to a gorgonia solver option.
type opt func(v float64) gorgonia.SolverOpt

var commonOpts = map[string]opt{
	"lr":            gorgonia.WithLearnRate,
	"learning_rate": gorgonia.WithLearnRate,
	"l1":            gorgonia.WithL1Reg,
	"l2":            gorgonia.WithL2Reg,
	"clip":          gorgonia.WithClip,
	"batch":         gorgonia.WithBatchSize,
}

type solverEntry struct {
	ctor  func(opts ...gorgonia.SolverOpt) gorgonia.Solver
	extra map[string]opt
}

var solvers = map[string]solverEntry{
	"sgd": {
		ctor: func(opts ...gorgonia.SolverOpt) gorgonia.Solver { return gorgonia.NewVanillaSolver(opts...) },
	},
	"momentum": {
		ctor:  func(opts ...gorgonia.SolverOpt) gorgonia.Solver { return gorgonia.NewMomentum(opts...) },
		extra: map[string]opt{"momentum": gorgonia.WithMomentum},
	},
	"adam": {
		ctor: func(opts ...gorgonia.SolverOpt) gorgonia.Solver { return gorgonia.NewAdamSolver(opts...) },
		extra: map[string]opt{
			"beta1": gorgonia.WithBeta1,
			"beta2": gorgonia.WithBeta2,
			"eps":   gorgonia.WithEps,
		},
	},
	"rmsprop": {
		ctor: func(opts ...gorgonia.SolverOpt) gorgonia.Solver { return gorgonia.NewRMSPropSolver(opts...) },
		extra: map[string]opt{
			"rho": gorgonia.WithRho,
			"eps": gorgonia.WithEps,
		},
	},
	"adagrad": {
		ctor:  func(opts ...gorgonia.SolverOpt) gorgonia.Solver { return gorgonia.NewAdaGradSolver(opts...) },
		extra: map[string]opt{"eps": gorgonia.WithEps},
	},
}

// NewSolver resolves an optimizer by name against gorgonia's solvers and
// applies the parameter map verbatim. Names are case-insensitive.
func NewSolver(name string, params map[string]float64) (gorgonia.Solver, error) {
	entry, ok := solvers[strings.ToLower(name)]
	if !ok {
		return nil, &UnknownOptimizerError{Name: name}
	}
	var opts []gorgonia.SolverOpt
	for key, value := range params {
		if fn, ok := commonOpts[key]; ok {
			opts = append(opts, fn(value))
			continue
		}
		if fn, ok := entry.extra[key]; ok {
			opts = append(opts, fn(value))
			continue
		}
		return nil, &UnknownParamError{Solver: strings.ToLower(name), Param: key}
	}
	return entry.ctor(opts...), nil
}
