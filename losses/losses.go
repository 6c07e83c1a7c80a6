// Package losses implements the loss registry for tasks. Losses resolve from
// a recognized name and a verbatim parameter map; unrecognized names fail
// with UnknownLossError rather than falling back.
package losses

import "strings"

import "gorgonia.org/tensor"

// Loss scores a prediction against a target and can produce the gradient of
// the score with respect to the prediction. The gradient is consumed by the
// training-loop driver, never by the loss itself.
type Loss interface {

	// Forward computes the scalar loss
	Forward(pred, target tensor.Tensor) (float64, error)

	// Backward computes dLoss/dPred with the shape of pred
	Backward(pred, target tensor.Tensor) (*tensor.Dense, error)
}

// UnknownLossError reports a loss name absent from the registry.
type UnknownLossError struct {
	Name string
}

func (e *UnknownLossError) Error() string {
	return "losses: unknown loss " + e.Name
}

var registry = map[string]func(params map[string]float64) Loss{
	"mse": func(map[string]float64) Loss { return MSE{} },
	"mae": func(map[string]float64) Loss { return MAE{} },
	"l1":  func(map[string]float64) Loss { return MAE{} },
	"crossentropy": func(map[string]float64) Loss {
		return CrossEntropy{}
	},
	"bcewithlogits": func(params map[string]float64) Loss {
		posWeight := 1.0
		if w, ok := params["pos_weight"]; ok {
			posWeight = w
		}
		return BCEWithLogits{PosWeight: posWeight}
	},
}

// New resolves a loss by name. The parameter map is applied verbatim; keys a
// loss does not recognize are ignored.
func New(name string, params map[string]float64) (Loss, error) {
	ctor, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, &UnknownLossError{Name: name}
	}
	return ctor(params), nil
}
