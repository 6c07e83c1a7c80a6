package datasets

// MissingFieldError reports a configured field absent from a batch.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return "datasets: field " + e.Field + " missing from batch"
}

// ShapeMismatchError reports a tensor incompatible with what an operation expects.
type ShapeMismatchError struct {
	Op     string
	Detail string
}

func (e *ShapeMismatchError) Error() string {
	return "datasets: " + e.Op + ": " + e.Detail
}
