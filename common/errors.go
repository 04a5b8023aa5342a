package common

import "errors"

var (
	ErrorInvalidInput     = errors.New("invalid input")
	ErrorInvalidParameter = errors.New("invalid parameter")

	// soft terminal conditions, reported through the detection status
	ErrorInsufficientData = errors.New("insufficient data to continue")
	ErrorNonConvergence   = errors.New("iteration limit reached before convergence")
)
