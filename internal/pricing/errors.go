package pricing

import "errors"

var (
	// ErrInvalidInput marks an argument that violates a documented field invariant.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInfeasible means no contract with a well-defined positive entry price exists.
	ErrInfeasible = errors.New("no feasible contract")
	// ErrNumericDegenerate means a computation produced a non-finite result.
	ErrNumericDegenerate = errors.New("numerically degenerate")
)
