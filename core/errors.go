package core

import "errors"

// Error kinds for the three failure classes the simulator distinguishes.
// Callers match them with errors.Is; everything else wraps one of these.
var (
	// ErrConfiguration marks invalid or unknown configuration input
	// (unknown profile name, missing config file). Surfaced before any
	// simulation work begins and never retried.
	ErrConfiguration = errors.New("configuration error")

	// ErrNumerical marks a fatal numerical failure inside a trial
	// (singular innovation covariance, NaN/Inf in the state). The trial
	// is aborted; batch drivers may choose to skip it.
	ErrNumerical = errors.New("numerical error")

	// ErrInvalidArgument marks a caller contract violation such as a
	// non-positive time step.
	ErrInvalidArgument = errors.New("invalid argument")
)
