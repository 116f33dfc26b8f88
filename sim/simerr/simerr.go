// Package simerr defines the error categories shared by the schedule engine.
// Call sites wrap these sentinels with fmt.Errorf("...: %w", ...) so callers
// can classify failures with errors.Is.
package simerr

import "errors"

var (
	// ErrNotFound reports a lookup of an unknown name, key or step index.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument reports size mismatches, out-of-range indices and
	// malformed codes read back from restart data.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnsupported reports a model configuration that is deliberately not implemented.
	ErrUnsupported = errors.New("unsupported feature")

	// ErrNumerical reports a degenerate evaluation (zero denominator, invalid range).
	ErrNumerical = errors.New("numerical error")
)
