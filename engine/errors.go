package engine

import (
	"errors"
	"fmt"

	"github.com/flowmesh/flowmesh/result"

	flowerrors "github.com/flowmesh/flowmesh/pkg/errors"
)

// asTimeoutError reports whether err is (or wraps) a flowerrors.TimeoutError.
func asTimeoutError(err error) (*flowerrors.TimeoutError, bool) {
	var te *flowerrors.TimeoutError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// errFrom extracts the error a failed or timed-out StepResult carries,
// falling back to a generic message if somehow neither set one.
func errFrom(sr result.StepResult) error {
	if sr.Err != nil {
		return sr.Err
	}
	return fmt.Errorf("step %q did not succeed", sr.Name)
}
