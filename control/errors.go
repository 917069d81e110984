package control

import (
	"errors"
	"fmt"
)

var (
	// ErrSingularInertia is returned when a body's inverse inertia square root cannot be inverted.
	// It points at a degenerate body handed over by the host, not at a transient condition.
	ErrSingularInertia = errors.New("control: singular inverse inertia")

	// ErrNotUnitQuaternion is returned when a target orientation is not normalized.
	ErrNotUnitQuaternion = errors.New("control: target orientation is not a unit quaternion")

	// ErrInvalidStiffness is returned for a stiffness that is not a finite positive number.
	ErrInvalidStiffness = errors.New("control: stiffness must be finite and positive")

	// ErrNilBody is returned when a nil body is found in the tracked set.
	ErrNilBody = errors.New("control: nil body")
)

// BodyError reports a failure for one body of the tracked set.
type BodyError struct {
	Index int
	Err   error
}

func (e *BodyError) Error() string {
	return fmt.Sprintf("body %d: %v", e.Index, e.Err)
}

func (e *BodyError) Unwrap() error {
	return e.Err
}

// BodyErrors returns every *BodyError found in err, looking through joined and wrapped errors.
func BodyErrors(err error) []*BodyError {
	if err == nil {
		return nil
	}

	switch e := err.(type) {
	case *BodyError:
		return []*BodyError{e}
	case interface{ Unwrap() []error }:
		var found []*BodyError
		for _, inner := range e.Unwrap() {
			found = append(found, BodyErrors(inner)...)
		}
		return found
	case interface{ Unwrap() error }:
		return BodyErrors(e.Unwrap())
	}

	return nil
}
