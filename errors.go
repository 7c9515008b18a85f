package rocket

import (
	"errors"
	"fmt"
)

// Every solver error wraps one of these, so callers can test with errors.Is.
var (
	// ErrInvalidConfiguration is returned before any integration starts when a
	// parameter set is not physical.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrOutOfDomain is returned when a query falls outside the range where the
	// formula is mathematically valid.
	ErrOutOfDomain = errors.New("out of domain")
	// ErrUndefinedResult is returned when the quantity does not exist for the
	// given regime, e.g. the period of an open orbit.
	ErrUndefinedResult = errors.New("undefined result")
	// ErrNonConvergence is returned by iterative solvers which hit their cap.
	ErrNonConvergence = errors.New("did not converge")
)

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}

func domainf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrOutOfDomain, fmt.Sprintf(format, args...))
}

func undefinedf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrUndefinedResult, fmt.Sprintf(format, args...))
}

func nonconvf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNonConvergence, fmt.Sprintf(format, args...))
}
