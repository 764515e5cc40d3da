package estimate

import "fmt"

// InvalidMethod is an error type caused by requesting an estimation method
// that does not exist
type InvalidMethod struct {
	Method string
}

func (e InvalidMethod) Error() string {
	return fmt.Sprintf("unknown estimation method %q: must be one of %q, %q", e.Method, Classical, Robust)
}

// SingularCovariance is thrown when the covariance of the observations cannot
// be factorized, e.g. when columns are collinear or there are fewer
// observations than variables
type SingularCovariance struct {
	Rows int
	Cols int
}

func (e SingularCovariance) Error() string {
	return fmt.Sprintf("covariance matrix is singular (%d observations x %d variables): observations may be collinear or too few", e.Rows, e.Cols)
}
