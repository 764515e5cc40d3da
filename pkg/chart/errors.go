package chart

import "fmt"

// InvalidConfig is an error type caused by an unrecognized or inconsistent
// chart configuration value.  No chart output is produced.
type InvalidConfig struct {
	Field  string
	Value  any
	Reason string
}

func (e InvalidConfig) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Reason)
}

// DimensionMismatch is thrown when the baseline and monitoring matrices
// cannot be charted together
type DimensionMismatch struct {
	TrainRows int
	TrainCols int
	TestRows  int
	TestCols  int
}

func (e DimensionMismatch) Error() string {
	return fmt.Sprintf("baseline data is %dx%d but monitoring data is %dx%d: column counts must match and neither may be empty",
		e.TrainRows, e.TrainCols, e.TestRows, e.TestCols)
}
