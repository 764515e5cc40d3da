package sample

import "fmt"

// EmptyData is thrown when a source contains no observations
type EmptyData struct{}

func (e EmptyData) Error() string {
	return "no observations"
}

// RaggedRow is thrown when a row's variable count differs from the first row
type RaggedRow struct {
	Row  int
	Want int
	Got  int
}

func (e RaggedRow) Error() string {
	return fmt.Sprintf("row %d has %d variables, want %d", e.Row, e.Got, e.Want)
}

// BadValue is thrown when a field cannot be parsed as a number
type BadValue struct {
	Row   int
	Col   int
	Value string
}

func (e BadValue) Error() string {
	return fmt.Sprintf("row %d column %d: cannot parse %q", e.Row, e.Col, e.Value)
}
