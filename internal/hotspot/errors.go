package hotspot

import "fmt"

// MissingFieldError reports a dataset whose schema lacks a required
// coordinate column. It is not recoverable by the caller.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("dataset is missing required field %q", e.Field)
}

// InsufficientDataError is returned when there are not more valid points
// than requested clusters. Callers should skip the hotspot view and ask for
// fewer clusters or more data.
type InsufficientDataError struct {
	Points int
	K      int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("not enough data points for clustering: have %d, need more than %d", e.Points, e.K)
}

// InvalidParameterError rejects a clustering parameter at the boundary.
type InvalidParameterError struct {
	Name   string
	Value  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid %s: %s", e.Name, e.Value)
	}
	return fmt.Sprintf("invalid %s %s: %s", e.Name, e.Value, e.Reason)
}
