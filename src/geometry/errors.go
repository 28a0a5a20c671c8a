package geometry

import (
	"errors"
	"fmt"
)

// GeometryError reports a degenerate input to the fitter: a zero-sized
// screen or an empty selection.
type GeometryError struct {
	Op  string
	Msg string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("geometry: %s: %s", e.Op, e.Msg)
}

// ConfigurationError reports a host setup problem, such as a display index
// that matches no active display.
type ConfigurationError struct {
	Op  string
	Msg string
	Err error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration: %s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("configuration: %s: %s", e.Op, e.Msg)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func IsGeometryError(err error) bool {
	var ge *GeometryError
	return errors.As(err, &ge)
}

func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
