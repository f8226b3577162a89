package eis

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoSampleData is returned when the gyro log holds no SensorType:4 lines.
var ErrNoSampleData = errors.New("no gyroscope samples found")

// MissingFileError reports every input role that had no match in a
// directory.
type MissingFileError struct {
	Dir   string
	Roles []string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("missing required file(s) in %s: %s", e.Dir, strings.Join(e.Roles, ", "))
}

// MalformedInputError wraps a failure to read or decode an input file.
// Line is 1-based and zero when the failure is not tied to a line.
type MalformedInputError struct {
	Path string
	Line int
	Err  error
}

func (e *MalformedInputError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed input %s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("malformed input %s: %v", e.Path, e.Err)
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

func malformed(path string, line int, err error) error {
	return &MalformedInputError{Path: path, Line: line, Err: err}
}
