package convert

import (
	"errors"
	"fmt"
)

var (
	// ErrUnbalanced is returned when the source ends a container which was
	// never started.
	ErrUnbalanced = errors.New("end of container without a matching start")

	// ErrConverted is returned when Convert is called a second time.
	ErrConverted = errors.New("converter already used")
)

// A WriteError is returned when the sink fails.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("xml %s: %s", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// A ResourceError is returned when the source could not be closed.  The
// output may be complete.
type ResourceError struct {
	Err error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("closing source: %s", e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

// An OptionsError reports invalid conversion options.
type OptionsError struct {
	Err error
}

func (e *OptionsError) Error() string {
	return fmt.Sprintf("invalid options: %s", e.Err)
}

func (e *OptionsError) Unwrap() error {
	return e.Err
}
