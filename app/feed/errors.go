package feed

import (
	"errors"
	"fmt"
)

// ErrMissingBuildTimestamp is returned when a well-formed feed carries no
// channel build timestamp, so there is nothing to compare the watermark with.
var ErrMissingBuildTimestamp = errors.New("feed has no build timestamp")

type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse feed: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
