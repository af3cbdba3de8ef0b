package airgradient

import (
	"errors"
	"fmt"
)

// Err is the base error for this package. Every error returned by the
// client matches it via errors.Is, so callers can handle failures
// coarsely without caring about the specific kind.
var Err = errors.New("airgradient error")

// ConnectionError reports that no well-formed response was obtained from
// the device: a timeout, a transport-level failure, or a non-200 status.
type ConnectionError struct {
	Reason string
	// Details carries the declared Content-Type and raw body when the
	// device answered with an unexpected status.
	Details map[string]string
	Cause   error
}

func (e *ConnectionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Cause)
	}
	return e.Reason
}

func (e *ConnectionError) Unwrap() error { return e.Cause }

func (e *ConnectionError) Is(target error) bool { return target == Err }

// ParseError reports a response that transported fine but whose JSON body
// is undecodable, or is missing a field the requested record requires.
type ParseError struct {
	Record string
	Field  string
	Cause  error
}

func (e *ParseError) Error() string {
	switch {
	case e.Field != "" && e.Cause != nil:
		return fmt.Sprintf("parse %s: field %q: %v", e.Record, e.Field, e.Cause)
	case e.Field != "":
		return fmt.Sprintf("parse %s: missing required field %q", e.Record, e.Field)
	case e.Cause != nil:
		return fmt.Sprintf("parse %s: %v", e.Record, e.Cause)
	default:
		return fmt.Sprintf("parse %s: malformed payload", e.Record)
	}
}

func (e *ParseError) Unwrap() error { return e.Cause }

func (e *ParseError) Is(target error) bool { return target == Err }
