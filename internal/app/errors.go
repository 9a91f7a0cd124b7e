package app

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a synchronous input rejection. It never leaves
	// the reducer as an error phase, only as a notice.
	ErrValidation = errors.New("validation failed")

	// ErrTransport marks a failure to reach or complete a model call.
	ErrTransport = errors.New("model backend unreachable")

	// ErrBadResponse marks a structured response that decoded but failed
	// validation, or did not decode at all.
	ErrBadResponse = errors.New("malformed model response")

	// ErrWatchdogTimeout marks an ingestion batch killed by the watchdog.
	ErrWatchdogTimeout = errors.New("attachment processing timed out")
)

// IngestError is a per-file ingestion failure with the file name kept so
// the message can point at the offender.
type IngestError struct {
	Name string
	Err  error
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("could not process %q: %v", e.Name, e.Err)
}

func (e *IngestError) Unwrap() error { return e.Err }
