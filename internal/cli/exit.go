package cli

import (
	"errors"

	"raffledash/internal/raffle"
)

// Process exit statuses
const (
	StatusOK          = 0
	StatusUnavailable = 1 // store unreachable, listener or template failure
	StatusUsage       = 2 // bad flags, env file or filter criteria
)

// CommandError is a failed command together with the status it exits with.
// Msg is the line shown to the user, the same wording the dashboard uses in
// place of the raffle list.
type CommandError struct {
	Status int
	Msg    string
	Cause  error
}

func (e *CommandError) Error() string {
	if e.Cause == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Cause.Error()
}

func (e *CommandError) Unwrap() error {
	return e.Cause
}

func usageError(msg string, cause error) error {
	return &CommandError{Status: StatusUsage, Msg: msg, Cause: cause}
}

func unavailable(msg string, cause error) error {
	return &CommandError{Status: StatusUnavailable, Msg: msg, Cause: cause}
}

// ExitStatus maps the error returned by a command to its exit status.
// A criteria error that was never wrapped still counts as a usage error.
func ExitStatus(err error) int {
	var cmdErr *CommandError
	var critErr *raffle.CriteriaError
	switch {
	case err == nil:
		return StatusOK
	case errors.As(err, &cmdErr):
		return cmdErr.Status
	case errors.As(err, &critErr):
		return StatusUsage
	default:
		return StatusUnavailable
	}
}
