package responder

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingArgument marks a command invoked without its required argument.
	ErrMissingArgument = errors.New("missing argument")
	// ErrInvalidArgument marks a command argument that cannot be used.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotAddressed makes a command step aside so dispatch continues with keywords.
	ErrNotAddressed = errors.New("command not addressed to this bot")
)

// UsageError is a malformed command invocation. Dispatch recovers it into a
// usage-hint reply; it never stops the loop.
type UsageError struct {
	Command string
	Usage   string
	Err     error
}

func (e *UsageError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: usage: %s", e.Command, e.Usage)
	}

	return fmt.Sprintf("%s: %v (usage: %s)", e.Command, e.Err, e.Usage)
}

func (e *UsageError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.Err
}

// Hint is the text shown to the channel.
func (e *UsageError) Hint() string {
	return "usage: " + e.Usage
}

// invalid wraps ErrInvalidArgument with the offending detail.
func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
