package twitch

import (
	"errors"
	"fmt"
)

// ErrEndOfStream is returned once the chat server closes the connection.
var ErrEndOfStream = errors.New("end of stream")

// ConnectionError reports a transport failure. Op is one of dial, login, read or send.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	if e == nil {
		return ""
	}

	return fmt.Sprintf("twitch %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.Err
}
