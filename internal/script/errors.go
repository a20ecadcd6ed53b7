package script

import "errors"

// Errors returned by the script runner.
var (
	// ErrClosed is returned when running a script on a closed Runner.
	ErrClosed = errors.New("script runner is closed")

	// ErrTimeout is returned when a script exceeds its execution timeout.
	ErrTimeout = errors.New("script execution timeout")
)

// Error reports a failure raised while a script ran.
type Error struct {
	// Chunk is the name the script was loaded under.
	Chunk string

	// Message is the Lua error message, including its source position.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return "script " + e.Chunk + ": " + e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}
