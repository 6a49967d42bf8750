package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrEngineClosed is returned when an Engine is used after Close, or
	// closed twice.
	ErrEngineClosed = errors.New("script engine is closed")

	// ErrScriptFailed wraps engine-native evaluation failures: script syntax
	// errors and uncaught runtime errors raised by the engine itself. Builtin
	// failures reported through the error slot never surface here.
	ErrScriptFailed = errors.New("script execution failed")

	// ErrCompileFailed wraps script compilation failures.
	ErrCompileFailed = errors.New("failed to compile script")
)

// TypeError reports a script value whose type cannot be converted to text by
// the sprint and parse builtins. It names the actual engine type
// encountered.
type TypeError struct {
	Type string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("cannot convert a %s value to text", e.Type)
}
