package codegen

import "errors"

var (
	// ErrNoEngine is returned when a script block is reached but no script
	// engine was configured on the generator.
	ErrNoEngine = errors.New("script block found but no script engine is available")

	// ErrScriptFailed wraps engine-native script evaluation failures.
	ErrScriptFailed = errors.New("script evaluation failed")

	// ErrScriptReported wraps failures a builtin reported through the
	// engine's error slot without unwinding the script.
	ErrScriptReported = errors.New("script reported an error")
)
