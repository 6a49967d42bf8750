package helpers

import (
	"log/slog"
	"os"
)

// SetupLogger creates a properly configured logger for a compiler subsystem.
// If the provided handler is nil, it creates a default handler with
// appropriate grouping.
//
// Parameters:
//   - handler: The slog.Handler to use, or nil for defaults
//   - subsystem: The name of the subsystem (e.g., "engine", "compiler")
//   - groupName: Optional additional group name within the subsystem
//
// Returns:
//   - The configured handler
//   - A logger created from the handler
func SetupLogger(handler slog.Handler, subsystem string, groupName string) (slog.Handler, *slog.Logger) {
	if handler == nil {
		defaultHandler := slog.NewTextHandler(os.Stderr, nil)
		handler = defaultHandler.WithGroup(subsystem)
	}

	var logger *slog.Logger
	if groupName != "" {
		logger = slog.New(handler.WithGroup(groupName))
	} else {
		logger = slog.New(handler)
	}

	return handler, logger
}
