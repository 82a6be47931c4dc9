// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// State database
	OpStateOpen  Op = "open playback state database"
	OpStateClose Op = "close playback state database"

	// Resume records
	OpProgressSave   Op = "save playback position"
	OpProgressLoad   Op = "load playback position"
	OpProgressRemove Op = "clear playback position"
	OpContinueLoad   Op = "load continue list"

	// Queue persistence
	OpQueueSave    Op = "save queue"
	OpQueueRestore Op = "restore queue"

	// Configuration
	OpConfigLoad Op = "load configuration"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
