// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

const (
	// Slot lifecycle
	OpLoadImage   Op = "load image"
	OpRenderImage Op = "render image"

	// Export
	OpExportImage Op = "export image"
	OpExportGrid  Op = "export grid"

	// Collaborators
	OpCaption Op = "generate caption"
	OpConfig  Op = "load config"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// Wrap returns err with the same "Failed to <op>" prefix, keeping it
// matchable with errors.Is.
func Wrap(op Op, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("Failed to %s: %w", op, err)
}

// FormatWith adds a subject (usually a file name) to the message.
func FormatWith(op Op, subject string, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s %s: %v", op, subject, err)
}
