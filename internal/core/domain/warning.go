package domain

import "fmt"

// Warning is a recoverable structural problem noticed during parsing.
// Warnings never stop a compilation; the resulting document is still
// usable.
type Warning struct {
	// Line is the 1-based source line, or 0 when not tied to a line.
	Line int

	// Message describes the problem.
	Message string
}

// String formats the warning for display.
func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("line %d: %s", w.Line, w.Message)
	}
	return w.Message
}

// Warningf builds a warning for a source line.
func Warningf(line int, format string, args ...any) Warning {
	return Warning{Line: line, Message: fmt.Sprintf(format, args...)}
}
