package wizard

import "strings"

// ValidationError is a local required-field failure. It never transitions
// the wizard; the form stays put with a message naming every missing
// field.
type ValidationError struct {
	Missing []string // field labels
}

func (e *ValidationError) Error() string {
	return "wizard: missing required fields: " + strings.Join(e.Missing, ", ")
}
