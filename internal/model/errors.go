package model

import "fmt"

// ValidationError reports malformed or missing caller input. It is
// surfaced verbatim and never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// SourceNotReadyError reports an operation that requires a completed
// source hitting one still processing or failed.
type SourceNotReadyError struct {
	Kind   SourceKind
	ID     string
	Status ProcessingStatus
}

func (e *SourceNotReadyError) Error() string {
	return fmt.Sprintf("%s %s is not ready: status %s", e.Kind, e.ID, e.Status)
}
