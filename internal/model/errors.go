package model

import "fmt"

// ValidationError reports an entity invariant violated before persistence.
type ValidationError struct {
	Entity string
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid %s: %s", e.Entity, e.Reason)
	}
	return fmt.Sprintf("invalid %s.%s: %s", e.Entity, e.Field, e.Reason)
}

func invalid(entity, field, format string, args ...any) error {
	return ValidationError{Entity: entity, Field: field, Reason: fmt.Sprintf(format, args...)}
}
