package state

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

var (
	ErrEntityDoesNotExist       = eris.New("entity does not exist")
	ErrHierarchyViolation       = eris.New("hierarchy violation")
	ErrComponentNotRegistered   = eris.New("component type not registered")
	ErrComponentAlreadyOnEntity = eris.New("component already on entity")
	ErrComponentNotOnEntity     = eris.New("component not on entity")
	ErrIncompatibleComponent    = eris.New("incompatible component")
	ErrInvalidComponentData     = eris.New("component data failed validation")

	// ErrSchemaMismatch is returned when a component type is re-registered
	// with a schema that differs from the one already stored.
	ErrSchemaMismatch = eris.New("component schema does not match the registered schema")
)

// ValidationError reports every schema violation found in a proposed
// component document. The write it rejects leaves the store untouched and
// emits no event.
type ValidationError struct {
	Component string
	Errors    []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("component %q failed validation: %s", e.Component, strings.Join(e.Errors, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidComponentData
}
