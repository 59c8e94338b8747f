package resolver

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCircularReference indicates a circular reference was detected
var ErrCircularReference = errors.New("circular reference detected")

// CircularReferenceError represents a circular reference between custom
// properties or between custom media aliases
type CircularReferenceError struct {
	// Kind names what the chain is made of, e.g. "custom property"
	Kind           string
	ReferenceChain []string
}

func (e *CircularReferenceError) Error() string {
	chain := strings.Join(e.ReferenceChain, " → ")
	return fmt.Sprintf("circular %s reference: %s", e.Kind, chain)
}

func (e *CircularReferenceError) Unwrap() error {
	return ErrCircularReference
}

// NewCircularReferenceError creates a new circular reference error
func NewCircularReferenceError(kind string, chain []string) error {
	return &CircularReferenceError{
		Kind:           kind,
		ReferenceChain: chain,
	}
}
