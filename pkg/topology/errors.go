package topology

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrMalformedTopology = errors.New("malformed topology")
	ErrMissingEntities   = errors.New("entity geometry info not found")
	ErrAmbiguousPairKey  = errors.New("ambiguous pair key")
	ErrInvalidPairKey    = errors.New("pair key has no valid split")
	ErrInvalidCode       = errors.New("invalid curvature code")
	ErrDuplicateEntity   = errors.New("duplicate entity id")
	ErrInvalidEntity     = errors.New("invalid entity record")
)

// MalformedTopologyError identifies a piece of input that cannot be loaded.
// Any MalformedTopologyError matches ErrMalformedTopology via errors.Is.
type MalformedTopologyError struct {
	Source string // Dump file or section (e.g., "edges", "entities")
	Key    string // Offending pair key or entity id
	Index  int    // Record position when there is no key, -1 otherwise
	Cause  error
}

// Error implements the error interface.
func (e *MalformedTopologyError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s: key %q: %v", e.Source, e.Key, e.Cause)
	}
	if e.Index >= 0 {
		return fmt.Sprintf("%s: record %d: %v", e.Source, e.Index, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Source, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *MalformedTopologyError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target is ErrMalformedTopology or matches the cause.
func (e *MalformedTopologyError) Is(target error) bool {
	if target == nil {
		return false
	}
	if target == ErrMalformedTopology {
		return true
	}
	return errors.Is(e.Cause, target)
}

// ErrorBuilder provides a fluent interface for building MalformedTopologyErrors.
type ErrorBuilder struct {
	err MalformedTopologyError
}

// NewError starts an error for the given source section.
func NewError(source string) *ErrorBuilder {
	return &ErrorBuilder{err: MalformedTopologyError{Source: source, Index: -1}}
}

// Key sets the offending key.
func (b *ErrorBuilder) Key(key string) *ErrorBuilder {
	b.err.Key = key
	return b
}

// Index sets the offending record position.
func (b *ErrorBuilder) Index(i int) *ErrorBuilder {
	b.err.Index = i
	return b
}

// Cause sets the underlying error cause.
func (b *ErrorBuilder) Cause(err error) *ErrorBuilder {
	b.err.Cause = err
	return b
}

// Err returns the constructed error.
func (b *ErrorBuilder) Err() error {
	e := b.err
	return &e
}

// IsMalformed returns true if err came from rejecting input.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedTopology)
}
