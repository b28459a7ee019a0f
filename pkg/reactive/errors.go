package reactive

import (
	"errors"
	"fmt"
)

var (
	// ErrNotComposite is returned when a composite value was required but a
	// scalar (or nothing) was found.
	ErrNotComposite = errors.New("vbind: value is not composite")

	// ErrMissingSegment is returned when a path segment does not exist.
	ErrMissingSegment = errors.New("vbind: path segment not found")

	// ErrEmptyPath is returned for an expression with no segments.
	ErrEmptyPath = errors.New("vbind: empty path")

	// ErrReadOnly is returned when writing to a computed or method property.
	ErrReadOnly = errors.New("vbind: property is read-only")

	// ErrNestedTracking is returned when a watcher starts evaluating while
	// another watcher already holds the tracking slot.
	ErrNestedTracking = errors.New("vbind: nested tracking is not supported")

	// ErrDuplicateKey is returned when defining a property that already exists.
	ErrDuplicateKey = errors.New("vbind: duplicate key")
)

// PathError records a failed dotted-path resolution.
type PathError struct {
	Path    string // Full expression, e.g. "person.son.name"
	Segment string // Segment that failed
	Index   int    // Position of Segment in the path
	Err     error
}

// Error implements the error interface.
func (e *PathError) Error() string {
	if e.Segment == "" {
		return fmt.Sprintf("vbind: resolve %q: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("vbind: resolve %q at segment %q: %v", e.Path, e.Segment, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *PathError) Unwrap() error {
	return e.Err
}
