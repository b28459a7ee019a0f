package compiler

import (
	"errors"
	"fmt"
)

var (
	// ErrNoRoot is returned by Mount when the root node is nil.
	ErrNoRoot = errors.New("vbind: mount root is nil")

	// ErrMounted is returned when Mount is called twice.
	ErrMounted = errors.New("vbind: compiler already mounted")
)

// BindingError reports a binding that could not be carried out: a v-model
// write to a path whose parent does not resolve, or an event handler whose
// method cannot be resolved or fails.
type BindingError struct {
	Directive string // e.g. "v-model", "v-on:click"
	Expr      string
	Err       error
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("vbind: %s=%q: %v", e.Directive, e.Expr, e.Err)
}

func (e *BindingError) Unwrap() error {
	return e.Err
}
