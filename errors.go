package vbind

import "errors"

var (
	// ErrRootNotFound is returned when a selector El matches nothing.
	ErrRootNotFound = errors.New("vbind: root element not found")

	// ErrNoDocument is returned when El is a selector but no Document was
	// given to resolve it in.
	ErrNoDocument = errors.New("vbind: selector root needs a document")

	// ErrInvalidEl is returned for an El that is neither a node nor a
	// selector.
	ErrInvalidEl = errors.New("vbind: El must be a *dom.Node or a selector string")

	// ErrNotMethod is returned when a value invoked as a method is not a
	// function the VM knows how to call.
	ErrNotMethod = errors.New("vbind: value is not a method")

	// ErrNotProxied is returned by VM.Set for keys that were not top-level
	// data keys at construction.
	ErrNotProxied = errors.New("vbind: key is not a proxied data key")
)
