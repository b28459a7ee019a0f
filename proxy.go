package vbind

import (
	"github.com/vango-go/vbind/pkg/reactive"
)

// Get reads a top-level data key through its cell. Keys that are not
// proxied read as reactive.Undefined.
func (vm *VM) Get(key string) any {
	if !vm.proxied[key] {
		return reactive.Undefined
	}
	v, _ := vm.data.Get(key)
	return v
}

// Set writes a top-level data key through its cell, notifying every
// binding that depends on it before returning.
func (vm *VM) Set(key string, v any) error {
	if !vm.proxied[key] {
		return ErrNotProxied
	}
	return vm.data.Set(key, v)
}

// Keys returns the proxied keys in data order.
func (vm *VM) Keys() []string {
	out := make([]string, 0, len(vm.proxied))
	for _, k := range vm.data.Keys() {
		if vm.proxied[k] {
			out = append(out, k)
		}
	}
	return out
}

// Lookup resolves a dotted path against the data root.
func (vm *VM) Lookup(path string) (any, error) {
	return vm.Scope().Lookup(path)
}

// Assign writes v at a dotted path.
func (vm *VM) Assign(path string, v any) error {
	return vm.Scope().Assign(path, v)
}

// Watch calls cb whenever the value at path changes.
func (vm *VM) Watch(path string, cb func(newValue any)) (*reactive.Watcher, error) {
	w, err := reactive.NewWatcher(vm.Scope(), path, cb)
	if err != nil {
		return nil, err
	}
	vm.watchers = append(vm.watchers, w)
	return w, nil
}

// Call resolves the method at name and invokes it with vm as receiver.
func (vm *VM) Call(name string) error {
	fn, err := vm.Lookup(name)
	if err != nil {
		return err
	}
	return vm.Apply(fn)
}
