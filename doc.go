// Package vbind binds plain data to a document tree.
//
// A VM observes its data (every property at every nesting level becomes
// an intercepted cell), defines computed and method properties next to
// it, and compiles the element named by El: {{ path }} placeholders,
// v-model, v-on:event / @event and v-text are bound so that writes to the
// data update the tree synchronously and input events write back.
//
//	vm, err := vbind.New(vbind.Options{
//	    El:       "#app",
//	    Document: doc,
//	    Data: map[string]any{
//	        "person": map[string]any{"name": "alice", "age": 40},
//	    },
//	    Computed: map[string]reactive.ComputedFunc{
//	        "greeting": func(s reactive.Scope) any {
//	            return "hi " + reactive.Stringify(s.Get("person.name"))
//	        },
//	    },
//	    Method: map[string]vbind.MethodFunc{
//	        "rename": func(vm *vbind.VM) error {
//	            return vm.Assign("person.name", "carol")
//	        },
//	    },
//	})
//
// Top-level data keys are proxied on the VM: vm.Get("person") and
// vm.Set("person", v) go through the same cells as the bound template.
//
// A VM is single-threaded. Every notification chain runs to completion
// before the write that triggered it returns.
package vbind
