// Package reactive provides the dependency-tracking core of vbind.
//
// A plain data value (map[string]any or an ordered Fields list) is turned
// into an observed Object graph by Observe. Every key at every depth becomes
// a Cell with its own Dep. Reading a cell while a Watcher is evaluating its
// path registers that Watcher with the cell's Dep; writing a different value
// notifies every registered Watcher synchronously, in registration order.
//
// # Core Types
//
// Object is an observed composite node, Cell an intercepted property:
//
//	root, _ := reactive.Observe(map[string]any{
//	    "person": map[string]any{"name": "alice"},
//	})
//	scope := reactive.NewScope(root)
//	v, _ := scope.Lookup("person.name") // "alice"
//	_ = scope.Assign("person.name", "bob")
//
// Watcher binds a dotted path to a reaction:
//
//	w, _ := reactive.NewWatcher(scope, "person.name", func(v any) {
//	    fmt.Println("name is now", v)
//	})
//
// # Tracking
//
// The active-tracking slot is a Tracker owned by the graph, never a process
// wide variable. Only one Watcher may be active at a time; tracking is
// cleared as soon as the evaluation that established subscriptions ends.
// A graph is not safe for concurrent use.
package reactive
