package reactive

// ComputedFunc produces a computed property's value. It receives the data
// root explicitly; reads made through the scope are tracked like any other
// read.
type ComputedFunc func(s Scope) any

// Cell is an intercepted property. Its backing value is only reachable
// through Get and Set.
type Cell struct {
	path     string
	kind     Kind
	value    any
	computed ComputedFunc
	dep      *Dep
	g        *graph
}

// Path returns the dotted path of the property.
func (c *Cell) Path() string {
	return c.path
}

// Kind returns what the cell currently holds.
func (c *Cell) Kind() Kind {
	return c.kind
}

// Dep returns the cell's dependency registry. Computed and method cells
// have none.
func (c *Cell) Dep() *Dep {
	return c.dep
}

// Get returns the cell's value, registering the active subscriber (if any)
// with the cell's Dep once per tracked evaluation. Computed cells invoke their function on every read.
func (c *Cell) Get() any {
	if c.dep != nil {
		c.g.tracker.depend(c.dep)
	}
	if c.kind == KindComputed {
		return c.computed(Scope{root: c.g.root})
	}
	return c.value
}

// Peek returns the cell's value without registering a subscriber.
func (c *Cell) Peek() any {
	if c.kind == KindComputed {
		var v any
		c.g.tracker.Untracked(func() {
			v = c.computed(Scope{root: c.g.root})
		})
		return v
	}
	return c.value
}

// Set stores v and notifies subscribers if v differs from the current
// value. A composite assigned here is stored as-is: its inner keys stay
// readable by path but are not reactive.
func (c *Cell) Set(v any) error {
	if c.kind == KindComputed || c.kind == KindMethod {
		return ErrReadOnly
	}
	if SameValue(c.value, v) {
		return nil
	}
	c.value = v
	if _, ok := v.(*Object); ok {
		c.kind = KindComposite
	} else {
		c.kind = KindScalar
	}
	c.g.probe.Notified(c.path, c.dep.Len())
	c.dep.Notify()
	return nil
}
