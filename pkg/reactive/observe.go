package reactive

// Option configures Observe.
type Option func(*graph)

// WithTracker makes the graph use t as its tracking slot.
func WithTracker(t *Tracker) Option {
	return func(g *graph) {
		if t != nil {
			g.tracker = t
		}
	}
}

// WithProbe installs a Probe on the graph.
func WithProbe(p Probe) Option {
	return func(g *graph) {
		if p != nil {
			g.probe = p
		}
	}
}

// Observe converts data into an observed graph. data must be a
// map[string]any or Fields; nested maps and Fields at any depth are
// observed too, depth first, before the cell holding them is created.
//
// Observing an *Object returns it unchanged.
func Observe(data any, opts ...Option) (*Object, error) {
	if obj, ok := data.(*Object); ok {
		return obj, nil
	}
	fields, ok := asFields(data)
	if !ok {
		return nil, ErrNotComposite
	}
	g := &graph{
		tracker: NewTracker(),
		probe:   nopProbe{},
	}
	for _, opt := range opts {
		opt(g)
	}
	g.root = newObject(g, "")
	g.root.observe(fields)
	return g.root, nil
}

func (o *Object) observe(fields Fields) {
	for _, f := range fields {
		o.defineReactive(f.Key, f.Value)
	}
}

// defineReactive installs the cell for key. A composite value is observed
// before the cell and its Dep exist.
func (o *Object) defineReactive(key string, value any) {
	path := joinPath(o.path, key)
	kind := KindScalar
	if nested, ok := asFields(value); ok {
		child := newObject(o.g, path)
		child.observe(nested)
		value = child
		kind = KindComposite
	}
	if o.Has(key) {
		// Duplicate keys in Fields: last one wins, like a map literal.
		c := o.cells[key]
		c.kind, c.value = kind, value
		return
	}
	o.add(key, &Cell{
		path:  path,
		kind:  kind,
		value: value,
		dep:   newDep(path),
		g:     o.g,
	})
}
