package reactive

import (
	"bytes"
	"encoding/json"
)

// graph is the state shared by every node of one observed data graph.
type graph struct {
	root    *Object
	tracker *Tracker
	probe   Probe
}

// Object is an observed composite: an ordered mapping from key to Cell.
type Object struct {
	path  string
	keys  []string
	cells map[string]*Cell
	g     *graph
}

func newObject(g *graph, path string) *Object {
	return &Object{
		path:  path,
		cells: make(map[string]*Cell),
		g:     g,
	}
}

// Path returns the dotted path of this object from the root ("" for the
// root itself).
func (o *Object) Path() string {
	return o.path
}

// Tracker returns the tracker shared by the whole graph.
func (o *Object) Tracker() *Tracker {
	return o.g.tracker
}

// Root returns the root of the graph this object belongs to.
func (o *Object) Root() *Object {
	return o.g.root
}

// Keys returns the object's own keys in definition order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Len returns the number of own keys.
func (o *Object) Len() int {
	return len(o.keys)
}

// Cell returns the cell for key.
func (o *Object) Cell(key string) (*Cell, bool) {
	c, ok := o.cells[key]
	return c, ok
}

// Has reports whether key is an own key.
func (o *Object) Has(key string) bool {
	_, ok := o.cells[key]
	return ok
}

// Get reads key through its cell, registering the active subscriber.
func (o *Object) Get(key string) (any, bool) {
	c, ok := o.cells[key]
	if !ok {
		return Undefined, false
	}
	return c.Get(), true
}

// Set writes key through its cell. An unknown key becomes a new property
// holding v unobserved.
func (o *Object) Set(key string, v any) error {
	if c, ok := o.cells[key]; ok {
		return c.Set(v)
	}
	kind := KindScalar
	if _, ok := v.(*Object); ok {
		kind = KindComposite
	}
	o.add(key, &Cell{
		path:  joinPath(o.path, key),
		kind:  kind,
		value: v,
		dep:   newDep(joinPath(o.path, key)),
		g:     o.g,
	})
	return nil
}

// DefineComputed adds a get-only property whose value is fn's result,
// recomputed on every read.
func (o *Object) DefineComputed(key string, fn ComputedFunc) error {
	if o.Has(key) {
		return ErrDuplicateKey
	}
	o.add(key, &Cell{
		path:     joinPath(o.path, key),
		kind:     KindComputed,
		computed: fn,
		g:        o.g,
	})
	return nil
}

// DefineMethod adds a get-only property whose value is fn itself.
func (o *Object) DefineMethod(key string, fn any) error {
	if o.Has(key) {
		return ErrDuplicateKey
	}
	o.add(key, &Cell{
		path:  joinPath(o.path, key),
		kind:  KindMethod,
		value: fn,
		g:     o.g,
	})
	return nil
}

func (o *Object) add(key string, c *Cell) {
	o.keys = append(o.keys, key)
	o.cells[key] = c
}

// Snapshot returns an untracked plain copy of the data properties.
// Computed and method properties are omitted.
func (o *Object) Snapshot() map[string]any {
	out := make(map[string]any, len(o.keys))
	for _, key := range o.keys {
		c := o.cells[key]
		switch c.kind {
		case KindComputed, KindMethod:
			continue
		case KindComposite:
			out[key] = c.value.(*Object).Snapshot()
		default:
			out[key] = c.value
		}
	}
	return out
}

// MarshalJSON encodes the data properties in key order, without tracking.
func (o *Object) MarshalJSON() ([]byte, error) {
	var fields Fields
	for _, key := range o.keys {
		c := o.cells[key]
		if c.kind == KindComputed || c.kind == KindMethod {
			continue
		}
		fields = append(fields, Field{Key: key, Value: c.value})
	}
	return fields.MarshalJSON()
}

// MarshalJSON encodes the fields as a JSON object in order.
func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(field.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(field.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
