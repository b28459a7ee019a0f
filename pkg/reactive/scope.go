package reactive

import "strings"

// Scope resolves dotted paths against a data root. It is the only way the
// compiler and computed functions reach the graph.
type Scope struct {
	root *Object
}

// NewScope returns a scope rooted at root.
func NewScope(root *Object) Scope {
	return Scope{root: root}
}

// Root returns the scope's data root.
func (s Scope) Root() *Object {
	return s.root
}

// Tracker returns the tracking slot of the scope's graph.
func (s Scope) Tracker() *Tracker {
	if s.root == nil {
		return nil
	}
	return s.root.g.tracker
}

// SplitPath splits a dotted expression into trimmed segments.
// Blank input yields nil.
func SplitPath(expr string) []string {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil
	}
	segs := strings.Split(expr, ".")
	for i, seg := range segs {
		segs[i] = strings.TrimSpace(seg)
	}
	return segs
}

// Lookup walks the segments of expr left to right from the root. Every
// observed cell touched registers the active subscriber, so a tracked
// lookup of "a.b.c" subscribes to a, a.b and a.b.c.
//
// A missing segment yields Undefined together with a *PathError; callers
// rendering a value degrade to Undefined, callers writing should fail.
func (s Scope) Lookup(expr string) (any, error) {
	segs := SplitPath(expr)
	if len(segs) == 0 {
		return Undefined, &PathError{Path: expr, Err: ErrEmptyPath}
	}
	var cur any = s.root
	for i, seg := range segs {
		next, err := step(cur, seg)
		if err != nil {
			return Undefined, &PathError{Path: expr, Segment: seg, Index: i, Err: err}
		}
		cur = next
	}
	return cur, nil
}

// Get is Lookup with the error dropped.
func (s Scope) Get(expr string) any {
	v, _ := s.Lookup(expr)
	return v
}

// Assign writes v at expr. The last segment is the write target; every
// preceding segment must resolve to a composite.
func (s Scope) Assign(expr string, v any) error {
	segs := SplitPath(expr)
	if len(segs) == 0 {
		return &PathError{Path: expr, Err: ErrEmptyPath}
	}
	var parent any = s.root
	for i, seg := range segs[:len(segs)-1] {
		next, err := step(parent, seg)
		if err != nil {
			return &PathError{Path: expr, Segment: seg, Index: i, Err: err}
		}
		parent = next
	}
	last := segs[len(segs)-1]
	switch p := parent.(type) {
	case *Object:
		if err := p.Set(last, v); err != nil {
			return &PathError{Path: expr, Segment: last, Index: len(segs) - 1, Err: err}
		}
		return nil
	case map[string]any:
		p[last] = v
		return nil
	default:
		return &PathError{Path: expr, Segment: last, Index: len(segs) - 1, Err: ErrNotComposite}
	}
}

// step reads key from cur. Observed objects go through their cells;
// unobserved composites are plain lookups that track nothing.
func step(cur any, key string) (any, error) {
	switch v := cur.(type) {
	case *Object:
		if v == nil {
			return Undefined, ErrNotComposite
		}
		c, ok := v.cells[key]
		if !ok {
			return Undefined, ErrMissingSegment
		}
		return c.Get(), nil
	case map[string]any:
		x, ok := v[key]
		if !ok {
			return Undefined, ErrMissingSegment
		}
		return x, nil
	case Fields:
		x, ok := v.Get(key)
		if !ok {
			return Undefined, ErrMissingSegment
		}
		return x, nil
	default:
		return Undefined, ErrNotComposite
	}
}
