package reactive

// Subscriber is anything that can be registered with a Dep and told to
// re-evaluate when the dep's property changes.
type Subscriber interface {
	// Update re-evaluates the subscriber after a dependency changed.
	Update()
}

// Tracker holds the active-tracking slot for one data graph: the
// Subscriber whose evaluation is currently registering dependencies.
//
// The slot is non-reentrant. Track refuses to start while another
// subscriber is active, and always clears the slot before returning.
type Tracker struct {
	active Subscriber

	// deps registered during the current Track window, by Dep ID.
	seen map[uint64]struct{}
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Active returns the subscriber currently evaluating, or nil.
func (t *Tracker) Active() Subscriber {
	if t == nil {
		return nil
	}
	return t.active
}

// Track runs fn with s in the active slot. Every cell read during fn
// registers s with its Dep, once per Dep however often the cell is read.
func (t *Tracker) Track(s Subscriber, fn func()) error {
	if t.active != nil {
		return ErrNestedTracking
	}
	t.active = s
	t.seen = make(map[uint64]struct{})
	defer func() {
		t.active = nil
		t.seen = nil
	}()
	fn()
	return nil
}

// depend registers the active subscriber with d unless it already did so
// in this Track window.
func (t *Tracker) depend(d *Dep) {
	if t == nil || t.active == nil {
		return
	}
	if _, ok := t.seen[d.ID()]; ok {
		return
	}
	t.seen[d.ID()] = struct{}{}
	d.Depend(t.active)
}

// Untracked runs fn with the slot cleared, restoring it afterwards. Use it
// for reads inside a tracked evaluation that must not subscribe.
func (t *Tracker) Untracked(fn func()) {
	old := t.active
	t.active = nil
	defer func() { t.active = old }()
	fn()
}
