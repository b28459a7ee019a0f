package reactive

// Dep is the subscriber registry of one intercepted property.
type Dep struct {
	id   uint64
	path string
	subs []Subscriber
}

func newDep(path string) *Dep {
	return &Dep{id: nextID(), path: path}
}

// ID returns the unique identifier for this dep.
func (d *Dep) ID() uint64 {
	return d.id
}

// Path returns the dotted path of the property owning this dep.
func (d *Dep) Path() string {
	return d.path
}

// Depend appends s. There is no deduplication here; Cell.Get goes through
// the Tracker, which registers a subscriber once per evaluation.
func (d *Dep) Depend(s Subscriber) {
	d.subs = append(d.subs, s)
}

// Notify calls Update on every subscriber in registration order. The list
// is snapshotted first, so subscribers added during notification wait for
// the next change.
func (d *Dep) Notify() {
	if len(d.subs) == 0 {
		return
	}
	subs := make([]Subscriber, len(d.subs))
	copy(subs, d.subs)
	for _, s := range subs {
		s.Update()
	}
}

// Len returns the number of registered subscribers.
func (d *Dep) Len() int {
	return len(d.subs)
}

// Subscribers returns a copy of the registered subscribers.
func (d *Dep) Subscribers() []Subscriber {
	out := make([]Subscriber, len(d.subs))
	copy(out, d.subs)
	return out
}
