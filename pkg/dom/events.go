package dom

import "errors"

// Event is a dispatched event. Listeners read the current value of form
// controls from Target.
type Event struct {
	Type   string // "input", "click", etc.
	Target *Node
}

// Listener handles an event. A returned error is reported by Dispatch but
// does not stop later listeners.
type Listener func(e *Event) error

// AddEventListener registers fn for events of the given type. Listeners run
// in registration order.
func (n *Node) AddEventListener(eventType string, fn Listener) {
	if n.listeners == nil {
		n.listeners = make(map[string][]Listener)
	}
	n.listeners[eventType] = append(n.listeners[eventType], fn)
}

// HasListeners reports whether n has listeners for eventType.
func (n *Node) HasListeners(eventType string) bool {
	return len(n.listeners[eventType]) > 0
}

// ListenerTypes returns the event types n listens for.
func (n *Node) ListenerTypes() []string {
	out := make([]string, 0, len(n.listeners))
	for t := range n.listeners {
		out = append(out, t)
	}
	return out
}

// Dispatch runs the listeners for e.Type on n synchronously. Every chain
// they trigger completes before Dispatch returns. Errors from all
// listeners are joined.
func (n *Node) Dispatch(e *Event) error {
	if e.Target == nil {
		e.Target = n
	}
	var errs []error
	for _, fn := range append([]Listener(nil), n.listeners[e.Type]...) {
		if err := fn(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Input sets n's value slot and dispatches an "input" event, the way a
// browser does when the user types.
func (n *Node) Input(value string) error {
	n.SetValue(value)
	return n.Dispatch(&Event{Type: "input", Target: n})
}

// Click dispatches a "click" event on n.
func (n *Node) Click() error {
	return n.Dispatch(&Event{Type: "click", Target: n})
}
