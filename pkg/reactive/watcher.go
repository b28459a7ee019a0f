package reactive

// Watcher binds a dotted path to a reaction. It caches the last value it
// saw and calls its reaction only when a re-evaluation yields a different
// value.
type Watcher struct {
	scope Scope
	expr  string
	cb    func(newValue any)
	value any
	runs  int
}

// NewWatcher creates a watcher on expr and evaluates it once with tracking
// enabled, subscribing to every cell along the path. The reaction is not
// called for this first evaluation.
func NewWatcher(scope Scope, expr string, cb func(newValue any)) (*Watcher, error) {
	if scope.root == nil {
		return nil, ErrNotComposite
	}
	w := &Watcher{
		scope: scope,
		expr:  expr,
		cb:    cb,
	}
	err := scope.Tracker().Track(w, func() {
		w.value = w.get()
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

// Expr returns the watched expression.
func (w *Watcher) Expr() string {
	return w.expr
}

// Value returns the cached value.
func (w *Watcher) Value() any {
	return w.value
}

// Runs returns how many times the reaction has been called.
func (w *Watcher) Runs() int {
	return w.runs
}

// Update implements Subscriber. It re-evaluates without tracking and runs
// the reaction if the value changed. The cache is updated before the
// reaction so a reaction that writes back cannot loop on a stale value.
func (w *Watcher) Update() {
	var nv any
	w.scope.Tracker().Untracked(func() {
		nv = w.get()
	})
	if SameValue(nv, w.value) {
		return
	}
	w.value = nv
	w.runs++
	w.scope.root.g.probe.Reacted(w.expr)
	if w.cb != nil {
		w.cb(nv)
	}
}

func (w *Watcher) get() any {
	v, err := w.scope.Lookup(w.expr)
	if err != nil {
		return Undefined
	}
	return v
}
