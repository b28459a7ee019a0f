package reactive

// Probe observes the notification traffic of a graph. Implementations must
// be cheap; they run inside every notification chain.
type Probe interface {
	// Notified is called when a cell's value changed, before its
	// subscribers run.
	Notified(path string, subscribers int)

	// Reacted is called when a watcher's value changed and its reaction is
	// about to run.
	Reacted(expr string)
}

type nopProbe struct{}

func (nopProbe) Notified(string, int) {}
func (nopProbe) Reacted(string)       {}

// ProbeFuncs adapts plain functions to Probe. Nil fields are skipped.
type ProbeFuncs struct {
	OnNotified func(path string, subscribers int)
	OnReacted  func(expr string)
}

// Notified implements Probe.
func (p ProbeFuncs) Notified(path string, subscribers int) {
	if p.OnNotified != nil {
		p.OnNotified(path, subscribers)
	}
}

// Reacted implements Probe.
func (p ProbeFuncs) Reacted(expr string) {
	if p.OnReacted != nil {
		p.OnReacted(expr)
	}
}
