package server

import (
	"github.com/vango-go/vbind/pkg/dom"
	"github.com/vango-go/vbind/pkg/render"
)

// ClientEvent is a DOM event forwarded by the browser.
type ClientEvent struct {
	// ID is echoed back in the reply.
	ID uint64 `json:"id,omitempty"`

	// Type is the DOM event type ("input", "click", ...).
	Type string `json:"type"`

	// Target is the hydration ID of the element the event fired on.
	Target string `json:"target"`

	// Value is the control's value for input events.
	Value string `json:"value,omitempty"`
}

// EventPing keeps an idle connection inside ReadTimeout. It is answered
// with an empty reply.
const EventPing = "ping"

// Patch ops.
const (
	OpText  = "text"  // replace the target's inner HTML
	OpValue = "value" // set the target's value property
)

// Patch is one change the client applies to its copy of the page.
type Patch struct {
	Op     string  `json:"op"`
	Target string  `json:"target"`
	HTML   *string `json:"html,omitempty"`
	Value  *string `json:"value,omitempty"`
}

// ServerMessage is the reply to a ClientEvent.
type ServerMessage struct {
	ID      uint64  `json:"id,omitempty"`
	Patches []Patch `json:"patches"`
	Error   string  `json:"error,omitempty"`
}

type patchKey struct {
	op   string
	node *dom.Node
}

// recorder collects document mutations during one event and folds them
// into patches against hydrated elements. Repeated changes to the same
// element collapse into one patch carrying the final state.
type recorder struct {
	order []patchKey
	seen  map[patchKey]bool
}

func newRecorder() *recorder {
	return &recorder{seen: make(map[patchKey]bool)}
}

func (r *recorder) record(m dom.Mutation) {
	var key patchKey
	switch m.Kind {
	case dom.MutationValue:
		if m.Node.HID() == "" {
			return
		}
		key = patchKey{op: OpValue, node: m.Node}
	case dom.MutationText, dom.MutationChildren:
		el := m.Node.ClosestHID()
		if el == nil {
			return
		}
		key = patchKey{op: OpText, node: el}
	default:
		return
	}
	if r.seen[key] {
		return
	}
	r.seen[key] = true
	r.order = append(r.order, key)
}

// patches renders the recorded changes. A value patch for echo is skipped
// when it would only repeat what the client already shows.
func (r *recorder) patches(rend *render.Renderer, echo *dom.Node, echoValue string) ([]Patch, error) {
	out := make([]Patch, 0, len(r.order))
	for _, k := range r.order {
		switch k.op {
		case OpValue:
			v := k.node.Value()
			if k.node == echo && v == echoValue {
				continue
			}
			out = append(out, Patch{Op: OpValue, Target: k.node.HID(), Value: &v})
		case OpText:
			html, err := rend.InnerHTML(k.node)
			if err != nil {
				return nil, err
			}
			out = append(out, Patch{Op: OpText, Target: k.node.HID(), HTML: &html})
		}
	}
	return out, nil
}
