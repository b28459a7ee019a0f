// Package vtest provides testing helpers for bound templates.
//
// # Quick Start
//
//	func TestGreeting(t *testing.T) {
//	    h := vtest.Mount(t, `<div id="app"><input id="in" v-model="name"><p id="out">hi {{name}}</p></div>`,
//	        vbind.Options{El: "#app", Data: map[string]any{"name": "alice"}})
//	    h.ExpectText("#out", "hi alice")
//	    h.Input("#in", "bob")
//	    h.ExpectText("#out", "hi bob")
//	}
//
// Every action fails the test at once when its selector matches nothing
// or a listener returns an error; use Dispatch to inspect the error.
package vtest

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/vango-go/vbind"
	"github.com/vango-go/vbind/pkg/dom"
	"github.com/vango-go/vbind/pkg/render"
)

// Harness is a mounted template with its VM.
type Harness struct {
	t   testing.TB
	Doc *dom.Document
	VM  *vbind.VM
}

// Mount parses html, binds opts to it and returns the harness. opts.El
// defaults to "body". Logging is discarded unless opts.Logger is set.
func Mount(t testing.TB, html string, opts vbind.Options) *Harness {
	t.Helper()
	doc, err := dom.ParseString(html)
	if err != nil {
		t.Fatalf("vtest: parse: %v", err)
		return nil
	}
	opts.Document = doc
	if opts.El == nil {
		opts.El = "body"
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	vm, err := vbind.New(opts)
	if err != nil {
		t.Fatalf("vtest: mount: %v", err)
		return nil
	}
	return &Harness{t: t, Doc: doc, VM: vm}
}

// Find returns the first element matching sel.
func (h *Harness) Find(sel string) *dom.Node {
	h.t.Helper()
	n := h.Doc.QuerySelector(sel)
	if n == nil {
		h.t.Fatalf("vtest: no element matches %q", sel)
	}
	return n
}

// Input types value into the element matching sel.
func (h *Harness) Input(sel, value string) {
	h.t.Helper()
	n := h.Find(sel)
	if n == nil {
		return
	}
	if err := n.Input(value); err != nil {
		h.t.Fatalf("vtest: input %s: %v", sel, err)
	}
}

// Click clicks the element matching sel.
func (h *Harness) Click(sel string) {
	h.t.Helper()
	n := h.Find(sel)
	if n == nil {
		return
	}
	if err := n.Click(); err != nil {
		h.t.Fatalf("vtest: click %s: %v", sel, err)
	}
}

// Dispatch fires an event of the given type on the element matching sel
// and returns the listeners' error.
func (h *Harness) Dispatch(sel, eventType string) error {
	h.t.Helper()
	n := h.Find(sel)
	if n == nil {
		return nil
	}
	return n.Dispatch(&dom.Event{Type: eventType, Target: n})
}

// Text returns the text content of the element matching sel.
func (h *Harness) Text(sel string) string {
	h.t.Helper()
	if n := h.Find(sel); n != nil {
		return n.TextContent()
	}
	return ""
}

// Value returns the value of the form control matching sel.
func (h *Harness) Value(sel string) string {
	h.t.Helper()
	if n := h.Find(sel); n != nil {
		return n.Value()
	}
	return ""
}

// HTML renders the bound root element.
func (h *Harness) HTML() string {
	return RenderToString(h.VM.El())
}

// ExpectText asserts the text content of the element matching sel.
func (h *Harness) ExpectText(sel, want string) {
	h.t.Helper()
	if got := h.Text(sel); got != want {
		h.t.Errorf("text of %s = %q, want %q", sel, got, want)
	}
}

// ExpectValue asserts the value of the form control matching sel.
func (h *Harness) ExpectValue(sel, want string) {
	h.t.Helper()
	if got := h.Value(sel); got != want {
		h.t.Errorf("value of %s = %q, want %q", sel, got, want)
	}
}

// ExpectContains asserts that the rendered root contains expected.
func (h *Harness) ExpectContains(expected string) {
	h.t.Helper()
	html := h.HTML()
	if !strings.Contains(html, expected) {
		h.t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that the rendered root does not contain
// unexpected.
func (h *Harness) ExpectNotContains(unexpected string) {
	h.t.Helper()
	html := h.HTML()
	if strings.Contains(html, unexpected) {
		h.t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectAttribute asserts an attribute of the element matching sel.
func (h *Harness) ExpectAttribute(sel, attr, value string) {
	h.t.Helper()
	n := h.Find(sel)
	if n == nil {
		return
	}
	got, ok := n.GetAttribute(attr)
	if !ok || got != value {
		h.t.Errorf("attribute %s of %s = %q (present %v), want %q", attr, sel, got, ok, value)
	}
}

// RenderToString renders node with the default renderer, or "" on error.
func RenderToString(node *dom.Node) string {
	r := render.NewRenderer(render.RendererConfig{})
	html, err := r.RenderToString(node)
	if err != nil {
		return ""
	}
	return html
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
