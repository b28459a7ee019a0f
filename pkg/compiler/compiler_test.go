package compiler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/vango-go/vbind/pkg/dom"
	"github.com/vango-go/vbind/pkg/reactive"
)

var errNotCallable = errors.New("not callable")

type testHost struct {
	root *reactive.Object
}

func (h *testHost) Scope() reactive.Scope { return reactive.NewScope(h.root) }

func (h *testHost) Apply(fn any) error {
	f, ok := fn.(func(*testHost) error)
	if !ok {
		return errNotCallable
	}
	return f(h)
}

func (h *testHost) Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newHost(t *testing.T) *testHost {
	t.Helper()
	root, err := reactive.Observe(map[string]any{
		"person": map[string]any{
			"name": "alice",
			"age":  40,
			"son": map[string]any{
				"name": "bob",
				"age":  14,
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return &testHost{root: root}
}

func mount(t *testing.T, h *testHost, src string, opts ...Option) (*Compiler, *dom.Document) {
	t.Helper()
	doc, err := dom.ParseString(src)
	if err != nil {
		t.Fatal(err)
	}
	c := New(h, opts...)
	if err := c.Mount(context.Background(), doc.QuerySelector("#app")); err != nil {
		t.Fatalf("mount: %v", err)
	}
	return c, doc
}

func TestModelRoundTrip(t *testing.T) {
	h := newHost(t)
	_, doc := mount(t, h, `<div id="app"><input v-model="person.name"><p>{{person.name}}</p></div>`)
	input := doc.QuerySelector("input")
	p := doc.QuerySelector("p")

	if input.Value() != "alice" || p.TextContent() != "alice" {
		t.Fatalf("initial: input %q, p %q", input.Value(), p.TextContent())
	}

	if err := input.Input("X"); err != nil {
		t.Fatal(err)
	}
	if got := h.Scope().Get("person.name"); got != "X" {
		t.Errorf("person.name = %v", got)
	}
	if p.TextContent() != "X" {
		t.Errorf("p = %q", p.TextContent())
	}

	// Data to view.
	if err := h.Scope().Assign("person.name", "Y"); err != nil {
		t.Fatal(err)
	}
	if input.Value() != "Y" || p.TextContent() != "Y" {
		t.Errorf("after assign: input %q, p %q", input.Value(), p.TextContent())
	}
}

func TestInterpolationModes(t *testing.T) {
	const src = `<div id="app"><p>{{ person.name }} is {{person.age}}</p></div>`

	t.Run("segments", func(t *testing.T) {
		h := newHost(t)
		_, doc := mount(t, h, src)
		p := doc.QuerySelector("p")
		if p.TextContent() != "alice is 40" {
			t.Fatalf("text = %q", p.TextContent())
		}
		if p.ChildCount() != 3 {
			t.Errorf("children = %d", p.ChildCount())
		}
		h.Scope().Assign("person.age", 41)
		if p.TextContent() != "alice is 41" {
			t.Errorf("text = %q", p.TextContent())
		}
	})

	t.Run("whole node", func(t *testing.T) {
		h := newHost(t)
		_, doc := mount(t, h, src, WithInterpolation(InterpolateWholeNode))
		p := doc.QuerySelector("p")
		if p.TextContent() != "40" {
			t.Fatalf("text = %q, want only the last value", p.TextContent())
		}
		h.Scope().Assign("person.name", "carl")
		if p.TextContent() != "carl" {
			t.Errorf("text = %q", p.TextContent())
		}
	})
}

func TestEventBinding(t *testing.T) {
	h := newHost(t)
	calls := 0
	changeText := func(h *testHost) error {
		calls++
		return h.Scope().Assign("person.son.name", "wu")
	}
	if err := h.root.DefineMethod("changeText", changeText); err != nil {
		t.Fatal(err)
	}

	c, doc := mount(t, h, `<div id="app"><span>{{person.son.name}}</span><button id="a" v-on:click="changeText"></button><button id="b" @click="changeText"></button></div>`)
	span := doc.QuerySelector("span")

	if err := doc.QuerySelector("#a").Click(); err != nil {
		t.Fatal(err)
	}
	if span.TextContent() != "wu" {
		t.Errorf("span = %q", span.TextContent())
	}
	if err := doc.QuerySelector("#b").Click(); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("calls = %d", calls)
	}
	if c.Stats().Events != 2 {
		t.Errorf("events = %d", c.Stats().Events)
	}
}

func TestEventBindingErrors(t *testing.T) {
	h := newHost(t)
	_, doc := mount(t, h, `<div id="app"><button id="missing" v-on:click="nope"></button><button id="scalar" @click="person.name"></button></div>`)

	err := doc.QuerySelector("#missing").Click()
	var berr *BindingError
	if !errors.As(err, &berr) || berr.Directive != "v-on:click" || berr.Expr != "nope" {
		t.Fatalf("err = %v", err)
	}
	if !errors.Is(err, reactive.ErrMissingSegment) {
		t.Errorf("expected missing segment, got %v", err)
	}

	err = doc.QuerySelector("#scalar").Click()
	if !errors.Is(err, errNotCallable) {
		t.Errorf("err = %v", err)
	}
}

func TestModelWriteFailure(t *testing.T) {
	h := newHost(t)
	_, doc := mount(t, h, `<div id="app"><input v-model="person.nick.first"></div>`)
	input := doc.QuerySelector("input")

	if input.Value() != "" {
		t.Errorf("unresolved model should render empty, got %q", input.Value())
	}
	err := input.Input("x")
	var berr *BindingError
	if !errors.As(err, &berr) || berr.Directive != "v-model" {
		t.Fatalf("err = %v", err)
	}
	var perr *reactive.PathError
	if !errors.As(err, &perr) || perr.Segment != "nick" {
		t.Errorf("path error = %v", perr)
	}
}

func TestTextareaContentNotCompiled(t *testing.T) {
	h := newHost(t)
	c, doc := mount(t, h, `<div id="app"><textarea id="plain">{{person.name}}</textarea><textarea id="bound" v-model="person.name"></textarea></div>`)

	plain := doc.QuerySelector("#plain")
	if plain.Value() != "{{person.name}}" || plain.TextContent() != "{{person.name}}" {
		t.Errorf("plain textarea = %q / %q", plain.Value(), plain.TextContent())
	}
	if st := c.Stats(); st.Mustache != 0 || st.Models != 1 {
		t.Errorf("stats = %+v", st)
	}

	h.Scope().Assign("person.name", "zed")
	if got := doc.QuerySelector("#bound").Value(); got != "zed" {
		t.Errorf("bound textarea = %q", got)
	}
	if plain.TextContent() != "{{person.name}}" {
		t.Errorf("plain textarea text changed to %q", plain.TextContent())
	}
}

func TestTextDirective(t *testing.T) {
	h := newHost(t)
	c, doc := mount(t, h, `<div id="app"><span v-text="person.age">old</span><b v-html="x"></b></div>`)
	span := doc.QuerySelector("span")
	if span.TextContent() != "40" {
		t.Fatalf("span = %q", span.TextContent())
	}
	h.Scope().Assign("person.age", 41)
	if span.TextContent() != "41" {
		t.Errorf("span = %q", span.TextContent())
	}

	st := c.Stats()
	if st.Texts != 1 || st.Skipped != 1 {
		t.Errorf("stats = %+v", st)
	}
	if !doc.QuerySelector("b").HasAttribute("v-html") {
		t.Error("unknown directive should be left in place")
	}
}

func TestHydrationIDs(t *testing.T) {
	h := newHost(t)
	_, doc := mount(t, h, `<div id="app">{{person.name}}<input v-model="person.name"><p>{{person.age}} / {{person.son.age}}</p><i>static</i></div>`)

	app := doc.QuerySelector("#app")
	if app.HID() != "b1" {
		t.Errorf("root hid = %q", app.HID())
	}
	if hid := doc.QuerySelector("input").HID(); hid != "b2" {
		t.Errorf("input hid = %q", hid)
	}
	if hid := doc.QuerySelector("p").HID(); hid != "b3" {
		t.Errorf("p hid = %q", hid)
	}
	if doc.QuerySelector("i").HID() != "" {
		t.Error("static element should not get a hid")
	}

	h2 := newHost(t)
	_, doc2 := mount(t, h2, `<div id="app"><input v-model="person.name"></div>`, WithHydrationIDs(false))
	if doc2.QuerySelector("input").HID() != "" {
		t.Error("hids disabled")
	}
}

func TestMountErrors(t *testing.T) {
	h := newHost(t)
	c := New(h)
	if err := c.Mount(context.Background(), nil); !errors.Is(err, ErrNoRoot) {
		t.Errorf("err = %v", err)
	}
	root := dom.NewElement("div")
	if err := c.Mount(context.Background(), root); err != nil {
		t.Fatal(err)
	}
	if err := c.Mount(context.Background(), root); !errors.Is(err, ErrMounted) {
		t.Errorf("err = %v", err)
	}
}

func TestMountPreservesOrder(t *testing.T) {
	h := newHost(t)
	_, doc := mount(t, h, `<div id="app"><a></a>text<b></b><!--c--></div>`)
	kids := doc.QuerySelector("#app").ChildNodes()
	if len(kids) != 4 || kids[0].Tag != "a" || kids[1].Text() != "text" || kids[2].Tag != "b" || kids[3].Type != dom.CommentNode {
		t.Errorf("children reordered: %v", kids)
	}
}

func TestInterpolate(t *testing.T) {
	h := newHost(t)
	got := Interpolate(h.Scope(), "son -> {{person.son.name}} & {{ person.son.age }}{{missing}}")
	if got != "son -> bob & 14" {
		t.Errorf("got %q", got)
	}
}

func TestParseInterpolation(t *testing.T) {
	tests := []struct {
		in   string
		want Interpolation
		ok   bool
	}{
		{"", InterpolateSegments, true},
		{"segments", InterpolateSegments, true},
		{"whole-node", InterpolateWholeNode, true},
		{"bogus", InterpolateSegments, false},
	}
	for _, tt := range tests {
		got, ok := ParseInterpolation(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseInterpolation(%q) = %v, %v", tt.in, got, ok)
		}
	}
}
