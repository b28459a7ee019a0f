package dom

import (
	"errors"
	"testing"
)

const page = `<!DOCTYPE html>
<html><head><title>t</title></head>
<body><div id="app" class="root main"><input type="text" v-model="person.name" value="x"><p>{{person.name}}</p><!-- note --><textarea>hi</textarea></div></body></html>`

func TestParse(t *testing.T) {
	doc, err := ParseString(page)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Doctype != "html" {
		t.Errorf("doctype = %q", doc.Doctype)
	}
	if doc.Root().Tag != "html" {
		t.Errorf("root = %q", doc.Root().Tag)
	}

	app := doc.QuerySelector("#app")
	if app == nil {
		t.Fatal("#app not found")
	}
	if app.ChildCount() != 4 {
		t.Fatalf("app has %d children", app.ChildCount())
	}

	input := app.FirstChild()
	if v, _ := input.GetAttribute("v-model"); v != "person.name" {
		t.Errorf("v-model = %q", v)
	}
	if input.Value() != "x" {
		t.Errorf("input value = %q, want initial attribute value", input.Value())
	}
	if ta := doc.QuerySelector("textarea"); ta.Value() != "hi" {
		t.Errorf("textarea value = %q", ta.Value())
	}
	if got := app.ChildNodes()[2].Type; got != CommentNode {
		t.Errorf("third child type = %v", got)
	}
}

func TestParseFragmentIsWrapped(t *testing.T) {
	doc, err := ParseString(`<span @click="go">x</span>`)
	if err != nil {
		t.Fatal(err)
	}
	span := doc.QuerySelector("span")
	if span == nil || span.Parent() != doc.Body() {
		t.Fatal("fragment should land in body")
	}
	if !span.HasAttribute("@click") {
		t.Error("@click attribute lost")
	}
}

func TestQuerySelector(t *testing.T) {
	doc, _ := ParseString(page)
	tests := []struct {
		sel  string
		want string
	}{
		{"#app", "div"},
		{".main", "div"},
		{"p", "p"},
		{"[type=text]", "input"},
		{"[v-model]", "input"},
		{"[type='text']", "input"},
	}
	for _, tt := range tests {
		n := doc.QuerySelector(tt.sel)
		if n == nil || n.Tag != tt.want {
			t.Errorf("QuerySelector(%q) = %v, want <%s>", tt.sel, n, tt.want)
		}
	}
	if doc.QuerySelector("#nope") != nil || doc.QuerySelector("") != nil {
		t.Error("expected no match")
	}
}

func TestAppendMovesNode(t *testing.T) {
	a := NewElement("div")
	b := NewElement("div")
	x := NewText("x")
	a.AppendChild(x)
	b.AppendChild(x)

	if a.ChildCount() != 0 || b.FirstChild() != x || x.Parent() != b {
		t.Error("AppendChild should move the node")
	}
}

func TestAppendFragmentMovesChildren(t *testing.T) {
	root := NewElement("div")
	frag := NewFragment()
	frag.AppendChild(NewText("a"))
	frag.AppendChild(NewText("b"))

	root.AppendChild(frag)
	if frag.ChildCount() != 0 {
		t.Error("fragment should be emptied")
	}
	if root.TextContent() != "ab" {
		t.Errorf("text = %q", root.TextContent())
	}
	if root.FirstChild().Parent() != root {
		t.Error("moved child has wrong parent")
	}
}

func TestReplaceChild(t *testing.T) {
	root := NewElement("p")
	mid := NewText("{{x}}")
	root.AppendChild(NewText("a"))
	root.AppendChild(mid)
	root.AppendChild(NewText("c"))

	root.ReplaceChild(mid, NewText("1"), NewText("2"))
	if root.TextContent() != "a12c" {
		t.Errorf("text = %q", root.TextContent())
	}
	if mid.Parent() != nil {
		t.Error("replaced node still attached")
	}
}

func TestInsertBeforeSameParent(t *testing.T) {
	root := NewElement("p")
	a, b, c := NewText("a"), NewText("b"), NewText("c")
	root.AppendChild(a)
	root.AppendChild(b)
	root.AppendChild(c)

	root.InsertBefore(a, c)
	if root.TextContent() != "bac" {
		t.Errorf("text = %q", root.TextContent())
	}
}

func TestSetTextContent(t *testing.T) {
	el := NewElement("p")
	el.AppendChild(NewElement("b"))
	el.AppendChild(NewText("x"))
	el.SetTextContent("hello")
	if el.ChildCount() != 1 || el.TextContent() != "hello" {
		t.Errorf("children = %d text = %q", el.ChildCount(), el.TextContent())
	}
}

func TestMutationsAreRecorded(t *testing.T) {
	doc, _ := ParseString(page)
	var got []Mutation
	stop := doc.Observe(func(m Mutation) { got = append(got, m) })

	input := doc.QuerySelector("input")
	input.SetValue("y")
	input.SetValue("y") // unchanged, not recorded
	p := doc.QuerySelector("p")
	p.FirstChild().SetText("z")

	// Nodes created detached adopt the owner when inserted.
	extra := NewText("new")
	p.AppendChild(extra)
	extra.SetText("newer")

	want := []MutationKind{MutationValue, MutationText, MutationChildren, MutationText}
	if len(got) != len(want) {
		t.Fatalf("got %d mutations: %v", len(got), got)
	}
	for i, k := range want {
		if got[i].Kind != k {
			t.Errorf("mutation %d = %v, want %v", i, got[i].Kind, k)
		}
	}

	stop()
	input.SetValue("q")
	if len(got) != len(want) {
		t.Error("observer still called after stop")
	}
}

func TestDispatch(t *testing.T) {
	n := NewElement("input")
	var order []string
	n.AddEventListener("input", func(e *Event) error {
		order = append(order, "first:"+e.Target.Value())
		return errors.New("boom")
	})
	n.AddEventListener("input", func(e *Event) error {
		order = append(order, "second")
		return nil
	})

	err := n.Input("v")
	if err == nil || err.Error() != "boom" {
		t.Errorf("err = %v", err)
	}
	if len(order) != 2 || order[0] != "first:v" || order[1] != "second" {
		t.Errorf("order = %v", order)
	}
	if n.Click() != nil {
		t.Error("click with no listeners should not fail")
	}
	if !n.HasListeners("input") || n.HasListeners("click") {
		t.Error("HasListeners mismatch")
	}
}

func TestHydrationIDs(t *testing.T) {
	doc, _ := ParseString(page)
	gen := NewHIDGenerator()
	app := doc.QuerySelector("#app")
	p := doc.QuerySelector("p")

	if hid := app.EnsureHID(gen); hid != "b1" {
		t.Errorf("hid = %q", hid)
	}
	if hid := app.EnsureHID(gen); hid != "b1" {
		t.Errorf("EnsureHID should be stable, got %q", hid)
	}
	p.EnsureHID(gen)

	if doc.ByHID("b2") != p {
		t.Error("ByHID(b2) should find <p>")
	}
	if p.FirstChild().ClosestHID() != p {
		t.Error("ClosestHID of text should be <p>")
	}
	if hid := NewHIDGenerator().Next(); hid != "b1" {
		t.Errorf("fresh generator starts at %q", hid)
	}
}
