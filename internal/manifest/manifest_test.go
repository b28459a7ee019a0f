package manifest

import (
	"errors"
	"strings"
	"testing"

	"github.com/vango-go/vbind"
	verrors "github.com/vango-go/vbind/internal/errors"
	"github.com/vango-go/vbind/pkg/dom"
	"github.com/vango-go/vbind/pkg/reactive"
	"github.com/vango-go/vbind/pkg/vtest"
)

const demo = `
el: "#app"
data:
  person:
    name: alice
    age: 40
    son: {name: bob, age: 14}
  tags: [a, b]
computed:
  getSonInfo: "son -> {{person.son.name}} & {{person.son.age}}"
method:
  otherMethod:
    - set: person.name
      value: zhou
  changeText:
    - call: otherMethod
    - set: person.son.name
      value: wu
  promote:
    - copy: person.name
      from: person.son.name
`

const demoTemplate = `<div id="app"><p id="name">{{person.name}}</p><p id="info">{{getSonInfo}}</p><button v-on:click="changeText"></button></div>`

func TestParse(t *testing.T) {
	m, err := Parse("app.yaml", []byte(demo))
	if err != nil {
		t.Fatal(err)
	}
	if m.El != "#app" {
		t.Errorf("el = %q", m.El)
	}

	if len(m.Data) != 2 || m.Data[0].Key != "person" || m.Data[1].Key != "tags" {
		t.Fatalf("data = %+v", m.Data)
	}
	person, ok := m.Data[0].Value.(reactive.Fields)
	if !ok {
		t.Fatalf("person = %T", m.Data[0].Value)
	}
	var keys []string
	for _, f := range person {
		keys = append(keys, f.Key)
	}
	if len(keys) != 3 || keys[0] != "name" || keys[1] != "age" || keys[2] != "son" {
		t.Errorf("person keys = %v, want source order", keys)
	}
	if age, _ := person.Get("age"); age != 40 {
		t.Errorf("age = %v (%T)", age, age)
	}

	if len(m.Computed) != 1 || m.Computed[0].Name != "getSonInfo" {
		t.Errorf("computed = %+v", m.Computed)
	}
	if len(m.Methods) != 3 || m.Methods[1].Name != "changeText" || len(m.Methods[1].Steps) != 2 {
		t.Fatalf("methods = %+v", m.Methods)
	}
	if got := m.Methods[1].Steps[0].Action(); got != "call" {
		t.Errorf("action = %q", got)
	}
}

func newVM(t *testing.T, m *Manifest) (*vbind.VM, *dom.Document) {
	t.Helper()
	doc, err := dom.ParseString(demoTemplate)
	if err != nil {
		t.Fatal(err)
	}
	opts := m.Options()
	opts.Document = doc
	vm, err := vbind.New(opts)
	if err != nil {
		t.Fatal(err)
	}
	return vm, doc
}

func TestOptionsDriveVM(t *testing.T) {
	m, err := Parse("app.yaml", []byte(demo))
	if err != nil {
		t.Fatal(err)
	}
	vm, doc := newVM(t, m)

	if got := doc.QuerySelector("#info").TextContent(); got != "son -> bob & 14" {
		t.Errorf("info = %q", got)
	}
	if err := doc.QuerySelector("button").Click(); err != nil {
		t.Fatal(err)
	}
	if got := doc.QuerySelector("#name").TextContent(); got != "zhou" {
		t.Errorf("name = %q", got)
	}
	if got := doc.QuerySelector("#info").TextContent(); got != "son -> wu & 14" {
		t.Errorf("info = %q", got)
	}

	if err := vm.Call("promote"); err != nil {
		t.Fatal(err)
	}
	if got := doc.QuerySelector("#name").TextContent(); got != "wu" {
		t.Errorf("after copy, name = %q", got)
	}

	// A second VM from the same manifest starts from fresh data.
	_, doc2 := newVM(t, m)
	if got := doc2.QuerySelector("#name").TextContent(); got != "alice" {
		t.Errorf("second vm name = %q", got)
	}
}

func TestManifestTwoWayBinding(t *testing.T) {
	m, err := Parse("app.yaml", []byte(demo))
	if err != nil {
		t.Fatal(err)
	}
	h := vtest.Mount(t, `<div id="app">
<input id="name-input" v-model="person.son.name">
<p id="info">{{getSonInfo}}</p>
<button id="change" v-on:click="changeText">change</button>
</div>`, m.Options())

	h.ExpectValue("#name-input", "bob")
	h.ExpectText("#info", "son -> bob & 14")

	h.Input("#name-input", "carl")
	h.ExpectText("#info", "son -> carl & 14")

	h.Click("#change")
	h.ExpectValue("#name-input", "wu")
	h.ExpectText("#info", "son -> wu & 14")
	h.ExpectContains(`v-model="person.son.name"`)
}

func TestMethodStepFailure(t *testing.T) {
	m, err := Parse("app.yaml", []byte(`
data: {person: {name: alice}}
method:
  broken:
    - set: person.nick.first
      value: x
`))
	if err != nil {
		t.Fatal(err)
	}
	vm, err := vbind.New(m.Options())
	if err != nil {
		t.Fatal(err)
	}
	err = vm.Call("broken")
	if !errors.Is(err, reactive.ErrMissingSegment) {
		t.Errorf("err = %v", err)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code string
	}{
		{"unknown field", "els: x\n", "VB101"},
		{"scalar data", "data: 3\n", "VB103"},
		{"two actions", "method:\n  m:\n    - {set: a, call: b}\n", "VB102"},
		{"no action", "method:\n  m:\n    - {value: 1}\n", "VB102"},
		{"copy without from", "method:\n  m:\n    - {copy: a}\n", "VB102"},
		{"method not a list", "method:\n  m: {set: a}\n", "VB102"},
		{"computed not a string", "computed:\n  c: [1]\n", "VB101"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad.yaml", []byte(tt.src))
			var ve *verrors.Error
			if !errors.As(err, &ve) || ve.Code != tt.code {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestParseRejectsBadCalls(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
		line int
	}{
		{
			name: "direct cycle",
			src:  "method:\n  loop:\n    - call: loop\n",
			want: "call cycle: loop -> loop",
			line: 3,
		},
		{
			name: "indirect cycle",
			src: `method:
  start:
    - call: ping
  ping:
    - set: a
      value: 1
    - call: pong
  pong:
    - call: ping
`,
			want: "call cycle: ping -> pong -> ping",
			line: 9,
		},
		{
			name: "undefined method",
			src:  "method:\n  m:\n    - call: missing\n",
			want: `method m calls undefined method "missing"`,
			line: 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("app.yaml", []byte(tt.src))
			var ve *verrors.Error
			if !errors.As(err, &ve) || ve.Code != "VB102" {
				t.Fatalf("err = %v, want VB102", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %q, want it to contain %q", err, tt.want)
			}
			if ve.Location == nil || ve.Location.Line != tt.line {
				t.Errorf("location = %v, want line %d", ve.Location, tt.line)
			}
		})
	}
}

func TestParseAcceptsSharedCalls(t *testing.T) {
	// Two methods calling the same helper is not a cycle.
	_, err := Parse("app.yaml", []byte(`method:
  a: [{call: helper}, {call: b}]
  b: [{call: helper}]
  helper: [{set: x, value: 1}]
`))
	if err != nil {
		t.Fatal(err)
	}
}

func TestParseEmpty(t *testing.T) {
	m, err := Parse("empty.yaml", nil)
	if err != nil {
		t.Fatal(err)
	}
	if m.El != "" || len(m.Data) != 0 {
		t.Errorf("m = %+v", m)
	}
}
