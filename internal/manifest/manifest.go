// Package manifest describes a vbind app in YAML: the root selector, the
// data (key order preserved), computed string templates and methods made
// of steps.
//
//	el: "#app"
//	data:
//	  person: {name: alice, age: 40, son: {name: bob, age: 14}}
//	computed:
//	  getSonInfo: "son -> {{person.son.name}} & {{person.son.age}}"
//	method:
//	  otherMethod: [{set: person.name, value: zhou}]
//	  changeText:  [{call: otherMethod}, {set: person.son.name, value: wu}]
package manifest

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	verrors "github.com/vango-go/vbind/internal/errors"
	"github.com/vango-go/vbind/pkg/reactive"
)

// Manifest is a decoded app description.
type Manifest struct {
	El       string
	Template string
	Data     reactive.Fields
	Computed []Computed
	Methods  []Method
}

// Computed is a computed property whose value is Template with every
// {{ path }} replaced.
type Computed struct {
	Name     string
	Template string
}

// Method is a named list of steps run in order. A failing step stops the
// method.
type Method struct {
	Name  string
	Steps []Step
}

// Step is one action of a method. Exactly one of Set, Call or Copy is set.
type Step struct {
	Set   string `yaml:"set,omitempty"`
	Value any    `yaml:"value,omitempty"`
	Call  string `yaml:"call,omitempty"`
	Copy  string `yaml:"copy,omitempty"`
	From  string `yaml:"from,omitempty"`

	line int
}

// Action returns "set", "call" or "copy".
func (s Step) Action() string {
	switch {
	case s.Set != "":
		return "set"
	case s.Call != "":
		return "call"
	default:
		return "copy"
	}
}

type document struct {
	El       string    `yaml:"el"`
	Template string    `yaml:"template"`
	Data     yaml.Node `yaml:"data"`
	Computed yaml.Node `yaml:"computed"`
	Method   yaml.Node `yaml:"method"`
}

// Parse decodes a manifest. name labels error locations.
func Parse(name string, data []byte) (*Manifest, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, verrors.New("VB101").WithLocation(name, 0, 0).Wrap(err)
	}

	m := &Manifest{El: doc.El, Template: doc.Template}

	if !isZero(doc.Data) {
		if doc.Data.Kind != yaml.MappingNode {
			return nil, verrors.New("VB103").WithLocation(name, doc.Data.Line, doc.Data.Column)
		}
		fields, err := toFields(&doc.Data)
		if err != nil {
			return nil, verrors.New("VB103").WithLocation(name, doc.Data.Line, doc.Data.Column).Wrap(err)
		}
		m.Data = fields
	}

	if !isZero(doc.Computed) {
		if err := eachPair(&doc.Computed, func(k string, v *yaml.Node) error {
			var tmpl string
			if err := v.Decode(&tmpl); err != nil {
				return verrors.New("VB101").WithLocation(name, v.Line, v.Column).
					WithSuggestion("computed values are string templates").Wrap(err)
			}
			m.Computed = append(m.Computed, Computed{Name: k, Template: tmpl})
			return nil
		}); err != nil {
			return nil, err
		}
	}

	if !isZero(doc.Method) {
		if err := eachPair(&doc.Method, func(k string, v *yaml.Node) error {
			steps, err := decodeSteps(name, v)
			if err != nil {
				return err
			}
			m.Methods = append(m.Methods, Method{Name: k, Steps: steps})
			return nil
		}); err != nil {
			return nil, err
		}
		if err := checkCalls(name, m.Methods); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// checkCalls rejects call steps naming an undefined method and call chains
// that lead back to a method already running.
func checkCalls(name string, methods []Method) error {
	byName := make(map[string]Method, len(methods))
	for _, meth := range methods {
		byName[meth.Name] = meth
	}
	for _, meth := range methods {
		for _, s := range meth.Steps {
			if s.Call == "" {
				continue
			}
			if _, ok := byName[s.Call]; !ok {
				return verrors.New("VB102").WithLocation(name, s.line, 0).
					Wrap(fmt.Errorf("method %s calls undefined method %q", meth.Name, s.Call))
			}
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(methods))
	var stack []string
	var visit func(meth Method) error
	visit = func(meth Method) error {
		state[meth.Name] = visiting
		stack = append(stack, meth.Name)
		for _, s := range meth.Steps {
			if s.Call == "" {
				continue
			}
			switch state[s.Call] {
			case visiting:
				start := 0
				for i, n := range stack {
					if n == s.Call {
						start = i
						break
					}
				}
				cycle := append(append([]string(nil), stack[start:]...), s.Call)
				return verrors.New("VB102").WithLocation(name, s.line, 0).
					WithSuggestion("a method must not call itself, directly or through other methods").
					Wrap(fmt.Errorf("call cycle: %s", strings.Join(cycle, " -> ")))
			case unvisited:
				if err := visit(byName[s.Call]); err != nil {
					return err
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[meth.Name] = done
		return nil
	}
	for _, meth := range methods {
		if state[meth.Name] == unvisited {
			if err := visit(meth); err != nil {
				return err
			}
		}
	}
	return nil
}

func isZero(n yaml.Node) bool {
	return n.Kind == 0
}

func eachPair(n *yaml.Node, fn func(key string, value *yaml.Node) error) error {
	if n.Kind != yaml.MappingNode {
		return verrors.New("VB101").WithDetail(fmt.Sprintf("expected a mapping at line %d", n.Line))
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if err := fn(n.Content[i].Value, n.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func decodeSteps(name string, n *yaml.Node) ([]Step, error) {
	var raw []yaml.Node
	if err := n.Decode(&raw); err != nil {
		return nil, verrors.New("VB102").WithLocation(name, n.Line, n.Column).
			WithSuggestion("a method is a list of steps").Wrap(err)
	}
	steps := make([]Step, 0, len(raw))
	for i := range raw {
		var s Step
		if err := raw[i].Decode(&s); err != nil {
			return nil, verrors.New("VB102").WithLocation(name, raw[i].Line, raw[i].Column).Wrap(err)
		}
		s.line = raw[i].Line
		if err := s.validate(); err != nil {
			return nil, verrors.New("VB102").WithLocation(name, raw[i].Line, raw[i].Column).Wrap(err)
		}
		steps = append(steps, s)
	}
	return steps, nil
}

func (s Step) validate() error {
	n := 0
	for _, set := range []bool{s.Set != "", s.Call != "", s.Copy != ""} {
		if set {
			n++
		}
	}
	if n != 1 {
		return fmt.Errorf("step needs exactly one of set, call, copy (has %d)", n)
	}
	if s.Copy != "" && s.From == "" {
		return fmt.Errorf("copy to %q has no from", s.Copy)
	}
	return nil
}

// toFields converts a YAML mapping into ordered fields. Nested mappings
// become nested Fields so key order survives observation.
func toFields(n *yaml.Node) (reactive.Fields, error) {
	fields := make(reactive.Fields, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		v, err := toValue(n.Content[i+1])
		if err != nil {
			return nil, err
		}
		fields = append(fields, reactive.Field{Key: n.Content[i].Value, Value: v})
	}
	return fields, nil
}

func toValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.MappingNode:
		return toFields(n)
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := toValue(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.AliasNode:
		return toValue(n.Alias)
	default:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return v, nil
	}
}
