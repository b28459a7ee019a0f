package manifest

import (
	"fmt"

	"github.com/vango-go/vbind"
	"github.com/vango-go/vbind/pkg/compiler"
	"github.com/vango-go/vbind/pkg/reactive"
)

// Options turns the manifest into VM options. El, Document and the
// ambient options are left to the caller.
func (m *Manifest) Options() vbind.Options {
	opts := vbind.Options{
		Data:     m.Data.Clone(),
		Computed: make(map[string]reactive.ComputedFunc, len(m.Computed)),
		Method:   make(map[string]vbind.MethodFunc, len(m.Methods)),
	}
	for _, c := range m.Computed {
		tmpl := c.Template
		opts.Computed[c.Name] = func(s reactive.Scope) any {
			return compiler.Interpolate(s, tmpl)
		}
	}
	for _, meth := range m.Methods {
		opts.Method[meth.Name] = meth.Func()
	}
	if m.El != "" {
		opts.El = m.El
	}
	return opts
}

// Func returns the method as a vbind.MethodFunc.
func (meth Method) Func() vbind.MethodFunc {
	name, steps := meth.Name, meth.Steps
	return func(vm *vbind.VM) error {
		for i, s := range steps {
			if err := s.run(vm); err != nil {
				return fmt.Errorf("method %s step %d (%s): %w", name, i+1, s.Action(), err)
			}
		}
		return nil
	}
}

func (s Step) run(vm *vbind.VM) error {
	switch s.Action() {
	case "set":
		return vm.Assign(s.Set, s.Value)
	case "call":
		return vm.Call(s.Call)
	default:
		v, err := vm.Lookup(s.From)
		if err != nil {
			return err
		}
		return vm.Assign(s.Copy, v)
	}
}
