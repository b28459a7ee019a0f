package vbind

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/vango-go/vbind/pkg/compiler"
	"github.com/vango-go/vbind/pkg/dom"
	"github.com/vango-go/vbind/pkg/reactive"
)

// =============================================================================
// Options
// =============================================================================

// MethodFunc is a method property. It runs with the VM as receiver.
type MethodFunc func(vm *VM) error

// Options configures a VM.
type Options struct {
	// El is the root to compile: a *dom.Node, or a selector ("#id",
	// ".class", "tag", "[attr=value]") resolved in Document. Without El the
	// data is still observed but nothing is compiled.
	El any

	// Document resolves a selector El.
	Document *dom.Document

	// Data is a map[string]any or reactive.Fields. Nil means no data.
	Data any

	// Computed properties are get-only and recomputed on every read.
	Computed map[string]reactive.ComputedFunc

	// Method properties are get-only and read as the function itself.
	Method map[string]MethodFunc

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Probe observes notification traffic. Optional.
	Probe reactive.Probe

	// CompilerOptions are forwarded to the compiler.
	CompilerOptions []compiler.Option
}

// =============================================================================
// VM
// =============================================================================

// VM owns one data graph and the tree compiled against it.
type VM struct {
	opts     Options
	el       *dom.Node
	data     *reactive.Object
	tracker  *reactive.Tracker
	compiler *compiler.Compiler
	logger   *slog.Logger
	proxied  map[string]bool
	watchers []*reactive.Watcher
}

// New creates a VM. See NewContext.
func New(opts Options) (*VM, error) {
	return NewContext(context.Background(), opts)
}

// NewContext observes opts.Data, defines computed and method properties on
// the data root, proxies the top-level data keys and, if El is set,
// compiles it. ctx carries the trace of the compile pass.
func NewContext(ctx context.Context, opts Options) (*VM, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	vm := &VM{
		opts:    opts,
		tracker: reactive.NewTracker(),
		logger:  logger.With("component", "vm"),
		proxied: make(map[string]bool),
	}

	data := opts.Data
	if data == nil {
		data = reactive.Fields{}
	}
	ropts := []reactive.Option{reactive.WithTracker(vm.tracker)}
	if opts.Probe != nil {
		ropts = append(ropts, reactive.WithProbe(opts.Probe))
	}
	root, err := reactive.Observe(data, ropts...)
	if err != nil {
		return nil, fmt.Errorf("vbind: observe data: %w", err)
	}
	vm.data = root

	// Only data keys are proxied; computed and method names are reachable
	// by path.
	for _, key := range root.Keys() {
		vm.proxied[key] = true
	}

	for _, name := range sortedKeys(opts.Computed) {
		if err := root.DefineComputed(name, opts.Computed[name]); err != nil {
			return nil, fmt.Errorf("vbind: computed %q: %w", name, err)
		}
	}
	for _, name := range sortedKeys(opts.Method) {
		if err := root.DefineMethod(name, opts.Method[name]); err != nil {
			return nil, fmt.Errorf("vbind: method %q: %w", name, err)
		}
	}

	if opts.El == nil {
		return vm, nil
	}
	el, err := resolveEl(opts.El, opts.Document)
	if err != nil {
		return nil, err
	}
	vm.el = el
	vm.compiler = compiler.New(vm, opts.CompilerOptions...)
	if err := vm.compiler.Mount(ctx, el); err != nil {
		return nil, fmt.Errorf("vbind: compile: %w", err)
	}
	return vm, nil
}

func resolveEl(el any, doc *dom.Document) (*dom.Node, error) {
	switch v := el.(type) {
	case *dom.Node:
		if v == nil {
			return nil, ErrRootNotFound
		}
		return v, nil
	case string:
		if doc == nil {
			return nil, ErrNoDocument
		}
		n := doc.QuerySelector(v)
		if n == nil {
			return nil, fmt.Errorf("%w: %q", ErrRootNotFound, v)
		}
		return n, nil
	default:
		return nil, ErrInvalidEl
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// El returns the compiled root, or nil.
func (vm *VM) El() *dom.Node {
	return vm.el
}

// Data returns the observed data root.
func (vm *VM) Data() *reactive.Object {
	return vm.data
}

// Compiler returns the compiler, or nil when no El was given.
func (vm *VM) Compiler() *compiler.Compiler {
	return vm.compiler
}

// Scope returns a scope over the data root.
func (vm *VM) Scope() reactive.Scope {
	return reactive.NewScope(vm.data)
}

// Logger returns the VM's logger.
func (vm *VM) Logger() *slog.Logger {
	return vm.logger
}

// Apply invokes fn with vm as receiver. It accepts MethodFunc and the
// plain function shapes a method may take.
func (vm *VM) Apply(fn any) error {
	switch f := fn.(type) {
	case MethodFunc:
		return f(vm)
	case func(*VM) error:
		return f(vm)
	case func(*VM):
		f(vm)
		return nil
	case func() error:
		return f()
	case func():
		f()
		return nil
	default:
		return fmt.Errorf("%w: %T", ErrNotMethod, fn)
	}
}
