package compiler

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/vango-go/vbind/pkg/dom"
	"github.com/vango-go/vbind/pkg/reactive"
)

// Host is what the compiler needs from the object that owns the data.
type Host interface {
	// Scope returns the data root paths are resolved against.
	Scope() reactive.Scope

	// Apply invokes a resolved method value with the host as receiver.
	Apply(fn any) error

	// Logger returns the logger for binding diagnostics.
	Logger() *slog.Logger
}

// Stats counts the bindings created by a compile pass.
type Stats struct {
	Models   int // v-model
	Events   int // v-on:* and @*
	Texts    int // v-text
	Mustache int // {{ }} placeholders
	Skipped  int // unknown directives
}

// Watchers returns the total number of watchers the bindings created.
func (s Stats) Watchers() int {
	return s.Models + s.Texts + s.Mustache
}

// Compiler binds one root element.
type Compiler struct {
	host     Host
	opts     Options
	logger   *slog.Logger
	hids     *dom.HIDGenerator
	root     *dom.Node
	watchers []*reactive.Watcher
	stats    Stats
}

// New creates a compiler for host.
func New(host Host, opts ...Option) *Compiler {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	o.resolve()

	logger := host.Logger()
	if logger == nil {
		logger = slog.Default()
	}
	return &Compiler{
		host:   host,
		opts:   o,
		logger: logger.With("component", "compiler"),
		hids:   dom.NewHIDGenerator(),
	}
}

// Options returns the resolved options.
func (c *Compiler) Options() Options {
	return c.opts
}

// Stats returns the binding counts of the last Mount.
func (c *Compiler) Stats() Stats {
	return c.stats
}

// Watchers returns every watcher created by the compiler, in creation
// order.
func (c *Compiler) Watchers() []*reactive.Watcher {
	return c.watchers
}

// Root returns the mounted root.
func (c *Compiler) Root() *dom.Node {
	return c.root
}

// Mount compiles root's subtree: it detaches the children into a fragment,
// binds every directive and placeholder in the fragment, then reattaches
// the fragment in one operation. A compile error leaves the tree
// reattached with whatever bindings were made before it.
func (c *Compiler) Mount(ctx context.Context, root *dom.Node) (err error) {
	if root == nil {
		return ErrNoRoot
	}
	if c.root != nil {
		return ErrMounted
	}
	c.root = root

	_, span := c.opts.Tracer.Start(ctx, "vbind.compile")
	defer func() {
		span.SetAttributes(
			attribute.String("vbind.root", root.Tag),
			attribute.String("vbind.interpolation", c.opts.Interpolation.String()),
			attribute.Int("vbind.bindings.model", c.stats.Models),
			attribute.Int("vbind.bindings.event", c.stats.Events),
			attribute.Int("vbind.bindings.text", c.stats.Texts),
			attribute.Int("vbind.bindings.mustache", c.stats.Mustache),
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	frag := c.Detach(root)
	err = c.Compile(frag)
	c.Reattach(root, frag)

	c.logger.Debug("mounted",
		"root", root.Tag,
		"watchers", c.stats.Watchers(),
		"events", c.stats.Events,
		"skipped", c.stats.Skipped)
	return err
}

// Detach moves every child of root into a new fragment, in order.
func (c *Compiler) Detach(root *dom.Node) *dom.Node {
	frag := dom.NewFragment()
	for child := root.FirstChild(); child != nil; child = root.FirstChild() {
		frag.AppendChild(child)
	}
	return frag
}

// Reattach appends the fragment's children to root.
func (c *Compiler) Reattach(root, frag *dom.Node) {
	root.AppendChild(frag)
}

// Compile walks node's children: elements have their directives bound and
// are recursed into, text nodes have their placeholders bound. Textarea
// content is left as written.
func (c *Compiler) Compile(node *dom.Node) error {
	for _, child := range node.ChildNodes() {
		switch child.Type {
		case dom.ElementNode:
			if err := c.compileElement(child); err != nil {
				return err
			}
			if child.Tag == "textarea" {
				// The content is the control's initial value, not
				// rendered text. v-model binds a textarea.
				if child.FirstChild() != nil {
					c.logger.Debug("textarea content is not compiled")
				}
				continue
			}
			if err := c.Compile(child); err != nil {
				return err
			}
		case dom.TextNode:
			if err := c.compileText(child); err != nil {
				return err
			}
		}
	}
	return nil
}

// watch creates a watcher on expr and records it. The watcher's first
// value is returned through its cache.
func (c *Compiler) watch(directive, expr string, cb func(any)) (*reactive.Watcher, error) {
	w, err := reactive.NewWatcher(c.host.Scope(), expr, cb)
	if err != nil {
		return nil, &BindingError{Directive: directive, Expr: expr, Err: err}
	}
	if reactive.IsUndefined(w.Value()) {
		_, lerr := c.host.Scope().Lookup(expr)
		c.logger.Debug("unresolved path renders empty", "directive", directive, "expr", expr, "error", lerr)
	}
	c.watchers = append(c.watchers, w)
	return w, nil
}

// markHID gives n a hydration ID. Nodes sitting directly in the mount
// fragment are addressed through the root.
func (c *Compiler) markHID(n *dom.Node) {
	if !c.opts.HydrationIDs {
		return
	}
	if n == nil || n.Type == dom.FragmentNode {
		n = c.root
	}
	if n != nil {
		n.EnsureHID(c.hids)
	}
}
