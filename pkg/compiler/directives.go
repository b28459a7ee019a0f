package compiler

import (
	"strings"

	"github.com/vango-go/vbind/pkg/dom"
	"github.com/vango-go/vbind/pkg/reactive"
)

// compileElement binds the directive attributes of node. Attributes are
// left in place.
func (c *Compiler) compileElement(node *dom.Node) error {
	for _, attr := range node.Attributes() {
		name, expr := attr.Name, strings.TrimSpace(attr.Value)

		if event, ok := c.eventName(name); ok {
			c.bindEvent(node, name, event, expr)
			continue
		}
		if !strings.HasPrefix(name, c.opts.Prefix) {
			continue
		}

		var err error
		switch strings.TrimPrefix(name, c.opts.Prefix) {
		case "model":
			err = c.bindModel(node, name, expr)
		case "text":
			err = c.bindText(node, name, expr)
		default:
			c.stats.Skipped++
			c.logger.Debug("unknown directive", "directive", name, "expr", expr)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// eventName reports the event of a v-on:<event> or @<event> attribute.
func (c *Compiler) eventName(name string) (string, bool) {
	var event string
	switch {
	case strings.HasPrefix(name, c.opts.Prefix+"on:"):
		event = strings.TrimPrefix(name, c.opts.Prefix+"on:")
	case strings.HasPrefix(name, "@"):
		event = name[1:]
	default:
		return "", false
	}
	return event, event != ""
}

// bindModel writes the path's value into the node's value slot now and on
// every change, and writes the node's value back to the path on input.
func (c *Compiler) bindModel(node *dom.Node, directive, expr string) error {
	w, err := c.watch(directive, expr, func(v any) {
		node.SetValue(reactive.Stringify(v))
	})
	if err != nil {
		return err
	}
	node.SetValue(reactive.Stringify(w.Value()))

	scope := c.host.Scope()
	node.AddEventListener("input", func(e *dom.Event) error {
		if err := scope.Assign(expr, e.Target.Value()); err != nil {
			berr := &BindingError{Directive: directive, Expr: expr, Err: err}
			c.logger.Warn("model write failed", "error", berr)
			return berr
		}
		return nil
	})

	c.stats.Models++
	c.markHID(node)
	return nil
}

// bindText overwrites the node's text content with the path's value now
// and on every change.
func (c *Compiler) bindText(node *dom.Node, directive, expr string) error {
	w, err := c.watch(directive, expr, func(v any) {
		node.SetTextContent(reactive.Stringify(v))
	})
	if err != nil {
		return err
	}
	node.SetTextContent(reactive.Stringify(w.Value()))

	c.stats.Texts++
	c.markHID(node)
	return nil
}

// bindEvent resolves the method at dispatch time, so a method defined
// after compile is still found, and calls it through the host.
func (c *Compiler) bindEvent(node *dom.Node, directive, event, expr string) {
	scope := c.host.Scope()
	node.AddEventListener(event, func(e *dom.Event) error {
		fn, err := scope.Lookup(expr)
		if err == nil {
			err = c.host.Apply(fn)
		}
		if err != nil {
			berr := &BindingError{Directive: directive, Expr: expr, Err: err}
			c.logger.Warn("event handler failed", "event", event, "error", berr)
			return berr
		}
		return nil
	})

	c.stats.Events++
	c.markHID(node)
}
