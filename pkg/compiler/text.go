package compiler

import (
	"regexp"
	"strings"

	"github.com/vango-go/vbind/pkg/dom"
	"github.com/vango-go/vbind/pkg/reactive"
)

var mustache = regexp.MustCompile(`\{\{(.+?)\}\}`)

// compileText binds the placeholders of a text node.
func (c *Compiler) compileText(node *dom.Node) error {
	text := node.Text()
	matches := mustache.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}
	parent := node.Parent()

	if c.opts.Interpolation == InterpolateWholeNode {
		for _, m := range matches {
			expr := strings.TrimSpace(text[m[2]:m[3]])
			w, err := c.watch("{{}}", expr, func(v any) {
				node.SetText(reactive.Stringify(v))
			})
			if err != nil {
				return err
			}
			node.SetText(reactive.Stringify(w.Value()))
			c.stats.Mustache++
		}
		c.markHID(parent)
		return nil
	}

	var nodes []*dom.Node
	last := 0
	for _, m := range matches {
		if m[0] > last {
			nodes = append(nodes, dom.NewText(text[last:m[0]]))
		}
		expr := strings.TrimSpace(text[m[2]:m[3]])
		seg := dom.NewText("")
		w, err := c.watch("{{}}", expr, func(v any) {
			seg.SetText(reactive.Stringify(v))
		})
		if err != nil {
			return err
		}
		seg.SetText(reactive.Stringify(w.Value()))
		nodes = append(nodes, seg)
		c.stats.Mustache++
		last = m[1]
	}
	if last < len(text) {
		nodes = append(nodes, dom.NewText(text[last:]))
	}

	if parent != nil {
		parent.ReplaceChild(node, nodes...)
	}
	c.markHID(parent)
	return nil
}

// Interpolate replaces every {{ path }} in text with the path's value.
// Unresolved paths render as "". Reads go through scope, so a call made
// while a subscriber is tracking registers it.
func Interpolate(scope reactive.Scope, text string) string {
	return mustache.ReplaceAllStringFunc(text, func(m string) string {
		expr := strings.TrimSpace(m[2 : len(m)-2])
		return reactive.Stringify(scope.Get(expr))
	})
}
