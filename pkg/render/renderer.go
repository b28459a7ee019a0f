package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/vango-go/vbind/pkg/dom"
)

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// Pretty enables indented output. Text nodes made only of whitespace
	// are dropped in this mode.
	Pretty bool

	// Indent is the string used for each indentation level in pretty mode.
	// Defaults to two spaces if not specified.
	Indent string

	// OmitDirectives drops attributes starting with DirectivePrefix and the
	// "@" shorthand from the output.
	OmitDirectives bool

	// DirectivePrefix defaults to "v-".
	DirectivePrefix string
}

// Renderer serialises dom nodes to HTML.
type Renderer struct {
	config RendererConfig

	// bodyTail is written just before </body> by RenderPage.
	bodyTail func(w io.Writer) error
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Indent == "" {
		config.Indent = "  "
	}
	if config.DirectivePrefix == "" {
		config.DirectivePrefix = "v-"
	}
	return &Renderer{config: config}
}

// RenderToString renders node and its subtree to a string.
func (r *Renderer) RenderToString(node *dom.Node) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter streams node and its subtree to w.
func (r *Renderer) RenderToWriter(w io.Writer, node *dom.Node) error {
	return r.renderNode(w, node, 0)
}

// RenderDocument writes the doctype (if any) followed by the root element.
func (r *Renderer) RenderDocument(w io.Writer, doc *dom.Document) error {
	if doc.Doctype != "" {
		if _, err := fmt.Fprintf(w, "<!DOCTYPE %s>\n", doc.Doctype); err != nil {
			return err
		}
	}
	return r.RenderToWriter(w, doc.Root())
}

// InnerHTML renders the children of node without the node itself.
func (r *Renderer) InnerHTML(node *dom.Node) (string, error) {
	var buf bytes.Buffer
	for _, c := range node.ChildNodes() {
		if err := r.renderNode(&buf, c, 0); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// renderNode dispatches rendering based on node type.
func (r *Renderer) renderNode(w io.Writer, node *dom.Node, depth int) error {
	if node == nil {
		return nil
	}

	switch node.Type {
	case dom.ElementNode:
		return r.renderElement(w, node, depth)
	case dom.TextNode:
		return r.renderText(w, node, depth)
	case dom.CommentNode:
		return r.renderComment(w, node, depth)
	case dom.FragmentNode:
		return r.renderChildren(w, node, depth)
	default:
		return fmt.Errorf("render: unknown node type: %d", node.Type)
	}
}

// renderElement renders an element with its attributes and children.
func (r *Renderer) renderElement(w io.Writer, node *dom.Node, depth int) error {
	tag := node.Tag

	if r.config.Pretty && depth > 0 {
		r.writeIndent(w, depth)
	}

	if _, err := fmt.Fprintf(w, "<%s", tag); err != nil {
		return err
	}
	if err := r.renderAttributes(w, node); err != nil {
		return err
	}
	if _, err := w.Write([]byte{'>'}); err != nil {
		return err
	}

	if isVoidElement(tag) {
		r.newline(w)
		return nil
	}

	switch {
	case tag == "textarea":
		if _, err := io.WriteString(w, escapeHTML(node.Value())); err != nil {
			return err
		}
	case isRawTextElement(tag):
		if _, err := io.WriteString(w, node.TextContent()); err != nil {
			return err
		}
	default:
		block := r.config.Pretty && hasElementChildren(node) && !isInlineElement(tag)
		if block {
			r.newline(w)
		}
		if err := r.renderChildren(w, node, depth+1); err != nil {
			return err
		}
		if tag == "body" && r.bodyTail != nil {
			if err := r.bodyTail(w); err != nil {
				return err
			}
		}
		if block {
			r.writeIndent(w, depth)
		}
	}

	if _, err := fmt.Fprintf(w, "</%s>", tag); err != nil {
		return err
	}
	r.newline(w)
	return nil
}

func (r *Renderer) renderChildren(w io.Writer, node *dom.Node, depth int) error {
	for _, child := range node.ChildNodes() {
		if err := r.renderNode(w, child, depth); err != nil {
			return err
		}
	}
	return nil
}

// renderText renders a text node with HTML escaping.
func (r *Renderer) renderText(w io.Writer, node *dom.Node, depth int) error {
	text := node.Text()
	if r.config.Pretty {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		if isBlockParent(node) {
			r.writeIndent(w, depth)
			defer r.newline(w)
		}
	}
	_, err := io.WriteString(w, escapeHTML(text))
	return err
}

func (r *Renderer) renderComment(w io.Writer, node *dom.Node, depth int) error {
	if r.config.Pretty {
		r.writeIndent(w, depth)
		defer r.newline(w)
	}
	_, err := fmt.Fprintf(w, "<!--%s-->", node.Text())
	return err
}

// renderAttributes renders attributes in source order. The value attribute
// of an input is taken from its value slot.
func (r *Renderer) renderAttributes(w io.Writer, node *dom.Node) error {
	attrs := node.Attributes()
	sawValue := false

	for _, a := range attrs {
		if r.config.OmitDirectives && r.isDirective(a.Name) {
			continue
		}
		value := a.Value
		if a.Name == "value" && node.Tag == "input" {
			value = node.Value()
			sawValue = true
		}
		if isBooleanAttr(a.Name) && value == "" {
			if _, err := fmt.Fprintf(w, " %s", a.Name); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, ` %s="%s"`, a.Name, escapeAttr(value)); err != nil {
			return err
		}
	}

	if node.Tag == "input" && !sawValue && node.Value() != "" {
		if _, err := fmt.Fprintf(w, ` value="%s"`, escapeAttr(node.Value())); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) isDirective(name string) bool {
	return strings.HasPrefix(name, r.config.DirectivePrefix) || strings.HasPrefix(name, "@")
}

func (r *Renderer) newline(w io.Writer) {
	if r.config.Pretty {
		w.Write([]byte{'\n'})
	}
}

// writeIndent writes indentation for pretty printing.
func (r *Renderer) writeIndent(w io.Writer, depth int) {
	for i := 0; i < depth; i++ {
		w.Write([]byte(r.config.Indent))
	}
}

func isBlockParent(node *dom.Node) bool {
	p := node.Parent()
	return p != nil && hasElementChildren(p) && !isInlineElement(p.Tag)
}

func hasElementChildren(node *dom.Node) bool {
	for _, c := range node.ChildNodes() {
		if c.IsElement() {
			return true
		}
	}
	return false
}
