package dom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Parse reads an HTML document. Fragments are accepted and wrapped in
// <html><head></head><body>…</body></html> the way browsers do.
func Parse(r io.Reader) (*Document, error) {
	hn, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse html: %w", err)
	}
	doc := &Document{}
	for c := hn.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.DoctypeNode:
			doc.Doctype = c.Data
		case html.ElementNode:
			doc.SetRoot(convert(c))
		}
	}
	if doc.root == nil {
		return nil, fmt.Errorf("dom: parse html: no root element")
	}
	return doc, nil
}

// ParseString is Parse over a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

func convert(hn *html.Node) *Node {
	switch hn.Type {
	case html.TextNode:
		return NewText(hn.Data)
	case html.CommentNode:
		return NewComment(hn.Data)
	case html.ElementNode:
		attrs := make([]Attr, 0, len(hn.Attr))
		for _, a := range hn.Attr {
			name := a.Key
			if a.Namespace != "" {
				name = a.Namespace + ":" + a.Key
			}
			attrs = append(attrs, Attr{Name: name, Value: a.Val})
		}
		n := NewElement(hn.Data, attrs...)
		for c := hn.FirstChild; c != nil; c = c.NextSibling {
			if child := convert(c); child != nil {
				n.AppendChild(child)
			}
		}
		if n.Tag == "textarea" {
			n.value = n.TextContent()
		}
		return n
	default:
		return nil
	}
}
