package dom

import "strings"

// MutationKind says what changed on a node.
type MutationKind uint8

const (
	MutationText      MutationKind = iota + 1 // Character data of a text node
	MutationValue                             // Value slot of a form control
	MutationAttribute                         // Attribute list of an element
	MutationChildren                          // Child list of a node
)

// String returns the string representation of the MutationKind.
func (k MutationKind) String() string {
	switch k {
	case MutationText:
		return "text"
	case MutationValue:
		return "value"
	case MutationAttribute:
		return "attribute"
	case MutationChildren:
		return "children"
	default:
		return "unknown"
	}
}

// Mutation is one recorded change.
type Mutation struct {
	Kind MutationKind
	Node *Node
}

// Document owns a tree of nodes rooted at an element (usually <html>).
type Document struct {
	Doctype string
	root    *Node

	observers []func(Mutation)
}

// NewDocument creates a document whose root is root. root and all its
// descendants become owned by the document.
func NewDocument(root *Node) *Document {
	d := &Document{}
	d.SetRoot(root)
	return d
}

// Root returns the root element.
func (d *Document) Root() *Node {
	return d.root
}

// SetRoot replaces the root element.
func (d *Document) SetRoot(root *Node) {
	d.root = root
	if root != nil {
		root.adopt(d)
	}
}

// Body returns the <body> element, or the root if there is none.
func (d *Document) Body() *Node {
	if body := d.QuerySelector("body"); body != nil {
		return body
	}
	return d.root
}

// CreateElement creates an element owned by d but not yet attached.
func (d *Document) CreateElement(tag string, attrs ...Attr) *Node {
	n := NewElement(tag, attrs...)
	n.owner = d
	return n
}

// CreateText creates a text node owned by d but not yet attached.
func (d *Document) CreateText(text string) *Node {
	n := NewText(text)
	n.owner = d
	return n
}

// Observe registers fn to receive every mutation of owned nodes. The
// returned function unregisters it.
func (d *Document) Observe(fn func(Mutation)) func() {
	d.observers = append(d.observers, fn)
	idx := len(d.observers) - 1
	return func() {
		if idx < len(d.observers) {
			d.observers[idx] = nil
		}
	}
}

func (d *Document) record(m Mutation) {
	for _, fn := range d.observers {
		if fn != nil {
			fn(m)
		}
	}
}

// QuerySelector returns the first element matching sel in document order.
func (d *Document) QuerySelector(sel string) *Node {
	if d.root == nil {
		return nil
	}
	return QuerySelector(d.root, sel)
}

// ByHID returns the element carrying hydration ID hid.
func (d *Document) ByHID(hid string) *Node {
	if d.root == nil || hid == "" {
		return nil
	}
	return QuerySelector(d.root, "["+HIDAttr+"="+hid+"]")
}

// QuerySelector returns the first element at or below root matching sel.
// Supported selectors are "#id", ".class", "tag" and "[attr=value]" (or
// "[attr]").
func QuerySelector(root *Node, sel string) *Node {
	match := compileSelector(strings.TrimSpace(sel))
	if match == nil {
		return nil
	}
	var found *Node
	root.Walk(func(n *Node) bool {
		if found != nil {
			return false
		}
		if n.Type == ElementNode && match(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

func compileSelector(sel string) func(*Node) bool {
	switch {
	case sel == "":
		return nil
	case strings.HasPrefix(sel, "#"):
		id := sel[1:]
		return func(n *Node) bool {
			v, ok := n.GetAttribute("id")
			return ok && v == id
		}
	case strings.HasPrefix(sel, "."):
		class := sel[1:]
		return func(n *Node) bool { return n.HasClass(class) }
	case strings.HasPrefix(sel, "[") && strings.HasSuffix(sel, "]"):
		inner := sel[1 : len(sel)-1]
		name, value, hasValue := strings.Cut(inner, "=")
		value = strings.Trim(value, `"'`)
		return func(n *Node) bool {
			v, ok := n.GetAttribute(name)
			return ok && (!hasValue || v == value)
		}
	default:
		tag := strings.ToLower(sel)
		return func(n *Node) bool { return n.Tag == tag }
	}
}
