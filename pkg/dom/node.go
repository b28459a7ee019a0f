package dom

import "strings"

// NodeType is the node type discriminator.
type NodeType uint8

const (
	ElementNode  NodeType = iota + 1 // <div>, <input>, etc.
	TextNode                         // Character data
	CommentNode                      // <!-- ... -->
	FragmentNode                     // Detached holding area
)

// String returns the string representation of the NodeType.
func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "Element"
	case TextNode:
		return "Text"
	case CommentNode:
		return "Comment"
	case FragmentNode:
		return "Fragment"
	default:
		return "Unknown"
	}
}

// Attr is a single attribute.
type Attr struct {
	Name  string
	Value string
}

// Node is a document node.
type Node struct {
	Type NodeType
	Tag  string // Lower-case tag name for elements

	attrs     []Attr
	text      string // Character data for text and comment nodes
	value     string // Value slot of form controls
	parent    *Node
	children  []*Node
	listeners map[string][]Listener
	owner     *Document
}

// NewElement creates a detached element.
func NewElement(tag string, attrs ...Attr) *Node {
	n := &Node{Type: ElementNode, Tag: strings.ToLower(tag)}
	for _, a := range attrs {
		n.attrs = append(n.attrs, a)
		if a.Name == "value" {
			n.value = a.Value
		}
	}
	return n
}

// NewText creates a detached text node.
func NewText(text string) *Node {
	return &Node{Type: TextNode, text: text}
}

// NewComment creates a detached comment node.
func NewComment(text string) *Node {
	return &Node{Type: CommentNode, text: text}
}

// NewFragment creates an empty fragment. Appending a fragment to a node
// moves the fragment's children instead of the fragment itself.
func NewFragment() *Node {
	return &Node{Type: FragmentNode}
}

// IsElement reports whether n is an element.
func (n *Node) IsElement() bool {
	return n != nil && n.Type == ElementNode
}

// IsText reports whether n is a text node.
func (n *Node) IsText() bool {
	return n != nil && n.Type == TextNode
}

// Owner returns the document that owns n, if any.
func (n *Node) Owner() *Document {
	return n.owner
}

// ============================================================================
// Tree
// ============================================================================

// Parent returns the parent node, or nil.
func (n *Node) Parent() *Node {
	return n.parent
}

// FirstChild returns the first child, or nil.
func (n *Node) FirstChild() *Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[0]
}

// ChildNodes returns a snapshot of the children.
func (n *Node) ChildNodes() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int {
	return len(n.children)
}

// AppendChild appends child, detaching it from its current parent first.
// Appending a fragment moves all of its children, in order.
func (n *Node) AppendChild(child *Node) {
	n.insertAt(len(n.children), child)
}

// InsertBefore inserts child before ref. A nil ref appends.
func (n *Node) InsertBefore(child, ref *Node) {
	idx := n.indexOf(ref)
	if ref == nil || idx < 0 {
		idx = len(n.children)
	}
	n.insertAt(idx, child)
}

// RemoveChild detaches child from n. It is a no-op if child is not a child
// of n.
func (n *Node) RemoveChild(child *Node) {
	idx := n.indexOf(child)
	if idx < 0 {
		return
	}
	n.children = append(n.children[:idx], n.children[idx+1:]...)
	child.parent = nil
	n.notify(MutationChildren)
}

// ReplaceChild replaces old with the given nodes, in order.
func (n *Node) ReplaceChild(old *Node, nodes ...*Node) {
	idx := n.indexOf(old)
	if idx < 0 {
		return
	}
	n.RemoveChild(old)
	for i, c := range nodes {
		n.insertAt(idx+i, c)
	}
}

func (n *Node) insertAt(idx int, child *Node) {
	if child == nil {
		return
	}
	if child.Type == FragmentNode {
		for _, c := range child.ChildNodes() {
			n.insertAt(idx, c)
			idx++
		}
		return
	}
	if child.parent != nil {
		if child.parent == n && n.indexOf(child) < idx {
			idx--
		}
		child.parent.RemoveChild(child)
	}
	n.children = append(n.children, nil)
	copy(n.children[idx+1:], n.children[idx:])
	n.children[idx] = child
	child.parent = n
	if child.owner == nil && n.owner != nil {
		child.adopt(n.owner)
	}
	n.notify(MutationChildren)
}

func (n *Node) indexOf(child *Node) int {
	if child == nil {
		return -1
	}
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

func (n *Node) adopt(doc *Document) {
	n.owner = doc
	for _, c := range n.children {
		c.adopt(doc)
	}
}

// Walk calls fn for n and every descendant in document order. Returning
// false from fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.ChildNodes() {
		c.Walk(fn)
	}
}

// ============================================================================
// Attributes
// ============================================================================

// Attributes returns a snapshot of the attributes in source order.
func (n *Node) Attributes() []Attr {
	out := make([]Attr, len(n.attrs))
	copy(out, n.attrs)
	return out
}

// GetAttribute returns the value of the named attribute.
func (n *Node) GetAttribute(name string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// HasAttribute reports whether the named attribute is present.
func (n *Node) HasAttribute(name string) bool {
	_, ok := n.GetAttribute(name)
	return ok
}

// SetAttribute sets an attribute, keeping its position if it exists.
func (n *Node) SetAttribute(name, value string) {
	for i, a := range n.attrs {
		if a.Name == name {
			if a.Value == value {
				return
			}
			n.attrs[i].Value = value
			n.notify(MutationAttribute)
			return
		}
	}
	n.attrs = append(n.attrs, Attr{Name: name, Value: value})
	n.notify(MutationAttribute)
}

// RemoveAttribute removes the named attribute.
func (n *Node) RemoveAttribute(name string) {
	for i, a := range n.attrs {
		if a.Name == name {
			n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			n.notify(MutationAttribute)
			return
		}
	}
}

// HasClass reports whether the class attribute contains class.
func (n *Node) HasClass(class string) bool {
	v, _ := n.GetAttribute("class")
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

// ============================================================================
// Content
// ============================================================================

// Text returns the character data of a text or comment node.
func (n *Node) Text() string {
	return n.text
}

// SetText replaces the character data of a text or comment node.
func (n *Node) SetText(text string) {
	if n.text == text {
		return
	}
	n.text = text
	n.notify(MutationText)
}

// TextContent returns the concatenated text of n and its descendants.
func (n *Node) TextContent() string {
	switch n.Type {
	case TextNode, CommentNode:
		return n.text
	}
	var b strings.Builder
	n.Walk(func(c *Node) bool {
		if c.Type == TextNode {
			b.WriteString(c.text)
		}
		return true
	})
	return b.String()
}

// SetTextContent sets the text of a text node, or replaces every child of
// an element with a single text node.
func (n *Node) SetTextContent(text string) {
	switch n.Type {
	case TextNode, CommentNode:
		n.SetText(text)
		return
	}
	if len(n.children) == 1 && n.children[0].Type == TextNode {
		n.children[0].SetText(text)
		return
	}
	for _, c := range n.ChildNodes() {
		n.RemoveChild(c)
	}
	n.AppendChild(NewText(text))
}

// Value returns the value slot of a form control.
func (n *Node) Value() string {
	return n.value
}

// SetValue writes the value slot.
func (n *Node) SetValue(v string) {
	if n.value == v {
		return
	}
	n.value = v
	n.notify(MutationValue)
}

func (n *Node) notify(kind MutationKind) {
	if n.owner != nil {
		n.owner.record(Mutation{Kind: kind, Node: n})
	}
}
