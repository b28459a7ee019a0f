package dom

import "fmt"

// HIDAttr is the attribute carrying an element's hydration ID.
const HIDAttr = "data-vb"

// HIDGenerator generates unique hydration IDs for bound elements.
// It is used on the compile path only and is not safe for concurrent use.
type HIDGenerator struct {
	counter uint32
}

// NewHIDGenerator creates a new HIDGenerator.
func NewHIDGenerator() *HIDGenerator {
	return &HIDGenerator{}
}

// Next returns the next hydration ID (e.g., "b1", "b2", ...).
func (g *HIDGenerator) Next() string {
	g.counter++
	return fmt.Sprintf("b%d", g.counter)
}

// HID returns n's hydration ID, or "".
func (n *Node) HID() string {
	v, _ := n.GetAttribute(HIDAttr)
	return v
}

// EnsureHID gives n a hydration ID from gen unless it already has one.
func (n *Node) EnsureHID(gen *HIDGenerator) string {
	if hid := n.HID(); hid != "" {
		return hid
	}
	hid := gen.Next()
	n.SetAttribute(HIDAttr, hid)
	return hid
}

// ClosestHID returns the nearest element at or above n that carries a
// hydration ID.
func (n *Node) ClosestHID() *Node {
	for cur := n; cur != nil; cur = cur.parent {
		if cur.Type == ElementNode && cur.HID() != "" {
			return cur
		}
	}
	return nil
}
