// Package dom provides the mutable document tree that vbind binds to.
//
// It models the small part of a browser DOM the binding engine needs:
// element, text, comment and fragment nodes; ordered attributes; a value
// slot for form controls; and synchronous event listeners. Documents are
// parsed from HTML with golang.org/x/net/html.
//
// # Mutations
//
// A Document can report every text, value, attribute and child-list change
// made to nodes it owns via Observe. The live server uses this to turn a
// notification chain into patches for the browser.
//
// # Hydration
//
// Elements that must be addressable from the browser carry a hydration ID
// in the data-vb attribute. HIDGenerator hands them out; Document.ByHID
// finds them again.
package dom
