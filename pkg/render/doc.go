// Package render serialises a live dom tree to HTML.
//
// The renderer does not build markup from a description of the view. It
// walks the current document, so whatever the reactive bindings wrote into
// text nodes and value slots is what comes out:
//
//   - Text is escaped, attribute values are escaped
//   - Void elements (input, br, img, etc.) have no closing tag
//   - An input's value attribute reflects its value slot
//   - A textarea's content reflects its value slot
//   - script and style content is written raw
//
// # Basic Usage
//
//	r := render.NewRenderer(render.RendererConfig{})
//	html, err := r.RenderToString(node)
//
// To render a whole document, doctype included:
//
//	err := r.RenderDocument(w, doc)
//
// # Pages
//
// RenderPage renders a document for the live server and injects the client
// script and session ID before </body>.
package render
