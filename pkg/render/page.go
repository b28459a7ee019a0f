package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vango-go/vbind/pkg/dom"
)

// PageData contains what RenderPage needs besides the document.
type PageData struct {
	// Doc is the live document to serialise.
	Doc *dom.Document

	// SessionID is handed to the client script so it can join the session.
	SessionID string

	// WSPath is the WebSocket endpoint. Defaults to "/ws".
	WSPath string

	// ClientScript is inline JavaScript injected before </body>.
	ClientScript string
}

// RenderPage renders page.Doc and injects the session bootstrap and client
// script at the end of <body>. A document without a <body> gets no script.
func (r *Renderer) RenderPage(w io.Writer, page PageData) error {
	if page.Doc == nil {
		return fmt.Errorf("render: page has no document")
	}
	wsPath := page.WSPath
	if wsPath == "" {
		wsPath = "/ws"
	}

	pr := *r
	pr.bodyTail = func(w io.Writer) error {
		boot, err := json.Marshal(map[string]string{
			"session": page.SessionID,
			"ws":      wsPath,
		})
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, `<script id="vbind-boot" type="application/json">%s</script>`, boot); err != nil {
			return err
		}
		if page.ClientScript != "" {
			if _, err := fmt.Fprintf(w, "<script>%s</script>", page.ClientScript); err != nil {
				return err
			}
		}
		return nil
	}
	return pr.RenderDocument(w, page.Doc)
}
