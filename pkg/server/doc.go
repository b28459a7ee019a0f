// Package server serves bound pages live.
//
// Every GET / parses the template into a private document, binds a fresh
// VM to it through a VMFactory and renders the page with a small client
// script. The script joins the session over a WebSocket and forwards DOM
// events on hydrated elements (those carrying data-vb). The server
// replays each event on its own document, records the mutations the
// bindings make and answers with patches:
//
//	-> {"id":1,"type":"input","target":"b2","value":"carol"}
//	<- {"id":1,"patches":[{"op":"text","target":"b3","html":"carol"}]}
//
// A text patch replaces the inner HTML of the nearest hydrated element
// around the changed text. A value patch sets a form control's value.
//
// # Session Lifecycle
//
//   - GET / creates the session and renders it.
//   - The client joins with GET {WSPath}?session=ID. Only one connection
//     may join a session.
//   - A session nobody joins within AttachTimeout is dropped.
//   - Closing the connection drops the session.
//
// # Example Usage
//
//	srv, err := server.New(server.DefaultServerConfig(), tmpl,
//	    func(ctx context.Context, doc *dom.Document) (*vbind.VM, error) {
//	        return vbind.NewContext(ctx, vbind.Options{El: "#app", Document: doc, Data: data()})
//	    })
//	if err != nil {
//	    return err
//	}
//	return srv.Run(ctx)
//
// # Endpoints
//
//   - GET /         page with a new session
//   - GET /ws       session WebSocket (path configurable)
//   - GET /healthz  liveness and session count
//   - GET /metrics  Prometheus metrics
package server
