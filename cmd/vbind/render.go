package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	verrors "github.com/vango-go/vbind/internal/errors"
	"github.com/vango-go/vbind/pkg/dom"
	"github.com/vango-go/vbind/pkg/render"
)

// event is one DOM event replayed by render.
type event struct {
	Type     string
	Selector string
	Value    string
}

func (e event) String() string {
	if e.Type == "input" {
		return e.Type + ":" + e.Selector + "=" + e.Value
	}
	return e.Type + ":" + e.Selector
}

// parseEvent parses type:#selector or type:#selector=value.
func parseEvent(s string) (event, error) {
	typ, rest, ok := strings.Cut(s, ":")
	if !ok || typ == "" || rest == "" {
		return event{}, verrors.New("VB004").WithDetail(fmt.Sprintf("%q is not type:selector", s))
	}
	sel, value := splitSelector(rest)
	if sel == "" {
		return event{}, verrors.New("VB004").WithDetail(fmt.Sprintf("%q has no selector", s))
	}
	return event{Type: typ, Selector: sel, Value: value}, nil
}

// splitSelector splits "selector=value" at the first "=" outside an
// attribute selector, so "[name=q]=x" gives "[name=q]" and "x".
func splitSelector(s string) (sel, value string) {
	depth := 0
	for i, r := range s {
		switch r {
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		case '=':
			if depth == 0 {
				return s[:i], s[i+1:]
			}
		}
	}
	return s, ""
}

// eventFlag appends to a list shared by several flags so that --input,
// --click and --event keep their command-line order.
type eventFlag struct {
	typ    string // fixed event type, or "" for --event
	events *[]event
}

func (f *eventFlag) String() string { return "" }

func (f *eventFlag) Type() string {
	if f.typ == "input" {
		return "selector=value"
	}
	if f.typ != "" {
		return "selector"
	}
	return "type:selector[=value]"
}

func (f *eventFlag) Set(s string) error {
	if f.typ != "" {
		s = f.typ + ":" + s
	}
	ev, err := parseEvent(s)
	if err != nil {
		return err
	}
	*f.events = append(*f.events, ev)
	return nil
}

func renderCmd(configPath *string) *cobra.Command {
	var (
		manifestURI    string
		templateURI    string
		output         string
		pretty         bool
		omitDirectives bool
		fragment       bool
		events         []event
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Compile an app, replay events and print the HTML",
		Long: `Compile an app and print the bound HTML.

Events replay in command-line order after compilation, each running
its bindings to completion before the next.

Examples:
  vbind render --manifest app.yaml --template index.html
  vbind render -m app.yaml --input '#name-input=carol' --click '#change'
  vbind render -m s3://apps/demo/app.yaml --event 'dblclick:#item' --fragment`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("pretty") {
				cfg.Render.Pretty = pretty
			}
			if cmd.Flags().Changed("omit-directives") {
				cfg.Render.OmitDirectives = omitDirectives
			}
			logger := cfg.NewLogger(cmd.ErrOrStderr()).With("component", "cli")

			a, err := loadApp(cmd.Context(), cfg, manifestURI, templateURI, logger)
			if err != nil {
				return err
			}
			vm, doc, err := a.bind(cmd.Context())
			if err != nil {
				return err
			}
			for _, ev := range events {
				if err := replay(doc, ev); err != nil {
					return err
				}
				logger.Debug("event replayed", "event", ev.String())
			}

			r := render.NewRenderer(render.RendererConfig{
				Pretty:         cfg.Render.Pretty,
				OmitDirectives: cfg.Render.OmitDirectives,
			})
			var buf bytes.Buffer
			if fragment {
				err = r.RenderToWriter(&buf, vm.El())
			} else {
				err = r.RenderDocument(&buf, doc)
			}
			if err != nil {
				return err
			}
			if !bytes.HasSuffix(buf.Bytes(), []byte("\n")) {
				buf.WriteByte('\n')
			}

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return err
			}
			success(cmd.ErrOrStderr(), "Wrote %s", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&manifestURI, "manifest", "m", "", "Manifest path or s3:// URI (default from vbind.yaml)")
	cmd.Flags().StringVarP(&templateURI, "template", "t", "", "Template path or s3:// URI (default from vbind.yaml or manifest)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write HTML to a file instead of stdout")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent the output")
	cmd.Flags().BoolVar(&omitDirectives, "omit-directives", false, "Drop v- and @ attributes from the output")
	cmd.Flags().BoolVar(&fragment, "fragment", false, "Print only the bound root element")
	cmd.Flags().Var(&eventFlag{typ: "input", events: &events}, "input", "Type into an element: '#id=value' (repeatable)")
	cmd.Flags().Var(&eventFlag{typ: "click", events: &events}, "click", "Click an element: '#id' (repeatable)")
	cmd.Flags().VarP(&eventFlag{events: &events}, "event", "e", "Dispatch any event: 'type:#id[=value]' (repeatable)")

	return cmd
}

// replay dispatches ev on the first element matching its selector.
func replay(doc *dom.Document, ev event) error {
	node := doc.QuerySelector(ev.Selector)
	if node == nil {
		return verrors.New("VB004").
			WithDetail(fmt.Sprintf("%s: no element matches %q", ev, ev.Selector))
	}
	var err error
	if ev.Type == "input" {
		err = node.Input(ev.Value)
	} else {
		err = node.Dispatch(&dom.Event{Type: ev.Type, Target: node})
	}
	if err != nil {
		return verrors.New("VB002").Wrap(fmt.Errorf("%s: %w", ev, err))
	}
	return nil
}
