package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-go/vbind"
	"github.com/vango-go/vbind/internal/config"
	"github.com/vango-go/vbind/internal/dev"
	verrors "github.com/vango-go/vbind/internal/errors"
	"github.com/vango-go/vbind/pkg/compiler"
	"github.com/vango-go/vbind/pkg/dom"
	"github.com/vango-go/vbind/pkg/metrics"
	"github.com/vango-go/vbind/pkg/middleware"
	"github.com/vango-go/vbind/pkg/render"
	"github.com/vango-go/vbind/pkg/server"
)

func serveCmd(configPath *string) *cobra.Command {
	var (
		manifestURI string
		templateURI string
		host        string
		port        int
		watch       bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an app live",
		Long: `Serve an app with live two-way binding.

Every page view gets its own copy of the data. Browser events travel
over a WebSocket, run on the server and come back as DOM patches.

Endpoints:
  /          the app
  /ws        live channel (server.ws_path)
  /healthz   health check
  /metrics   Prometheus metrics

Examples:
  vbind serve --manifest app.yaml --template index.html
  vbind serve --port 8080 --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			logger := cfg.NewLogger(cmd.ErrOrStderr())

			a, err := loadApp(cmd.Context(), cfg, manifestURI, templateURI, logger)
			if err != nil {
				return err
			}
			srv, m, err := newServer(a, cfg)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			printBanner(w)
			success(w, "Serving on http://%s", cfg.Address())
			if cfg.Metrics.Enabled {
				info(w, "Metrics on http://%s/metrics", cfg.Address())
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if watch {
				files := dev.LocalFiles(a.manifestURI, a.templateURI)
				if len(files) == 0 {
					warn(w, "--watch: no local files to watch")
				} else {
					watcher := dev.NewWatcher(dev.WatcherConfig{Files: files, Logger: logger})
					watcher.OnChange(func([]dev.Change) {
						reload(ctx, srv, cfg, manifestURI, templateURI, m, logger)
					})
					if err := watcher.Start(ctx); err != nil {
						return err
					}
					defer watcher.Stop()
					info(w, "Watching %d file(s)", len(files))
				}
			}

			if err := srv.Run(ctx); err != nil {
				return verrors.New("VB401").Wrap(err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&manifestURI, "manifest", "m", "", "Manifest path or s3:// URI (default from vbind.yaml)")
	cmd.Flags().StringVarP(&templateURI, "template", "t", "", "Template path or s3:// URI (default from vbind.yaml or manifest)")
	cmd.Flags().StringVar(&host, "host", config.DefaultHost, "Host to listen on")
	cmd.Flags().IntVarP(&port, "port", "p", config.DefaultPort, "Port to listen on")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Reload the app when local manifest or template files change")

	return cmd
}

// newServer wires a live server for a. Hydration IDs are always on since
// the client addresses elements by them; directive attributes are always
// kept since the client reads them.
func newServer(a *app, cfg *config.Config) (*server.Server, *metrics.Metrics, error) {
	if !cfg.Render.HydrationIDs {
		a.logger.Warn("render.hydration_ids is ignored by serve")
	}
	if cfg.Render.OmitDirectives {
		a.logger.Warn("render.omit_directives is ignored by serve")
	}

	sc := server.DefaultServerConfig().WithAddress(cfg.Address())
	sc.WSPath = cfg.Server.WSPath
	sc.Logger = a.logger
	sc.Render = render.RendererConfig{Pretty: cfg.Render.Pretty}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m = metrics.New(metrics.WithRegistry(reg), metrics.WithNamespace(cfg.Metrics.Namespace))
		sc.WithMetrics(m, reg)
		sc.Middleware = append(sc.Middleware, middleware.Prometheus(
			middleware.WithRegistry(reg),
			middleware.WithNamespace(cfg.Metrics.Namespace),
		))
	} else {
		sc.Gatherer = prometheus.NewRegistry()
	}

	srv, err := server.New(sc, a.template, a.factory(m))
	if err != nil {
		return nil, nil, err
	}
	return srv, m, nil
}

// factory returns the per-session VM constructor for a.
func (a *app) factory(m *metrics.Metrics) server.VMFactory {
	return func(ctx context.Context, doc *dom.Document) (*vbind.VM, error) {
		return a.bindDocument(ctx, doc, func(o *vbind.Options) {
			o.CompilerOptions = append(o.CompilerOptions, compiler.WithHydrationIDs(true))
			if m != nil {
				o.Probe = m
			}
		})
	}
}

// reload loads the app again and hands it to srv. A broken edit is logged
// and the previous version keeps serving.
func reload(ctx context.Context, srv *server.Server, cfg *config.Config, manifestURI, templateURI string, m *metrics.Metrics, logger *slog.Logger) {
	a, err := loadApp(ctx, cfg, manifestURI, templateURI, logger)
	if err != nil {
		logger.Error("reload failed", "error", err)
		return
	}
	// Bind once so a manifest that no longer fits the template is caught
	// before any visitor sees it.
	if _, _, err := a.bind(ctx); err != nil {
		logger.Error("reload failed", "error", err)
		return
	}
	if err := srv.Reload(a.template, a.factory(m)); err != nil {
		logger.Error("reload failed", "error", err)
	}
}
