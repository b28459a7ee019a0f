package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/vango-go/vbind"
	"github.com/vango-go/vbind/internal/config"
	verrors "github.com/vango-go/vbind/internal/errors"
	"github.com/vango-go/vbind/internal/manifest"
	"github.com/vango-go/vbind/pkg/compiler"
	"github.com/vango-go/vbind/pkg/dom"
	"github.com/vango-go/vbind/pkg/reactive"
	"github.com/vango-go/vbind/pkg/source"
)

// app is a loaded manifest with its template.
type app struct {
	cfg      *config.Config
	manifest *manifest.Manifest
	template []byte
	logger   *slog.Logger

	// Resolved locations, for watching.
	manifestURI string
	templateURI string
}

// loadConfig loads the config and prints its warnings to w.
func loadConfig(path string, w io.Writer) (*config.Config, error) {
	cfg, warnings, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	for _, msg := range warnings {
		warn(w, "%s", msg)
	}
	return cfg, nil
}

func newLoader(cfg *config.Config) *source.Mux {
	client := source.NewS3Client(source.S3Options{
		Region:    cfg.S3.Region,
		Endpoint:  cfg.S3.Endpoint,
		PathStyle: cfg.S3.PathStyle,
	})
	return source.NewMux(source.FileLoader{}, source.NewS3Loader(client))
}

// loadApp reads the manifest and template. Flags win over config; a
// template named only by the manifest is resolved next to it.
func loadApp(ctx context.Context, cfg *config.Config, manifestURI, templateURI string, logger *slog.Logger) (*app, error) {
	if manifestURI == "" {
		manifestURI = cfg.App.Manifest
	}
	if manifestURI == "" {
		return nil, verrors.New("VB901").
			WithDetail("No manifest given.").
			WithSuggestion("Pass --manifest or set app.manifest in vbind.yaml")
	}

	loader := newLoader(cfg)
	data, err := loader.Load(ctx, manifestURI)
	if err != nil {
		return nil, sourceError(manifestURI, err)
	}
	m, err := manifest.Parse(manifestURI, data)
	if err != nil {
		return nil, err
	}

	if templateURI == "" {
		templateURI = cfg.App.Template
	}
	if templateURI == "" && m.Template != "" {
		templateURI = relativeTo(manifestURI, m.Template)
	}
	if templateURI == "" {
		return nil, verrors.New("VB901").
			WithDetail("No template given.").
			WithSuggestion("Pass --template, set app.template in vbind.yaml or template: in the manifest")
	}
	tmpl, err := loader.Load(ctx, templateURI)
	if err != nil {
		return nil, sourceError(templateURI, err)
	}

	logger.Debug("app loaded", "manifest", manifestURI, "template", templateURI)
	return &app{
		cfg:         cfg,
		manifest:    m,
		template:    tmpl,
		logger:      logger,
		manifestURI: manifestURI,
		templateURI: templateURI,
	}, nil
}

// relativeTo resolves ref against the location of base. Absolute paths
// and URIs are returned unchanged.
func relativeTo(base, ref string) string {
	if source.Scheme(ref) != "" || filepath.IsAbs(ref) {
		return ref
	}
	if source.Scheme(base) == "" {
		return filepath.Join(filepath.Dir(base), ref)
	}
	return base[:strings.LastIndex(base, "/")+1] + ref
}

// bind parses a fresh copy of the template and binds a VM to it.
func (a *app) bind(ctx context.Context, extra ...func(*vbind.Options)) (*vbind.VM, *dom.Document, error) {
	doc, err := dom.ParseString(string(a.template))
	if err != nil {
		return nil, nil, verrors.New("VB201").Wrap(err)
	}
	vm, err := a.bindDocument(ctx, doc, extra...)
	if err != nil {
		return nil, nil, err
	}
	return vm, doc, nil
}

func (a *app) bindDocument(ctx context.Context, doc *dom.Document, extra ...func(*vbind.Options)) (*vbind.VM, error) {
	opts := a.manifest.Options()
	if opts.El == nil {
		return nil, verrors.New("VB001").
			WithDetail("The manifest has no el.").
			WithSuggestion(`Add el: "#app" (or another selector) to the manifest`)
	}
	opts.Document = doc
	opts.Logger = a.logger
	opts.CompilerOptions = []compiler.Option{
		compiler.WithInterpolation(a.cfg.Interpolation()),
		compiler.WithHydrationIDs(a.cfg.Render.HydrationIDs),
	}
	for _, fn := range extra {
		fn(&opts)
	}

	vm, err := vbind.NewContext(ctx, opts)
	if err != nil {
		return nil, bindError(err)
	}
	return vm, nil
}

func sourceError(uri string, err error) error {
	code := "VB201"
	if errors.Is(err, source.ErrUnsupportedScheme) || errors.Is(err, source.ErrInvalidURI) {
		code = "VB202"
	}
	return verrors.New(code).Wrap(fmt.Errorf("%s: %w", uri, err))
}

func bindError(err error) error {
	switch {
	case errors.Is(err, vbind.ErrRootNotFound):
		return verrors.New("VB001").Wrap(err)
	case errors.Is(err, reactive.ErrDuplicateKey):
		return verrors.New("VB003").Wrap(err)
	default:
		return verrors.New("VB002").Wrap(err)
	}
}
