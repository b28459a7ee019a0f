// Package source loads templates and manifests from local disk or S3.
//
//	mux := source.NewMux(source.FileLoader{}, source.NewS3Loader(client))
//	data, err := mux.Load(ctx, "s3://apps/demo/index.html")
//
// A URI without a scheme is a local path.
package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedScheme is returned for a URI whose scheme has no
	// loader.
	ErrUnsupportedScheme = errors.New("source: unsupported scheme")

	// ErrInvalidURI is returned for a malformed URI.
	ErrInvalidURI = errors.New("source: invalid uri")

	// ErrTooLarge is returned when an object exceeds the loader's limit.
	ErrTooLarge = errors.New("source: object too large")
)

// Loader reads the object at a URI.
type Loader interface {
	// Schemes returns the URI schemes the loader handles. "" is a plain
	// path.
	Schemes() []string

	Load(ctx context.Context, uri string) ([]byte, error)
}

// Mux dispatches on URI scheme.
type Mux struct {
	loaders map[string]Loader
}

// NewMux creates a Mux serving every scheme of the given loaders. A later
// loader wins a scheme claimed twice.
func NewMux(loaders ...Loader) *Mux {
	m := &Mux{loaders: make(map[string]Loader)}
	for _, l := range loaders {
		m.Handle(l)
	}
	return m
}

// Handle registers l for its schemes.
func (m *Mux) Handle(l Loader) {
	for _, s := range l.Schemes() {
		m.loaders[s] = l
	}
}

// Load reads uri with the loader registered for its scheme.
func (m *Mux) Load(ctx context.Context, uri string) ([]byte, error) {
	if uri == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidURI)
	}
	scheme := Scheme(uri)
	l, ok := m.loaders[scheme]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}
	return l.Load(ctx, uri)
}

// Scheme returns the scheme of uri, or "" for a plain path.
func Scheme(uri string) string {
	scheme, _, ok := strings.Cut(uri, "://")
	if !ok {
		return ""
	}
	return strings.ToLower(scheme)
}

// FileLoader reads local files. Relative paths are resolved against Dir
// when it is set.
type FileLoader struct {
	Dir string
}

// Schemes implements Loader.
func (FileLoader) Schemes() []string {
	return []string{"", "file"}
}

// Load implements Loader.
func (f FileLoader) Load(ctx context.Context, uri string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := strings.TrimPrefix(uri, "file://")
	if path == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURI, uri)
	}
	if f.Dir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(f.Dir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("source: %s: %w", path, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("source: %w", err)
	}
	return data, nil
}
