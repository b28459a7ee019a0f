package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-go/vbind/internal/config"
	verrors "github.com/vango-go/vbind/internal/errors"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func errCode(err error) string {
	var e *verrors.Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func TestVersionShort(t *testing.T) {
	out, err := run(t, "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if out != version+"\n" {
		t.Errorf("out = %q", out)
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Version:", "Go version:", "OS/Arch:"} {
		if !strings.Contains(out, want) {
			t.Errorf("version output missing %q", want)
		}
	}
}

func TestRender(t *testing.T) {
	out, err := run(t, "render", "-m", "testdata/app.yaml")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"<!DOCTYPE html>",
		`value="alice"`,
		">alice</div>",
		">40</div>",
		">bob</div>",
		">son -&gt; bob &amp; 14</div>",
		`v-on:click="changeText"`,
		`data-vb="`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "{{") {
		t.Error("output still has placeholders")
	}
}

func TestRenderEvents(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "input",
			args: []string{"--input", "#name-input=carol"},
			want: []string{">carol</div>", `value="carol"`},
		},
		{
			name: "click",
			args: []string{"--click", "#change"},
			want: []string{">zhou</div>", ">wu</div>", ">son -&gt; wu &amp; 14</div>", `value="zhou"`},
		},
		{
			name: "input then click",
			args: []string{"--input", "#name-input=carol", "--click", "#change"},
			want: []string{">zhou</div>"},
		},
		{
			name: "click then input",
			args: []string{"--click", "#change", "--input", "#name-input=carol"},
			want: []string{">carol</div>", ">wu</div>"},
		},
		{
			name: "attribute selector",
			args: []string{"--input", "[type=text]=erin"},
			want: []string{">erin</div>", `value="erin"`},
		},
		{
			name: "generic event",
			args: []string{"-e", "input:#name-input=dave"},
			want: []string{">dave</div>"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append([]string{"render", "-m", "testdata/app.yaml"}, tt.args...)...)
			if err != nil {
				t.Fatal(err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q\n%s", want, out)
				}
			}
		})
	}
}

func TestRenderFragmentAndOmit(t *testing.T) {
	out, err := run(t, "render", "-m", "testdata/app.yaml", "--fragment", "--omit-directives")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, `<div id="app"`) {
		t.Errorf("fragment output = %q", out)
	}
	if strings.Contains(out, "v-model") || strings.Contains(out, "v-on:") {
		t.Errorf("directives not omitted: %s", out)
	}
}

func TestRenderOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.html")
	out, err := run(t, "render", "-m", "testdata/app.yaml", "-o", path)
	if err != nil {
		t.Fatal(err)
	}
	if out != "" {
		t.Errorf("stdout = %q, want empty", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), ">alice</div>") {
		t.Errorf("file = %s", data)
	}
}

func TestRenderErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code string
	}{
		{"no manifest", []string{"render"}, "VB901"},
		{"missing manifest", []string{"render", "-m", "testdata/nope.yaml"}, "VB201"},
		{"unsupported scheme", []string{"render", "-m", "ftp://host/app.yaml"}, "VB202"},
		{"missing template", []string{"render", "-m", "testdata/app.yaml", "-t", "testdata/nope.html"}, "VB201"},
		{"no el", []string{"render", "-m", "testdata/noel.yaml"}, "VB001"},
		{"unknown element", []string{"render", "-m", "testdata/app.yaml", "--click", "#nope"}, "VB004"},
		{"bad event", []string{"render", "-m", "testdata/app.yaml", "-e", "click"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.code != "" && errCode(err) != tt.code {
				t.Errorf("code = %q, want %q (err: %v)", errCode(err), tt.code, err)
			}
		})
	}
}

func TestParseEvent(t *testing.T) {
	tests := []struct {
		in      string
		want    event
		wantErr bool
	}{
		{"click:#change", event{Type: "click", Selector: "#change"}, false},
		{"input:#name=a=b", event{Type: "input", Selector: "#name", Value: "a=b"}, false},
		{"input:#name=", event{Type: "input", Selector: "#name"}, false},
		{"input:[name=q]=x", event{Type: "input", Selector: "[name=q]", Value: "x"}, false},
		{"input:[name=q]=a]=b", event{Type: "input", Selector: "[name=q]", Value: "a]=b"}, false},
		{"click:[data-role=go]", event{Type: "click", Selector: "[data-role=go]"}, false},
		{"click", event{}, true},
		{":#x", event{}, true},
		{"click:=v", event{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseEvent(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRelativeTo(t *testing.T) {
	tests := []struct {
		base, ref, want string
	}{
		{"apps/demo/app.yaml", "index.html", filepath.Join("apps", "demo", "index.html")},
		{"app.yaml", "index.html", "index.html"},
		{"apps/app.yaml", "/abs/index.html", "/abs/index.html"},
		{"s3://bucket/apps/app.yaml", "index.html", "s3://bucket/apps/index.html"},
		{"s3://bucket/apps/app.yaml", "s3://other/x.html", "s3://other/x.html"},
		{"file:///srv/app.yaml", "index.html", "file:///srv/index.html"},
	}
	for _, tt := range tests {
		if got := relativeTo(tt.base, tt.ref); got != tt.want {
			t.Errorf("relativeTo(%q, %q) = %q, want %q", tt.base, tt.ref, got, tt.want)
		}
	}
}

func TestNewServer(t *testing.T) {
	cfg := config.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a, err := loadApp(context.Background(), cfg, "testdata/app.yaml", "", logger)
	if err != nil {
		t.Fatal(err)
	}
	srv, _, err := newServer(a, cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer srv.Sessions().Shutdown()

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "vbind-boot") || !strings.Contains(body, ">alice</div>") {
		t.Errorf("page = %s", body)
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	for _, want := range []string{"go_goroutines", "vbind_http_requests_total"} {
		if !strings.Contains(rec.Body.String(), want) {
			t.Errorf("/metrics missing %s", want)
		}
	}
}

func TestReload(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"app.yaml", "index.html"} {
		data, err := os.ReadFile(filepath.Join("testdata", name))
		if err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	manifestPath := filepath.Join(dir, "app.yaml")

	cfg := config.New()
	cfg.Metrics.Enabled = false
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()
	a, err := loadApp(ctx, cfg, manifestPath, "", logger)
	if err != nil {
		t.Fatal(err)
	}
	srv, m, err := newServer(a, cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer srv.Sessions().Shutdown()

	page := func() string {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		return rec.Body.String()
	}

	edited := strings.Replace(mustRead(t, manifestPath), "name: alice", "name: erin", 1)
	if err := os.WriteFile(manifestPath, []byte(edited), 0o644); err != nil {
		t.Fatal(err)
	}
	reload(ctx, srv, cfg, manifestPath, "", m, logger)
	if body := page(); !strings.Contains(body, ">erin</div>") {
		t.Errorf("reloaded page = %s", body)
	}

	// A broken manifest keeps the previous version.
	if err := os.WriteFile(manifestPath, []byte("el: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	reload(ctx, srv, cfg, manifestPath, "", m, logger)
	if body := page(); !strings.Contains(body, ">erin</div>") {
		t.Errorf("page after broken reload = %s", body)
	}
}

func mustRead(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}
