package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	verrors "github.com/vango-go/vbind/internal/errors"
	"github.com/vango-go/vbind/pkg/compiler"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vbind.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := New()
	if cfg.Server.Port != DefaultPort || cfg.Server.Host != DefaultHost {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Server.WSPath != "/ws" {
		t.Errorf("ws path = %q", cfg.Server.WSPath)
	}
	if !cfg.Render.HydrationIDs || cfg.Interpolation() != compiler.InterpolateSegments {
		t.Errorf("render = %+v", cfg.Render)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Namespace != "vbind" {
		t.Errorf("metrics = %+v", cfg.Metrics)
	}
	if cfg.Address() != "localhost:3000" {
		t.Errorf("address = %q", cfg.Address())
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
app:
  manifest: s3://apps/demo.yaml
server:
  port: 8080
render:
  interpolation: whole-node
log:
  level: debug
`)
	cfg, warnings, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Path() != path {
		t.Errorf("path = %q", cfg.Path())
	}
	if cfg.App.Manifest != "s3://apps/demo.yaml" {
		t.Errorf("manifest = %q", cfg.App.Manifest)
	}
	if cfg.Server.Port != 8080 || cfg.Server.Host != DefaultHost {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Interpolation() != compiler.InterpolateWholeNode {
		t.Errorf("interpolation = %v", cfg.Interpolation())
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "whole-node") {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestEnvOverride(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 8080\n")
	t.Setenv("VBIND_SERVER_PORT", "9090")
	t.Setenv("VBIND_LOG_FORMAT", "json")

	cfg, _, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("format = %q", cfg.Log.Format)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"port", "server:\n  port: 70000\n"},
		{"interpolation", "render:\n  interpolation: sideways\n"},
		{"ws path", "server:\n  ws_path: ws\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Load(writeConfig(t, tt.body))
			var ve *verrors.Error
			if !errors.As(err, &ve) || ve.Code != "VB301" {
				t.Errorf("err = %v", err)
			}
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit file")
	}
}

func TestWarnings(t *testing.T) {
	cfg := New()
	cfg.Log.Level = "loud"
	cfg.Log.Format = "xml"
	cfg.S3.Endpoint = "http://minio:9000"
	if got := cfg.Warnings(); len(got) != 3 {
		t.Errorf("warnings = %v", got)
	}
}

func TestNewLogger(t *testing.T) {
	cfg := New()
	cfg.Log.Format = "json"
	cfg.Log.Level = "warn"

	var buf bytes.Buffer
	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("log = %q", out)
	}
}
