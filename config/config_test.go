package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
http:
  port: 9090
ml:
  model_path: /srv/models/tree.json
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Http.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Http.Port)
	}
	if cfg.Http.Timeout != 10*time.Second {
		t.Fatalf("expected default timeout, got %v", cfg.Http.Timeout)
	}
	if cfg.ML.ModelType != "decision_tree" || cfg.ML.CacheSize != 1024 {
		t.Fatalf("expected ml defaults, got %+v", cfg.ML)
	}
	if cfg.ML.ModelPath != "/srv/models/tree.json" {
		t.Fatalf("unexpected model path %q", cfg.ML.ModelPath)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("expected default log level, got %q", cfg.Log.Level)
	}
}

func TestLoadFullFile(t *testing.T) {
	path := writeConfig(t, `
http:
  port: 8081
  timeout: 3s
  max_body_bytes: 2048
  allowed_origins: ["https://example.org"]
log:
  level: debug
  format: console
  file: /var/log/heartfelt.log
ml:
  model_type: random_forest
  model_path: forest.json
  cache_size: 0
  watch_model: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Http.Timeout != 3*time.Second || cfg.Http.MaxBodyBytes != 2048 {
		t.Fatalf("unexpected http config %+v", cfg.Http)
	}
	if len(cfg.Http.AllowedOrigins) != 1 {
		t.Fatalf("unexpected origins %v", cfg.Http.AllowedOrigins)
	}
	if cfg.Log.Format != "console" || cfg.Log.File != "/var/log/heartfelt.log" {
		t.Fatalf("unexpected log config %+v", cfg.Log)
	}
	if cfg.ML.ModelType != "random_forest" || !cfg.ML.WatchModel || cfg.ML.CacheSize != 0 {
		t.Fatalf("unexpected ml config %+v", cfg.ML)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"port":       "http:\n  port: 70000\n",
		"model type": "ml:\n  model_type: svm\n",
		"cache":      "ml:\n  cache_size: -1\n",
		"path":       "ml:\n  model_path: \"\"\n",
		"yaml":       "http: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error")
	}
}
