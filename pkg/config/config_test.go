package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pocketd.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
model:
  dir: /srv/models/bracket
  delimiter: "::"
  strict_neighbors: true
server:
  addr: 127.0.0.1:9090
  shutdown_timeout: 3s
notify:
  addr: tcp://127.0.0.1:40899
logging:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Model.Dir != "/srv/models/bracket" || cfg.Model.Delimiter != "::" || !cfg.Model.StrictNeighbors {
		t.Errorf("Unexpected model config: %+v", cfg.Model)
	}
	if cfg.Server.Addr != "127.0.0.1:9090" || cfg.Server.ShutdownTimeout != 3*time.Second {
		t.Errorf("Unexpected server config: %+v", cfg.Server)
	}
	// Unset fields keep their defaults
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("ReadTimeout = %v, want default 30s", cfg.Server.ReadTimeout)
	}
	if cfg.Notify.Addr != "tcp://127.0.0.1:40899" || cfg.Logging.Level != "debug" {
		t.Errorf("Unexpected notify/logging config: %+v %+v", cfg.Notify, cfg.Logging)
	}
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg.Server.Addr == "" {
		t.Error("Expected default server address")
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, "model:\n  directory: /tmp\n")
	if _, err := Load(path); err == nil {
		t.Fatal("Expected error for unknown field")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Expected error for missing file")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"POCKETS_MODEL_DIR":        "/env/model",
		"POCKETS_ADDR":             ":7000",
		"POCKETS_NOTIFY_ADDR":      "inproc://pockets",
		"POCKETS_LOG_LEVEL":        "warn",
		"POCKETS_STRICT_NEIGHBORS": "true",
	}
	cfg := Default()
	err := cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	if err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}
	if cfg.Model.Dir != "/env/model" || cfg.Server.Addr != ":7000" || cfg.Notify.Addr != "inproc://pockets" ||
		cfg.Logging.Level != "warn" || !cfg.Model.StrictNeighbors {
		t.Errorf("Env overrides not applied: %+v", cfg)
	}
}

func TestApplyEnvBadBool(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(func(k string) (string, bool) {
		if k == "POCKETS_STRICT_NEIGHBORS" {
			return "perhaps", true
		}
		return "", false
	})
	if err == nil {
		t.Fatal("Expected error for invalid boolean")
	}
}

func TestValidateReportsEverySection(t *testing.T) {
	cfg := Default()
	cfg.Model.Dir = ""
	cfg.Server.Addr = "no-port"
	cfg.Notify.Addr = "tcp://127.0.0.1:1"
	cfg.Notify.QueueLen = 0
	cfg.Logging.Level = "chatty"
	cfg.Server.ReloadPerMinute = -1
	cfg.Server.MaxBodyBytes = 10

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected validation error")
	}
	for _, want := range []string{"model.dir", "server.addr", "notify.queue_len", "logging.level", "server.reload_per_minute", "server.max_body_bytes"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Error missing %q: %v", want, err)
		}
	}
}
