package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default("/tmp/taskifyx.db")
	if cfg.Database.Path != "/tmp/taskifyx.db" {
		t.Fatalf("unexpected db path %q", cfg.Database.Path)
	}
	if cfg.API.BaseURL != "http://127.0.0.1:5000/api" {
		t.Fatalf("unexpected api base url %q", cfg.API.BaseURL)
	}
	if cfg.Board.ReorderFailure != ReorderFailureKeep {
		t.Fatalf("unexpected reorder failure policy %q", cfg.Board.ReorderFailure)
	}
	if cfg.APITimeout() != 0 {
		t.Fatalf("expected no api timeout, got %s", cfg.APITimeout())
	}
	if cfg.ToastDuration() != 3*time.Second {
		t.Fatalf("expected 3s toast duration, got %s", cfg.ToastDuration())
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	defaults := Default("/tmp/taskifyx.db")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"), defaults)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != defaults.Database.Path {
		t.Fatalf("expected default db path, got %q", cfg.Database.Path)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[api]
base_url = "https://tasks.example.com/api"
timeout = "5s"

[board]
reorder_failure = "revert"
show_description = false

[toast]
duration = "1500ms"

[logging]
level = "debug"

[database]
path = "/custom/taskifyx.db"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path, Default("/tmp/default.db"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != "/custom/taskifyx.db" {
		t.Fatalf("unexpected db path %q", cfg.Database.Path)
	}
	if cfg.API.BaseURL != "https://tasks.example.com/api" || cfg.APITimeout() != 5*time.Second {
		t.Fatalf("unexpected api config %#v", cfg.API)
	}
	if cfg.Board.ReorderFailure != ReorderFailureRevert || cfg.Board.ShowDescription {
		t.Fatalf("unexpected board config %#v", cfg.Board)
	}
	if cfg.ToastDuration() != 1500*time.Millisecond {
		t.Fatalf("unexpected toast duration %s", cfg.ToastDuration())
	}
	if cfg.Server.HTTPBind != "127.0.0.1:5000" {
		t.Fatalf("expected untouched server defaults, got %#v", cfg.Server)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"reorder policy": "[board]\nreorder_failure = \"undo\"\n",
		"base url":       "[api]\nbase_url = \"ftp://nope\"\n",
		"timeout":        "[api]\ntimeout = \"-1s\"\n",
		"toast":          "[toast]\nduration = \"0s\"\n",
		"log level":      "[logging]\nlevel = \"loud\"\n",
		"endpoint":       "[server]\napi_endpoint = \"api\"\n",
	}
	for name, content := range cases {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		if _, err := Load(path, Default("/tmp/default.db")); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestApplyEnvOverridesFileValues(t *testing.T) {
	env := map[string]string{
		EnvAPIBaseURL: "http://10.0.0.2:5000/api",
		EnvDBPath:     "/env/taskifyx.db",
	}
	cfg, err := ApplyEnv(Default("/tmp/default.db"), func(key string) string { return env[key] })
	if err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}
	if cfg.API.BaseURL != env[EnvAPIBaseURL] || cfg.Database.Path != env[EnvDBPath] {
		t.Fatalf("unexpected env overlay %#v", cfg)
	}

	env[EnvAPIBaseURL] = "not a url"
	if _, err := ApplyEnv(Default("/tmp/default.db"), func(key string) string { return env[key] }); err == nil {
		t.Fatal("expected invalid base url from env to fail validation")
	}
}

func TestLoadDotEnv(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv(missing) error = %v", err)
	}

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("TASKIFYX_TEST_DOTENV=from-file\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv("TASKIFYX_TEST_DOTENV", "")
	if err := os.Unsetenv("TASKIFYX_TEST_DOTENV"); err != nil {
		t.Fatalf("Unsetenv() error = %v", err)
	}
	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("TASKIFYX_TEST_DOTENV"); got != "from-file" {
		t.Fatalf("expected dotenv value, got %q", got)
	}
}

func TestParseBoolEnv(t *testing.T) {
	env := map[string]string{"A": "true", "B": "nope"}
	getenv := func(key string) string { return env[key] }
	if v, ok := ParseBoolEnv(getenv, "A"); !ok || !v {
		t.Fatalf("ParseBoolEnv(A) = %v, %v", v, ok)
	}
	if _, ok := ParseBoolEnv(getenv, "B"); ok {
		t.Fatal("expected unparseable value to report !ok")
	}
	if _, ok := ParseBoolEnv(getenv, "C"); ok {
		t.Fatal("expected unset value to report !ok")
	}
}

func TestEnsureConfigDir(t *testing.T) {
	target := filepath.Join(t.TempDir(), "a", "b", "config.toml")
	if err := EnsureConfigDir(target); err != nil {
		t.Fatalf("EnsureConfigDir() error = %v", err)
	}
	if _, err := os.Stat(filepath.Dir(target)); err != nil {
		t.Fatalf("expected dir to exist, stat error %v", err)
	}
}
