package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// Note: xdg paths are cached at init time, so tests drive the unexported
// path-taking helpers directly.

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

// clearEnv unsets key for the duration of the test and restores it after.
func clearEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	if err := os.Unsetenv(key); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t, EnvBackendURL)
	clearEnv(t, EnvViewerAddr)
	dir := t.TempDir()

	cfg, err := load(filepath.Join(dir, "missing.json"), dir)
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if cfg.Backend.URL != DefaultBackendURL || cfg.Viewer.Addr != DefaultViewerAddr {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if !cfg.ViewerEnabled() || cfg.Debug() {
		t.Errorf("ViewerEnabled() = %v, Debug() = %v", cfg.ViewerEnabled(), cfg.Debug())
	}
	if d, err := cfg.RequestTimeout(); err != nil || d != 0 {
		t.Errorf("RequestTimeout() = %v, %v", d, err)
	}
	if len(cfg.Sources()) != 0 {
		t.Errorf("Sources() = %v", cfg.Sources())
	}
}

func TestLoad_ProjectOverridesGlobal(t *testing.T) {
	clearEnv(t, EnvBackendURL)
	clearEnv(t, EnvViewerAddr)
	root := t.TempDir()
	global := filepath.Join(root, "home", "archlens.json")
	writeFile(t, global, `{
		"backend": {"url": "http://global:9000", "timeout": "30s"},
		"viewer": {"open_command": "firefox"},
		"options": {"debug": true}
	}`)
	project := filepath.Join(root, "repo")
	writeFile(t, filepath.Join(project, ".archlens.json"), `{
		"backend": {"url": "http://project:8000"},
		"viewer": {"enabled": false}
	}`)
	nested := filepath.Join(project, "sub", "dir")
	if err := os.MkdirAll(nested, 0o750); err != nil {
		t.Fatal(err)
	}

	cfg, err := load(global, nested)
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if cfg.Backend.URL != "http://project:8000" {
		t.Errorf("Backend.URL = %q", cfg.Backend.URL)
	}
	if d, _ := cfg.RequestTimeout(); d != 30*time.Second {
		t.Errorf("RequestTimeout() = %v", d)
	}
	if cfg.ViewerEnabled() {
		t.Error("project config did not disable viewer")
	}
	if cfg.Viewer.OpenCommand != "firefox" || !cfg.Debug() {
		t.Errorf("global values lost: %+v %+v", cfg.Viewer, cfg.Options)
	}
	want := []string{global, filepath.Join(project, ".archlens.json")}
	if diff := cmp.Diff(want, cfg.Sources()); diff != "" {
		t.Errorf("Sources() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t, EnvBackendURL)
	clearEnv(t, EnvViewerAddr)
	dir := t.TempDir()
	global := filepath.Join(dir, "archlens.json")
	writeFile(t, global, `{"backend": {"url": "http://file:1"}}`)
	writeFile(t, filepath.Join(dir, ".env"), EnvBackendURL+"=http://dotenv:2\n"+EnvViewerAddr+"=127.0.0.1:7777\n")

	cfg, err := load(global, dir)
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if cfg.Backend.URL != "http://dotenv:2" || cfg.Viewer.Addr != "127.0.0.1:7777" {
		t.Errorf(".env not applied: %+v", cfg)
	}

	t.Setenv(EnvBackendURL, "https://env:3")
	cfg, err = load(global, dir)
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if cfg.Backend.URL != "https://env:3" {
		t.Errorf("process env should win over .env, got %q", cfg.Backend.URL)
	}
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t, EnvBackendURL)
	clearEnv(t, EnvViewerAddr)
	tests := []struct {
		name    string
		content string
	}{
		{name: "malformed json", content: `{"backend":`},
		{name: "bad scheme", content: `{"backend": {"url": "ftp://x"}}`},
		{name: "bad timeout", content: `{"backend": {"timeout": "soon"}}`},
		{name: "negative timeout", content: `{"backend": {"timeout": "-1s"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "archlens.json")
			writeFile(t, path, tt.content)
			if _, err := LoadFromFile(path); err == nil {
				t.Error("LoadFromFile() succeeded, want error")
			}
		})
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		key     string
		raw     string
		want    any
		wantErr bool
	}{
		{key: "backend.url", raw: "https://api.example.com", want: "https://api.example.com"},
		{key: "backend.url", raw: "not a url", wantErr: true},
		{key: "backend.timeout", raw: "2m", want: "2m"},
		{key: "backend.timeout", raw: "", want: ""},
		{key: "backend.timeout", raw: "later", wantErr: true},
		{key: "viewer.enabled", raw: "false", want: false},
		{key: "viewer.enabled", raw: "nope", wantErr: true},
		{key: "options.debug", raw: "1", want: true},
		{key: "viewer.open_command", raw: "open -a Safari", want: "open -a Safari"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.raw, func(t *testing.T) {
			got, err := ParseValue(tt.key, tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseValue() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseValue() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := ParseValue("models.large", "x"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("ParseValue(unknown) error = %v, want ErrUnknownKey", err)
	}
	if len(Keys()) != len(settable) {
		t.Errorf("Keys() = %v", Keys())
	}
}

func TestSetFieldInFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "archlens.json")

	if err := SetFieldInFile(path, "backend.url", "http://one:1"); err != nil {
		t.Fatalf("SetFieldInFile() error = %v", err)
	}
	writeFile(t, path, `{"backend": {"url": "http://one:1"}, "custom": {"keep": 1}}`)
	if err := SetFieldInFile(path, "viewer.enabled", false); err != nil {
		t.Fatalf("SetFieldInFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	untouched := `{"backend": {"url": "http://one:1"}, "custom": {"keep": 1}`
	if !strings.HasPrefix(string(data), untouched) || !strings.Contains(string(data), `"viewer":{"enabled":false}`) {
		t.Errorf("file = %s", data)
	}

	clearEnv(t, EnvBackendURL)
	clearEnv(t, EnvViewerAddr)
	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if cfg.ViewerEnabled() {
		t.Error("viewer.enabled not persisted")
	}
}

func TestSaveToFile_RoundTrip(t *testing.T) {
	clearEnv(t, EnvBackendURL)
	clearEnv(t, EnvViewerAddr)
	path := filepath.Join(t.TempDir(), "archlens.json")

	cfg := NewConfig()
	cfg.Backend = Backend{URL: "https://svc.example.com", Timeout: "45s"}
	cfg.Viewer.OpenCommand = "xdg-open"
	cfg.Options.Debug = true
	if err := SaveToFile(cfg, path); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	got, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if got.Backend != cfg.Backend || got.Viewer.OpenCommand != "xdg-open" || !got.Debug() {
		t.Errorf("round trip lost values: %+v", got)
	}
}

func TestEnsureConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archlens", "archlens.json")
	if !isFirstRun(path) {
		t.Fatal("isFirstRun() = false before creation")
	}

	created, err := ensureConfig(path)
	if err != nil || !created {
		t.Fatalf("ensureConfig() = %v, %v", created, err)
	}
	if isFirstRun(path) {
		t.Error("isFirstRun() = true after creation")
	}

	created, err = ensureConfig(path)
	if err != nil || created {
		t.Errorf("second ensureConfig() = %v, %v", created, err)
	}
}

func TestConfig_Paths(t *testing.T) {
	cfg := NewConfig()
	cfg.Options.DataDir = "/data/archlens"
	if got := cfg.DebugLogPath(); got != filepath.Join("/data/archlens", "debug.log") {
		t.Errorf("DebugLogPath() = %q", got)
	}
	if (&Config{}).DataDir() == "" {
		t.Error("DataDir() without options is empty")
	}
}
