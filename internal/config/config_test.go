package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func TestGetDefaultOpener(t *testing.T) {
	expected := map[string]string{
		"darwin":  "open",
		"linux":   "xdg-open",
		"windows": "start",
	}

	opener := getDefaultOpener()

	if expectedOpener, ok := expected[runtime.GOOS]; ok {
		if opener != expectedOpener {
			t.Errorf("getDefaultOpener() = %s, want %s for %s", opener, expectedOpener, runtime.GOOS)
		}
	} else if opener != "open" {
		t.Errorf("getDefaultOpener() = %s, want 'open' for unknown OS", opener)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.API.BaseURL != "https://jsonplaceholder.typicode.com" {
		t.Errorf("API.BaseURL = %s, want jsonplaceholder", cfg.API.BaseURL)
	}
	if cfg.API.HTTPTimeout != 30*time.Second {
		t.Errorf("API.HTTPTimeout = %v, want 30s", cfg.API.HTTPTimeout)
	}
	if cfg.API.UserAgent == "" {
		t.Error("API.UserAgent should not be empty")
	}

	if cfg.List.PageSize != 5 {
		t.Errorf("List.PageSize = %d, want 5", cfg.List.PageSize)
	}
	if cfg.List.MaxPageButtons != 5 {
		t.Errorf("List.MaxPageButtons = %d, want 5", cfg.List.MaxPageButtons)
	}
	if cfg.List.SearchDebounce != 300*time.Millisecond {
		t.Errorf("List.SearchDebounce = %v, want 300ms", cfg.List.SearchDebounce)
	}
	if !cfg.List.ClampPage {
		t.Error("List.ClampPage should default to true")
	}
	if cfg.List.RefilterOnAdd {
		t.Error("List.RefilterOnAdd should default to false")
	}

	if cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("Cache.TTL = %v, want 5m", cfg.Cache.TTL)
	}
	if cfg.Source.Kind != SourceREST {
		t.Errorf("Source.Kind = %s, want rest", cfg.Source.Kind)
	}

	if cfg.Keys.Modifier != "ctrl" {
		t.Errorf("Keys.Modifier = %s, want 'ctrl'", cfg.Keys.Modifier)
	}
	if cfg.Keys.Bindings.Quit != "q" {
		t.Errorf("Keys.Bindings.Quit = %s, want 'q'", cfg.Keys.Bindings.Quit)
	}
}

func TestLoad_DefaultConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.List.SearchDebounce != 300*time.Millisecond {
		t.Errorf("List.SearchDebounce = %v, want 300ms", cfg.List.SearchDebounce)
	}
	if cfg.List.PageSize != 5 {
		t.Errorf("List.PageSize = %d, want 5", cfg.List.PageSize)
	}
}

func TestLoad_FromFile(t *testing.T) {
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "test-config.toml")
	configContent := `
[api]
base_url = "https://api.test.invalid"
http_timeout = "60s"
user_agent = "test-agent"

[cache]
path = "/tmp/test-cache.db"
ttl = "10s"

[list]
page_size = 10

[ui.colors]
primary = "#FF0000"
`

	if writeErr := os.WriteFile(configPath, []byte(configContent), 0o644); writeErr != nil {
		t.Fatal(writeErr)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.BaseURL != "https://api.test.invalid" {
		t.Errorf("API.BaseURL = %s", cfg.API.BaseURL)
	}
	if cfg.API.HTTPTimeout != 60*time.Second {
		t.Errorf("API.HTTPTimeout = %v, want 60s", cfg.API.HTTPTimeout)
	}
	if cfg.API.UserAgent != "test-agent" {
		t.Errorf("API.UserAgent = %s, want 'test-agent'", cfg.API.UserAgent)
	}
	if cfg.Cache.Path != "/tmp/test-cache.db" {
		t.Errorf("Cache.Path = %s, want '/tmp/test-cache.db'", cfg.Cache.Path)
	}
	if cfg.Cache.TTL != 10*time.Second {
		t.Errorf("Cache.TTL = %v, want 10s", cfg.Cache.TTL)
	}
	if cfg.List.PageSize != 10 {
		t.Errorf("List.PageSize = %d, want 10", cfg.List.PageSize)
	}
	// Keys not present in the file keep their defaults.
	if cfg.List.MaxPageButtons != 5 {
		t.Errorf("List.MaxPageButtons = %d, want default 5", cfg.List.MaxPageButtons)
	}
	if cfg.UI.Colors.Primary != "#FF0000" {
		t.Errorf("UI.Colors.Primary = %s, want '#FF0000'", cfg.UI.Colors.Primary)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("POSTR_API_BASE_URL", "https://env.test.invalid")
	t.Setenv("POSTR_LIST_SEARCH_DEBOUNCE", "500ms")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.BaseURL != "https://env.test.invalid" {
		t.Errorf("API.BaseURL = %s, want env override", cfg.API.BaseURL)
	}
	if cfg.List.SearchDebounce != 500*time.Millisecond {
		t.Errorf("List.SearchDebounce = %v, want 500ms", cfg.List.SearchDebounce)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("POSTR_SOURCE_KIND=feed\nPOSTR_SOURCE_FEED_URL=https://blog.test.invalid/feed.xml\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv("POSTR_SOURCE_KIND")
		os.Unsetenv("POSTR_SOURCE_FEED_URL")
	})

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Source.Kind != SourceFeed {
		t.Errorf("Source.Kind = %s, want feed", cfg.Source.Kind)
	}
	if cfg.Source.FeedURL != "https://blog.test.invalid/feed.xml" {
		t.Errorf("Source.FeedURL = %s", cfg.Source.FeedURL)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{name: "zero page size", content: "[list]\npage_size = 0\n"},
		{name: "unknown source", content: "[source]\nkind = \"carrier-pigeon\"\n"},
		{name: "feed without url", content: "[source]\nkind = \"feed\"\n"},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, "bad"+string(rune('a'+i))+".toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Errorf("Load() expected error for %s", tt.name)
			}
		})
	}
}

func TestSave(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := TestConfig()
	cfg.API.UserAgent = "test-save-agent"
	cfg.Cache.Path = "/test/cache.db"
	cfg.List.PageSize = 7
	cfg.List.SearchDebounce = 150 * time.Millisecond
	cfg.Keys.Modifier = "alt"

	savePath := filepath.Join(tmpDir, "saved-config.toml")
	if saveErr := Save(cfg, savePath); saveErr != nil {
		t.Fatalf("Save() error = %v", saveErr)
	}

	if _, statErr := os.Stat(savePath); os.IsNotExist(statErr) {
		t.Fatal("Save() did not create config file")
	}

	loaded, err := Load(savePath)
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}

	if loaded.Cache.Path != cfg.Cache.Path {
		t.Errorf("Loaded Cache.Path = %s, want %s", loaded.Cache.Path, cfg.Cache.Path)
	}
	if loaded.API.UserAgent != cfg.API.UserAgent {
		t.Errorf("Loaded API.UserAgent = %s, want %s", loaded.API.UserAgent, cfg.API.UserAgent)
	}
	if loaded.List.PageSize != 7 {
		t.Errorf("Loaded List.PageSize = %d, want 7", loaded.List.PageSize)
	}
	if loaded.List.SearchDebounce != 150*time.Millisecond {
		t.Errorf("Loaded List.SearchDebounce = %v, want 150ms", loaded.List.SearchDebounce)
	}
	if loaded.Keys.Modifier != cfg.Keys.Modifier {
		t.Errorf("Loaded Keys.Modifier = %s, want %s", loaded.Keys.Modifier, cfg.Keys.Modifier)
	}
}

func TestGenerateDefaultConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "generated.toml")
	if genErr := GenerateDefaultConfig(configPath); genErr != nil {
		t.Fatalf("GenerateDefaultConfig() error = %v", genErr)
	}

	if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
		t.Fatal("GenerateDefaultConfig() did not create file")
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load generated config: %v", err)
	}

	if cfg.Keys.Modifier != "ctrl" {
		t.Errorf("Generated config has Keys.Modifier = %s, want 'ctrl'", cfg.Keys.Modifier)
	}
	if cfg.List.PageSize != 5 {
		t.Errorf("Generated config has List.PageSize = %d, want 5", cfg.List.PageSize)
	}
}

func TestTestConfig(t *testing.T) {
	cfg := TestConfig()

	if cfg == nil {
		t.Fatal("TestConfig() returned nil")
	}

	if cfg.Cache.Path != "" {
		t.Errorf("TestConfig Cache.Path = %s, want caching disabled", cfg.Cache.Path)
	}
	if cfg.API.UserAgent != "postr-test/1.0" {
		t.Errorf("TestConfig API.UserAgent = %s, want 'postr-test/1.0'", cfg.API.UserAgent)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("TestConfig should validate: %v", err)
	}
}
