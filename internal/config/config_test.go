package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromMissingFileWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Provider.Kind != "words" {
		t.Fatalf("got provider kind %q, want words", cfg.Provider.Kind)
	}
	if !cfg.Tutorial.Enabled {
		t.Fatal("tutorial disabled by default")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("defaults were not persisted: %v", err)
	}
}

func TestLoadFromRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	want := Default()
	want.Language = "de"
	want.Provider.Kind = "http"
	want.Provider.URL = "http://localhost:8900"
	want.Provider.Model = "pilot-1"
	want.Collector.Enabled = true
	want.Collector.Token = "secret"

	if err := SaveTo(path, want); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if got.Language != "de" || got.Provider.URL != want.Provider.URL || got.Collector.Token != "secret" {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[provider]\nkind = \"http\"\nurl = \"http://x.example\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Provider.Kind != "http" {
		t.Fatalf("got provider kind %q, want http", cfg.Provider.Kind)
	}
	// Sections absent from the file keep their defaults.
	if !cfg.Tutorial.Enabled || cfg.Collector.Port != 8790 {
		t.Fatalf("defaults lost on partial file: %+v", cfg)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad provider kind", func(c *Config) { c.Provider.Kind = "telepathy" }},
		{"bad url", func(c *Config) { c.Provider.Kind = "http"; c.Provider.URL = "not a url" }},
		{"bad port", func(c *Config) { c.Collector.Port = 99999 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("Validate accepted a bad config")
			}
		})
	}
}

func TestDurationFallbacks(t *testing.T) {
	if got := (EngineConfig{}).RefreshDebounceDuration(); got != 250*time.Millisecond {
		t.Fatalf("got %v, want 250ms default", got)
	}
	if got := (EngineConfig{RefreshDebounce: "1s"}).RefreshDebounceDuration(); got != time.Second {
		t.Fatalf("got %v, want 1s", got)
	}
	if got := (EngineConfig{RefreshDebounce: "junk"}).RefreshDebounceDuration(); got != 250*time.Millisecond {
		t.Fatalf("got %v, want fallback on junk", got)
	}
	if got := (ProviderConfig{}).TimeoutDuration(); got != 5*time.Second {
		t.Fatalf("got %v, want 5s default", got)
	}
}

func TestInstanceRegistry(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	inst := Instance{
		Type:      InstanceCollect,
		ID:        "i-1",
		PID:       os.Getpid(),
		Port:      8790,
		Host:      "localhost",
		StartedAt: time.Now(),
	}
	if err := RegisterInstance(inst); err != nil {
		t.Fatalf("RegisterInstance: %v", err)
	}

	found := FindCollector()
	if found == nil || found.Port != 8790 {
		t.Fatalf("FindCollector = %+v, want port 8790", found)
	}

	// A dead PID is cleaned on list.
	if err := RegisterInstance(Instance{Type: InstanceEdit, PID: 999999999}); err != nil {
		t.Fatalf("RegisterInstance: %v", err)
	}
	live, err := ListInstances()
	if err != nil {
		t.Fatalf("ListInstances: %v", err)
	}
	if len(live) != 1 {
		t.Fatalf("got %d live instances, want 1 (stale PID cleaned)", len(live))
	}

	if err := UnregisterInstance(os.Getpid()); err != nil {
		t.Fatalf("UnregisterInstance: %v", err)
	}
	if FindCollector() != nil {
		t.Fatal("collector still listed after unregister")
	}
}
