package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rupor-github/gencfg"

	"twdefaults/variant"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return configPath
}

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}

	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
	if cfg.Plugin.Modifier != "d" {
		t.Errorf("Default modifier = %v, want d", cfg.Plugin.Modifier)
	}
	if cfg.Plugin.Strategy != variant.StrategyGuard {
		t.Errorf("Default strategy = %v, want guard", cfg.Plugin.Strategy)
	}
	if cfg.Build.Separator != ":" {
		t.Errorf("Default separator = %q, want \":\"", cfg.Build.Separator)
	}
	if len(cfg.Build.Content) == 0 {
		t.Error("Default content patterns are empty")
	}
	if cfg.Logging.ConsoleLogger.Level != "normal" {
		t.Errorf("Default console level = %q, want normal", cfg.Logging.ConsoleLogger.Level)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	configPath := writeConfig(t, `version: 1
plugin:
  modifier: defaults
  strategy: where
  layer: base
build:
  separator: "_"
  input: utilities.css
  content: ["templates/**.html"]
  archives: ["theme.zip"]
logging:
  console:
    level: debug
`)

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	want := variant.Options{Modifier: "defaults", Strategy: variant.StrategyWhere, Layer: "base"}
	if diff := cmp.Diff(want, cfg.Plugin.Options()); diff != "" {
		t.Errorf("plugin options mismatch (-want +got):\n%s", diff)
	}
	if cfg.Build.Separator != "_" || cfg.Build.Input != "utilities.css" {
		t.Errorf("build = %+v", cfg.Build)
	}
	if diff := cmp.Diff([]string{"templates/**.html"}, cfg.Build.Content); diff != "" {
		t.Errorf("content mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"theme.zip"}, cfg.Build.Archives); diff != "" {
		t.Errorf("archives mismatch (-want +got):\n%s", diff)
	}
	// not in the file, comes from defaults
	if cfg.Reporting.Destination == "" {
		t.Error("reporting destination lost defaults")
	}
}

func TestLoadConfiguration_NonStringModifier(t *testing.T) {
	configPath := writeConfig(t, "version: 1\nplugin:\n  modifier: 42\n")

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if got := variant.New(cfg.Plugin.Options()).Modifier(); got != variant.DefaultModifier {
		t.Errorf("Modifier() = %q, want %q", got, variant.DefaultModifier)
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "invalid yaml", content: "version: 1\nplugin:\n  modifier: d\n  invalid indent\n"},
		{name: "unknown field", content: "version: 1\nunknown_field: value\n"},
		{name: "bad version", content: "version: 2\n"},
		{name: "bad strategy", content: "version: 1\nplugin:\n  strategy: sideways\n"},
		{name: "empty separator", content: "version: 1\nbuild:\n  separator: \"\"\n"},
		{name: "empty content", content: "version: 1\nbuild:\n  content: []\n"},
		{name: "bad layer", content: "version: 1\nplugin:\n  layer: \"a{b\"\n"},
		{name: "bad console level", content: "version: 1\nlogging:\n  console:\n    level: loud\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfiguration(writeConfig(t, tt.content)); err == nil {
				t.Error("LoadConfiguration() expected error")
			}
		})
	}
}

func TestLoadConfiguration_NonExistentFile(t *testing.T) {
	_, err := LoadConfiguration("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestLoadConfiguration_WithOptions(t *testing.T) {
	option := func(opts *gencfg.ProcessingOptions) {
		// Options are opaque, just test that we can pass them
	}

	cfg, err := LoadConfiguration("", option)
	if err != nil {
		t.Fatalf("LoadConfiguration() with options error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Prepare() returned empty data")
	}

	// Verify it's valid YAML by trying to unmarshal
	if _, err = unmarshalConfig(data, &Config{}, true); err != nil {
		t.Errorf("Prepared config is not valid: %v", err)
	}
}

func TestDump(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	cfg.Plugin.Strategy = variant.StrategyWhere

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	for _, want := range []string{"version: 1", "strategy: where", "modifier: d"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("Dump() output does not contain %q:\n%s", want, data)
		}
	}

	// dumped configuration loads back
	back, err := unmarshalConfig(data, &Config{}, true)
	if err != nil {
		t.Fatalf("unmarshalConfig() error = %v", err)
	}
	if back.Plugin.Strategy != variant.StrategyWhere {
		t.Errorf("Strategy = %v after reload", back.Plugin.Strategy)
	}
}
