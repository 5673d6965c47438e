package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default seeds are the built-in list", func(t *testing.T) {
		t.Parallel()
		if len(cfg.Seeds) != 12 {
			t.Errorf("expected 12 seeds, got %d", len(cfg.Seeds))
		}
	})

	t.Run("default timeouts are 3s and 4s", func(t *testing.T) {
		t.Parallel()
		if cfg.PageTimeout != 3*time.Second || cfg.ResourceTimeout != 4*time.Second {
			t.Errorf("unexpected timeouts %v / %v", cfg.PageTimeout, cfg.ResourceTimeout)
		}
	})

	t.Run("default output is files over https", func(t *testing.T) {
		t.Parallel()
		if cfg.OutputDir != "files" || cfg.Scheme != "https" {
			t.Errorf("unexpected output %q scheme %q", cfg.OutputDir, cfg.Scheme)
		}
	})

	t.Run("default workers follow the seed count", func(t *testing.T) {
		t.Parallel()
		if cfg.Workers != 0 {
			t.Errorf("expected Workers 0, got %d", cfg.Workers)
		}
		if n := cfg.WorkerCount(12); n != 12 {
			t.Errorf("expected 12 workers, got %d", n)
		}
	})

	t.Run("defaults are valid", func(t *testing.T) {
		t.Parallel()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected defaults to be valid, got %v", err)
		}
	})

	t.Run("defaults are not shared between configs", func(t *testing.T) {
		t.Parallel()
		other := NewConfig()
		other.Seeds[0] = "changed.test"
		if DefaultSeeds[0] == "changed.test" {
			t.Error("NewConfig shares the default seed slice")
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.Seeds = []string{"a.test"}
		cfg.DBDir = "/tmp/domaincrawl-test"
		return cfg
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{name: "valid", modify: func(*Config) {}},
		{name: "no seeds", modify: func(c *Config) { c.Seeds = nil }, wantErr: ErrNoSeeds},
		{name: "blank seed", modify: func(c *Config) { c.Seeds = []string{" "} }, wantErr: ErrInvalidSeed},
		{name: "seed without host", modify: func(c *Config) { c.Seeds = []string{"https://"} }, wantErr: ErrInvalidSeed},
		{name: "empty output dir", modify: func(c *Config) { c.OutputDir = "" }, wantErr: ErrEmptyOutputDir},
		{name: "ftp scheme", modify: func(c *Config) { c.Scheme = "ftp" }, wantErr: ErrInvalidScheme},
		{name: "zero page timeout", modify: func(c *Config) { c.PageTimeout = 0 }, wantErr: ErrInvalidTimeout},
		{name: "negative resource timeout", modify: func(c *Config) { c.ResourceTimeout = -time.Second }, wantErr: ErrInvalidTimeout},
		{name: "negative workers", modify: func(c *Config) { c.Workers = -1 }, wantErr: ErrInvalidWorkers},
		{name: "negative body size", modify: func(c *Config) { c.MaxBodySize = -1 }, wantErr: ErrInvalidMaxBodySize},
		{name: "no languages", modify: func(c *Config) { c.AcceptLanguage = nil }, wantErr: ErrInvalidAcceptLanguage},
		{name: "bad language", modify: func(c *Config) { c.AcceptLanguage = []string{"not a tag!"} }, wantErr: ErrInvalidAcceptLanguage},
		{name: "history without dir", modify: func(c *Config) { c.DBDir = "" }, wantErr: ErrEmptyDBDir},
		{name: "both report formats", modify: func(c *Config) { c.MarkdownReport = true; c.JSONReport = true }, wantErr: ErrConflictingReportFormats},
		{name: "no history without dir", modify: func(c *Config) { c.DBDir = ""; c.SaveToDB = false }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.modify(cfg)
			err := cfg.Validate()

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestSeedDomains tests seed host extraction.
func TestSeedDomains(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	cfg.Seeds = []string{"https://www.Spatco.com", "www.spatco.com", "http://b-petro.test:8080/path", "bare.test"}

	got, err := cfg.SeedDomains()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"www.spatco.com", "b-petro.test:8080", "bare.test"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("expected %v, got %v", want, got)
	}
}

// TestAcceptLanguageHeader tests building the Accept-Language header.
func TestAcceptLanguageHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		langs []string
		want  string
	}{
		{name: "default", langs: DefaultAcceptLanguage, want: "es-ES,es;q=0.9"},
		{name: "single", langs: []string{"en"}, want: "en"},
		{name: "canonicalizes", langs: []string{"en-us", "EN"}, want: "en-US,en;q=0.9"},
		{name: "three", langs: []string{"es-ES", "es", "en"}, want: "es-ES,es;q=0.9,en;q=0.8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			cfg.AcceptLanguage = tt.langs
			got, err := cfg.AcceptLanguageHeader()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

// TestFileApply tests overlaying a configuration file onto the defaults.
func TestFileApply(t *testing.T) {
	t.Parallel()

	t.Run("overrides only set fields", func(t *testing.T) {
		t.Parallel()

		follow := true
		f := &File{
			Seeds:        []string{"a.test"},
			Keywords:     []string{"gas"},
			PageTimeout:  "1500ms",
			Workers:      4,
			FollowAssets: &follow,
		}
		cfg := NewConfig()
		if err := f.Apply(cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(cfg.Seeds) != 1 || cfg.Seeds[0] != "a.test" {
			t.Errorf("unexpected seeds %v", cfg.Seeds)
		}
		if cfg.PageTimeout != 1500*time.Millisecond {
			t.Errorf("unexpected page timeout %v", cfg.PageTimeout)
		}
		if cfg.ResourceTimeout != DefaultResourceTimeout {
			t.Errorf("resource timeout changed to %v", cfg.ResourceTimeout)
		}
		if cfg.Workers != 4 || !cfg.FollowAssets || cfg.WriteEndpoints {
			t.Errorf("unexpected flags: workers=%d follow=%v endpoints=%v", cfg.Workers, cfg.FollowAssets, cfg.WriteEndpoints)
		}
		if _, ok := cfg.KeywordSet().Match("gasstation.test"); !ok {
			t.Error("expected configured keyword to match")
		}
	})

	t.Run("rejects bad durations", func(t *testing.T) {
		t.Parallel()

		for _, value := range []string{"soon", "-1s", "0s"} {
			f := &File{ResourceTimeout: value}
			if err := f.Apply(NewConfig()); err == nil {
				t.Errorf("expected error for %q", value)
			}
		}
	})
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.domaincrawl")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".domaincrawl")
		content := `seeds:
  - https://www.example-fuel.test
keywords: [fuel, gas]
resourceExtensions: [.pdf, zip]
pageTimeout: 2s
acceptLanguage: [en-US, en]
writeEndpoints: false
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		f, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(f.Seeds) != 1 || len(f.Keywords) != 2 || len(f.ResourceExtensions) != 2 {
			t.Errorf("unexpected lists: %+v", f)
		}
		if f.WriteEndpoints == nil || *f.WriteEndpoints {
			t.Error("expected writeEndpoints to be explicitly false")
		}
		if f.FollowAssets != nil {
			t.Error("expected followAssets to be unset")
		}

		cfg := NewConfig()
		if err := f.Apply(cfg); err != nil {
			t.Fatalf("apply: %v", err)
		}
		if !cfg.ExtensionSet().HasSuffix("http://a.test/x.ZIP") {
			t.Error("expected dotless extension to be accepted")
		}
		header, err := cfg.AcceptLanguageHeader()
		if err != nil || header != "en-US,en;q=0.9" {
			t.Errorf("unexpected header %q: %v", header, err)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".domaincrawl")
		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("seeds: []"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if result := FindConfigFile(configPath); result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()

		if result := FindConfigFile("/nonexistent/path/config.yaml"); result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})
}

// TestLoad tests building the effective configuration.
func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("explicit missing file is an error", func(t *testing.T) {
		t.Parallel()

		_, _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("explicit file is applied", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "crawl.yaml")
		if err := os.WriteFile(configPath, []byte("workers: 2\noutputDir: out\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, path, err := Load(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if path != configPath || cfg.Workers != 2 || cfg.OutputDir != "out" {
			t.Errorf("unexpected result path=%q cfg=%+v", path, cfg)
		}
	})

	t.Run("bad duration in file is an error", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "crawl.yaml")
		if err := os.WriteFile(configPath, []byte("pageTimeout: later\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if _, _, err := Load(configPath); err == nil {
			t.Error("expected error for bad duration")
		}
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if dir := XDGDataDir(); filepath.Base(dir) != AppName {
		t.Errorf("expected data dir to end with %q, got %q", AppName, dir)
	}
	if dir := XDGConfigDir(); filepath.Base(dir) != AppName {
		t.Errorf("expected config dir to end with %q, got %q", AppName, dir)
	}
	if cfg := NewConfig(); cfg.DBDir != XDGDataDir() || !cfg.SaveToDB {
		t.Errorf("expected history in the XDG data dir, got %q (enabled=%v)", cfg.DBDir, cfg.SaveToDB)
	}
}
