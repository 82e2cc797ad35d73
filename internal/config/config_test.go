package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
// Changes to defaults should be intentional, so each one is asserted here.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default Depth is 0", func(t *testing.T) {
		t.Parallel()
		if cfg.Depth != 0 {
			t.Errorf("expected Depth to be 0, got %d", cfg.Depth)
		}
	})

	t.Run("default MinLength is 0", func(t *testing.T) {
		t.Parallel()
		if cfg.MinLength != 0 {
			t.Errorf("expected MinLength to be 0, got %d", cfg.MinLength)
		}
	})

	t.Run("default Timeout is 10 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 10*time.Second {
			t.Errorf("expected Timeout to be 10s, got %v", cfg.Timeout)
		}
	})

	t.Run("default Format is text", func(t *testing.T) {
		t.Parallel()
		if cfg.Format != FormatText {
			t.Errorf("expected Format to be text, got %q", cfg.Format)
		}
	})

	t.Run("default report limits are 50, 20 and 30", func(t *testing.T) {
		t.Parallel()
		if cfg.TopWords != 50 || cfg.MutationWords != 20 || cfg.MutationsPerWord != 30 {
			t.Errorf("unexpected report limits: %d/%d/%d", cfg.TopWords, cfg.MutationWords, cfg.MutationsPerWord)
		}
	})

	t.Run("mutations and saving are off", func(t *testing.T) {
		t.Parallel()
		if cfg.Mutations || cfg.Save {
			t.Error("expected Mutations and Save to be false")
		}
	})

	t.Run("default DBDir is the XDG data dir", func(t *testing.T) {
		t.Parallel()
		if cfg.DBDir != XDGDataDir() {
			t.Errorf("expected DBDir %q, got %q", XDGDataDir(), cfg.DBDir)
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
// Each test case is designed to test one specific validation rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.URL = "http://example.com"
		return cfg
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{name: "valid config", modify: func(*Config) {}, wantErr: nil},
		{name: "missing URL", modify: func(c *Config) { c.URL = "" }, wantErr: ErrNoURL},
		{name: "negative depth", modify: func(c *Config) { c.Depth = -1 }, wantErr: ErrInvalidDepth},
		{name: "zero timeout", modify: func(c *Config) { c.Timeout = 0 }, wantErr: ErrInvalidTimeout},
		{name: "negative timeout", modify: func(c *Config) { c.Timeout = -time.Second }, wantErr: ErrInvalidTimeout},
		{name: "unknown format", modify: func(c *Config) { c.Format = "xml" }, wantErr: ErrInvalidFormat},
		{name: "markdown format", modify: func(c *Config) { c.Format = FormatMarkdown }, wantErr: nil},
		{name: "json format", modify: func(c *Config) { c.Format = FormatJSON }, wantErr: nil},
		{name: "valid proxy", modify: func(c *Config) { c.ProxyAddress = "127.0.0.1:9050" }, wantErr: nil},
		{name: "proxy without port", modify: func(c *Config) { c.ProxyAddress = "127.0.0.1" }, wantErr: ErrInvalidProxyAddress},
		{name: "zero top words", modify: func(c *Config) { c.TopWords = 0 }, wantErr: ErrInvalidReportLimit},
		{name: "zero mutation words", modify: func(c *Config) { c.MutationWords = 0 }, wantErr: ErrInvalidReportLimit},
		{name: "negative concurrency", modify: func(c *Config) { c.Concurrency = -2 }, wantErr: ErrInvalidConcurrency},
		{name: "zero max body size", modify: func(c *Config) { c.MaxBodySize = 0 }, wantErr: ErrInvalidMaxBodySize},
		{name: "negative min length is allowed", modify: func(c *Config) { c.MinLength = -5 }, wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected nil error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestFileGetSiteConfig tests merging of defaults and host settings.
func TestFileGetSiteConfig(t *testing.T) {
	t.Parallel()

	intPtr := func(v int) *int { return &v }
	boolPtr := func(v bool) *bool { return &v }

	cf := &File{
		Defaults: SiteConfig{
			Depth:     intPtr(1),
			MinLength: intPtr(4),
			Timeout:   5 * time.Second,
		},
		Sites: map[string]SiteConfig{
			"example.com": {
				Depth:     intPtr(0),
				Mutations: boolPtr(true),
				Proxy:     "127.0.0.1:9050",
			},
		},
	}

	t.Run("unknown host gets defaults", func(t *testing.T) {
		t.Parallel()

		got := cf.GetSiteConfig("other.com")
		if *got.Depth != 1 || *got.MinLength != 4 || got.Mutations != nil {
			t.Errorf("unexpected site config: %+v", got)
		}
	})

	t.Run("host settings override defaults", func(t *testing.T) {
		t.Parallel()

		got := cf.GetSiteConfig("example.com")
		if *got.Depth != 0 {
			t.Errorf("expected explicit depth 0, got %d", *got.Depth)
		}
		if *got.MinLength != 4 {
			t.Errorf("expected inherited min length 4, got %d", *got.MinLength)
		}
		if got.Mutations == nil || !*got.Mutations {
			t.Error("expected mutations to be enabled")
		}
		if got.Timeout != 5*time.Second {
			t.Errorf("expected inherited timeout, got %v", got.Timeout)
		}
		if got.Proxy != "127.0.0.1:9050" {
			t.Errorf("expected proxy override, got %q", got.Proxy)
		}
	})

	t.Run("host key includes the port", func(t *testing.T) {
		t.Parallel()

		got := cf.GetSiteConfig("example.com:8080")
		if *got.Depth != 1 {
			t.Errorf("expected default depth for a different port, got %d", *got.Depth)
		}
	})
}

// TestConfigApplyFile tests precedence between flags and the config file.
func TestConfigApplyFile(t *testing.T) {
	t.Parallel()

	depth := 3
	minLength := 5
	mutations := true
	cf := &File{
		Defaults: SiteConfig{
			Depth:     &depth,
			MinLength: &minLength,
			Mutations: &mutations,
			Timeout:   30 * time.Second,
			Proxy:     "127.0.0.1:1080",
		},
		Format: FormatJSON,
		Save:   true,
		DBDir:  "/tmp/wordfetch-db",
	}

	t.Run("file fills unset options", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ApplyFile(cf, "example.com", nil)

		if cfg.Depth != 3 || cfg.MinLength != 5 || !cfg.Mutations {
			t.Errorf("unexpected crawl options: %+v", cfg)
		}
		if cfg.Timeout != 30*time.Second || cfg.ProxyAddress != "127.0.0.1:1080" {
			t.Errorf("unexpected transport options: %v %q", cfg.Timeout, cfg.ProxyAddress)
		}
		if cfg.Format != FormatJSON || !cfg.Save || cfg.DBDir != "/tmp/wordfetch-db" {
			t.Errorf("unexpected output options: %q %v %q", cfg.Format, cfg.Save, cfg.DBDir)
		}
		if cfg.SiteConfigs != cf {
			t.Error("expected SiteConfigs to be set")
		}
	})

	t.Run("explicit flags win", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.Depth = 1
		cfg.Format = FormatMarkdown
		explicit := func(option string) bool {
			return option == OptionDepth || option == OptionFormat
		}
		cfg.ApplyFile(cf, "example.com", explicit)

		if cfg.Depth != 1 {
			t.Errorf("expected flag depth 1, got %d", cfg.Depth)
		}
		if cfg.Format != FormatMarkdown {
			t.Errorf("expected flag format, got %q", cfg.Format)
		}
		if cfg.MinLength != 5 {
			t.Errorf("expected file min length 5, got %d", cfg.MinLength)
		}
	})

	t.Run("nil file is a no-op", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ApplyFile(nil, "example.com", nil)
		if cfg.SiteConfigs != nil || cfg.Depth != 0 {
			t.Error("expected config to be unchanged")
		}
	})
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.wordfetch")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, ".wordfetch")

		content := `format: markdown
save: true
defaults:
  depth: 2
  minLength: 3
  timeout: 15s
sites:
  example.com:8080:
    depth: 0
    mutations: true
    proxy: "127.0.0.1:9050"
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Format != FormatMarkdown || !cfg.Save {
			t.Errorf("unexpected top-level settings: %q %v", cfg.Format, cfg.Save)
		}
		if cfg.Defaults.Depth == nil || *cfg.Defaults.Depth != 2 {
			t.Errorf("expected default depth 2")
		}
		if cfg.Defaults.Timeout != 15*time.Second {
			t.Errorf("expected default timeout 15s, got %v", cfg.Defaults.Timeout)
		}

		site, ok := cfg.Sites["example.com:8080"]
		if !ok {
			t.Fatal("expected example.com:8080 in sites")
		}
		if site.Depth == nil || *site.Depth != 0 {
			t.Error("expected explicit site depth 0")
		}
		if site.Mutations == nil || !*site.Mutations {
			t.Error("expected site mutations true")
		}
		if site.Proxy != "127.0.0.1:9050" {
			t.Errorf("expected site proxy, got %q", site.Proxy)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".wordfetch")
		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("initializes nil Sites map", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".wordfetch")
		if err := os.WriteFile(configPath, []byte("defaults:\n  depth: 1\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Sites == nil {
			t.Error("expected Sites map to be initialized")
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("defaults: {}"), 0600); err != nil {
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

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if filepath.Base(XDGDataDir()) != AppName {
		t.Errorf("expected data dir to end with %q, got %q", AppName, XDGDataDir())
	}
	if filepath.Base(XDGConfigDir()) != AppName {
		t.Errorf("expected config dir to end with %q, got %q", AppName, XDGConfigDir())
	}
}
