package config

import "time"

// SiteConfig holds configuration for one host.
// Unset fields leave the global value untouched. Depth, MinLength and
// Mutations are pointers so that an explicit zero or false can be told
// apart from an absent key.
type SiteConfig struct {
	// Depth overrides the crawl depth.
	Depth *int `yaml:"depth,omitempty"`

	// MinLength overrides the minimum word length.
	MinLength *int `yaml:"minLength,omitempty"`

	// Mutations overrides whether password mutations are generated.
	Mutations *bool `yaml:"mutations,omitempty"`

	// Timeout overrides the per-request timeout, e.g. "30s".
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// Proxy overrides the SOCKS5 proxy address.
	Proxy string `yaml:"proxy,omitempty"`
}

// File represents the structure of the .wordfetch configuration file.
type File struct {
	// Sites maps hosts to their configurations.
	// Keys are the URL host including any port, e.g. "example.com:8080".
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults applies to every host unless overridden in Sites.
	Defaults SiteConfig `yaml:"defaults,omitempty"`

	// Format sets the default report format.
	Format string `yaml:"format,omitempty"`

	// Save archives every run in the history database.
	Save bool `yaml:"save,omitempty"`

	// DBDir overrides the history database directory.
	DBDir string `yaml:"dbDir,omitempty"`
}

// GetSiteConfig returns the configuration for host.
// It merges the host-specific configuration over the defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults

	if siteConfig, ok := cf.Sites[host]; ok {
		if siteConfig.Depth != nil {
			result.Depth = siteConfig.Depth
		}
		if siteConfig.MinLength != nil {
			result.MinLength = siteConfig.MinLength
		}
		if siteConfig.Mutations != nil {
			result.Mutations = siteConfig.Mutations
		}
		if siteConfig.Timeout != 0 {
			result.Timeout = siteConfig.Timeout
		}
		if siteConfig.Proxy != "" {
			result.Proxy = siteConfig.Proxy
		}
	}

	return result
}

// Option names used by ApplyFile to ask whether a value was set explicitly.
// They match the long CLI flag names.
const (
	OptionDepth     = "depth"
	OptionMinLength = "length"
	OptionMutations = "mutations"
	OptionTimeout   = "timeout"
	OptionProxy     = "proxy"
	OptionFormat    = "format"
	OptionSave      = "save"
)

// ApplyFile merges the configuration file into c for the given host.
// explicit reports whether an option was set on the command line; such
// options keep their value. A nil explicit treats every option as unset.
func (c *Config) ApplyFile(cf *File, host string, explicit func(option string) bool) {
	if cf == nil {
		return
	}
	if explicit == nil {
		explicit = func(string) bool { return false }
	}

	c.SiteConfigs = cf
	site := cf.GetSiteConfig(host)

	if site.Depth != nil && !explicit(OptionDepth) {
		c.Depth = *site.Depth
	}
	if site.MinLength != nil && !explicit(OptionMinLength) {
		c.MinLength = *site.MinLength
	}
	if site.Mutations != nil && !explicit(OptionMutations) {
		c.Mutations = *site.Mutations
	}
	if site.Timeout != 0 && !explicit(OptionTimeout) {
		c.Timeout = site.Timeout
	}
	if site.Proxy != "" && !explicit(OptionProxy) {
		c.ProxyAddress = site.Proxy
	}
	if cf.Format != "" && !explicit(OptionFormat) {
		c.Format = cf.Format
	}
	if cf.Save && !explicit(OptionSave) {
		c.Save = true
	}
	if cf.DBDir != "" {
		c.DBDir = cf.DBDir
	}
}
