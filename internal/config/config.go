package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/wordfetch/internal/fetcher"
)

// Default configuration values.
const (
	// DefaultTimeout is the per-request timeout.
	DefaultTimeout = fetcher.DefaultTimeout

	// DefaultDepth of 0 fetches only the start page.
	DefaultDepth = 0

	// DefaultMinLength of 0 counts words of every length.
	DefaultMinLength = 0

	// DefaultTopWords is the number of ranked words shown in a report.
	DefaultTopWords = 50

	// DefaultMutationWords is the number of top ranked words that get
	// password mutations.
	DefaultMutationWords = 20

	// DefaultMutationsPerWord is the number of variants shown per word
	// in a text report.
	DefaultMutationsPerWord = 30

	// DefaultMaxBodySize limits the response body size read per page.
	DefaultMaxBodySize = fetcher.DefaultMaxBodySize

	// AppName is the application name used for XDG directory paths.
	AppName = "wordfetch"
)

// Report formats.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// Formats lists the supported report formats.
var Formats = []string{FormatText, FormatMarkdown, FormatJSON}

// Config holds all configuration options for wordfetch.
// This struct is populated from defaults, the config file and CLI flags,
// and passed through the application rather than kept as global state.
//
// Design decision: We use a single flat struct instead of nested structs.
// The number of options is manageable, and nesting would add complexity
// without significant benefit.
type Config struct {
	// URL is the start URL of the crawl.
	URL string

	// MinLength is the minimum word length in runes. Zero or less
	// disables the filter.
	MinLength int

	// Depth is the maximum number of link hops from the start URL.
	// Depth 0 means only fetch the start page.
	Depth int

	// Timeout is the timeout for each HTTP request.
	Timeout time.Duration

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	// When empty, requests go out directly.
	ProxyAddress string

	// Mutations enables password mutation generation for the top words.
	Mutations bool

	// Format is the report format: text, markdown or json.
	Format string

	// OutputFile is the report destination. Empty means stdout.
	// Parent directories are created automatically.
	OutputFile string

	// TopWords is the number of ranked words shown in the report.
	TopWords int

	// MutationWords is the number of top words that get mutations.
	MutationWords int

	// MutationsPerWord is the number of variants shown per word in the
	// text report. Other formats include every variant.
	MutationsPerWord int

	// Concurrency bounds the mutation workers. Zero means one per CPU.
	Concurrency int

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// Save archives the finished run in the history database.
	Save bool

	// DBDir is the directory of the history database.
	// Defaults to the XDG data directory (~/.local/share/wordfetch on Linux).
	DBDir string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches the default locations.
	ConfigFilePath string

	// SiteConfigs holds the loaded configuration file, if any.
	SiteConfigs *File
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because several defaults are non-zero (timeout, report sizes).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		MinLength:        DefaultMinLength,
		Depth:            DefaultDepth,
		Timeout:          DefaultTimeout,
		Format:           FormatText,
		TopWords:         DefaultTopWords,
		MutationWords:    DefaultMutationWords,
		MutationsPerWord: DefaultMutationsPerWord,
		MaxBodySize:      DefaultMaxBodySize,
		DBDir:            XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for wordfetch.
// On Linux: ~/.local/share/wordfetch
// On macOS: ~/Library/Application Support/wordfetch
// On Windows: %LOCALAPPDATA%\wordfetch
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for wordfetch.
// On Linux: ~/.config/wordfetch
// On macOS: ~/Library/Application Support/wordfetch
// On Windows: %APPDATA%\wordfetch
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as a sentinel error, wrapped with
// the offending value where that helps.
func (c *Config) Validate() error {
	if c.URL == "" {
		return ErrNoURL
	}

	if c.Depth < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDepth, c.Depth)
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if !slices.Contains(Formats, c.Format) {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Format)
	}

	if c.ProxyAddress != "" && !fetcher.IsValidProxyAddress(c.ProxyAddress) {
		return fmt.Errorf("%w: %q", ErrInvalidProxyAddress, c.ProxyAddress)
	}

	if c.TopWords <= 0 || c.MutationWords <= 0 || c.MutationsPerWord <= 0 {
		return ErrInvalidReportLimit
	}

	if c.Concurrency < 0 {
		return ErrInvalidConcurrency
	}

	if c.MaxBodySize <= 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}
