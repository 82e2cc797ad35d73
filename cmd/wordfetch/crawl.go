package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/nao1215/wordfetch/internal/config"
	"github.com/nao1215/wordfetch/internal/database"
	"github.com/nao1215/wordfetch/internal/fetcher"
	"github.com/nao1215/wordfetch/internal/log"
	"github.com/nao1215/wordfetch/internal/model"
	"github.com/nao1215/wordfetch/internal/pipeline"
	"github.com/nao1215/wordfetch/internal/rank"
	"github.com/nao1215/wordfetch/internal/report"
	"github.com/spf13/cobra"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [url]",
		Short: "Crawl a website and rank its words",
		Long: `Crawl fetches the seed URL and, up to the given depth, every page it links
to on the same host. The visible text of each page is split into words, which
are ranked by how often they occur.

With --mutations, the most frequent words are expanded into password
candidates (case variants, number and symbol suffixes, years).

Examples:
  # Rank the words of a single page
  wordfetch crawl https://example.com

  # Follow links two levels deep and ignore words shorter than 5 runes
  wordfetch crawl -u https://example.com -d 2 -l 5

  # Generate password mutations and write the report to a file
  wordfetch crawl https://example.com -m -o words.txt

  # Markdown report, archived in the history database
  wordfetch crawl https://example.com -f markdown --save

Configuration file (.wordfetch) example:
  defaults:
    depth: 1
  sites:
    example.com:
      minLength: 6
      mutations: true
      timeout: 30s`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCrawlCmd,
	}

	// Crawl flags
	cmd.Flags().StringP("url", "u", "",
		"URL of the page to start from (may also be given as an argument)")
	cmd.Flags().IntP(config.OptionDepth, "d", config.DefaultDepth,
		"Crawl depth (0 fetches the start page only)")
	cmd.Flags().IntP(config.OptionMinLength, "l", config.DefaultMinLength,
		"Minimum word length in characters (0 counts every word)")
	cmd.Flags().DurationP(config.OptionTimeout, "t", config.DefaultTimeout,
		"Timeout for each request")
	cmd.Flags().StringP(config.OptionProxy, "x", "",
		"SOCKS5 proxy address (e.g., 127.0.0.1:9050)")

	// Mutation flags
	cmd.Flags().BoolP(config.OptionMutations, "m", false,
		"Generate password mutations for the top words")
	cmd.Flags().Int("mutation-words", config.DefaultMutationWords,
		"Number of top words to generate mutations for")
	cmd.Flags().Int("workers", 0,
		"Number of mutation workers (0 uses one per CPU)")

	// Report flags
	cmd.Flags().StringP(config.OptionFormat, "f", config.FormatText,
		"Report format: "+strings.Join(config.Formats, ", "))
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Int("top", config.DefaultTopWords,
		"Number of ranked words shown in the report")
	cmd.Flags().Int("per-word", config.DefaultMutationsPerWord,
		"Number of mutations shown per word in the text report")

	// History flags
	cmd.Flags().Bool(config.OptionSave, false,
		"Save the run in the history database")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .wordfetch in current or home directory)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCrawl(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
}

// buildConfig creates a Config from cobra command flags and the
// configuration file. Flags set on the command line win over the file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error

	cfg.URL, err = flags.GetString("url")
	if err != nil {
		return nil, err
	}
	if cfg.URL == "" && len(args) > 0 {
		cfg.URL = args[0]
	}
	cfg.URL = normalizeURL(cfg.URL)

	if cfg.Depth, err = flags.GetInt(config.OptionDepth); err != nil {
		return nil, err
	}
	if cfg.MinLength, err = flags.GetInt(config.OptionMinLength); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = flags.GetDuration(config.OptionTimeout); err != nil {
		return nil, err
	}
	if cfg.ProxyAddress, err = flags.GetString(config.OptionProxy); err != nil {
		return nil, err
	}
	if cfg.Mutations, err = flags.GetBool(config.OptionMutations); err != nil {
		return nil, err
	}
	if cfg.MutationWords, err = flags.GetInt("mutation-words"); err != nil {
		return nil, err
	}
	if cfg.Concurrency, err = flags.GetInt("workers"); err != nil {
		return nil, err
	}
	if cfg.Format, err = flags.GetString(config.OptionFormat); err != nil {
		return nil, err
	}
	if cfg.OutputFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.TopWords, err = flags.GetInt("top"); err != nil {
		return nil, err
	}
	if cfg.MutationsPerWord, err = flags.GetInt("per-word"); err != nil {
		return nil, err
	}
	if cfg.Save, err = flags.GetBool(config.OptionSave); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	// If the user named a config file, it must exist.
	// Otherwise a missing file just means no overrides.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath == "" && cfg.ConfigFilePath != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}
	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyFile(cf, hostOf(cfg.URL), flags.Changed)
	}

	if flags.Changed("db-dir") {
		if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// normalizeURL adds the http scheme to a bare host such as "example.com".
func normalizeURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" || strings.Contains(rawURL, "://") {
		return rawURL
	}
	return "http://" + rawURL
}

// hostOf returns the host[:port] of rawURL, or "" if it cannot be parsed.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// runCrawl executes the crawl, rank and mutate pipeline and outputs the report.
// The report and result messages go to stdout; crawl progress goes to stderr.
func runCrawl(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer, logger *slog.Logger) error {
	client, err := fetcher.NewHTTPClient(cfg.Timeout, cfg.ProxyAddress)
	if err != nil {
		return fmt.Errorf("failed to create HTTP client: %w", err)
	}
	f := fetcher.New(client,
		fetcher.WithMaxBodySize(cfg.MaxBodySize),
		fetcher.WithLogger(logger),
	)

	p := pipeline.DefaultPipeline(f,
		[]pipeline.Option{pipeline.WithLogger(logger)},
		pipeline.WithPipelineMutations(cfg.Mutations),
		pipeline.WithPipelineMutationWords(cfg.MutationWords),
		pipeline.WithPipelineConcurrency(cfg.Concurrency),
		pipeline.WithPipelineVisitHook(func(pageURL string, depth int) {
			fmt.Fprintf(stderr, "Crawling: %s (depth: %d)\n", log.RedactURL(pageURL), depth)
		}),
	)

	fmt.Fprintf(stderr, "\nStarting crawl from %s (depth: %d, min length: %d)\n\n",
		log.RedactURL(cfg.URL), cfg.Depth, cfg.MinLength)

	run := model.NewRun(cfg.URL, cfg.Depth, cfg.MinLength)
	if err := p.Execute(ctx, run); err != nil {
		if !run.Cancelled {
			return err
		}
		fmt.Fprintln(stderr, "\nCrawl interrupted, reporting partial results.")
		if !slices.Contains(run.PerformedSteps, "rank") {
			run.Ranking = rank.Rank(slices.Values(run.Words), run.MinLength)
		}
	}

	if !run.HasWords() {
		fmt.Fprintln(stdout, "No words found!")
		return nil
	}
	if len(run.Ranking) == 0 {
		fmt.Fprintf(stdout, "No words found with minimum length %d\n", cfg.MinLength)
		return nil
	}

	if err := outputReport(cfg, run, stdout); err != nil {
		return err
	}

	if cfg.Save {
		// The run is archived even when the crawl was interrupted.
		if err := saveRun(context.WithoutCancel(ctx), cfg.DBDir, run, logger); err != nil {
			return err
		}
	}

	return nil
}

// outputReport writes the run in the configured format to the output file,
// or to stdout when no file is configured.
func outputReport(cfg *config.Config, run *model.Run, stdout io.Writer) (err error) {
	limits := report.Limits{
		TopWords:         cfg.TopWords,
		MutationWords:    cfg.MutationWords,
		MutationsPerWord: cfg.MutationsPerWord,
	}

	if cfg.OutputFile == "" {
		return writeReport(cfg.Format, stdout, limits, run)
	}

	// Create directories if they don't exist
	dir := filepath.Dir(cfg.OutputFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports can reveal password candidates, so only the owner may read them.
	f, err := os.OpenFile(cfg.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", closeErr)
		}
	}()

	if err := writeReport(cfg.Format, f, limits, run); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "\nResults written to %s\n", cfg.OutputFile)
	return nil
}

// writeReport renders run to w.
func writeReport(format string, w io.Writer, limits report.Limits, run *model.Run) error {
	writer, err := report.NewWriter(format, w, limits, getVersion())
	if err != nil {
		return err
	}
	if _, err := writer.Write(run); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// saveRun archives run in the history database under dbDir.
func saveRun(ctx context.Context, dbDir string, run *model.Run, logger *slog.Logger) error {
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	logger.Info("run saved to database", "id", run.ID, "path", db.Path())
	return nil
}
