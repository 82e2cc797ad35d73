package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/nao1215/wordfetch/internal/config"
	"github.com/nao1215/wordfetch/internal/database"
	"github.com/nao1215/wordfetch/internal/log"
)

// newCatServer serves a two page site:
//
//	/      title "Cats", text "Cat cat dog", links to /next with anchor text "cat"
//	/next  text "bird bird cat"
func newCatServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/{$}", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><head><title>Cats</title></head><body>
			<p>Cat cat dog</p>
			<a href="/next">cat</a>
		</body></html>`)
	})
	mux.HandleFunc("/next", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><body><p>bird bird cat</p></body></html>`)
	})
	mux.HandleFunc("/empty", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><body><p>!!! ... ???</p></body></html>`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// writeConfig writes a configuration file into a temporary directory.
func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".wordfetch")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// executeCrawl runs the crawl command with an empty configuration file so
// that files in the working or home directory do not leak into the test.
func executeCrawl(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewCrawlCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"-c", writeConfig(t, "{}\n")}, args...))

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// TestNewCrawlCmd tests the crawl command flags.
func TestNewCrawlCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCrawlCmd()

	tests := []struct {
		flag      string
		shorthand string
		defValue  string
	}{
		{flag: "url", shorthand: "u", defValue: ""},
		{flag: "length", shorthand: "l", defValue: "0"},
		{flag: "depth", shorthand: "d", defValue: "0"},
		{flag: "output", shorthand: "o", defValue: ""},
		{flag: "mutations", shorthand: "m", defValue: "false"},
		{flag: "timeout", shorthand: "t", defValue: "10s"},
		{flag: "proxy", shorthand: "x", defValue: ""},
		{flag: "format", shorthand: "f", defValue: "text"},
		{flag: "config", shorthand: "c", defValue: ""},
		{flag: "top", defValue: "50"},
		{flag: "mutation-words", defValue: "20"},
		{flag: "per-word", defValue: "30"},
		{flag: "save", defValue: "false"},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			t.Parallel()

			flag := cmd.Flags().Lookup(tt.flag)
			if flag == nil {
				t.Fatalf("expected %s flag", tt.flag)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("expected shorthand %q, got %q", tt.shorthand, flag.Shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("expected default %q, got %q", tt.defValue, flag.DefValue)
			}
		})
	}
}

// TestCrawlCommand tests the crawl command against a local site.
func TestCrawlCommand(t *testing.T) {
	t.Parallel()

	srv := newCatServer(t)

	t.Run("text report of a single page", func(t *testing.T) {
		t.Parallel()

		stdout, stderr, err := executeCrawl(t, srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := "Top words from " + srv.URL + " (minimum length: 0):\n" +
			strings.Repeat("=", 60) + "\n\n" +
			"cat: 2\nCats: 1\nCat: 1\ndog: 1\n"
		if stdout != want {
			t.Errorf("unexpected report:\n%s\nwant:\n%s", stdout, want)
		}
		if !strings.Contains(stderr, "Crawling: "+srv.URL+" (depth: 0)") {
			t.Errorf("expected crawl progress on stderr, got %q", stderr)
		}
		if strings.Contains(stderr, "/next") {
			t.Errorf("depth 0 must not follow links, got %q", stderr)
		}
	})

	t.Run("follows links with depth", func(t *testing.T) {
		t.Parallel()

		stdout, stderr, err := executeCrawl(t, "-u", srv.URL, "-d", "1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(stdout, "cat: 3\nbird: 2\n") {
			t.Errorf("unexpected ranking:\n%s", stdout)
		}
		if !strings.Contains(stderr, "Crawling: "+srv.URL+"/next (depth: 1)") {
			t.Errorf("expected /next to be crawled, got %q", stderr)
		}
	})

	t.Run("minimum length filters everything", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := executeCrawl(t, srv.URL, "-l", "50")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stdout != "No words found with minimum length 50\n" {
			t.Errorf("unexpected output: %q", stdout)
		}
	})

	t.Run("page without words", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := executeCrawl(t, srv.URL+"/empty")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stdout != "No words found!\n" {
			t.Errorf("unexpected output: %q", stdout)
		}
	})

	t.Run("failed start page", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := executeCrawl(t, srv.URL+"/missing")
		if err != nil {
			t.Fatalf("fetch failures must not fail the command: %v", err)
		}
		if stdout != "No words found!\n" {
			t.Errorf("unexpected output: %q", stdout)
		}
	})

	t.Run("password mutations", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := executeCrawl(t, srv.URL, "-m", "--mutation-words", "2", "--per-word", "3")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for _, want := range []string{
			"PASSWORD MUTATIONS (Top 2 words):",
			"\nMutations for 'cat':\n  cat\n  CAT\n  Cat\n",
			"\nMutations for 'Cats':\n",
		} {
			if !strings.Contains(stdout, want) {
				t.Errorf("expected output to contain %q:\n%s", want, stdout)
			}
		}
		if strings.Contains(stdout, "Mutations for 'dog'") {
			t.Errorf("only the top 2 words should be mutated:\n%s", stdout)
		}
	})

	t.Run("json report", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := executeCrawl(t, srv.URL, "-f", "json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got struct {
			Version string `json:"version"`
			Run     struct {
				SeedURL string `json:"seed_url"`
				Ranking []struct {
					Word  string `json:"word"`
					Count int    `json:"count"`
				} `json:"ranking"`
			} `json:"run"`
		}
		if err := json.Unmarshal([]byte(stdout), &got); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, stdout)
		}
		if got.Run.SeedURL != srv.URL {
			t.Errorf("expected seed URL %q, got %q", srv.URL, got.Run.SeedURL)
		}
		if len(got.Run.Ranking) == 0 || got.Run.Ranking[0].Word != "cat" || got.Run.Ranking[0].Count != 2 {
			t.Errorf("unexpected ranking: %+v", got.Run.Ranking)
		}
	})

	t.Run("markdown report", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := executeCrawl(t, srv.URL, "-f", "markdown")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(stdout, "# wordfetch Report") {
			t.Errorf("expected markdown heading:\n%s", stdout)
		}
	})

	t.Run("writes report to file", func(t *testing.T) {
		t.Parallel()

		outputPath := filepath.Join(t.TempDir(), "nested", "words.txt")
		stdout, _, err := executeCrawl(t, srv.URL, "-o", outputPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if stdout != "\nResults written to "+outputPath+"\n" {
			t.Errorf("unexpected stdout: %q", stdout)
		}

		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		if !strings.Contains(string(content), "cat: 2\n") {
			t.Errorf("unexpected report:\n%s", content)
		}

		if runtime.GOOS != "windows" {
			info, err := os.Stat(outputPath)
			if err != nil {
				t.Fatalf("failed to stat report: %v", err)
			}
			if perm := info.Mode().Perm(); perm != 0600 {
				t.Errorf("expected permissions 0600, got %o", perm)
			}
		}
	})

	t.Run("saves run to history", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()
		if _, _, err := executeCrawl(t, srv.URL, "-d", "1", "--save", "--db-dir", dbDir); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		db, err := database.Open(dbDir, database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		runs, err := db.ListRuns(t.Context(), "", 0)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 1 {
			t.Fatalf("expected 1 saved run, got %d", len(runs))
		}
		if runs[0].SeedURL != srv.URL || runs[0].PagesVisited != 2 {
			t.Errorf("unexpected summary: %+v", runs[0])
		}
	})
}

// TestRunCrawlInterrupted tests that an interrupted crawl still reports
// and saves the words collected before the interruption.
func TestRunCrawlInterrupted(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mux := http.NewServeMux()
	mux.HandleFunc("/{$}", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><body><p>alpha alpha beta</p><a href="/next">next</a></body></html>`)
	})
	mux.HandleFunc("/next", func(w http.ResponseWriter, _ *http.Request) {
		cancel()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><body><p>gamma</p></body></html>`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := config.NewConfig()
	cfg.URL = srv.URL
	cfg.Depth = 1
	cfg.Save = true
	cfg.DBDir = t.TempDir()

	var stdout, stderr bytes.Buffer
	if err := runCrawl(ctx, cfg, &stdout, &stderr, log.NewSecureLogger(io.Discard, false)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(stdout.String(), "\nalpha: 2\n") {
		t.Errorf("expected the partial ranking, got:\n%s", stdout.String())
	}
	if strings.Contains(stdout.String(), "No words found") {
		t.Errorf("partial words must be reported, got:\n%s", stdout.String())
	}
	if !strings.Contains(stderr.String(), "Crawl interrupted") {
		t.Errorf("expected an interruption note on stderr, got %q", stderr.String())
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	runs, err := db.ListRuns(t.Context(), "", 0)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected the interrupted run to be saved, got %d runs", len(runs))
	}
}

// TestCrawlCommandErrors tests argument and configuration errors.
func TestCrawlCommandErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{name: "missing URL", args: []string{}, wantErr: config.ErrNoURL},
		{name: "negative depth", args: []string{"example.com", "-d", "-1"}, wantErr: config.ErrInvalidDepth},
		{name: "unknown format", args: []string{"example.com", "-f", "xml"}, wantErr: config.ErrInvalidFormat},
		{name: "zero timeout", args: []string{"example.com", "-t", "0s"}, wantErr: config.ErrInvalidTimeout},
		{name: "bad proxy", args: []string{"example.com", "-x", "not-a-proxy"}, wantErr: config.ErrInvalidProxyAddress},
		{name: "zero top words", args: []string{"example.com", "--top", "0"}, wantErr: config.ErrInvalidReportLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := executeCrawl(t, tt.args...)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	t.Run("explicit config file must exist", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"example.com", "-c", filepath.Join(t.TempDir(), "missing.yaml")})

		if err := cmd.Execute(); !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("too many arguments", func(t *testing.T) {
		t.Parallel()

		if _, _, err := executeCrawl(t, "a.example", "b.example"); err == nil {
			t.Error("expected error for two URLs")
		}
	})
}

// TestBuildConfig tests flag and configuration file precedence.
func TestBuildConfig(t *testing.T) {
	t.Parallel()

	configPath := writeConfig(t, `
format: markdown
defaults:
  depth: 1
sites:
  example.com:
    minLength: 4
    mutations: true
    timeout: 30s
`)

	tests := []struct {
		name          string
		args          []string
		wantURL       string
		wantDepth     int
		wantMinLength int
		wantMutations bool
		wantFormat    string
	}{
		{
			name:          "file values apply to matching host",
			args:          []string{"example.com"},
			wantURL:       "http://example.com",
			wantDepth:     1,
			wantMinLength: 4,
			wantMutations: true,
			wantFormat:    config.FormatMarkdown,
		},
		{
			name:          "flags win over file",
			args:          []string{"-u", "https://example.com/start", "-d", "3", "-l", "0", "-f", "json"},
			wantURL:       "https://example.com/start",
			wantDepth:     3,
			wantMinLength: 0,
			wantMutations: true,
			wantFormat:    config.FormatJSON,
		},
		{
			name:          "other hosts only get defaults",
			args:          []string{"other.example"},
			wantURL:       "http://other.example",
			wantDepth:     1,
			wantMinLength: 0,
			wantMutations: false,
			wantFormat:    config.FormatMarkdown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd := NewCrawlCmd()
			if err := cmd.ParseFlags(append([]string{"-c", configPath}, tt.args...)); err != nil {
				t.Fatalf("failed to parse flags: %v", err)
			}

			cfg, err := buildConfig(cmd, cmd.Flags().Args())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if cfg.URL != tt.wantURL {
				t.Errorf("URL = %q, want %q", cfg.URL, tt.wantURL)
			}
			if cfg.Depth != tt.wantDepth {
				t.Errorf("Depth = %d, want %d", cfg.Depth, tt.wantDepth)
			}
			if cfg.MinLength != tt.wantMinLength {
				t.Errorf("MinLength = %d, want %d", cfg.MinLength, tt.wantMinLength)
			}
			if cfg.Mutations != tt.wantMutations {
				t.Errorf("Mutations = %v, want %v", cfg.Mutations, tt.wantMutations)
			}
			if cfg.Format != tt.wantFormat {
				t.Errorf("Format = %q, want %q", cfg.Format, tt.wantFormat)
			}
		})
	}
}

// TestNormalizeURL tests scheme defaulting.
func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "example.com", want: "http://example.com"},
		{in: "  example.com/a  ", want: "http://example.com/a"},
		{in: "https://example.com", want: "https://example.com"},
		{in: "ftp://example.com", want: "ftp://example.com"},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			if got := normalizeURL(tt.in); got != tt.want {
				t.Errorf("normalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestHostOf tests host extraction.
func TestHostOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "http://example.com/a", want: "example.com"},
		{in: "http://example.com:8080", want: "example.com:8080"},
		{in: "http://[::1", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			if got := hostOf(tt.in); got != tt.want {
				t.Errorf("hostOf(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
