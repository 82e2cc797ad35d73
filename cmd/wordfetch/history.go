package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nao1215/wordfetch/internal/config"
	"github.com/nao1215/wordfetch/internal/database"
	"github.com/nao1215/wordfetch/internal/report"
	"github.com/spf13/cobra"
)

// defaultHistoryLimit is the number of runs listed when --limit is not given.
const defaultHistoryLimit = 20

// noHistoryMessage is printed when the database holds no runs.
const noHistoryMessage = "No saved runs found.\n\nUse 'wordfetch crawl --save <url>' to archive a run."

// NewHistoryCmd creates the history command.
// This command inspects runs archived with 'wordfetch crawl --save'.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show runs saved in the history database",
		Long: `History lists runs archived with 'wordfetch crawl --save', newest first.

Examples:
  # List the most recent runs
  wordfetch history

  # List runs for one host
  wordfetch history --host example.com

  # List every host with saved runs
  wordfetch history --hosts

  # Show the report of a saved run
  wordfetch history --show 0b9c4c1e-6f1d-4c55-9a3e-4b7ad0c5c2f1

  # Show it as Markdown
  wordfetch history --show 0b9c4c1e-6f1d-4c55-9a3e-4b7ad0c5c2f1 -f markdown

  # Delete a saved run
  wordfetch history --delete 0b9c4c1e-6f1d-4c55-9a3e-4b7ad0c5c2f1`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	// Listing flags
	cmd.Flags().String("host", "",
		"Only list runs for this host (host[:port])")
	cmd.Flags().Bool("hosts", false,
		"List every host with saved runs")
	cmd.Flags().IntP("limit", "n", defaultHistoryLimit,
		"Maximum number of runs to list (0 lists all)")

	// Single run flags
	cmd.Flags().String("show", "",
		"Show the report of the run with this ID")
	cmd.Flags().StringP("format", "f", config.FormatText,
		"Report format for --show: "+strings.Join(config.Formats, ", "))
	cmd.Flags().Int("top", config.DefaultTopWords,
		"Number of ranked words shown by --show")
	cmd.Flags().String("delete", "",
		"Delete the run with this ID")

	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	out := cmd.OutOrStdout()

	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	// Do not create an empty database just to report that it is empty.
	if _, err := os.Stat(filepath.Join(dbDir, database.FileName)); errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(out, noHistoryMessage)
		return nil
	}

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if id, err := flags.GetString("delete"); err != nil {
		return err
	} else if id != "" {
		return deleteRun(ctx, out, db, id)
	}

	if id, err := flags.GetString("show"); err != nil {
		return err
	} else if id != "" {
		format, err := flags.GetString("format")
		if err != nil {
			return err
		}
		top, err := flags.GetInt("top")
		if err != nil {
			return err
		}
		return showRun(ctx, out, db, id, format, top)
	}

	if listHosts, err := flags.GetBool("hosts"); err != nil {
		return err
	} else if listHosts {
		return listSavedHosts(ctx, out, db)
	}

	host, err := flags.GetString("host")
	if err != nil {
		return err
	}
	limit, err := flags.GetInt("limit")
	if err != nil {
		return err
	}
	return listRuns(ctx, out, db, host, limit)
}

// listSavedHosts prints every host with at least one saved run.
func listSavedHosts(ctx context.Context, out io.Writer, db *database.HistoryDB) error {
	hosts, err := db.ListHosts(ctx)
	if err != nil {
		return err
	}

	if len(hosts) == 0 {
		fmt.Fprintln(out, noHistoryMessage)
		return nil
	}

	fmt.Fprintf(out, "Crawled hosts (%d):\n\n", len(hosts))
	for _, host := range hosts {
		fmt.Fprintf(out, "  • %s\n", host)
	}
	fmt.Fprintln(out, "\nUse 'wordfetch history --host <host>' to see the runs for a host.")

	return nil
}

// listRuns prints a table of saved runs, newest first.
func listRuns(ctx context.Context, out io.Writer, db *database.HistoryDB, host string, limit int) error {
	runs, err := db.ListRuns(ctx, host, limit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		if host != "" {
			fmt.Fprintf(out, "No saved runs found for %s\n", host)
			return nil
		}
		fmt.Fprintln(out, noHistoryMessage)
		return nil
	}

	if host != "" {
		fmt.Fprintf(out, "Saved runs for %s (%d):\n\n", host, len(runs))
	} else {
		fmt.Fprintf(out, "Saved runs (%d):\n\n", len(runs))
	}
	fmt.Fprintf(out, "  %-36s  %-19s  %5s  %5s  %6s  %8s  %s\n",
		"ID", "Date", "Depth", "Pages", "Failed", "Words", "URL")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 100))

	for _, r := range runs {
		fmt.Fprintf(out, "  %-36s  %-19s  %5d  %5d  %6d  %8d  %s\n",
			r.ID,
			r.StartedAt.Local().Format(time.DateTime),
			r.Depth,
			r.PagesVisited,
			r.PagesFailed,
			r.TotalWords,
			r.SeedURL,
		)
	}

	fmt.Fprintln(out, "\nUse 'wordfetch history --show <id>' to see the report of a run.")
	return nil
}

// showRun renders the report of a saved run.
func showRun(ctx context.Context, out io.Writer, db *database.HistoryDB, id, format string, top int) error {
	run, err := db.GetRun(ctx, id)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("no saved run with ID %s", id)
	}

	limits := report.DefaultLimits()
	if top > 0 {
		limits.TopWords = top
	}

	return writeReport(format, out, limits, run)
}

// deleteRun removes a saved run.
func deleteRun(ctx context.Context, out io.Writer, db *database.HistoryDB, id string) error {
	deleted, err := db.DeleteRun(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("no saved run with ID %s", id)
	}
	fmt.Fprintf(out, "Deleted run %s\n", id)
	return nil
}
