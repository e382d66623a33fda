package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"dircleaner/internal/config"
	"dircleaner/internal/exitcodes"
	"dircleaner/internal/fault"
	"dircleaner/internal/history"
)

type queryOptions struct {
	dbPath string
	recent int
	stats  bool
	action string
	runID  string
	format string
}

func main() {
	cmd := newRootCmd(os.Stdout, os.LookupEnv)
	if err := cmd.Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitcodes.FromError(err))
	}
}

func newRootCmd(out io.Writer, lookup config.LookupFunc) *cobra.Command {
	opts := &queryOptions{}
	if v, ok := lookup(config.EnvHistoryDB); ok {
		opts.dbPath = strings.TrimSpace(v)
	}

	cmd := &cobra.Command{
		Use:   "dircleaner-history",
		Short: "Show the audit trail written by dircleaner",
		Example: `  dircleaner-history --recent 10         # 10 most recent targets
  dircleaner-history --stats              # Totals over all runs
  dircleaner-history --action DELETE      # Only removed directories
  dircleaner-history --run <id> -f yaml   # One run as YAML`,
		Args:              cobra.NoArgs,
		SilenceErrors:     true,
		SilenceUsage:      true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return query(out, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.dbPath, "db", opts.dbPath, "Path to history database (default $"+config.EnvHistoryDB+")")
	f.IntVar(&opts.recent, "recent", 20, "Show N most recent entries")
	f.BoolVar(&opts.stats, "stats", false, "Show totals instead of entries")
	f.StringVar(&opts.action, "action", "", "Filter by action (DELETE, DRY_RUN, SKIP, ERROR)")
	f.StringVar(&opts.runID, "run", "", "Show every entry of one run")
	f.StringVarP(&opts.format, "format", "f", "table", "Output format: table, json or yaml")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &fault.ArgumentError{Err: err}
	})
	cmd.SetOut(out)
	return cmd
}

func query(out io.Writer, opts *queryOptions) error {
	switch opts.format {
	case "table", "json", "yaml":
	default:
		return &fault.ArgumentError{Err: fmt.Errorf("unknown format %q", opts.format)}
	}
	if opts.dbPath == "" {
		return &fault.ArgumentError{Err: errors.New("no database: pass --db or set " + config.EnvHistoryDB)}
	}
	if opts.recent <= 0 {
		return &fault.ArgumentError{Err: fmt.Errorf("--recent must be positive, got %d", opts.recent)}
	}
	if _, err := os.Stat(opts.dbPath); err != nil {
		return fmt.Errorf("%w: %w", fault.ErrIO, err)
	}

	db, err := history.Open(opts.dbPath)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", fault.ErrIO, opts.dbPath, err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}()

	if opts.stats {
		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("%w: get statistics: %w", fault.ErrIO, err)
		}
		if opts.format != "table" {
			return encode(out, opts.format, stats)
		}
		return printStats(out, stats)
	}

	var entries []history.Entry
	switch {
	case opts.runID != "":
		entries, err = db.ByRun(opts.runID)
	case opts.action != "":
		entries, err = db.ByAction(strings.ToUpper(opts.action), opts.recent)
	default:
		entries, err = db.Recent(opts.recent)
	}
	if err != nil {
		return fmt.Errorf("%w: query history: %w", fault.ErrIO, err)
	}
	if opts.format != "table" {
		if entries == nil {
			entries = []history.Entry{}
		}
		return encode(out, opts.format, entries)
	}
	return printEntries(out, entries)
}

func encode(out io.Writer, format string, v interface{}) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printStats(out io.Writer, stats *history.Stats) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Runs:\t%d\n", stats.Runs)
	_, _ = fmt.Fprintf(w, "Directories removed:\t%d\n", stats.TotalRemoved)
	_, _ = fmt.Fprintf(w, "Space freed:\t%s\n", humanize.Bytes(uint64(stats.TotalSpaceFreed)))
	if stats.FirstRecorded != nil && stats.LastRecorded != nil {
		_, _ = fmt.Fprintf(w, "Period:\t%s to %s\n",
			stats.FirstRecorded.Format("2006-01-02"), stats.LastRecorded.Format("2006-01-02"))
	}

	if len(stats.ByAction) > 0 {
		actions := make([]string, 0, len(stats.ByAction))
		for action := range stats.ByAction {
			actions = append(actions, action)
		}
		sort.Strings(actions)

		_, _ = fmt.Fprintln(w, "\nBy action:")
		for _, action := range actions {
			_, _ = fmt.Fprintf(w, "  %s\t%d\n", action, stats.ByAction[action])
		}
	}
	return w.Flush()
}

func printEntries(out io.Writer, entries []history.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(out, "No records found")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTimestamp\tRun\tAction\tSize\tPath")
	_, _ = fmt.Fprintln(w, "--\t---------\t---\t------\t----\t----")

	for _, e := range entries {
		action := e.Action
		if e.ErrorMessage != "" && e.Action == history.ActionError {
			action += " (" + e.ErrorMessage + ")"
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			e.ID,
			e.Timestamp.Format("2006-01-02 15:04:05"),
			shortRunID(e.RunID),
			action,
			humanize.Bytes(uint64(e.Size)),
			e.Path,
		)
	}
	return w.Flush()
}

// shortRunID keeps the first UUID group
func shortRunID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
