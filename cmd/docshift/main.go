package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"docshift/internal/config"
	"docshift/internal/include"
	"docshift/internal/logging"
	"docshift/internal/storage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const usage = "Usage: docshift <file_path>"

var errUsage = errors.New("wrong number of arguments")

// app holds the flags and what setup resolves from them.
type app struct {
	configPath string
	dbPath     string
	logLevel   string

	history     bool
	limit       int
	historyPath string

	cfg    *config.Config
	logger *zap.Logger
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if args == nil {
		args = []string{} // cobra falls back to os.Args on nil
	}
	cmd := newRootCmd(&app{})
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(context.Background())
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprintln(stdout, usage)
		return 1
	default:
		fmt.Fprintln(stderr, err)
		return 1
	}
}

// newRootCmd builds a command without subcommands, so every positional
// argument is a file path. Paths starting with '-' go after "--".
func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "docshift [flags] [--] <file_path>",
		Short: "Include a presentation file in an article, two heading levels down",
		Long: `docshift reads a Markdown/Quarto file, moves every heading down two levels
and prints it behind a provenance comment, ready to embed in a larger document.
Missing or unreadable files produce an HTML comment instead of a failure.

With --history it lists the inclusions recorded in the --db ledger instead.`,
		Args:          a.validateArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PreRun:        a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.history {
				return a.listHistory(cmd)
			}
			return a.include(cmd, args[0])
		},
		PostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	flags := root.Flags()
	flags.StringVarP(&a.configPath, "config", "c", "docshift.yaml", "Path to the YAML config file")
	flags.StringVarP(&a.dbPath, "db", "d", "", "Path to the inclusion history database (SQLite); empty disables it")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.BoolVar(&a.history, "history", false, "List recorded inclusions, newest first, instead of including a file")
	flags.IntVarP(&a.limit, "limit", "n", 20, "With --history: maximum number of records to show (0 for all)")
	flags.StringVar(&a.historyPath, "history-path", "", "With --history: only show inclusions of this path")

	return root
}

// validateArgs runs before setup, so a broken config never hides the usage message.
func (a *app) validateArgs(cmd *cobra.Command, args []string) error {
	if a.history {
		if len(args) != 0 {
			return fmt.Errorf("--history takes no file argument, got %d", len(args))
		}
		return nil
	}
	if len(args) != 1 {
		return errUsage
	}
	return nil
}

// setup loads the config and lets explicit flags win over it. Failures are
// reported on stderr and fall back to defaults; they never stop an include.
func (a *app) setup(cmd *cobra.Command, args []string) {
	stderr := cmd.ErrOrStderr()

	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "warning: failed to load config, using defaults: %v\n", err)
		cfg = config.Default()
	}
	if cmd.Flags().Changed("db") {
		cfg.History.DB = a.dbPath
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}

	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(stderr, "warning: logging disabled: %v\n", err)
		logger = zap.NewNop()
	}

	a.cfg = cfg
	a.logger = logger
}

func (a *app) include(cmd *cobra.Command, path string) error {
	var rec include.Recorder
	if a.cfg.History.DB != "" {
		store, err := storage.NewSQLiteStore(a.cfg.History.DB)
		if err != nil {
			// The document still gets printed; only the ledger is lost.
			a.logger.Warn("History database unavailable", zap.String("db", a.cfg.History.DB), zap.Error(err))
		} else {
			defer store.Close()
			rec = storage.NewRecorder(store)
		}
	}

	reader := include.NewReader(a.logger, rec)
	fmt.Fprintln(cmd.OutOrStdout(), reader.IncludeAndConvert(cmd.Context(), path))
	return nil
}

func (a *app) listHistory(cmd *cobra.Command) error {
	if a.cfg.History.DB == "" {
		return errors.New("no history database configured (use --db, DOCSHIFT_DB or history.db in the config)")
	}

	store, err := storage.NewSQLiteStore(a.cfg.History.DB)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	var records []storage.Record
	if a.historyPath != "" {
		records, err = store.FindByPath(ctx, a.historyPath)
		if err == nil && a.limit > 0 && len(records) > a.limit {
			records = records[:a.limit]
		}
	} else {
		records, err = store.List(ctx, a.limit)
	}
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	printHistory(cmd.OutOrStdout(), records)
	return nil
}

func printHistory(w io.Writer, records []storage.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No inclusions recorded.")
		return
	}
	for _, r := range records {
		digest := r.Digest
		if len(digest) > 12 {
			digest = digest[:12]
		}
		if digest == "" {
			digest = "-"
		}
		line := fmt.Sprintf("%s  %-10s  %3d  %-12s  %s", r.CreatedAt.UTC().Format(time.RFC3339), r.Status, r.Headings, digest, r.Path)
		if r.Error != "" {
			line += "  (" + r.Error + ")"
		}
		fmt.Fprintln(w, line)
	}
}
