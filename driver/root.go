package driver

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/ptest"
	"github.com/roach88/ptest/internal/config"
)

// SeqSource hands out strictly increasing sequence numbers for history rows.
type SeqSource interface {
	Next() int64
}

// Options customizes the command built by NewRootCommand. The zero value is
// ready to use.
type Options struct {
	// Name is the command name shown in usage. Defaults to the executable name.
	Name string

	// Banner is printed before the report in text mode.
	Banner string

	// IDs overrides the run ID generator (for testing).
	IDs ptest.IDGenerator

	// Seq overrides the history sequence source (for testing). Nil resumes
	// after the highest sequence already recorded.
	Seq SeqSource
}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Trace      bool
	NoColor    bool
	History    string

	// Filter comes from the config file; a positional argument overrides it.
	Filter string

	Logger *slog.Logger
}

// Main runs the command line in os.Args against reg and returns the process
// exit code.
func Main(reg *ptest.Registry) int {
	return MainWithOptions(reg, Options{})
}

// MainWithOptions is Main with a customized command.
func MainWithOptions(reg *ptest.Registry, opts Options) int {
	cmd := NewRootCommand(reg, opts)
	cmd.SetArgs(os.Args[1:])
	return Execute(cmd)
}

// Execute runs cmd and maps its error to an exit code. Test failures have
// already been reported, so only other errors are printed.
func Execute(cmd *cobra.Command) int {
	err := cmd.Execute()
	code := GetExitCode(err)
	if err != nil && code != ExitFailure {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	}
	return code
}

// NewRootCommand creates the root command for a test battery over reg.
func NewRootCommand(reg *ptest.Registry, opts Options) *cobra.Command {
	rootOpts := &RootOptions{}

	name := opts.Name
	if name == "" {
		name = filepath.Base(os.Args[0])
	}

	cmd := &cobra.Command{
		Use:   name + " [filter]",
		Short: "Run the registered test battery",
		Long: `Run the registered tests sequentially and print a report.

With a filter, only the tests whose names contain it are run.

Exit codes:
  0 - All selected tests succeeded
  1 - One or more tests failed
  2 - Command error (bad flags, unreadable config, history errors)

Examples:
  ` + name + `
  ` + name + ` Fixture
  ` + name + ` --format json --history ./ptest.db`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.resolve(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(reg, rootOpts, opts, args, cmd)
		},
	}

	// Global flags
	pf := cmd.PersistentFlags()
	pf.BoolVarP(&rootOpts.Verbose, "verbose", "v", false, "verbose output")
	pf.StringVar(&rootOpts.Format, "format", "text", "output format (json|text)")
	pf.StringVar(&rootOpts.ConfigPath, "config", "", "config file (default "+config.DefaultPath+" if present)")
	pf.BoolVar(&rootOpts.Trace, "trace", false, "capture stack traces on failure")
	pf.BoolVar(&rootOpts.NoColor, "no-color", false, "disable colored markers")
	pf.StringVar(&rootOpts.History, "history", "", "path to SQLite run-history database")

	cmd.AddCommand(NewListCommand(reg, rootOpts))
	cmd.AddCommand(NewHistoryCommand(rootOpts))

	return cmd
}

// resolve merges the config file under any flag not set on the command line,
// validates the result and builds the logger.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	flags := cmd.Flags()
	if !flags.Changed("format") {
		o.Format = cfg.Format
	}
	if !flags.Changed("verbose") {
		o.Verbose = cfg.Verbose
	}
	if !flags.Changed("trace") {
		o.Trace = cfg.Trace
	}
	if !flags.Changed("no-color") {
		o.NoColor = cfg.NoColor
	}
	if !flags.Changed("history") {
		o.History = cfg.History
	}
	o.Filter = cfg.Filter

	if !config.IsValidFormat(o.Format) {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid format %q: must be one of %v", o.Format, config.ValidFormats))
	}

	o.Logger = newLogger(cmd.ErrOrStderr(), o.Verbose)
	return nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}
