package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kindling-dev/kindling/internal/cli/config"
	"github.com/kindling-dev/kindling/internal/cli/ui"
	"github.com/kindling-dev/kindling/internal/scaffold"
	"github.com/kindling-dev/kindling/internal/tasks"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// globalOptions carries the persistent flags and the logger built from them
type globalOptions struct {
	dir     string
	verbose bool
	noColor bool
	logger  *zap.Logger
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "kindling",
		Short: "Scaffold and maintain Python projects",
		Long: color.CyanString(`kindling - Python project scaffolding

kindling writes the files a Python project needs and keeps them current:
  • pyproject.toml and setup.cfg
  • jupyter-book table of contents, config and a test notebook
  • GitHub workflows for tests and releases
  • nox and nbval configuration, stub sources and a readme

Files that already exist are left alone.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.noColor {
				color.NoColor = true
			}
			opts.logger = newLogger(cmd.ErrOrStderr(), opts.verbose)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = opts.logger.Sync()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.dir, "dir", "C", ".", "Project directory")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log task decisions")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewNewCommand(opts))
	rootCmd.AddCommand(NewRunCommand(opts))
	rootCmd.AddCommand(NewCleanCommand(opts))
	rootCmd.AddCommand(NewListCommand(opts))
	rootCmd.AddCommand(NewDevelopCommand(opts))
	rootCmd.AddCommand(NewCheckCommand(opts))
	rootCmd.AddCommand(NewDocsCommand(opts))

	return rootCmd
}

// newLogger builds the console logger: debug with --verbose, warn otherwise
func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.TimeKey = ""
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.AddSync(w),
		level,
	)
	return zap.New(core)
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the kindling version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			table := ui.NewKeyValueTable(cmd.OutOrStdout(), color.NoColor)
			table.AddRow("kindling version", Version)
			table.AddRow("Git commit", GitCommit)
			table.AddRow("Build date", BuildDate)
			table.AddRow("Go version", goVer)
			table.Render()
		},
	}
}

// load resolves the project root and configuration for a command that
// works on an existing project. Outside a project the --dir value is used.
func (o *globalOptions) load(cmd *cobra.Command) (string, *config.Config, error) {
	root, err := config.FindRoot(o.dir)
	if errors.Is(err, config.ErrNotInProject) {
		root, err = filepath.Abs(o.dir)
	}
	if err != nil {
		return "", nil, err
	}

	cfg, err := config.Load(root, cmd.Flags())
	if err != nil {
		return "", nil, &configError{err: err}
	}
	if o.noColor {
		cfg.NoColor = true
	}
	if cfg.NoColor {
		color.NoColor = true
	}
	o.logger.Debug("config loaded",
		zap.String("root", root),
		zap.String("name", cfg.Name),
		zap.Int("verbosity", cfg.Verbosity),
		zap.Bool("ci", cfg.CI))
	return root, cfg, nil
}

func (o *globalOptions) runner(cmd *cobra.Command, root string, cfg *config.Config) *tasks.Runner {
	r := tasks.NewRunner(root, cmd.OutOrStdout(), o.logger)
	r.NoColor = cfg.NoColor
	r.Verbosity = cfg.Verbosity
	return r
}

// projectTasks is every task group for the configured project
func projectTasks(cfg *config.Config, requires []string) ([]tasks.Task, error) {
	return scaffold.All(cfg.Name, scaffold.Options{Requires: requires})
}

// run executes tasks and marks action failures so Execute can format them
func run(ctx context.Context, r *tasks.Runner, all []tasks.Task, names ...string) (*tasks.Report, error) {
	report, err := r.Run(ctx, all, names...)
	if err != nil && report != nil && len(report.Failed) > 0 {
		return report, &taskFailedError{err: err}
	}
	return report, err
}

type taskFailedError struct {
	err error
}

func (e *taskFailedError) Error() string { return e.err.Error() }
func (e *taskFailedError) Unwrap() error { return e.err }

type configError struct {
	err error
}

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

// formatError renders err as a user-facing error block
func formatError(err error) string {
	noColor := color.NoColor

	var unknown *tasks.UnknownTaskError
	var failed *taskFailedError
	var cfgErr *configError

	switch {
	case errors.As(err, &unknown):
		return ui.UnknownTaskError(unknown.Name, ui.FindSimilar(unknown.Name, unknown.Known, nil), noColor)
	case errors.As(err, &failed):
		return ui.TaskFailedError(failed.Error(), noColor)
	case errors.As(err, &cfgErr):
		return ui.ConfigError(cfgErr.Error(), noColor)
	default:
		return ui.FormatError(ui.ErrorOptions{
			Level:   ui.ErrorLevelError,
			Context: "Error",
			Problem: err.Error(),
			NoColor: noColor,
		})
	}
}

// Execute runs the root command. Interrupts cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprint(rootCmd.ErrOrStderr(), formatError(err))
		return err
	}
	return nil
}
