package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kindling-dev/kindling/internal/cli/ui"
	"github.com/kindling-dev/kindling/internal/docs"
	"github.com/kindling-dev/kindling/internal/scaffold"
	"github.com/kindling-dev/kindling/internal/tasks"
	"github.com/kindling-dev/kindling/internal/watch"
)

const defaultDocsAddr = "127.0.0.1:8000"

// NewDocsCommand creates the docs command and its subcommands
func NewDocsCommand(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Configure and build the jupyter-book documentation",
		Long: `Configure and build the documentation. Without a subcommand both
steps run; each step repeats only when its inputs changed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDocs(cmd, global, scaffold.GroupDocs)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "config",
		Short: "Generate docs/conf.py from _toc.yml and docs/_config.yml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDocs(cmd, global, scaffold.GroupDocs+":config")
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "build",
		Short: "Build the HTML documentation into _build/html",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDocs(cmd, global, scaffold.GroupDocs)
		},
	})

	cmd.AddCommand(newDocsServeCommand(global))
	cmd.AddCommand(newDocsWatchCommand(global))

	return cmd
}

func runDocs(cmd *cobra.Command, global *globalOptions, names ...string) error {
	root, cfg, err := global.load(cmd)
	if err != nil {
		return err
	}
	_, err = run(cmd.Context(), global.runner(cmd, root, cfg), tasks.Prefix(scaffold.GroupDocs, scaffold.Docs()), names...)
	return err
}

func newDocsServeCommand(global *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the built HTML documentation",
		Long: `Serve _build/html over HTTP until interrupted.

Examples:
  kindling docs serve
  kindling docs serve --addr :9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, cfg, err := global.load(cmd)
			if err != nil {
				return err
			}

			server := docs.NewServer(filepath.Join(root, scaffold.HTML), global.logger)
			infoColor := color.New(color.FgCyan)
			if cfg.NoColor {
				infoColor.DisableColor()
			}
			infoColor.Fprintf(cmd.OutOrStdout(), "Serving documentation on http://%s\n", addr)
			return server.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultDocsAddr, "Listen address")
	return cmd
}

func newDocsWatchCommand(global *globalOptions) *cobra.Command {
	var (
		debounce time.Duration
		serve    bool
		addr     string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild the documentation whenever its sources change",
		Long: `Build the documentation, then watch _toc.yml, _config.yml, Markdown
files and notebooks, rebuilding after each batch of changes.

With --serve the HTML is also served, and open pages reload after every
successful rebuild.

Examples:
  kindling docs watch
  kindling docs watch --serve --addr 127.0.0.1:9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, cfg, err := global.load(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			out := cmd.OutOrStdout()
			r := global.runner(cmd, root, cfg)
			docTasks := tasks.Prefix(scaffold.GroupDocs, scaffold.Docs())

			if _, err := run(ctx, r, docTasks); err != nil {
				fmt.Fprint(cmd.ErrOrStderr(), formatError(err))
			}

			var reload *watch.ReloadServer
			serveErr := make(chan error, 1)
			if serve {
				reload = watch.NewReloadServer(global.logger)
				defer reload.Close()

				server := docs.NewServer(filepath.Join(root, scaffold.HTML), global.logger, docs.WithLiveReload(reload))
				fmt.Fprint(out, ui.Info(fmt.Sprintf("Serving documentation on http://%s", addr), cfg.NoColor))
				go func() {
					serveErr <- server.ListenAndServe(ctx, addr)
				}()
			}

			fw, err := watch.NewFileWatcher(root, watch.DefaultPatterns, nil, global.logger, func(changed []string) error {
				fmt.Fprintf(out, "\nchanged: %s\n", strings.Join(changed, ", "))
				if reload != nil {
					reload.NotifyBuilding(changed)
				}
				if _, err := run(ctx, r, docTasks); err != nil {
					fmt.Fprint(cmd.ErrOrStderr(), formatError(err))
					if reload != nil {
						reload.NotifyError(err)
					}
					return nil
				}
				if reload != nil {
					reload.NotifyReload()
				}
				return nil
			})
			if err != nil {
				return fmt.Errorf("failed to create watcher: %w", err)
			}
			if debounce > 0 {
				fw.SetDebounce(debounce)
			}

			if err := fw.Start(); err != nil {
				return fmt.Errorf("failed to start watcher: %w", err)
			}
			defer func() {
				if err := fw.Stop(); err != nil {
					fmt.Fprint(cmd.ErrOrStderr(), ui.Warning(fmt.Sprintf("Failed to stop watcher: %v", err), nil, cfg.NoColor))
				}
			}()

			fmt.Fprint(out, ui.Info("Watching for changes. Press Ctrl+C to stop.", cfg.NoColor))

			select {
			case <-ctx.Done():
				return nil
			case err := <-serveErr:
				return err
			}
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", 0, "Quiet period before rebuilding (default 200ms)")
	cmd.Flags().BoolVar(&serve, "serve", false, "Serve the HTML with live reload")
	cmd.Flags().StringVar(&addr, "addr", defaultDocsAddr, "Listen address used with --serve")
	return cmd
}
