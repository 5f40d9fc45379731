package commands

import (
	"github.com/spf13/cobra"
)

// NewCleanCommand creates the clean command
func NewCleanCommand(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clean [task...]",
		Short: "Remove generated files",
		Long: `Undo tasks in reverse order. Files produced by tasks marked for
cleanup are removed; files that are already gone are skipped.

Examples:
  kindling clean
  kindling clean docs
  kindling clean new:readme`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, cfg, err := global.load(cmd)
			if err != nil {
				return err
			}
			all, err := projectTasks(cfg, nil)
			if err != nil {
				return err
			}
			_, err = global.runner(cmd, root, cfg).Clean(cmd.Context(), all, args...)
			return err
		},
	}
}
