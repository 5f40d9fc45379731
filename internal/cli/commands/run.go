package commands

import (
	"github.com/spf13/cobra"
)

// NewRunCommand creates the run command
func NewRunCommand(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run [task...]",
		Short: "Run tasks by name",
		Long: `Run tasks by full name (new:readme) or by group (docs).
Without arguments every task of every group runs.

Examples:
  kindling run new:readme new:gitignore
  kindling run docs`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, cfg, err := global.load(cmd)
			if err != nil {
				return err
			}
			all, err := projectTasks(cfg, nil)
			if err != nil {
				return err
			}
			_, err = run(cmd.Context(), global.runner(cmd, root, cfg), all, args...)
			return err
		},
	}
}
