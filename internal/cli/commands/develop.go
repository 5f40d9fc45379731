package commands

import (
	"github.com/spf13/cobra"

	"github.com/kindling-dev/kindling/internal/scaffold"
	"github.com/kindling-dev/kindling/internal/tasks"
)

// NewDevelopCommand creates the develop command
func NewDevelopCommand(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "develop",
		Short: "Install the project in editable mode",
		Long: `Run pip install -e . in the project directory. The install is
repeated only when pyproject.toml or setup.cfg changed since the last run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, cfg, err := global.load(cmd)
			if err != nil {
				return err
			}
			_, err = run(cmd.Context(), global.runner(cmd, root, cfg), tasks.Prefix(scaffold.GroupDevelop, scaffold.Develop()))
			return err
		},
	}
}
