package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kindling-dev/kindling/internal/cli/ui"
	"github.com/kindling-dev/kindling/internal/scaffold"
)

// NewCheckCommand creates the check command
func NewCheckCommand(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the generated project files",
		Long: `Parse every generated descriptor with a parser for its format and
compare the values against what kindling would write for this project.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, cfg, err := global.load(cmd)
			if err != nil {
				return err
			}

			findings, err := scaffold.Check(root, cfg.Name)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(findings) == 0 {
				ui.WriteSuccess(out, fmt.Sprintf("Project %s is consistent", cfg.Name), cfg.NoColor)
				return nil
			}

			ui.Header(out, fmt.Sprintf("Problems in %s", cfg.Name), cfg.NoColor)
			list := ui.NewList(out, ui.ListOptions{NoColor: cfg.NoColor})
			for _, f := range findings {
				list.AddItem(f.String())
			}
			list.Render()
			return fmt.Errorf("%d problem(s) found", len(findings))
		},
	}
}
