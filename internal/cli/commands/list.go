package commands

import (
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kindling-dev/kindling/internal/cli/ui"
	"github.com/kindling-dev/kindling/internal/scaffold"
	"github.com/kindling-dev/kindling/internal/tasks"
)

var groupDocs = map[string]string{
	scaffold.GroupNew:     "create the project files",
	scaffold.GroupDevelop: "editable install of the project",
	scaffold.GroupDocs:    "configure and build the documentation",
}

const (
	statusRun      = "run"
	statusUpToDate = "up-to-date"
)

// NewListCommand creates the list command
func NewListCommand(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks and whether they would run",
		Long: `List every task with its description. The status column and the
per-file subtasks are controlled by [tool.kindling.list] in pyproject.toml
or by the --status and --subtasks flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, cfg, err := global.load(cmd)
			if err != nil {
				return err
			}
			all, err := projectTasks(cfg, nil)
			if err != nil {
				return err
			}

			headers := []string{"Task", "Description"}
			if cfg.List.Status {
				headers = append(headers, "Status")
			}
			table := ui.NewTable(cmd.OutOrStdout(), headers, &ui.TableOptions{NoColor: cfg.NoColor})
			table.Highlight(statusRun, color.FgYellow)
			table.Highlight(statusUpToDate, color.FgHiBlack)

			if !cfg.List.Subtasks {
				for _, group := range groups(all) {
					table.AddRow(group, groupDocs[group])
				}
				table.Render()
				return nil
			}

			statuses, err := global.runner(cmd, root, cfg).Status(all)
			if err != nil {
				return err
			}
			for _, s := range statuses {
				row := []string{s.Name, s.Doc}
				if cfg.List.Status {
					row = append(row, statusLabel(s))
				}
				table.AddRow(row...)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().Bool("status", true, "Show whether each task is up to date")
	cmd.Flags().Bool("subtasks", true, "Show every subtask instead of groups")

	return cmd
}

func statusLabel(s tasks.Status) string {
	if s.UpToDate {
		return statusUpToDate
	}
	return statusRun
}

// groups returns the distinct group prefixes of tasks in order
func groups(all []tasks.Task) []string {
	var out []string
	seen := make(map[string]bool)
	for _, t := range all {
		group, _, _ := strings.Cut(t.Name, ":")
		if !seen[group] {
			seen[group] = true
			out = append(out, group)
		}
	}
	return out
}
