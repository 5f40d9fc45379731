package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kindling-dev/kindling/internal/cli/config"
	"github.com/kindling-dev/kindling/internal/cli/ui"
	"github.com/kindling-dev/kindling/internal/scaffold"
	"github.com/kindling-dev/kindling/internal/tasks"
)

type newOptions struct {
	name        string
	interactive bool
	requires    []string
}

// NewNewCommand creates the new command
func NewNewCommand(global *globalOptions) *cobra.Command {
	opts := &newOptions{}

	cmd := &cobra.Command{
		Use:   "new [project-name]",
		Short: "Create the files of a new Python project",
		Long: `Create the files of a new Python project in the project directory.

Every file is written only when it does not exist yet, so running new
again regenerates whatever was deleted and leaves the rest untouched.

Examples:
  kindling new
  kindling new my-lib
  kindling new -n my-lib --require requests --require click
  kindling -C ./my-lib new --interactive`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNew(cmd, args, global, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.name, "name", "n", scaffold.DefaultName, "Project name")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "Prompt for the project settings")
	cmd.Flags().StringSliceVar(&opts.requires, "require", nil, "Runtime requirement for setup.cfg (repeatable)")

	return cmd
}

func runNew(cmd *cobra.Command, args []string, global *globalOptions, opts *newOptions) error {
	root, err := filepath.Abs(global.dir)
	if err != nil {
		return err
	}
	cfg, err := config.Load(root, cmd.Flags())
	if err != nil {
		return &configError{err: err}
	}
	if global.noColor || cfg.NoColor {
		cfg.NoColor = true
		color.NoColor = true
	}

	name := cfg.Name
	if len(args) > 0 {
		name = args[0]
	}
	requires := opts.requires

	if opts.interactive && cfg.CI {
		fmt.Fprint(cmd.ErrOrStderr(), ui.Warning("Prompts are disabled in CI. Using flags and configuration instead.", nil, cfg.NoColor))
	}
	if opts.interactive && !cfg.CI {
		name, requires, err = promptProject(name, requires)
		if err != nil {
			return err
		}
	}

	if err := scaffold.ValidateProjectName(name); err != nil {
		return err
	}
	name = strings.TrimSpace(name)

	created, err := scaffold.New(name, scaffold.Options{Requires: requires})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	infoColor := color.New(color.FgCyan)
	infoColor.Fprintf(out, "Creating project: %s\n\n", name)

	r := global.runner(cmd, root, cfg)
	report, err := run(cmd.Context(), r, tasks.Prefix(scaffold.GroupNew, created))
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	if len(report.Executed) == 0 {
		ui.WriteSuccess(out, fmt.Sprintf("Project %s is up to date", name), cfg.NoColor)
		return nil
	}
	ui.WriteSuccess(out, fmt.Sprintf("Created project: %s", name), cfg.NoColor)

	promptColor := color.New(color.FgYellow)
	fmt.Fprintln(out)
	promptColor.Fprintln(out, "Get started:")
	fmt.Fprintln(out, "  kindling develop")
	fmt.Fprintln(out, "  kindling docs build")
	return nil
}

// promptProject asks for the project name and its runtime requirements
func promptProject(name string, requires []string) (string, []string, error) {
	questions := []*survey.Question{
		{
			Name: "name",
			Prompt: &survey.Input{
				Message: "Project name:",
				Default: name,
			},
			Validate: survey.ComposeValidators(survey.Required, func(ans interface{}) error {
				s, _ := ans.(string)
				return scaffold.ValidateProjectName(s)
			}),
		},
		{
			Name: "requires",
			Prompt: &survey.Input{
				Message: "Runtime requirements (comma separated):",
				Default: strings.Join(requires, ", "),
				Help:    "Written to options.install_requires in setup.cfg",
			},
		},
	}

	answers := struct {
		Name     string
		Requires string
	}{}
	if err := survey.Ask(questions, &answers); err != nil {
		return "", nil, err
	}

	return answers.Name, splitRequirements(answers.Requires), nil
}

func splitRequirements(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
