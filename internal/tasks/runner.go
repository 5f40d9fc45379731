package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"go.uber.org/zap"
)

// Report summarises one Run or Clean
type Report struct {
	Executed []string
	Skipped  []string
	Failed   []string
}

// Status is the up-to-date view of a task without running it
type Status struct {
	Name     string
	Doc      string
	UpToDate bool
	Reason   string
}

// Runner evaluates tasks sequentially against one project root
type Runner struct {
	Root   string
	Out    io.Writer
	Logger *zap.Logger
	// ContinueOnError keeps running later tasks after a failure
	ContinueOnError bool
	NoColor         bool
	// Verbosity below 2 hides action output; task lines are always shown
	Verbosity int
}

// NewRunner creates a runner for the project at root
func NewRunner(root string, out io.Writer, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{Root: root, Out: out, Logger: logger, Verbosity: 2}
}

// Run executes the selected tasks in order. Tasks that are up to date are
// reported and skipped.
func (r *Runner) Run(ctx context.Context, tasks []Task, names ...string) (*Report, error) {
	selected, err := Select(tasks, names...)
	if err != nil {
		return nil, err
	}

	state, err := LoadState(r.Root)
	if err != nil {
		return nil, err
	}

	runColor := r.color(color.FgGreen)
	skipColor := r.color(color.FgHiBlack)
	env := r.env()
	report := &Report{}
	var errs []error

	for i := range selected {
		task := &selected[i]
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		upToDate, digests, reason, err := r.check(task, state)
		if err != nil {
			r.Logger.Debug("check failed", zap.String("task", task.Name), zap.Error(err))
			report.Failed = append(report.Failed, task.Name)
			errs = append(errs, fmt.Errorf("task %s: %w", task.Name, err))
			if !r.ContinueOnError {
				break
			}
			continue
		}

		if upToDate {
			r.Logger.Debug("skip", zap.String("task", task.Name))
			skipColor.Fprintf(r.Out, "-- %s\n", task.Name)
			report.Skipped = append(report.Skipped, task.Name)
			continue
		}

		r.Logger.Debug("run", zap.String("task", task.Name), zap.String("reason", reason))
		runColor.Fprintf(r.Out, ".  %s\n", task.Name)

		if err := r.execute(ctx, env, task.Actions); err != nil {
			report.Failed = append(report.Failed, task.Name)
			errs = append(errs, fmt.Errorf("task %s: %w", task.Name, err))
			if !r.ContinueOnError {
				break
			}
			continue
		}

		if digests != nil {
			state.Record(task.Name, digests)
		}
		report.Executed = append(report.Executed, task.Name)
	}

	if state.Changed() {
		if err := state.Save(r.Root); err != nil {
			errs = append(errs, err)
		}
	}

	return report, errors.Join(errs...)
}

// Clean undoes the selected tasks in reverse order: clean actions first,
// then target removal for tasks marked Clean. Missing targets are ignored.
func (r *Runner) Clean(ctx context.Context, tasks []Task, names ...string) (*Report, error) {
	selected, err := Select(tasks, names...)
	if err != nil {
		return nil, err
	}

	state, err := LoadState(r.Root)
	if err != nil {
		return nil, err
	}

	env := r.env()
	report := &Report{}
	var errs []error

	for i := len(selected) - 1; i >= 0; i-- {
		task := &selected[i]
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		if len(task.CleanActions) == 0 && !task.Clean {
			report.Skipped = append(report.Skipped, task.Name)
			continue
		}

		err := r.execute(ctx, env, task.CleanActions)
		if err == nil && task.Clean {
			err = r.removeTargets(task)
		}
		if err != nil {
			report.Failed = append(report.Failed, task.Name)
			errs = append(errs, fmt.Errorf("clean %s: %w", task.Name, err))
			if !r.ContinueOnError {
				break
			}
			continue
		}

		state.Forget(task.Name)
		report.Executed = append(report.Executed, task.Name)
	}

	if state.Changed() {
		if err := state.Save(r.Root); err != nil {
			errs = append(errs, err)
		}
	}

	return report, errors.Join(errs...)
}

// Status reports whether each task would be skipped by Run
func (r *Runner) Status(tasks []Task) ([]Status, error) {
	state, err := LoadState(r.Root)
	if err != nil {
		return nil, err
	}

	statuses := make([]Status, 0, len(tasks))
	for i := range tasks {
		task := &tasks[i]
		upToDate, _, reason, err := r.check(task, state)
		if err != nil {
			reason = err.Error()
		}
		statuses = append(statuses, Status{
			Name:     task.Name,
			Doc:      task.Doc,
			UpToDate: upToDate,
			Reason:   reason,
		})
	}
	return statuses, nil
}

// check decides whether task can be skipped. It returns the current
// dependency digests so they can be recorded after a successful run.
func (r *Runner) check(task *Task, state *State) (bool, map[string]string, string, error) {
	if len(task.Uptodate) == 0 && len(task.FileDeps) == 0 {
		return false, nil, "no up-to-date checks", nil
	}

	for _, pred := range task.Uptodate {
		if !pred(r.Root) {
			return false, nil, "up-to-date check failed", nil
		}
	}

	if len(task.FileDeps) == 0 {
		return true, nil, "", nil
	}

	digests, err := digestFiles(r.Root, task.FileDeps)
	if err != nil {
		return false, nil, "", err
	}

	if !state.Matches(task.Name, digests) {
		return false, digests, "dependencies changed", nil
	}

	for _, target := range task.Targets {
		if _, err := os.Stat(filepath.Join(r.Root, target)); err != nil {
			return false, digests, "target missing: " + target, nil
		}
	}

	return true, digests, "", nil
}

func (r *Runner) execute(ctx context.Context, env *Env, actions []Action) error {
	for _, action := range actions {
		r.Logger.Debug("action", zap.String("desc", action.Desc))
		if err := action.Run(ctx, env); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) removeTargets(task *Task) error {
	for _, target := range task.Targets {
		full := filepath.Join(r.Root, target)
		info, err := os.Stat(full)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return err
		}
		// Directories are only removed when empty
		if info.IsDir() {
			if err := os.Remove(full); err != nil {
				r.Logger.Debug("keep non-empty directory", zap.String("path", target))
			}
			continue
		}
		if err := os.Remove(full); err != nil {
			return fmt.Errorf("failed to remove %s: %w", target, err)
		}
		fmt.Fprintf(r.Out, "%s - removing file '%s'\n", task.Name, target)
	}
	return nil
}

func (r *Runner) env() *Env {
	out := r.Out
	if r.Verbosity < 2 {
		out = io.Discard
	}
	return &Env{Root: r.Root, Out: out, Logger: r.Logger}
}

func (r *Runner) color(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if r.NoColor {
		c.DisableColor()
	}
	return c
}
