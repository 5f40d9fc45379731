package tasks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/kindling-dev/kindling/internal/model"
)

// Env is what an action sees while it runs
type Env struct {
	Root   string
	Out    io.Writer
	Logger *zap.Logger
}

// Action is one step of a task
type Action struct {
	Desc string
	Run  func(ctx context.Context, env *Env) error
}

// CreateFolder ensures dir exists under the project root
func CreateFolder(dir string) Action {
	return Action{
		Desc: "mkdir " + dir,
		Run: func(ctx context.Context, env *Env) error {
			full, err := model.Resolve(env.Root, dir)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(full, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
			return nil
		},
	}
}

// WriteModel constructs a model on demand and writes it to path
func WriteModel(path string, build func() model.Model) Action {
	return Action{
		Desc: "write " + path,
		Run: func(ctx context.Context, env *Env) error {
			written, err := model.Write(env.Root, path, build())
			if err != nil {
				return err
			}
			fmt.Fprintf(env.Out, "wrote %s\n", written)
			return nil
		},
	}
}

// WriteFile writes fixed content to path
func WriteFile(path, content string) Action {
	return Action{
		Desc: "write " + path,
		Run: func(ctx context.Context, env *Env) error {
			full, err := model.Resolve(env.Root, path)
			if err != nil {
				return err
			}
			if err := os.WriteFile(full, []byte(content), 0644); err != nil {
				return fmt.Errorf("failed to write file %s: %w", path, err)
			}
			fmt.Fprintf(env.Out, "wrote %s\n", full)
			return nil
		},
	}
}

// CopyFS copies src out of fsys to dst under the project root
func CopyFS(fsys fs.FS, src, dst string) Action {
	return Action{
		Desc: fmt.Sprintf("copy %s %s", src, dst),
		Run: func(ctx context.Context, env *Env) error {
			data, err := fs.ReadFile(fsys, src)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", src, err)
			}
			full, err := model.Resolve(env.Root, dst)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
				return fmt.Errorf("failed to create parent directory for %s: %w", dst, err)
			}
			if err := os.WriteFile(full, data, 0644); err != nil {
				return fmt.Errorf("failed to write file %s: %w", dst, err)
			}
			fmt.Fprintf(env.Out, "wrote %s\n", full)
			return nil
		},
	}
}

// Cmd runs an external command in the project root. Its output streams to
// the runner's writer; stderr is also kept for the error message.
func Cmd(name string, args ...string) Action {
	line := strings.Join(append([]string{name}, args...), " ")
	return Action{
		Desc: line,
		Run: func(ctx context.Context, env *Env) error {
			var stderr bytes.Buffer

			cmd := exec.CommandContext(ctx, name, args...)
			cmd.Dir = env.Root
			cmd.Stdout = env.Out
			cmd.Stderr = io.MultiWriter(env.Out, &stderr)

			env.Logger.Debug("exec", zap.String("cmd", line), zap.String("dir", env.Root))
			if err := cmd.Run(); err != nil {
				if msg := strings.TrimSpace(stderr.String()); msg != "" {
					return fmt.Errorf("%s: %w: %s", line, err, msg)
				}
				return fmt.Errorf("%s: %w", line, err)
			}
			return nil
		},
	}
}

// RemoveAll recursively removes path under the project root. A missing path
// is not an error.
func RemoveAll(path string) Action {
	return Action{
		Desc: "rm -r " + path,
		Run: func(ctx context.Context, env *Env) error {
			full, err := model.Resolve(env.Root, path)
			if err != nil {
				return err
			}
			if _, err := os.Stat(full); errors.Is(err, os.ErrNotExist) {
				return nil
			}
			if err := os.RemoveAll(full); err != nil {
				return fmt.Errorf("failed to remove %s: %w", path, err)
			}
			fmt.Fprintf(env.Out, "removed %s\n", path)
			return nil
		},
	}
}
