package assembly

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// Runner runs an external tool and returns its combined output
type Runner interface {
	Run(name string, args ...string) ([]byte, error)
}

// ExecRunner runs tools with os/exec
type ExecRunner struct{}

func (ExecRunner) Run(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).CombinedOutput()
}

// Step is one toolchain invocation
type Step struct {
	Name string   // short description used in errors
	Tool string   // executable
	Args []string // arguments
}

// Toolchain writes source into a scratch directory as file name, runs the steps
// returned by plan, and copies the produced executable to opts.Output
func Toolchain(opts Options, source []byte, name string, plan func(src, exe string) []Step) error {
	if opts.Output == "" {
		return errors.New("no output path for build")
	}

	tempDir, err := os.MkdirTemp(opts.WorkDir, "duckc_build_")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	src := filepath.Join(tempDir, name)
	if err := os.WriteFile(src, source, 0o644); err != nil {
		return fmt.Errorf("failed to write source file: %w", err)
	}

	exe := filepath.Join(tempDir, "program")
	runner := opts.Tool()
	for _, step := range plan(src, exe) {
		log.Debug("Running toolchain", "step", step.Name, "tool", step.Tool, "args", step.Args)
		if output, err := runner.Run(step.Tool, step.Args...); err != nil {
			return fmt.Errorf("%s failed: %w\nOutput: %s", step.Name, err, output)
		}
	}

	binary, err := os.ReadFile(exe)
	if err != nil {
		return fmt.Errorf("toolchain produced no executable: %w", err)
	}

	return WriteFile(opts.Output, binary, 0o755)
}

// WriteFile writes data to a temporary file next to path and renames it into
// place, so path either keeps its old content or receives all of data
func WriteFile(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	cleanup := func() { os.Remove(tmp.Name()) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		cleanup()
		return fmt.Errorf("failed to set mode on %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		cleanup()
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}

	return nil
}
