// Package e2etests drives a built jl binary against throwaway repositories.
// Tests are skipped unless JL_CMD points at the binary.
package e2etests

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
)

// Runner executes jl commands against a sandbox directory.
type Runner struct {
	JLCmd string // path to jl binary
}

// RunResult holds the output of a command execution.
type RunResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Run executes jl with args. JL_DIR is set to sandbox so the command finds
// the sandbox's .jira directory regardless of the working directory.
func (r *Runner) Run(sandbox string, args ...string) RunResult {
	cmd := exec.Command(r.JLCmd, args...)
	cmd.Env = append(os.Environ(), "JL_DIR="+sandbox, "JL_JSON=", "JL_DB=", "JL_LOG_LEVEL=")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	exitCode := 0
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
		}
	}

	return RunResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}
}

// RunJSON executes jl with --json appended.
func (r *Runner) RunJSON(sandbox string, args ...string) RunResult {
	return r.Run(sandbox, append(args, "--json")...)
}
