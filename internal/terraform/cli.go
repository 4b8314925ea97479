package terraform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"plandrift/internal/config"
	"plandrift/pkg/logging"
)

// Exit codes of `terraform plan -detailed-exitcode`
const (
	exitNoChanges = 0
	exitChanges   = 2
)

// maxStderrInError bounds how much stderr is quoted in a failure.
const maxStderrInError = 512

// CommandRunner runs name with args in dir and reports stdout, stderr and the
// process exit code. err is only set when the process could not be run.
type CommandRunner func(ctx context.Context, dir, name string, args ...string) (stdout, stderr []byte, exitCode int, err error)

// CLISource runs `terraform plan` in the target directory
type CLISource struct {
	binary string
	run    CommandRunner
	logger logging.Logger
}

// NewCLISource creates a CLISource using the terraform binary on PATH
func NewCLISource(logger logging.Logger) *CLISource {
	return NewCLISourceWithRunner("terraform", execRunner, logger)
}

// NewCLISourceWithRunner creates a CLISource with a custom binary and runner
func NewCLISourceWithRunner(binary string, run CommandRunner, logger logging.Logger) *CLISource {
	return &CLISource{
		binary: binary,
		run:    run,
		logger: logger,
	}
}

// FetchPlan runs the plan and returns its stdout. Exit code 2 means changes
// are present and is not a failure.
func (s *CLISource) FetchPlan(ctx context.Context, target *config.Target) (string, error) {
	args := append([]string{"plan", "-input=false", "-lock=false", "-detailed-exitcode"}, target.Args...)

	s.logger.Debug("Running %s %s in %s", s.binary, strings.Join(args, " "), target.Dir)
	stdout, stderr, code, err := s.run(ctx, target.Dir, s.binary, args...)
	if err != nil {
		return "", fmt.Errorf("failed to run %s for target %s: %w", s.binary, target.Name, err)
	}

	switch code {
	case exitNoChanges, exitChanges:
		return string(stdout), nil
	default:
		return "", fmt.Errorf("%s plan for target %s exited with code %d: %s",
			s.binary, target.Name, code, tail(string(stderr), maxStderrInError))
	}
}

func execRunner(ctx context.Context, dir, name string, args ...string) ([]byte, []byte, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "TF_IN_AUTOMATION=1")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stdout.Bytes(), stderr.Bytes(), exitErr.ExitCode(), nil
	}
	if err != nil {
		return nil, nil, -1, err
	}
	return stdout.Bytes(), stderr.Bytes(), 0, nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
