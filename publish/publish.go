// Package publish commits a freshly generated report to the git repository it
// lives in and optionally pushes it, replacing the manual git steps printed by
// generate.
package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// ErrNoPaths is returned when there is nothing to stage.
var ErrNoPaths = errors.New("no paths to publish")

// Config holds the settings for one publish run.
type Config struct {
	Dir     string   // working directory inside the repository; "" means the current one
	Paths   []string // files or directories to stage, relative to Dir
	Message string   // commit message
	Push    bool     // push HEAD after committing
	Remote  string   // remote to push to; defaults to "origin"

	// Output receives git's output. Nil discards it.
	Output io.Writer
}

// Result reports what Run did.
type Result struct {
	Committed bool // false when the staged paths had no changes
	Pushed    bool
}

// CommitMessage returns the conventional commit message for a report date label.
func CommitMessage(dateLabel string) string {
	return "Update trends for " + dateLabel
}

// Run stages the paths, commits them and pushes when asked. A run whose paths
// have no changes commits and pushes nothing.
func Run(ctx context.Context, cfg Config) (Result, error) {
	var res Result
	if len(cfg.Paths) == 0 {
		return res, ErrNoPaths
	}
	if cfg.Remote == "" {
		cfg.Remote = "origin"
	}
	if cfg.Output == nil {
		cfg.Output = io.Discard
	}

	if _, err := gitRoot(ctx, cfg.Dir); err != nil {
		return res, fmt.Errorf("not a git repository: %w", err)
	}

	stage := append([]string{"add", "--"}, cfg.Paths...)
	if err := git(ctx, cfg, stage...); err != nil {
		return res, fmt.Errorf("stage files: %w", err)
	}

	changed, err := hasStagedChanges(ctx, cfg.Dir)
	if err != nil {
		return res, fmt.Errorf("check staged changes: %w", err)
	}
	if !changed {
		return res, nil
	}

	commit := append([]string{"commit", "-m", cfg.Message, "--"}, cfg.Paths...)
	if err := git(ctx, cfg, commit...); err != nil {
		return res, fmt.Errorf("commit: %w", err)
	}
	res.Committed = true

	if !cfg.Push {
		return res, nil
	}
	if err := git(ctx, cfg, "push", cfg.Remote, "HEAD"); err != nil {
		return res, fmt.Errorf("push: %w", err)
	}
	res.Pushed = true
	return res, nil
}

// gitRoot returns the top-level directory of the repository containing dir.
func gitRoot(ctx context.Context, dir string) (string, error) {
	return gitOutput(ctx, dir, "rev-parse", "--show-toplevel")
}

// hasStagedChanges reports whether the index differs from HEAD. A repository
// without commits counts as changed.
func hasStagedChanges(ctx context.Context, dir string) (bool, error) {
	if _, err := gitOutput(ctx, dir, "rev-parse", "--verify", "HEAD"); err != nil {
		return true, nil
	}
	cmd := exec.CommandContext(ctx, "git", "diff", "--cached", "--quiet")
	cmd.Dir = dir
	err := cmd.Run()
	if err == nil {
		return false, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return true, nil
	}
	return false, err
}

// git runs a git command in cfg.Dir, copying its output to cfg.Output.
func git(ctx context.Context, cfg Config, args ...string) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = cfg.Dir
	cmd.Stdout = cfg.Output
	cmd.Stderr = io.MultiWriter(cfg.Output, &stderr)
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("git %s: %w: %s", args[0], err, msg)
		}
		return fmt.Errorf("git %s: %w", args[0], err)
	}
	return nil
}

// gitOutput runs a git command and returns its trimmed stdout.
func gitOutput(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
