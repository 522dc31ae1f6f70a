package sync

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// GitDestination commits the export to a file in a local clone and pushes
// it. A changed export becomes one commit; an unchanged one is skipped.
type GitDestination struct {
	repo   string
	file   string
	branch string
}

// NewGitDestination targets file (relative to the clone) on branch. The
// branch is created locally when neither the clone nor origin has it.
func NewGitDestination(repo, file, branch string) *GitDestination {
	return &GitDestination{repo: repo, file: file, branch: branch}
}

func (d *GitDestination) String() string {
	return fmt.Sprintf("git:%s@%s:%s", d.repo, d.branch, d.file)
}

func (d *GitDestination) Write(ctx context.Context, exp *Export) error {
	if err := d.switchBranch(ctx); err != nil {
		return err
	}

	path := filepath.Join(d.repo, d.file)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	if err := os.WriteFile(path, exp.Data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", d.file, err)
	}

	if _, err := d.git(ctx, "add", "--", d.file); err != nil {
		return err
	}
	if _, err := d.git(ctx, "diff", "--cached", "--quiet"); err == nil {
		return nil
	}
	if _, err := d.git(ctx, "commit", "-m", commitMessage(exp)); err != nil {
		return err
	}
	_, err := d.git(ctx, "push", "origin", d.branch)
	return err
}

// switchBranch checks out the target branch and fast-forwards it from
// origin when origin has it.
func (d *GitDestination) switchBranch(ctx context.Context) error {
	if _, err := d.git(ctx, "checkout", d.branch); err != nil {
		if _, err := d.git(ctx, "checkout", "-b", d.branch); err != nil {
			return err
		}
	}
	if _, err := d.git(ctx, "ls-remote", "--exit-code", "--heads", "origin", d.branch); err != nil {
		return nil
	}
	_, err := d.git(ctx, "pull", "--ff-only", "origin", d.branch)
	return err
}

func commitMessage(exp *Export) string {
	return fmt.Sprintf("adcl: export %s@%s (%s)", exp.Project, exp.Version, exp.LoadID)
}

// git runs one git command in the clone. Failures carry git's own output.
func (d *GitDestination) git(ctx context.Context, args ...string) (string, error) {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = d.repo
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(out.String())
		if msg == "" {
			return "", fmt.Errorf("git %s: %w", args[0], err)
		}
		return "", fmt.Errorf("git %s: %w: %s", args[0], err, msg)
	}
	return out.String(), nil
}
