package gitsvc

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/pkg/errors"

	"github.com/ianchen-tw/invisible-hand/core/patchwork"
)

// Client shells out to the git binary. The toolkit deliberately does not
// reimplement git; a cached system git is a documented prerequisite.
type Client struct{}

var _ patchwork.GitClient = (*Client)(nil)

func NewClient() (*Client, error) {
	if _, err := exec.LookPath("git"); err != nil {
		return nil, errors.Wrap(err, "git binary not found in PATH")
	}
	return &Client{}, nil
}

func (c *Client) run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", errors.Wrapf(err, "git %s: %s", strings.Join(args, " "), stderr.String())
	}
	return out.String(), nil
}

func (c *Client) Clone(ctx context.Context, url, parentDir, name string, shallow bool) error {
	args := []string{"clone"}
	if shallow {
		args = append(args, "--depth=1")
	}
	args = append(args, url, name)
	_, err := c.run(ctx, parentDir, args...)
	return err
}

func (c *Client) Checkout(ctx context.Context, repoDir, branch string, create bool) error {
	args := []string{"checkout"}
	if create {
		args = append(args, "-b")
	}
	args = append(args, branch)
	_, err := c.run(ctx, repoDir, args...)
	return err
}

// DiffNameStatus lists the files the patch branch touches relative to base.
// Renames are reported as a removal of the old path plus a change of the new.
func (c *Client) DiffNameStatus(ctx context.Context, repoDir, base, head string) ([]patchwork.Change, error) {
	out, err := c.run(ctx, repoDir, "diff", "--name-status", "--no-renames", base, head)
	if err != nil {
		return nil, err
	}
	var changes []patchwork.Change
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}
		changes = append(changes, patchwork.Change{
			Path:    parts[len(parts)-1],
			Removed: strings.HasPrefix(parts[0], "D"),
		})
	}
	return changes, sc.Err()
}

func (c *Client) AddAll(ctx context.Context, repoDir string) error {
	_, err := c.run(ctx, repoDir, "add", ".")
	return err
}

func (c *Client) HasStagedChanges(ctx context.Context, repoDir string) (bool, error) {
	// --quiet exits 1 when the index differs from HEAD
	cmd := exec.CommandContext(ctx, "git", "diff", "--cached", "--quiet")
	cmd.Dir = repoDir
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
			return true, nil
		}
		return false, errors.Wrap(err, "git diff --cached --quiet")
	}
	return false, nil
}

func (c *Client) Commit(ctx context.Context, repoDir, message string) error {
	_, err := c.run(ctx, repoDir, "commit", "-m", message)
	return err
}

func (c *Client) Push(ctx context.Context, repoDir, branch string) error {
	_, err := c.run(ctx, repoDir, "push", "-u", "origin", branch)
	return err
}
