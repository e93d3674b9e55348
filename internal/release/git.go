package release

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// execCommandContext is swapped in tests.
var execCommandContext = exec.CommandContext

// ExecGit runs the git binary.
type ExecGit struct {
	// Dir is the working tree. Empty means the current directory.
	Dir string
	// Env is appended to the process environment.
	Env []string
}

var _ Git = (*ExecGit)(nil)

// CreateTag runs git tag <name>.
func (g *ExecGit) CreateTag(ctx context.Context, name string) error {
	_, err := g.run(ctx, "tag", name)
	return err
}

// PushTag runs git push <remote> <name>.
func (g *ExecGit) PushTag(ctx context.Context, remote, name string) error {
	_, err := g.run(ctx, "push", remote, "refs/tags/"+name)
	return err
}

// ListTags runs git tag and returns one entry per line.
func (g *ExecGit) ListTags(ctx context.Context) ([]string, error) {
	out, err := g.run(ctx, "tag")
	if err != nil {
		return nil, err
	}

	var tags []string

	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			tags = append(tags, line)
		}
	}

	return tags, nil
}

func (g *ExecGit) run(ctx context.Context, args ...string) (string, error) {
	cmd := execCommandContext(ctx, "git", args...)
	cmd.Dir = g.Dir

	if len(g.Env) > 0 {
		cmd.Env = append(cmd.Environ(), g.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("git %s: %w: %s", args[0], err, msg)
		}

		return "", fmt.Errorf("git %s: %w", args[0], err)
	}

	return stdout.String(), nil
}
