//go:build integration

package release

import (
	"context"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var gitIdentity = []string{
	"GIT_AUTHOR_NAME=release-test",
	"GIT_AUTHOR_EMAIL=release-test@example.com",
	"GIT_COMMITTER_NAME=release-test",
	"GIT_COMMITTER_EMAIL=release-test@example.com",
}

func gitCmd(t *testing.T, dir string, args ...string) {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(cmd.Environ(), gitIdentity...)

	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
}

func TestIntegration_Release_PushesToBareRemote(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	root := t.TempDir()
	remote := filepath.Join(root, "remote.git")
	work := filepath.Join(root, "work")

	gitCmd(t, root, "init", "--bare", remote)
	gitCmd(t, root, "init", work)
	gitCmd(t, work, "commit", "--allow-empty", "-m", "initial")
	gitCmd(t, work, "remote", "add", "origin", remote)

	tagger := &Tagger{Git: &ExecGit{Dir: work, Env: gitIdentity}}

	res, err := tagger.Release(context.Background(), "1.2.3")
	require.NoError(t, err)

	assert.Equal(t, "v1.2.3", res.Tag)
	assert.Equal(t, []string{"v1.2.3"}, res.Tags)

	remoteTags, err := (&ExecGit{Dir: remote}).ListTags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"v1.2.3"}, remoteTags)

	_, err = tagger.Release(context.Background(), "1.2.3")
	assert.Error(t, err, "existing tag is not overwritten")
}
