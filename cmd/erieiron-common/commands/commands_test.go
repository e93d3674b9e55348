//go:build unit

package commands

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/erieironllc/erieiron-public-common/common/backoff"
	"github.com/erieironllc/erieiron-public-common/common/llm"
	"github.com/erieironllc/erieiron-public-common/common/log"
	"github.com/erieironllc/erieiron-public-common/common/secrets"
	"github.com/erieironllc/erieiron-public-common/internal/release"
	"github.com/erieironllc/erieiron-public-common/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingGit struct {
	calls []string
}

func (g *recordingGit) CreateTag(_ context.Context, name string) error {
	g.calls = append(g.calls, "tag "+name)
	return nil
}

func (g *recordingGit) PushTag(_ context.Context, remote, name string) error {
	g.calls = append(g.calls, "push "+remote+" "+name)
	return nil
}

func (g *recordingGit) ListTags(context.Context) ([]string, error) {
	g.calls = append(g.calls, "list")
	return []string{"v0.9.0", "v1.0.0"}, nil
}

type staticFetcher struct {
	arn    string
	secret string
}

func (f staticFetcher) Fetch(context.Context, string, string) (secrets.Value, error) {
	return secrets.Value{ARN: f.arn, SecretString: f.secret}, nil
}

// patchDeps swaps git, logger and secrets for fakes. Tests using it must not
// call t.Parallel().
func patchDeps(t *testing.T, f secrets.Fetcher) *recordingGit {
	t.Helper()

	git := &recordingGit{}

	origGit, origLogger, origCache := newGit, newLogger, secretCache
	newGit = func() release.Git { return git }
	newLogger = func(string) (log.Logger, error) { return log.NewNop(), nil }

	if f != nil {
		cache := secrets.NewCache(f, secrets.WithRetry(backoff.Policy{Attempts: 1}), secrets.WithBreaker(nil))
		secretCache = func() *secrets.Cache { return cache }
	}

	t.Cleanup(func() {
		newGit, newLogger, secretCache = origGit, origLogger, origCache
	})

	return git
}

// withRealLogger restores the zap logger after patchDeps.
func withRealLogger(t *testing.T) {
	t.Helper()

	newLogger = newZapLogger
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	root := NewRootCmd()

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := run(context.Background(), root)

	return stdout.String(), stderr.String(), err
}

func writeMetadata(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "pyproject.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestReleaseTagPushesVersionTag(t *testing.T) {
	git := patchDeps(t, nil)
	path := writeMetadata(t, "[project]\nname = \"erieiron\"\nversion = \"1.0.0\"\n")

	stdout, stderr, err := execute(t, "release-tag", "--file", path)

	require.NoError(t, err)
	assert.Empty(t, stderr)
	assert.Equal(t, []string{"tag v1.0.0", "push origin v1.0.0", "list"}, git.calls)
	assert.Contains(t, stdout, "Tagged v1.0.0 and pushed to origin")
	assert.Contains(t, stdout, "v0.9.0\nv1.0.0\n")
}

func TestReleaseTagUnknownEnvironmentFallsBack(t *testing.T) {
	git := patchDeps(t, nil)
	withRealLogger(t)
	t.Setenv(EnvEnvironment, "prod")
	t.Setenv(EnvLogJSON, "true")

	path := writeMetadata(t, "[project]\nversion = \"1.0.0\"\n")

	stdout, stderr, err := execute(t, "release-tag", "--file", path, "--log-level", "error")

	require.NoError(t, err)
	assert.NotContains(t, stderr, "Error:")
	assert.Equal(t, []string{"tag v1.0.0", "push origin v1.0.0", "list"}, git.calls)
	assert.Contains(t, stdout, "Tagged v1.0.0")
}

func TestNewZapLogger(t *testing.T) {
	t.Setenv(EnvEnvironment, "moon")

	logger, err := newZapLogger("warn")
	require.NoError(t, err)
	assert.True(t, logger.Enabled(log.LevelWarn))
	assert.False(t, logger.Enabled(log.LevelInfo))

	_, err = newZapLogger("loud")
	assert.Error(t, err, "an explicit bad level still fails")
}

func TestReleaseTagMissingVersion(t *testing.T) {
	git := patchDeps(t, nil)
	path := writeMetadata(t, "[project]\nname = \"erieiron\"\n")

	_, stderr, err := execute(t, "release-tag", "--file", path)

	require.ErrorIs(t, err, release.ErrVersionNotFound)
	assert.Contains(t, stderr, "Error: version not found")
	assert.Empty(t, git.calls)
}

func TestReleaseTagDryRun(t *testing.T) {
	git := patchDeps(t, nil)
	path := writeMetadata(t, "[tool.poetry]\nversion = \"2.1.0\"\n")

	stdout, _, err := execute(t, "release-tag", "--file", path, "--dry-run")

	require.NoError(t, err)
	assert.Equal(t, "v2.1.0\n", stdout)
	assert.Empty(t, git.calls)
}

func TestReleaseTagCustomRemote(t *testing.T) {
	git := patchDeps(t, nil)
	path := writeMetadata(t, "version = \"3.0.0\"\n")

	_, _, err := execute(t, "release-tag", "--file", path, "--remote", "upstream")

	require.NoError(t, err)
	assert.Contains(t, git.calls, "push upstream v3.0.0")
}

func TestEnvFileIsLoaded(t *testing.T) {
	patchDeps(t, nil)

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("AWS_REGION=eu-west-1\n"), 0o600))
	t.Setenv("AWS_REGION", "")
	require.NoError(t, os.Unsetenv("AWS_REGION"))

	_, _, err := execute(t, "--env-file", envFile, "version")

	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", os.Getenv("AWS_REGION"))
}

func TestEnvFileMissing(t *testing.T) {
	patchDeps(t, nil)

	_, stderr, err := execute(t, "--env-file", filepath.Join(t.TempDir(), "nope.env"), "version")

	require.Error(t, err)
	assert.Contains(t, stderr, "Error: load env file")
}

func TestSecretARN(t *testing.T) {
	patchDeps(t, staticFetcher{arn: "arn:aws:secretsmanager:us-east-1:1:secret:app-AbCd", secret: `{"k": "v"}`})

	stdout, _, err := execute(t, "secret-arn", "app", "--region", "us-east-1")

	require.NoError(t, err)
	assert.Equal(t, "arn:aws:secretsmanager:us-east-1:1:secret:app-AbCd\n", stdout)
}

func TestSecretARNRequiresID(t *testing.T) {
	patchDeps(t, nil)

	_, stderr, err := execute(t, "secret-arn")

	require.Error(t, err)
	assert.Contains(t, stderr, "Error:")
}

func TestDBCheckMissingSecretEnv(t *testing.T) {
	patchDeps(t, staticFetcher{secret: `{"username": "u", "password": "p"}`})
	t.Setenv("ERIEIRON_DB_HOST", "db.example.com")
	t.Setenv("ERIEIRON_DB_NAME", "appdb")
	t.Setenv("RDS_SECRET_ARN", "")

	_, stderr, err := execute(t, "db-check")

	require.ErrorIs(t, err, secrets.ErrMissingEnv)
	assert.Contains(t, stderr, "RDS_SECRET_ARN")
}

func TestChat(t *testing.T) {
	patchDeps(t, nil)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "resp_1", "object": "response", "model": "gpt-5-mini",
			"output": [{"type": "message", "id": "msg_1", "role": "assistant", "status": "completed",
				"content": [{"type": "output_text", "text": "Hi.", "annotations": []}]}]}`))
	}))
	defer server.Close()

	original := newLLMClient
	newLLMClient = func(*rootOptions, string) *llm.Client {
		return llm.New(llm.WithBaseURL(server.URL), llm.WithAPIKey("sk-test"), llm.WithMaxRetries(0))
	}
	t.Cleanup(func() { newLLMClient = original })

	stdout, _, err := execute(t, "chat", "--intelligence", "low", "Say hi")

	require.NoError(t, err)
	assert.Equal(t, "Hi.\n", stdout)
}

func TestChatRejectsUnknownTier(t *testing.T) {
	patchDeps(t, nil)

	_, _, err := execute(t, "chat", "--intelligence", "genius", "Say hi")

	assert.ErrorIs(t, err, llm.ErrInvalidIntelligence)
}

func TestVersion(t *testing.T) {
	patchDeps(t, nil)

	stdout, _, err := execute(t, "version")

	require.NoError(t, err)
	assert.Equal(t, "erieiron-common "+version.Version+"\n", stdout)
}
