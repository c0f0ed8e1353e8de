package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/termsync/pkg/types"
)

type testCLI struct {
	configDir string
	dataDir   string
}

func newTestCLI(t *testing.T) *testCLI {
	t.Helper()
	t.Setenv("TERMSYNC_DATA_DIR", "")
	t.Setenv("TERMSYNC_HTTP_PORT", "")
	dir := t.TempDir()
	return &testCLI{
		configDir: filepath.Join(dir, "config"),
		dataDir:   filepath.Join(dir, "data"),
	}
}

func (c *testCLI) run(args ...string) (string, string, error) {
	var out, errOut bytes.Buffer
	root := newRootCmd(&out, &errOut)
	root.SetArgs(append([]string{"--config-dir", c.configDir, "--data-dir", c.dataDir}, args...))
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: exitSuccess},
		{name: "user error", err: userError{errors.New("bad")}, want: exitUserError},
		{name: "wrapped sentinel", err: fmt.Errorf("post 3: %w", types.ErrNotFound), want: exitUserError},
		{name: "term exists", err: &types.TermExistsError{Name: "x", TermID: 1}, want: exitUserError},
		{name: "unknown command", err: errors.New(`unknown command "x" for "termsync"`), want: exitUserError},
		{name: "required flag", err: errors.New(`required flag(s) "type" not set`), want: exitUserError},
		{name: "detached", err: types.ErrDetached, want: exitSysError},
		{name: "other", err: errors.New("disk full"), want: exitSysError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestParseLevel(t *testing.T) {
	lvl, err := parseLevel(" debug ")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)

	_, err = parseLevel("loud")
	assert.Error(t, err)
}

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"0", "-1", "x", ""} {
		_, err := parseID(bad)
		assert.ErrorIs(t, err, types.ErrInvalidID, bad)
		assert.Equal(t, exitUserError, exitCode(err), bad)
	}
}

func TestVersionCommand(t *testing.T) {
	c := newTestCLI(t)
	out, _, err := c.run("version")
	require.NoError(t, err)
	assert.Equal(t, "termsync "+Version+"\n", out)
}

func TestPostCommandsDriveTheMirror(t *testing.T) {
	c := newTestCLI(t)

	_, _, err := c.run("post-type", "register", "person", "--as-taxonomy", "team")
	require.NoError(t, err)

	out, _, err := c.run("--json", "post", "save", "--type", "person", "--title", "Jane Doe", "--status", "publish")
	require.NoError(t, err)
	post := decodeJSON[types.Post](t, out)
	id := strconv.FormatInt(post.ID, 10)

	out, _, err = c.run("mirror", "term", id, "team", "--field", "slug")
	require.NoError(t, err)
	assert.Equal(t, "jane-doe\n", out)

	out, _, err = c.run("mirror", "mappings")
	require.NoError(t, err)
	assert.Contains(t, out, "person")
	assert.Contains(t, out, "team")

	_, _, err = c.run("post", "trash", id)
	require.NoError(t, err)

	_, _, err = c.run("mirror", "term", id, "team")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestPostTagReplacesTerms(t *testing.T) {
	c := newTestCLI(t)

	_, _, err := c.run("taxonomy", "register", "topic")
	require.NoError(t, err)
	_, _, err = c.run("post-type", "register", "person", "--as-taxonomy", "team")
	require.NoError(t, err)

	out, _, err := c.run("--json", "post", "save", "--type", "person", "--title", "Tagged")
	require.NoError(t, err)
	post := decodeJSON[types.Post](t, out)
	id := strconv.FormatInt(post.ID, 10)

	// The linked term is not a tag.
	out, _, err = c.run("--json", "mirror", "terms", id, "team")
	require.NoError(t, err)
	assert.Empty(t, decodeJSON[[]*types.Term](t, out))

	out, _, err = c.run("--json", "mirror", "term", id, "team")
	require.NoError(t, err)
	term := decodeJSON[types.Term](t, out)

	out, _, err = c.run("--json", "post", "tag", id, "team", strconv.FormatInt(term.ID, 10))
	require.NoError(t, err)
	assert.Len(t, decodeJSON[[]*types.Term](t, out), 1)

	out, _, err = c.run("mirror", "terms", id, "team", "--field", "term_id")
	require.NoError(t, err)
	assert.Equal(t, strconv.FormatInt(term.ID, 10)+"\n", out)
}

func TestApplyManifest(t *testing.T) {
	c := newTestCLI(t)
	t.Setenv("TEAM_TAXONOMY", "team")

	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`taxonomies:
  - name: topic
post_types:
  - name: person
    as_taxonomy: ${TEAM_TAXONOMY}
`), 0o644))

	out, _, err := c.run("apply", path)
	require.NoError(t, err)
	assert.Contains(t, out, "registered")

	out, _, err = c.run("--json", "mirror", "mappings")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"person": "team"}, decodeJSON[map[string]string](t, out))

	_, _, err = c.run("apply", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestBlankBackendFallsBackToSQLite(t *testing.T) {
	c := newTestCLI(t)
	require.NoError(t, os.MkdirAll(c.configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(c.configDir, "config.yaml"), []byte("backend: \"\"\n"), 0o644))

	_, _, err := c.run("taxonomy", "register", "topic")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(c.dataDir, "taxonomies.jsonl"))
	assert.NoError(t, err)
}

func TestUserErrors(t *testing.T) {
	c := newTestCLI(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "no args", args: []string{"post", "get"}},
		{name: "bad id", args: []string{"post", "get", "abc"}},
		{name: "unknown flag", args: []string{"post", "list", "--color"}},
		{name: "unknown taxonomy", args: []string{"term", "list", "nope"}},
		{name: "bad log level", args: []string{"--log-level", "loud", "post", "list"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := c.run(tt.args...)
			require.Error(t, err)
			assert.Equal(t, exitUserError, exitCode(err))
		})
	}
}

func TestServerConfigFromViper(t *testing.T) {
	c := newTestCLI(t)
	t.Setenv("TERMSYNC_HTTP_PORT", "9191")

	a := &app{configDir: c.configDir, dataDir: c.dataDir, errOut: &bytes.Buffer{}}
	require.NoError(t, a.setup())

	cfg, err := a.serverConfig()
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.App.HTTP.Port)
	assert.Equal(t, c.dataDir, cfg.Data.Dir)
	assert.Equal(t, "sqlite", cfg.Data.Backend)
	assert.Equal(t, slog.LevelInfo, cfg.App.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func decodeJSON[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(s), &v), s)
	return v
}
