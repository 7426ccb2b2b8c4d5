package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/docflow/internal/paths"
	"github.com/mesh-intelligence/docflow/pkg/types"
)

type env struct {
	configDir string
	dataDir   string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	t.Setenv(paths.EnvConfigDir, "")
	t.Setenv(paths.EnvDataDir, "")
	base := t.TempDir()
	return &env{
		configDir: filepath.Join(base, "config"),
		dataDir:   filepath.Join(base, "data"),
	}
}

// exec runs docflow with the env's directories and returns stdout, stderr,
// and the exit code.
func (e *env) exec(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	full := append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...)
	return execRaw(t, full...)
}

func execRaw(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	code := run(context.Background(), root, args)
	return stdout.String(), stderr.String(), code
}

// mustExec runs a command that is expected to succeed.
func (e *env) mustExec(t *testing.T, args ...string) string {
	t.Helper()
	out, errOut, code := e.exec(t, args...)
	require.Equal(t, exitSuccess, code, "docflow %v: %s", args, errOut)
	return out
}

// seed registers three documents and links them doc-1 -> doc-2 -> doc-3.
func (e *env) seed(t *testing.T) (string, string) {
	t.Helper()
	e.mustExec(t, "init")
	e.mustExec(t, "doc", "put", "outgoing", "doc-1", "--number", "OUT-1", "--date", "2024-05-09", "--subject", "Request")
	e.mustExec(t, "doc", "put", "incoming", "doc-2", "--number", "IN-2", "--counterpart", "Acme")
	e.mustExec(t, "doc", "put", "outgoing", "doc-3")
	l1 := strings.TrimSpace(e.mustExec(t, "link", "add", "outgoing", "doc-1", "incoming", "doc-2", "--type", "reply"))
	l2 := strings.TrimSpace(e.mustExec(t, "link", "add", "incoming", "doc-2", "outgoing", "doc-3", "--type", "related", "--actor", "clerk-7"))
	return l1, l2
}

func TestVersion(t *testing.T) {
	out, _, code := execRaw(t, "version")
	assert.Equal(t, exitSuccess, code)
	assert.Contains(t, out, "docflow v")
	assert.Contains(t, out, "github.com/mesh-intelligence/docflow")
}

func TestInit(t *testing.T) {
	e := newEnv(t)
	out := e.mustExec(t, "init")
	assert.Contains(t, out, "docflow initialized")

	for _, f := range []string{"links.jsonl", "documents.jsonl"} {
		assert.FileExists(t, filepath.Join(e.dataDir, f))
	}
	cfgPath := filepath.Join(e.configDir, "config.yaml")
	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "backend: sqlite")
	assert.Contains(t, string(data), "max_flow_nodes: 1000")

	// A second init keeps the existing config.
	require.NoError(t, os.WriteFile(cfgPath, []byte("backend: sqlite\nsync_strategy: on_close\n"), 0o644))
	e.mustExec(t, "init")
	data, err = os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "on_close")
}

func TestInit_LocalDirectories(t *testing.T) {
	newEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	_, errOut, code := execRaw(t, "init")
	require.Equal(t, exitSuccess, code, errOut)
	assert.DirExists(t, filepath.Join(dir, paths.DefaultConfigDirName))
	assert.FileExists(t, filepath.Join(dir, paths.DefaultDataDirName, "links.jsonl"))

	// Later commands find the local directories without flags.
	_, errOut, code = execRaw(t, "doc", "put", "incoming", "a", "--number", "IN-1")
	require.Equal(t, exitSuccess, code, errOut)
	out, _, code := execRaw(t, "doc", "show", "incoming", "a")
	require.Equal(t, exitSuccess, code)
	assert.Contains(t, out, "IN-1")
}

func TestLinkLs(t *testing.T) {
	e := newEnv(t)
	l1, l2 := e.seed(t)

	out := e.mustExec(t, "link", "ls", "incoming", "doc-2")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "<- reply"), lines[0])
	assert.Contains(t, lines[0], "OUT-1")
	assert.Contains(t, lines[0], l1)
	assert.True(t, strings.HasPrefix(lines[1], "-> related"), lines[1])
	assert.Contains(t, lines[1], types.PlaceholderNumber)
	assert.Contains(t, lines[1], l2)

	out = e.mustExec(t, "--json", "link", "ls", "incoming", "doc-2")
	var views []types.LinkView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 2)
	assert.Equal(t, types.DirectionIncoming, views[0].Direction)
	assert.Equal(t, "clerk-7", views[1].CreatedBy)

	out = e.mustExec(t, "link", "ls", "outgoing", "nowhere")
	assert.Contains(t, out, "No links")
}

func TestLinkGetAndRm(t *testing.T) {
	e := newEnv(t)
	l1, _ := e.seed(t)

	out := e.mustExec(t, "--json", "link", "get", l1)
	var link types.Link
	require.NoError(t, json.Unmarshal([]byte(out), &link))
	assert.Equal(t, "cli", link.CreatedBy)
	assert.Equal(t, types.LinkTypeReply, link.LinkType)

	e.mustExec(t, "link", "rm", l1, "--actor", "admin")
	_, _, code := e.exec(t, "link", "get", l1)
	assert.Equal(t, exitUserError, code)
	_, _, code = e.exec(t, "link", "rm", l1)
	assert.Equal(t, exitUserError, code)
}

func TestFlow(t *testing.T) {
	e := newEnv(t)
	e.seed(t)

	out := e.mustExec(t, "--json", "flow", "outgoing", "doc-3")
	var view types.FlowView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	require.Len(t, view.Nodes, 3)
	layers := map[string]int{}
	for _, n := range view.Nodes {
		layers[n.ID] = n.Layer
	}
	assert.Equal(t, map[string]int{"doc-3": 0, "doc-2": -1, "doc-1": -2}, layers)
	assert.Len(t, view.Edges, 2)

	out = e.mustExec(t, "flow", "outgoing", "doc-1")
	assert.Contains(t, out, "3 documents, 2 links")
	assert.Contains(t, out, "* OUT-1")
	assert.Contains(t, out, "09.05.2024")
	assert.Contains(t, out, "outgoing/doc-1 -[reply]-> incoming/doc-2")
}

func TestFlow_NodeLimitFromConfig(t *testing.T) {
	e := newEnv(t)
	e.seed(t)
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, "config.yaml"),
		[]byte("backend: sqlite\nmax_flow_nodes: 2\n"), 0o644))

	_, errOut, code := e.exec(t, "flow", "outgoing", "doc-1")
	assert.Equal(t, exitUserError, code)
	assert.Contains(t, errOut, "node limit")
}

func TestDataPersistsAcrossInvocations(t *testing.T) {
	e := newEnv(t)
	e.seed(t)

	data, err := os.ReadFile(filepath.Join(e.dataDir, "links.jsonl"))
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))
}

func TestUserErrors(t *testing.T) {
	e := newEnv(t)
	e.seed(t)

	tests := []struct {
		name string
		args []string
	}{
		{"self link", []string{"link", "add", "incoming", "doc-2", "incoming", "doc-2"}},
		{"duplicate", []string{"link", "add", "outgoing", "doc-1", "incoming", "doc-2", "--type", "reply"}},
		{"missing document", []string{"link", "add", "outgoing", "doc-1", "incoming", "ghost"}},
		{"unknown kind", []string{"link", "add", "memo", "doc-1", "incoming", "doc-2"}},
		{"unknown type", []string{"link", "add", "outgoing", "doc-1", "incoming", "doc-2", "--type", "supersedes"}},
		{"bad date", []string{"doc", "put", "incoming", "x", "--date", "09.05.2024"}},
		{"missing args", []string{"flow", "incoming"}},
		{"unknown flag", []string{"flow", "--bogus", "incoming", "doc-2"}},
		{"unknown document", []string{"doc", "show", "incoming", "ghost"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errOut, code := e.exec(t, tt.args...)
			assert.Equal(t, exitUserError, code, errOut)
			assert.Contains(t, errOut, "Error:")
		})
	}
}

func TestInvalidConfigIsSystemError(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.MkdirAll(e.configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, "config.yaml"),
		[]byte("backend: sqlite\nsync_strategy: sometimes\n"), 0o644))

	_, errOut, code := e.exec(t, "link", "ls", "incoming", "a")
	assert.Equal(t, exitSysError, code)
	assert.Contains(t, errOut, "sync strategy")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, exitSuccess},
		{types.ErrSelfLink, exitUserError},
		{types.ErrLinkNotFound, exitUserError},
		{types.ErrDuplicateLink, exitUserError},
		{types.ErrFlowTooLarge, exitUserError},
		{errUsage, exitUserError},
		{errors.New("disk full"), exitSysError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, exitCode(tt.err))
	}
}

func TestSettingsDefaults(t *testing.T) {
	v, err := loadConfig(t.TempDir())
	require.NoError(t, err)
	s, err := settingsFrom(v)
	require.NoError(t, err)

	assert.Equal(t, types.BackendSQLite, s.Backend)
	assert.Equal(t, types.SyncImmediate, s.SyncStrategy)
	assert.Equal(t, 1000, s.MaxFlowNodes)
	assert.Equal(t, 350.0, s.Layout.ColumnWidth)
	assert.Equal(t, 150.0, s.Layout.RowHeight)
	assert.Equal(t, ":8080", s.ListenAddr)
}
