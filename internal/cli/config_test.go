package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Parses args against a fresh root command, reading the given config files.
func parse(t *testing.T, args []string, configFiles ...string) (*RootCmd, *kong.Context, error) {
	t.Helper()

	var root RootCmd
	parser, err := kong.New(&root, append(options(context.Background(), configFiles...), kong.Exit(func(int) {}))...)
	if err != nil {
		return nil, nil, err
	}
	kctx, err := parser.Parse(args)
	return &root, kctx, err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestStartRequiresSocket(t *testing.T) {
	t.Setenv("FORKD_SOCKET", "")
	os.Unsetenv("FORKD_SOCKET")

	_, _, err := parse(t, []string{"start"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--socket")
}

func TestStartFlags(t *testing.T) {
	root, kctx, err := parse(t, []string{"start", "-s", "/tmp/f.sock", "-w", "3", "--pid-file", "", "--metrics-address", "127.0.0.1:0"})
	require.NoError(t, err)

	assert.Equal(t, "start", kctx.Command())
	assert.Equal(t, "/tmp/f.sock", root.Start.Socket)
	assert.Equal(t, 3, root.Start.Workers)
	assert.Equal(t, "", root.Start.PIDFile)
	assert.Equal(t, "127.0.0.1:0", root.Start.MetricsAddress)
}

func TestStartDefaults(t *testing.T) {
	root, _, err := parse(t, []string{"start", "--socket", "/tmp/f.sock"})
	require.NoError(t, err)

	assert.Equal(t, 1, root.Start.Workers)
	assert.True(t, strings.HasSuffix(root.Start.PIDFile, "forkd.pid"))
	assert.Empty(t, root.Start.MetricsAddress)
}

func TestSocketFromEnvironment(t *testing.T) {
	t.Setenv("FORKD_SOCKET", "/tmp/env.sock")

	root, _, err := parse(t, []string{"start"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env.sock", root.Start.Socket)
}

func TestConfigFile(t *testing.T) {
	path := writeConfig(t, "socket: /tmp/cfg.sock\nworkers: 4\npid_file: /tmp/cfg.pid\nmetrics-address: 127.0.0.1:9464\n")

	root, _, err := parse(t, []string{"start"}, path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/cfg.sock", root.Start.Socket)
	assert.Equal(t, 4, root.Start.Workers)
	assert.Equal(t, "/tmp/cfg.pid", root.Start.PIDFile)
	assert.Equal(t, "127.0.0.1:9464", root.Start.MetricsAddress)
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	path := writeConfig(t, "socket: /tmp/cfg.sock\nworkers: 4\n")

	root, _, err := parse(t, []string{"start", "-s", "/tmp/flag.sock"}, path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/flag.sock", root.Start.Socket)
	assert.Equal(t, 4, root.Start.Workers)
}

func TestMissingConfigFileIsIgnored(t *testing.T) {
	root, _, err := parse(t, []string{"start", "-s", "/tmp/f.sock"}, filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/f.sock", root.Start.Socket)
}

func TestEmptyConfigFile(t *testing.T) {
	path := writeConfig(t, "")

	root, _, err := parse(t, []string{"start", "-s", "/tmp/f.sock"}, path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/f.sock", root.Start.Socket)
}

func TestInvalidConfigFile(t *testing.T) {
	path := writeConfig(t, "socket: [unterminated\n")

	_, _, err := parse(t, []string{"start", "-s", "/tmp/f.sock"}, path)
	require.Error(t, err)
}

func TestNestedConfigValueIsRejected(t *testing.T) {
	path := writeConfig(t, "socket:\n  path: /tmp/cfg.sock\n")

	_, _, err := parse(t, []string{"start"}, path)
	require.Error(t, err)
}

func TestConfigKeys(t *testing.T) {
	assert.Equal(t, []string{"socket"}, configKeys("socket"))
	assert.Equal(t, []string{"pid-file", "pid_file"}, configKeys("pid-file"))
}

func TestRunArguments(t *testing.T) {
	root, kctx, err := parse(t, []string{"run", "-s", "/tmp/f.sock", "-C", "/tmp", "ls", "-l"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(kctx.Command(), "run"))
	assert.Equal(t, "/tmp", root.Run.Dir)
	assert.Equal(t, []string{"ls", "-l"}, root.Run.Command)
}
