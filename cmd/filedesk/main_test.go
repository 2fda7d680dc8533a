package main

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerCmd_RejectsBadPort(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"server", "not-a-port"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid port")
}

func TestServerCmd_TooManyArgs(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"server", "3000", "extra"})

	assert.Error(t, cmd.Execute())
}

// isolate keeps the user's config file and FILEDESK_* variables out of a test.
func isolate(t *testing.T) {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	t.Setenv("FILEDESK_DIR", "")
	t.Setenv("FILEDESK_PORT", "")
	t.Setenv("FILEDESK_LOG_LEVEL", "")
}

func TestServerCmd_RunsOnRequestedPort(t *testing.T) {
	isolate(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--dir", filepath.Join(t.TempDir(), "store"), "--no-watch", "server", "0"})

	assert.NoError(t, cmd.ExecuteContext(ctx))
}

func TestServerCmd_PortReachesListener(t *testing.T) {
	isolate(t)

	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	port := ln.Addr().(*net.TCPAddr).Port

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--dir", filepath.Join(t.TempDir(), "store"), "--no-watch", "server", strconv.Itoa(port)})

	err = cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), fmt.Sprintf("listen on :%d", port))
}

func TestRootCmd_UnknownArgumentOpensMenu(t *testing.T) {
	isolate(t)

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetIn(strings.NewReader("6\n"))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--dir", filepath.Join(t.TempDir(), "store"), "foo"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "=== File Manager CLI ===")
	assert.Contains(t, out.String(), "Goodbye!")
}

func TestSetup_FlagOverrides(t *testing.T) {
	isolate(t)

	cfgFile := filepath.Join(t.TempDir(), "filedesk.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("base_dir: /should/be/overridden\nport: 4000\n"), 0o644))
	dir := filepath.Join(t.TempDir(), "store")

	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--config", cfgFile, "--dir", dir, "--no-watch", "-l", "error"}))

	opts := &options{}
	opts.configPath, _ = cmd.Flags().GetString("config")
	opts.baseDir, _ = cmd.Flags().GetString("dir")
	opts.logLevel, _ = cmd.Flags().GetString("log-level")
	opts.noWatch, _ = cmd.Flags().GetBool("no-watch")

	a, err := setup(cmd, opts)
	require.NoError(t, err)

	assert.Equal(t, dir, a.cfg.BaseDir)
	assert.Equal(t, 4000, a.cfg.Port)
	assert.False(t, a.cfg.Watch)
	assert.Equal(t, "error", a.cfg.LogLevel)
	assert.DirExists(t, dir)
}
