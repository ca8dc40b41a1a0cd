package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rennerdo30/sysproxy/internal/config"
	"github.com/rennerdo30/sysproxy/internal/sysproxy"
)

// memManager is an in-memory sysproxy.Manager.
type memManager struct {
	manual sysproxy.ManualProxy
	auto   sysproxy.AutoProxy
}

func (m *memManager) GetManualProxy() (sysproxy.ManualProxy, error) { return m.manual, nil }
func (m *memManager) GetAutoProxy() (sysproxy.AutoProxy, error)     { return m.auto, nil }

func (m *memManager) SetManualProxy(p sysproxy.ManualProxy) error {
	m.manual, m.auto = p, sysproxy.AutoProxy{}
	return nil
}

func (m *memManager) SetAutoProxy(p sysproxy.AutoProxy) error {
	m.manual.Enable, m.auto = false, p
	return nil
}

func execute(t *testing.T, mgr sysproxy.Manager, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd(func() sysproxy.Manager { return mgr })
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, &memManager{}, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "sysproxy")
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sysproxy.yaml")

	out, err := execute(t, &memManager{}, "config", "init", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Generated configuration")

	cfg := config.DefaultConfig()
	require.NoError(t, config.LoadAndValidate(path, &cfg))
	assert.NotEmpty(t, cfg.Profiles)

	_, err = execute(t, &memManager{}, "config", "init", "-o", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	out, err = execute(t, &memManager{}, "config", "init", "-o", path, "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "Backed up")
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte(config.DefaultConfigTemplate), 0600))

	out, err := execute(t, &memManager{}, "-c", good, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("profiles:\n  - name: x\n    mode: manual\n"), 0600))

	_, err = execute(t, &memManager{}, "-c", bad, "validate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration invalid")
}

func TestProfileApplyFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sysproxy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(config.DefaultConfigTemplate), 0600))

	mgr := &memManager{}
	_, err := execute(t, mgr, "-c", path, "profile", "apply", "local")
	require.NoError(t, err)
	assert.True(t, mgr.manual.Enable)
	assert.NotEmpty(t, mgr.manual.Host)
}

func TestMissingDefaultConfigUsesDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	mgr := &memManager{}
	out, err := execute(t, mgr, "off")
	require.NoError(t, err)
	assert.Contains(t, out, "disabled")
}

func TestMissingExplicitConfigFails(t *testing.T) {
	_, err := execute(t, &memManager{}, "-c", filepath.Join(t.TempDir(), "missing.yaml"), "get")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestInvalidLogLevel(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := execute(t, &memManager{}, "--log-level", "loud", "get")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "setup logging")
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
