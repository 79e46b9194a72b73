package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGlobal(t *testing.T, home, content string) {
	t.Helper()
	writeFile(t, filepath.Join(home, GlobalConfigDir, GlobalConfigFileName), content)
}

func TestGlobal_FileExists(t *testing.T) {
	home := t.TempDir()
	writeGlobal(t, home, `
[server]
host = "global-host.example.com"
port = 9999

[client]
token = "abc"
`)

	cfg, err := LoadGlobalConfigFromDir(home)
	require.NoError(t, err)
	assert.Equal(t, "global-host.example.com", cfg.ServerHost)
	assert.Equal(t, 9999, cfg.ServerPort)
	assert.Equal(t, "abc", cfg.Token)
}

func TestGlobal_FileNotExists(t *testing.T) {
	cfg, err := LoadGlobalConfigFromDir(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, &GlobalConfig{}, cfg)
}

func TestGlobal_InvalidTOML(t *testing.T) {
	home := t.TempDir()
	writeGlobal(t, home, `this is not valid toml {{{`)

	_, err := LoadGlobalConfigFromDir(home)
	assert.Error(t, err)
}

func TestGlobal_InvalidPort(t *testing.T) {
	home := t.TempDir()
	writeGlobal(t, home, "[server]\nport = -1\n")

	_, err := LoadGlobalConfigFromDir(home)
	assert.ErrorContains(t, err, "invalid port")
}
