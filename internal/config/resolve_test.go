package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Empty(t, cfg.Path)
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ConfigFileName), `
[auth]
jwt_secret = "from-file"

[smtp]
password = "file-pass"
`)
	t.Chdir(dir)
	t.Setenv(EnvJWTSecret, "from-env")
	t.Setenv(EnvSMTPPassword, "env-pass")
	t.Setenv(EnvLogLevel, "DEBUG")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, "env-pass", cfg.SMTP.Password)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestResolveClient_Precedence(t *testing.T) {
	tests := []struct {
		name     string
		global   string
		project  string
		wantHost string
		wantPort int
	}{
		{
			name:     "defaults only",
			wantHost: DefaultServerHost,
			wantPort: DefaultServerPort,
		},
		{
			name:     "global overrides defaults",
			global:   "[server]\nhost = \"global\"\nport = 8000\n",
			wantHost: "global",
			wantPort: 8000,
		},
		{
			name:     "project overrides global when explicit",
			global:   "[server]\nhost = \"global\"\nport = 8000\n",
			project:  "[server]\nport = 9000\n",
			wantHost: "global",
			wantPort: 9000,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := t.TempDir()
			project := t.TempDir()
			if tt.global != "" {
				writeGlobal(t, home, tt.global)
			}
			if tt.project != "" {
				writeFile(t, filepath.Join(project, ConfigFileName), tt.project)
			}
			t.Chdir(project)

			cfg, err := ResolveClient(home)
			require.NoError(t, err)
			assert.Equal(t, tt.wantHost, cfg.ServerHost)
			assert.Equal(t, tt.wantPort, cfg.ServerPort)
		})
	}
}

func TestResolveClient_TokenFromEnv(t *testing.T) {
	home := t.TempDir()
	writeGlobal(t, home, "[client]\ntoken = \"file-token\"\n")
	t.Chdir(t.TempDir())
	t.Setenv(EnvToken, "env-token")

	cfg, err := ResolveClient(home)
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Token)
}
