package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name string, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func unsetTwitchEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{envToken, envNick, envChannel, envOwner, envServer} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigFromEnvPath(t *testing.T) {
	unsetTwitchEnv(t)

	path := writeConfig(t, "config.json", `{
	  "token": "abc123",
	  "nick": "AvicBot",
	  "channel": "Noobenheim",
	  "owner": "Avicennasis",
	  "line_interval_ms": 0,
	  "status": {"enabled": true, "host": "127.0.0.1", "port": 18790},
	  "logging": {"format": "json", "level": "debug", "add_source": true}
	}`)
	t.Setenv(envConfigPath, path)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DefaultServer, cfg.Server)
	assert.Equal(t, "oauth:abc123", cfg.Token)
	assert.Equal(t, "avicbot", cfg.Nick)
	assert.Equal(t, "#noobenheim", cfg.Channel)
	assert.Equal(t, "avicennasis", cfg.Owner)
	assert.Equal(t, 0, cfg.LineInterval())
	assert.True(t, cfg.Status.Enabled)
	assert.Equal(t, 18790, cfg.Status.Port)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.AddSource)
}

func TestLoadConfigYAML(t *testing.T) {
	unsetTwitchEnv(t)

	path := writeConfig(t, "config.yaml", `
server: localhost:6667
token: oauth:xyz
nick: bot
channel: "#room"
owner: boss
greeting: "bot: Online."
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "localhost:6667", cfg.Server)
	assert.Equal(t, "oauth:xyz", cfg.Token)
	assert.Equal(t, "#room", cfg.Channel)
	assert.Equal(t, "bot: Online.", cfg.Greeting)
	assert.Equal(t, DefaultLineIntervalMillis, cfg.LineInterval())
}

func TestEnvironmentOverridesFileValues(t *testing.T) {
	unsetTwitchEnv(t)

	path := writeConfig(t, "config.json", `{"token": "file", "nick": "filebot", "channel": "file"}`)
	t.Setenv(envToken, "oauth:env")
	t.Setenv(envChannel, "#envchan")
	t.Setenv(envOwner, "EnvOwner")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "oauth:env", cfg.Token)
	assert.Equal(t, "filebot", cfg.Nick)
	assert.Equal(t, "#envchan", cfg.Channel)
	assert.Equal(t, "envowner", cfg.Owner)
}

func TestLoadConfigRequiresConnectionSettings(t *testing.T) {
	unsetTwitchEnv(t)

	path := writeConfig(t, "config.json", `{"owner": "someone"}`)

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token is required")
	assert.Contains(t, err.Error(), "nick is required")
	assert.Contains(t, err.Error(), "channel is required")
}

func TestLoadConfigInvalidEnvPath(t *testing.T) {
	t.Setenv(envConfigPath, filepath.Join(t.TempDir(), "missing.json"))

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfigRejectsMalformedJSON(t *testing.T) {
	unsetTwitchEnv(t)

	path := writeConfig(t, "config.json", `{"token": `)

	_, err := LoadFile(path)
	require.ErrorContains(t, err, "parse config file")
}

func TestLoadLocalSkipsValidation(t *testing.T) {
	unsetTwitchEnv(t)

	path := writeConfig(t, "config.yaml", "nick: AvicBot\nchannel: Noobenheim\nowner: Avicennasis\n")

	cfg := LoadLocal(path)
	assert.Equal(t, "avicbot", cfg.Nick)
	assert.Equal(t, "#noobenheim", cfg.Channel)
	assert.Equal(t, "avicennasis", cfg.Owner)
	assert.Empty(t, cfg.Token)
}

func TestLoadLocalFallsBackToEnvironment(t *testing.T) {
	unsetTwitchEnv(t)
	t.Setenv(envNick, "EnvBot")

	cfg := LoadLocal(filepath.Join(t.TempDir(), "missing.json"))
	assert.Equal(t, "envbot", cfg.Nick)
	assert.Equal(t, DefaultServer, cfg.Server)
	assert.Empty(t, cfg.Channel)
}
