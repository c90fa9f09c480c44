package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"EDUMATE_API_KEY", "GOOGLE_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY",
		"EDUMATE_PROVIDER", "EDUMATE_MODEL", "EDUMATE_SERVER_ADDRESS", "EDUMATE_HISTORY_BACKEND",
		"EDUMATE_REDIS_PORT", "EDUMATE_TEMPERATURE",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsFromEnvOnly(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("GOOGLE_API_KEY", "g-key")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, ":5000", cfg.BasicConfig.ServerAddress)
	require.Equal(t, "gemini", cfg.Provider.Name)
	require.Equal(t, "gemini-1.5-pro", cfg.Provider.Model)
	require.Equal(t, "g-key", cfg.Provider.APIKey)
	require.InDelta(t, 0.8, cfg.Provider.Temperature, 1e-6)
	require.Equal(t, 250, cfg.Provider.MaxTokens)
	require.Equal(t, "memory", cfg.History.Backend)
	require.Equal(t, "edumate_session", cfg.Session.CookieName)
}

func TestLoadFailsFastWithoutAPIKey(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	_, err := Load("")
	require.Error(t, err)
	require.Contains(t, err.Error(), "api key")
}

func TestLoadFileWithEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `{
		"basic_config": {"server_address": ":9000", "system_prompt_path": "prompt.txt"},
		"provider": {"name": "openai", "model": "gpt-4o-mini", "api_key": "file-key"},
		"history": {"backend": "redis"},
		"redis": {"host": "cache", "port": 6380}
	}`)
	t.Setenv("EDUMATE_API_KEY", "env-key")
	t.Setenv("EDUMATE_REDIS_PORT", "6390")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.BasicConfig.ServerAddress)
	require.Equal(t, filepath.Join(filepath.Dir(path), "prompt.txt"), cfg.BasicConfig.SystemPromptPath)
	require.Equal(t, "openai", cfg.Provider.Name)
	require.Equal(t, "gpt-4o-mini", cfg.Provider.Model)
	require.Equal(t, "env-key", cfg.Provider.APIKey)
	require.Equal(t, "redis", cfg.History.Backend)
	require.Equal(t, "cache", cfg.Redis.Host)
	require.Equal(t, 6390, cfg.Redis.Port)
}

func TestLoadKeepsZeroTemperature(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_API_KEY", "g-key")

	cfg, err := Load(writeConfig(t, `{"provider": {"temperature": 0}}`))
	require.NoError(t, err)
	require.Zero(t, cfg.Provider.Temperature)

	cfg, err = Load(writeConfig(t, `{"provider": {"temperature": 0.5}}`))
	require.NoError(t, err)
	require.InDelta(t, 0.5, cfg.Provider.Temperature, 1e-6)

	t.Setenv("EDUMATE_TEMPERATURE", "0")
	cfg, err = Load(writeConfig(t, `{"provider": {"temperature": 0.5}}`))
	require.NoError(t, err)
	require.Zero(t, cfg.Provider.Temperature)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	clearEnv(t)
	cases := map[string]string{
		"provider": `{"provider": {"name": "llama", "model": "x", "api_key": "k"}}`,
		"model":    `{"provider": {"name": "openai", "api_key": "k"}}`,
		"backend":  `{"provider": {"api_key": "k"}, "history": {"backend": "sqlite"}}`,
		"json":     `{not json`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			require.Error(t, err)
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}
