package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaeKey/smartedu/pkg/errors"
	"github.com/BaeKey/smartedu/pkg/fsutil"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Settings.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.Settings.HTTPTimeout)
	assert.Equal(t, 2, cfg.Settings.MaxConcurrent)
	assert.Equal(t, "pdf", cfg.Settings.TargetFormat)
	assert.Equal(t, "未命名课本", cfg.Settings.DefaultTitle)
	assert.Equal(t, "ND_UC_AUTH", cfg.Settings.CredentialPrefix)
	assert.Equal(t, "token", cfg.Settings.CredentialSuffix)
	assert.Equal(t, "x-nd-auth", cfg.Settings.AuthHeader)
	assert.False(t, cfg.Settings.RequireCredential)
	assert.Equal(t, []string{
		"https://s-file-1.ykt.cbern.com.cn/zxx/ndrv2/resources/tch_material/details",
		"https://s-file-2.ykt.cbern.com.cn/zxx/ndrv2/resources/tch_material/details",
		"https://s-file-3.ykt.cbern.com.cn/zxx/ndrv2/resources/tch_material/details",
		"https://s-file-4.ykt.cbern.com.cn/zxx/ndrv2/resources/tch_material/details",
	}, cfg.Mirrors)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	configContent := `mirrors:
  - https://mirror-b.example.com/details
  - https://mirror-a.example.com/details
settings:
  log_level: debug
  http_timeout: 5s
  require_credential: true
  headers:
    Referer: https://basic.smartedu.cn/`

	err := os.WriteFile(configPath, []byte(configContent), fsutil.FileModeDefault)
	require.NoError(t, err)

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, []string{"https://mirror-b.example.com/details", "https://mirror-a.example.com/details"}, cfg.Mirrors)
	assert.Equal(t, "debug", cfg.Settings.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.Settings.HTTPTimeout)
	assert.True(t, cfg.Settings.RequireCredential)
	assert.Equal(t, "https://basic.smartedu.cn/", cfg.Settings.Headers["Referer"])
	// defaults fill the rest
	assert.Equal(t, "pdf", cfg.Settings.TargetFormat)
	assert.Equal(t, 2, cfg.Settings.MaxConcurrent)
}

func TestLoadConfig_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultMirrors(), cfg.Mirrors)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig("")
	assert.ErrorIs(t, err, errors.ErrEmptyConfigPath)

	_, err = LoadConfigFromReader(strings.NewReader("mirrors: [unclosed"))
	assert.ErrorIs(t, err, errors.ErrConfigParse)

	_, err = LoadConfigFromReader(strings.NewReader("settings:\n  log_level: loud\n"))
	assert.ErrorIs(t, err, errors.ErrConfigValidation)
}

func TestSaveConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Settings.LogLevel = "debug"
	cfg.Settings.HTTPTimeout = 45 * time.Second
	cfg.Mirrors = []string{"https://only.example.com/details"}

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nested", "test-config.yaml")

	err := cfg.SaveConfig(configPath)
	require.NoError(t, err)
	assert.NoFileExists(t, configPath+".tmp")

	loaded, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, "debug", loaded.Settings.LogLevel)
	assert.Equal(t, 45*time.Second, loaded.Settings.HTTPTimeout)
	assert.Equal(t, cfg.Mirrors, loaded.Mirrors)

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "http_timeout: 45s")
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "no mirrors", mutate: func(c *Config) { c.Mirrors = nil }, wantErr: true},
		{name: "relative mirror", mutate: func(c *Config) { c.Mirrors = []string{"/details"} }, wantErr: true},
		{name: "ftp mirror", mutate: func(c *Config) { c.Mirrors = []string{"ftp://example.com/details"} }, wantErr: true},
		{
			name: "duplicate mirror",
			mutate: func(c *Config) {
				c.Mirrors = []string{"https://a.example.com/details", "https://a.example.com/details/"}
			},
			wantErr: true,
		},
		{name: "negative timeout", mutate: func(c *Config) { c.Settings.HTTPTimeout = -time.Second }, wantErr: true},
		{name: "zero concurrency", mutate: func(c *Config) { c.Settings.MaxConcurrent = 0 }, wantErr: true},
		{name: "bad output format", mutate: func(c *Config) { c.Settings.OutputFormat = "table" }, wantErr: true},
		{name: "bad log level", mutate: func(c *Config) { c.Settings.LogLevel = "trace" }, wantErr: true},
		{name: "empty format", mutate: func(c *Config) { c.Settings.TargetFormat = "" }, wantErr: true},
		{name: "upper case level", mutate: func(c *Config) { c.Settings.LogLevel = "DEBUG" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	var nilCfg *Config
	assert.Error(t, nilCfg.Validate())
}

func TestGetDefaultConfigPath(t *testing.T) {
	path, err := GetDefaultConfigPath()
	if err != nil {
		t.Skipf("no user config dir: %v", err)
	}
	assert.Equal(t, "config.yaml", filepath.Base(path))
	assert.Equal(t, "smartedu", filepath.Base(filepath.Dir(path)))
}

func TestGetCredentialStorePath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Settings.CredentialStore = "/tmp/storage.json"
	assert.Equal(t, "/tmp/storage.json", cfg.GetCredentialStorePath())

	cfg.Settings.CredentialStore = ""
	assert.Equal(t, "credentials.json", filepath.Base(cfg.GetCredentialStorePath()))
}
