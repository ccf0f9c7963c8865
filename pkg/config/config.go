// Package config provides configuration management for the smartedu fetcher.
// It handles loading, validating, and saving the mirror list and the settings
// that drive resolution, signing and downloading. Configuration lives in a
// YAML file; missing values fall back to sensible defaults.
package config

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/BaeKey/smartedu/pkg/errors"
	"github.com/BaeKey/smartedu/pkg/fsutil"
)

// Config represents the application configuration.
type Config struct {
	// Mirror base URLs, probed in order.
	Mirrors []string `yaml:"mirrors"`

	// General settings
	Settings Settings `yaml:"settings"`
}

// Settings represents general application settings.
type Settings struct {
	// Selection settings
	TargetFormat string `yaml:"target_format"`
	DefaultTitle string `yaml:"default_title"`

	// Output settings
	OutputDir string `yaml:"output_dir,omitempty"`

	// Credential settings
	CredentialStore   string `yaml:"credential_store,omitempty"` // JSON/YAML export of the browser local storage
	CredentialPrefix  string `yaml:"credential_prefix"`
	CredentialSuffix  string `yaml:"credential_suffix"`
	AuthHeader        string `yaml:"auth_header"`
	RequireCredential bool   `yaml:"require_credential"`

	// Network settings
	HTTPTimeout   time.Duration     `yaml:"http_timeout"`
	MaxConcurrent int               `yaml:"max_concurrent"`
	UserAgent     string            `yaml:"user_agent,omitempty"`
	Headers       map[string]string `yaml:"headers,omitempty"`

	// Script hooks (Tengo files)
	PreDownloadHook  string `yaml:"pre_download_hook,omitempty"`
	PostDownloadHook string `yaml:"post_download_hook,omitempty"`

	// Logging settings
	OutputFormat string `yaml:"output_format"` // text, json
	LogLevel     string `yaml:"log_level"`     // debug, info, warn, error
}

// Default configuration values.
const (
	DefaultTargetFormat     = "pdf"
	DefaultTitle            = "未命名课本"
	DefaultCredentialPrefix = "ND_UC_AUTH"
	DefaultCredentialSuffix = "token"
	DefaultAuthHeader       = "x-nd-auth"

	// DefaultHTTPTimeout is the default timeout for metadata requests and mirror checks.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultMaxConcurrent is the default number of documents downloaded at once.
	DefaultMaxConcurrent = 2

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2
)

// DefaultMirrors returns the public metadata mirrors in probing order.
func DefaultMirrors() []string {
	mirrors := make([]string, 0, 4)
	for i := 1; i <= 4; i++ {
		mirrors = append(mirrors, fmt.Sprintf("https://s-file-%d.ykt.cbern.com.cn/zxx/ndrv2/resources/tch_material/details", i))
	}
	return mirrors
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Mirrors: DefaultMirrors(),
		Settings: Settings{
			TargetFormat:     DefaultTargetFormat,
			DefaultTitle:     DefaultTitle,
			OutputDir:        fsutil.GetDownloadDir(),
			CredentialPrefix: DefaultCredentialPrefix,
			CredentialSuffix: DefaultCredentialSuffix,
			AuthHeader:       DefaultAuthHeader,
			HTTPTimeout:      DefaultHTTPTimeout,
			MaxConcurrent:    DefaultMaxConcurrent,
			OutputFormat:     "text",
			LogLevel:         "info",
		},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrConfigValidation, err.Error())
	}

	return &config, nil
}

// SaveConfig saves configuration to a file, replacing it atomically.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	if err := os.MkdirAll(filepath.Dir(absPath), fsutil.DirModeDefault); err != nil {
		return errors.Wrap(errors.ErrConfigDirectory, err.Error())
	}

	tempPath := absPath + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fsutil.FileModeDefault)
	if err != nil {
		return errors.Wrap(errors.ErrConfigFileCreate, err.Error())
	}

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(YAMLIndent)

	if err := encoder.Encode(c); err != nil {
		_ = file.Close()
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigEncode, err.Error())
	}

	_ = encoder.Close()
	_ = file.Close()

	if err := os.Rename(tempPath, absPath); err != nil {
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigFileRename, err.Error())
	}

	return nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigMarshal, err.Error())
	}
	return data, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	if err := validateMirrors(c.Mirrors); err != nil {
		return err
	}
	return validateSettings(c.Settings)
}

func validateMirrors(mirrors []string) error {
	if len(mirrors) == 0 {
		return errors.ErrNoMirrors
	}
	seen := make(map[string]bool, len(mirrors))
	for i, m := range mirrors {
		u, err := url.Parse(m)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("mirror %d (%q): %w", i, m, errors.ErrInvalidURL)
		}
		key := strings.TrimRight(m, "/")
		if seen[key] {
			return fmt.Errorf("mirror %q is listed twice", m)
		}
		seen[key] = true
	}
	return nil
}

func validateSettings(s Settings) error {
	if s.TargetFormat == "" {
		return fmt.Errorf("target_format cannot be empty")
	}
	if s.AuthHeader == "" {
		return fmt.Errorf("auth_header cannot be empty")
	}
	if s.HTTPTimeout < 0 {
		return fmt.Errorf("http_timeout cannot be negative")
	}
	if s.MaxConcurrent < 1 {
		return fmt.Errorf("max_concurrent must be at least 1")
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[s.OutputFormat] {
		return fmt.Errorf("invalid output_format %q (valid: text, json)", s.OutputFormat)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(s.LogLevel)] {
		return fmt.Errorf("invalid log_level %q (valid: debug, info, warn, error)", s.LogLevel)
	}
	return nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := fsutil.GetConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

// GetCredentialStorePath returns the credential store file, defaulting to
// credentials.json next to the config file.
func (c *Config) GetCredentialStorePath() string {
	if c.Settings.CredentialStore != "" {
		return c.Settings.CredentialStore
	}
	configDir, err := fsutil.GetConfigDir()
	if err != nil {
		return "credentials.json"
	}
	return filepath.Join(configDir, "credentials.json")
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if len(c.Mirrors) == 0 {
		c.Mirrors = defaults.Mirrors
	}
	if c.Settings.TargetFormat == "" {
		c.Settings.TargetFormat = defaults.Settings.TargetFormat
	}
	if c.Settings.DefaultTitle == "" {
		c.Settings.DefaultTitle = defaults.Settings.DefaultTitle
	}
	if c.Settings.OutputDir == "" {
		c.Settings.OutputDir = defaults.Settings.OutputDir
	}
	if c.Settings.CredentialPrefix == "" {
		c.Settings.CredentialPrefix = defaults.Settings.CredentialPrefix
	}
	if c.Settings.CredentialSuffix == "" {
		c.Settings.CredentialSuffix = defaults.Settings.CredentialSuffix
	}
	if c.Settings.AuthHeader == "" {
		c.Settings.AuthHeader = defaults.Settings.AuthHeader
	}
	if c.Settings.HTTPTimeout == 0 {
		c.Settings.HTTPTimeout = defaults.Settings.HTTPTimeout
	}
	if c.Settings.MaxConcurrent == 0 {
		c.Settings.MaxConcurrent = defaults.Settings.MaxConcurrent
	}
	if c.Settings.OutputFormat == "" {
		c.Settings.OutputFormat = defaults.Settings.OutputFormat
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
}
