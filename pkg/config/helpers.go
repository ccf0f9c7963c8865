package config

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BaeKey/smartedu/pkg/errors"
)

const headerKeyPrefix = "headers."

// SetValue sets a configuration value by key.
// Supported keys are "mirrors" (comma separated), every settings key such as
// output_dir, http_timeout or require_credential, and headers.<Name> for a
// static request header. An empty value for headers.<Name> removes the header.
func (c *Config) SetValue(key, value string) error {
	if name, ok := strings.CutPrefix(key, headerKeyPrefix); ok && name != "" {
		if value == "" {
			delete(c.Settings.Headers, name)
			return nil
		}
		if c.Settings.Headers == nil {
			c.Settings.Headers = make(map[string]string)
		}
		c.Settings.Headers[name] = value
		return nil
	}

	switch key {
	case "mirrors":
		c.Mirrors = splitList(value)
	case "target_format":
		c.Settings.TargetFormat = value
	case "default_title":
		c.Settings.DefaultTitle = value
	case "output_dir":
		c.Settings.OutputDir = value
	case "credential_store":
		c.Settings.CredentialStore = value
	case "credential_prefix":
		c.Settings.CredentialPrefix = value
	case "credential_suffix":
		c.Settings.CredentialSuffix = value
	case "auth_header":
		c.Settings.AuthHeader = value
	case "require_credential":
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value for %s: %s", key, value)
		}
		c.Settings.RequireCredential = boolVal
	case "http_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %s", key, value)
		}
		c.Settings.HTTPTimeout = d
	case "max_concurrent":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %s", key, value)
		}
		c.Settings.MaxConcurrent = n
	case "pre_download_hook":
		c.Settings.PreDownloadHook = value
	case "post_download_hook":
		c.Settings.PostDownloadHook = value
	case "user_agent":
		c.Settings.UserAgent = value
	case "output_format":
		c.Settings.OutputFormat = value
	case "log_level":
		c.Settings.LogLevel = value
	default:
		return fmt.Errorf("%w: %s", errors.ErrUnknownConfigKey, key)
	}
	return nil
}

// GetValue returns the value of key as a string.
func (c *Config) GetValue(key string) (string, error) {
	if name, ok := strings.CutPrefix(key, headerKeyPrefix); ok && name != "" {
		return c.Settings.Headers[name], nil
	}
	if key == "mirrors" {
		return strings.Join(c.Mirrors, ","), nil
	}
	if key == "headers" {
		return formatHeaders(c.Settings.Headers), nil
	}
	value, ok := c.ToMap()[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", errors.ErrUnknownConfigKey, key)
	}
	return value, nil
}

// ToMap flattens the configuration into key/value strings.
// This is useful for displaying the configuration.
func (c *Config) ToMap() map[string]string {
	result := map[string]string{
		"mirrors": strings.Join(c.Mirrors, ","),
	}

	settingsValue := reflect.ValueOf(c.Settings)
	settingsType := settingsValue.Type()

	for i := 0; i < settingsValue.NumField(); i++ {
		field := settingsType.Field(i)
		yamlTag := field.Tag.Get("yaml")
		if yamlTag == "" || yamlTag == "-" {
			continue
		}
		yamlKey := strings.Split(yamlTag, ",")[0]
		fieldValue := settingsValue.Field(i)

		var strValue string
		switch v := fieldValue.Interface().(type) {
		case time.Duration:
			strValue = v.String()
		case map[string]string:
			strValue = formatHeaders(v)
		default:
			switch fieldValue.Kind() {
			case reflect.Bool:
				strValue = strconv.FormatBool(fieldValue.Bool())
			case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
				strValue = strconv.FormatInt(fieldValue.Int(), 10)
			case reflect.String:
				strValue = fieldValue.String()
			default:
				strValue = fmt.Sprintf("%v", fieldValue.Interface())
			}
		}

		result[yamlKey] = strValue
	}

	return result
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func formatHeaders(h map[string]string) string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+h[k])
	}
	return strings.Join(parts, ",")
}
