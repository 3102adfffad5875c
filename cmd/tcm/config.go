package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyAPIURL     = "api_url"
	cfgKeyTimeout    = "timeout"
	cfgKeyLogLevel   = "log_level"
	cfgKeySkipHeader = "skip_header"

	defaultAPIURL = "http://localhost:8080"
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# tcm CLI configuration
# Every key can be overridden with a TCM_ environment variable
# (e.g. TCM_API_URL) or the matching command-line flag.

# Test-case manager server
api_url: http://localhost:8080

# Per-request timeout
timeout: 30s

# Diagnostics on stderr: debug, info, warn, error
log_level: warn

# Treat the first row of imported files as a header
skip_header: true
`

// defaultConfigDir returns $XDG_CONFIG_HOME/tcm or its platform equivalent.
func defaultConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(base, "tcm"), nil
}

// loadConfig reads config.yaml from configDir, creating the directory and
// a default file on first run. Environment variables with the TCM_ prefix
// override file values.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyAPIURL, defaultAPIURL)
	v.SetDefault(cfgKeyTimeout, "30s")
	v.SetDefault(cfgKeyLogLevel, "warn")
	v.SetDefault(cfgKeySkipHeader, true)

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("TCM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
