/*
Package config manages TOML config for WordScan.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/bastiangx/wordscan/internal/utils"
	"github.com/charmbracelet/log"
)

// Config holds the entire config structure
type Config struct {
	Search SearchConfig `toml:"search"`
	Server ServerConfig `toml:"server"`
	CLI    CliConfig    `toml:"cli"`
}

// SearchConfig holds engine options.
type SearchConfig struct {
	DictFile        string `toml:"dict_file"`
	MaxResults      int    `toml:"max_results"`
	MaxEditDistance int    `toml:"max_edit_distance"`
}

// ServerConfig has IPC server options.
type ServerConfig struct {
	MaxQueryLen int `toml:"max_query_len"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	Color bool `toml:"color"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/
// 2. ~/Library/Application Support/ (macOS)
// 3. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	primaryPath := filepath.Join(homeDir, ".config", "wordscan")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "wordscan")
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/wordscan/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}

	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			DictFile:        "words.bin",
			MaxResults:      10,
			MaxEditDistance: 5,
		},
		Server: ServerConfig{
			MaxQueryLen: 60,
		},
		CLI: CliConfig{
			Color: true,
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	config.sanitize()
	return config, nil
}

// tryPartialParse keeps every valid value of a TOML file that failed to decode as a whole
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "search"); ok {
		extractSearchConfig(section, &config.Search)
	}
	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(section, &config.CLI)
	}
	config.sanitize()
	return config, nil
}

func extractSearchConfig(data map[string]any, search *SearchConfig) {
	if val, ok := utils.ExtractString(data, "dict_file"); ok {
		search.DictFile = val
	}
	if val, ok := utils.ExtractInt64(data, "max_results"); ok {
		search.MaxResults = val
	}
	if val, ok := utils.ExtractInt64(data, "max_edit_distance"); ok {
		search.MaxEditDistance = val
	}
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_query_len"); ok {
		server.MaxQueryLen = val
	}
}

func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractBool(data, "color"); ok {
		cli.Color = val
	}
}

// sanitize replaces out of range values with defaults
func (c *Config) sanitize() {
	defaults := DefaultConfig()
	if c.Search.DictFile == "" {
		c.Search.DictFile = defaults.Search.DictFile
	}
	if c.Search.MaxResults < 1 {
		log.Warnf("Invalid max_results %d, using %d", c.Search.MaxResults, defaults.Search.MaxResults)
		c.Search.MaxResults = defaults.Search.MaxResults
	}
	if c.Search.MaxEditDistance < 1 {
		log.Warnf("Invalid max_edit_distance %d, using %d", c.Search.MaxEditDistance, defaults.Search.MaxEditDistance)
		c.Search.MaxEditDistance = defaults.Search.MaxEditDistance
	}
	if c.Server.MaxQueryLen < 1 {
		c.Server.MaxQueryLen = defaults.Server.MaxQueryLen
	}
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
