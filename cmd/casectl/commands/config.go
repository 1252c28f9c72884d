package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/caseapi-client/internal/constants"
)

// Config keys, shared by the config file, CASECTL_* environment variables
// and flags bound to viper.
const (
	keyAPI          = "api"
	keyTokenURL     = "token_url"
	keyAPIKey       = "api_key"
	keyAPIKeyHeader = "api_key_header"
	keyToken        = "token"
	keyOutput       = "output"
	keyCacheTokens  = "cache_tokens"
	keyTokenCache   = "token_cache"
	keyMaxPageSize  = "max_page_size"
	keyHeaders      = "headers"
)

// ConfigDirName is the directory under $HOME holding config.yml.
const ConfigDirName = ".casectl"

// Config represents the CLI configuration.
type Config struct {
	API          string            `json:"api,omitempty"            yaml:"api,omitempty"`
	TokenURL     string            `json:"token_url,omitempty"      yaml:"token_url,omitempty"`
	APIKey       string            `json:"api_key,omitempty"        yaml:"api_key,omitempty"`
	APIKeyHeader string            `json:"api_key_header,omitempty" yaml:"api_key_header,omitempty"`
	Token        string            `json:"token,omitempty"          yaml:"token,omitempty"`
	Output       string            `json:"output"                   yaml:"output"`
	CacheTokens  bool              `json:"cache_tokens"             yaml:"cache_tokens"`
	TokenCache   string            `json:"token_cache,omitempty"    yaml:"token_cache,omitempty"`
	MaxPageSize  int               `json:"max_page_size,omitempty"  yaml:"max_page_size,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"        yaml:"headers,omitempty"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and change casectl settings stored in $HOME/.casectl/config.yml",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current CLI configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig().masked()

			rows := [][]string{
				{"API", formatConfigValue(config.API)},
				{"Token URL", formatConfigValue(config.TokenURL)},
				{"API Key", formatConfigValue(config.APIKey)},
				{"API Key Header", formatConfigValue(config.APIKeyHeader)},
				{"Token", formatConfigValue(config.Token)},
				{"Output", formatConfigValue(config.Output)},
				{"Cache Tokens", strconv.FormatBool(config.CacheTokens)},
				{"Token Cache", formatConfigValue(config.TokenCache)},
				{"Max Page Size", strconv.Itoa(config.MaxPageSize)},
			}

			for name, value := range config.Headers {
				rows = append(rows, []string{"Header " + name, value})
			}

			return renderOutput(cmd, config, []string{"Property", "Value"}, rows)
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. Keys: api, token_url, api_key, api_key_header, token, output, cache_tokens, token_cache, max_page_size",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := setConfigValue(config, args[0], args[1])
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			return outputConfigUpdateResult(cmd.OutOrStdout(), "Set", args[0], args[1])
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Reset a configuration value to its default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := unsetConfigValue(config, args[0])
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			return outputConfigUpdateResult(cmd.OutOrStdout(), "Unset", args[0], "")
		},
	}
}

func loadConfig() *Config {
	return &Config{
		API:          viper.GetString(keyAPI),
		TokenURL:     viper.GetString(keyTokenURL),
		APIKey:       viper.GetString(keyAPIKey),
		APIKeyHeader: viper.GetString(keyAPIKeyHeader),
		Token:        viper.GetString(keyToken),
		Output:       viper.GetString(keyOutput),
		CacheTokens:  viper.GetBool(keyCacheTokens),
		TokenCache:   viper.GetString(keyTokenCache),
		MaxPageSize:  viper.GetInt(keyMaxPageSize),
		Headers:      viper.GetStringMapString(keyHeaders),
	}
}

// masked returns a copy safe to print.
func (c *Config) masked() *Config {
	out := *c

	if out.APIKey != "" {
		out.APIKey = Masked
	}

	if out.Token != "" {
		out.Token = Masked
	}

	return &out
}

// getConfigHandler returns the setter for a config key.
func getConfigHandler(key string) (func(*Config, string) error, bool) {
	handlers := map[string]func(*Config, string) error{
		keyAPI:          func(c *Config, v string) error { c.API = v; return nil },
		keyTokenURL:     func(c *Config, v string) error { c.TokenURL = v; return nil },
		keyAPIKey:       func(c *Config, v string) error { c.APIKey = v; return nil },
		keyAPIKeyHeader: func(c *Config, v string) error { c.APIKeyHeader = v; return nil },
		keyToken:        func(c *Config, v string) error { c.Token = v; return nil },
		keyTokenCache:   func(c *Config, v string) error { c.TokenCache = v; return nil },
		keyOutput: func(c *Config, v string) error {
			err := ValidateOutputFormat(v)
			if err != nil {
				return err
			}

			c.Output = v

			return nil
		},
		keyCacheTokens: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s: %w", keyCacheTokens, err)
			}

			c.CacheTokens = b

			return nil
		},
		keyMaxPageSize: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", keyMaxPageSize, err)
			}

			c.MaxPageSize = n

			return nil
		},
	}
	handler, exists := handlers[key]

	return handler, exists
}

// setConfigValue sets a configuration value.
func setConfigValue(config *Config, key, value string) error {
	handler, exists := getConfigHandler(key)
	if !exists {
		return fmt.Errorf("%w: %s", constants.ErrInvalidConfigKey, key)
	}

	return handler(config, value)
}

// unsetConfigValue resets a configuration value.
func unsetConfigValue(config *Config, key string) error {
	if key == keyOutput {
		config.Output = constants.FormatTable

		return nil
	}

	if key == keyCacheTokens {
		config.CacheTokens = false

		return nil
	}

	if key == keyMaxPageSize {
		config.MaxPageSize = 0

		return nil
	}

	return setConfigValue(config, key, "")
}

func configFilePath() (string, error) {
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	configDir := filepath.Join(home, ConfigDirName)

	err = os.MkdirAll(configDir, constants.ConfigDirPerm)
	if err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.yml"), nil
}

func saveConfigStruct(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// Keep the running process in step with the file.
	for key, value := range map[string]interface{}{
		keyAPI:          config.API,
		keyTokenURL:     config.TokenURL,
		keyAPIKey:       config.APIKey,
		keyAPIKeyHeader: config.APIKeyHeader,
		keyToken:        config.Token,
		keyOutput:       config.Output,
		keyCacheTokens:  config.CacheTokens,
		keyTokenCache:   config.TokenCache,
		keyMaxPageSize:  config.MaxPageSize,
	} {
		viper.Set(key, value)
	}

	return nil
}

func formatConfigValue(value string) string {
	if value == "" {
		return NotAvailable
	}

	return value
}

func outputConfigUpdateResult(w io.Writer, action, key, value string) error {
	result := map[string]string{
		"action": action,
		"key":    key,
	}

	if value != "" {
		result["value"] = value
	}

	switch viper.GetString(keyOutput) {
	case constants.FormatJSON:
		return writeJSON(w, result)
	case constants.FormatYAML:
		return writeYAML(w, result)
	}

	table := tablewriter.NewWriter(w)
	table.Header("Property", "Value")

	_ = table.Append([]string{"Action", action})
	_ = table.Append([]string{"Key", key})

	if value != "" && key != keyAPIKey && key != keyToken {
		_ = table.Append([]string{"Value", value})
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render update results table: %w", err)
	}

	return nil
}
