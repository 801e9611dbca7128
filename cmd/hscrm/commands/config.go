package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fivetwenty-io/hscrm/internal/constants"
	"github.com/fivetwenty-io/hscrm/pkg/hscrm"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration file.
type Config struct {
	APIEndpoint string `json:"api_endpoint,omitempty" yaml:"api_endpoint,omitempty"`
	AccessToken string `json:"access_token,omitempty" yaml:"access_token,omitempty"`
	PipelineID  string `json:"pipeline_id,omitempty"  yaml:"pipeline_id,omitempty"`
	Output      string `json:"output,omitempty"       yaml:"output,omitempty"`
	Cache       string `json:"cache,omitempty"        yaml:"cache,omitempty"`
	NATSURL     string `json:"nats_url,omitempty"     yaml:"nats_url,omitempty"`
}

// configField binds a config key to its field.
type configField struct {
	get      func(*Config) string
	set      func(*Config, string)
	validate func(string) error
	secret   bool
}

var configFields = map[string]configField{
	"api_endpoint": {
		get: func(c *Config) string { return c.APIEndpoint },
		set: func(c *Config, v string) { c.APIEndpoint = v },
	},
	"access_token": {
		get:    func(c *Config) string { return c.AccessToken },
		set:    func(c *Config, v string) { c.AccessToken = v },
		secret: true,
	},
	"pipeline_id": {
		get: func(c *Config) string { return c.PipelineID },
		set: func(c *Config, v string) { c.PipelineID = v },
	},
	"output": {
		get:      func(c *Config) string { return c.Output },
		set:      func(c *Config, v string) { c.Output = v },
		validate: validateOutputFormat,
	},
	"cache": {
		get:      func(c *Config) string { return c.Cache },
		set:      func(c *Config, v string) { c.Cache = v },
		validate: validateCacheType,
	},
	"nats_url": {
		get: func(c *Config) string { return c.NATSURL },
		set: func(c *Config, v string) { c.NATSURL = v },
	},
}

// configKeys returns the known keys in display order.
func configKeys() []string {
	keys := make([]string, 0, len(configFields))
	for key := range configFields {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	return keys
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage the hscrm CLI configuration stored in ~/.hscrm/config.yml",
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
		Long:  "Display the current CLI configuration with the access token masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := maskedConfig(loadConfig())

			return renderOutput(config, displayConfigTable)
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. Keys: " + strings.Join(configKeys(), ", "),
		Args:  cobra.ExactArgs(constants.TwoArguments),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			field, ok := configFields[key]
			if !ok {
				return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
			}

			if field.validate != nil {
				err := field.validate(value)
				if err != nil {
					return err
				}
			}

			config := loadConfig()
			field.set(config, value)

			err := saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			if field.secret {
				value = constants.MaskedValue
			}

			return outputConfigUpdateResult("set", key, value)
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			field, ok := configFields[key]
			if !ok {
				return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
			}

			config := loadConfig()
			field.set(config, "")

			err := saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			return outputConfigUpdateResult("unset", key, "")
		},
	}
}

// loadConfig reads the effective configuration from viper.
func loadConfig() *Config {
	return &Config{
		APIEndpoint: viper.GetString("api_endpoint"),
		AccessToken: viper.GetString("access_token"),
		PipelineID:  viper.GetString("pipeline_id"),
		Output:      viper.GetString("output"),
		Cache:       viper.GetString("cache"),
		NATSURL:     viper.GetString("nats_url"),
	}
}

func maskedConfig(config *Config) *Config {
	masked := *config
	if masked.AccessToken != "" {
		masked.AccessToken = constants.MaskedValue
	}

	return &masked
}

// configFilePath returns the file viper read, or the default location.
func configFilePath() (string, error) {
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		if strings.Contains(configFile, "..") {
			return "", fmt.Errorf("%w: %s", constants.ErrConfigDirTraversal, configFile)
		}

		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, constants.ConfigDirName, constants.ConfigFileName), nil
}

func saveConfigStruct(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func validateOutputFormat(value string) error {
	switch value {
	case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
		return nil
	default:
		return fmt.Errorf("%w: %s", constants.ErrInvalidOutputFormat, value)
	}
}

func validateCacheType(value string) error {
	_, err := hscrm.ParseCacheType(value)
	if err != nil {
		return fmt.Errorf("%w: %w", constants.ErrInvalidCacheType, err)
	}

	return nil
}

func displayConfigTable(config *Config) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Property", "Value")

	for _, key := range configKeys() {
		_ = table.Append(key, formatConfigValue(configFields[key].get(config)))
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func formatConfigValue(value string) string {
	if value == "" {
		return NotAvailable
	}

	return value
}

func outputConfigUpdateResult(action, key, value string) error {
	result := map[string]string{
		"action": action,
		"key":    key,
	}
	if value != "" {
		result["value"] = value
	}

	return renderOutput(result, func(map[string]string) error {
		if value == "" {
			_, _ = fmt.Fprintf(os.Stdout, "Configuration %s: %s\n", action, key)
		} else {
			_, _ = fmt.Fprintf(os.Stdout, "Configuration %s: %s = %s\n", action, key, value)
		}

		return nil
	})
}
