package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Ref-Hub/refhub-cli/internal/ux"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or edit RefHub configuration",
	Long: `Manage RefHub global configuration stored at ~/.refhub/config.yaml

Configuration includes:
  • API base URL
  • Default output format and page size
  • Logging settings
  • Credential sealing

Examples:
  # View current configuration
  refhub config view

  # Edit configuration in $EDITOR
  refhub config edit

  # Get a specific value
  refhub config get api.base_url

  # Set a specific value
  refhub config set defaults.page_size 50

  # Show configuration file path
  refhub config path
`,
}

var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "Display current configuration",
	Long:  `Display the current RefHub configuration in the specified format.`,
	RunE:  runConfigView,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration in $EDITOR",
	Long:  `Open the configuration file in your default editor (from $EDITOR environment variable).`,
	RunE:  runConfigEdit,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  `Retrieve the value of a specific configuration key using dot notation (e.g., api.base_url).`,
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a specific configuration value",
	Long:  `Set the value of a specific configuration key using dot notation (e.g., defaults.format json).`,
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Long:  `Display the path to the global configuration file.`,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configViewCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(configCmd)
}

// GlobalConfig represents the global RefHub configuration
type GlobalConfig struct {
	API      APIConfig       `yaml:"api,omitempty"`
	Defaults CommandDefaults `yaml:"defaults,omitempty"`
	Logging  LoggingConfig   `yaml:"logging,omitempty"`
	Security SecurityConfig  `yaml:"security,omitempty"`
}

type APIConfig struct {
	BaseURL string `yaml:"base_url,omitempty"`
}

type CommandDefaults struct {
	Format   string `yaml:"format,omitempty"` // "text", "json", "yaml"
	NoColor  bool   `yaml:"no_color,omitempty"`
	PageSize int    `yaml:"page_size,omitempty"`
}

type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // "debug", "info", "warn", "error"
}

type SecurityConfig struct {
	// SealCredentials encrypts the stored token file with the
	// passphrase in REFHUB_SEAL_KEY.
	SealCredentials bool `yaml:"seal_credentials,omitempty"`
}

// getConfigPath returns the path to the global configuration file
func getConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(home, ".refhub")
	configFile := filepath.Join(configDir, "config.yaml")

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configFile, nil
}

// loadConfig loads the global configuration, creating default if it doesn't exist
func loadConfig() (*GlobalConfig, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		defaultConfig := defaultGlobalConfig()
		if err := saveConfig(defaultConfig, configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return defaultConfig, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config GlobalConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// saveConfig saves the configuration to the file
func saveConfig(config *GlobalConfig, path string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// defaultGlobalConfig returns the default global configuration
func defaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		API: APIConfig{
			BaseURL: "https://api.refhub.io",
		},
		Defaults: CommandDefaults{
			Format:   "text",
			NoColor:  false,
			PageSize: 20,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
		Security: SecurityConfig{
			SealCredentials: false,
		},
	}
}

func runConfigView(cmd *cobra.Command, args []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return fmt.Errorf("failed to create command context: %w", err)
	}

	config, err := loadConfig()
	if err != nil {
		return ux.FormatError(err, "loading configuration")
	}

	if cmdCtx.Format == "json" || cmdCtx.Format == "yaml" {
		formatter, err := ux.NewFormatter(cmdCtx.Format, &ux.FormatterOptions{
			NoColor: cmdCtx.NoColor,
		})
		if err != nil {
			return err
		}
		return formatter.Format(config)
	}

	configPath, _ := getConfigPath()
	fmt.Printf("Configuration file: %s\n\n", configPath)

	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	fmt.Println(string(data))
	return nil
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	configPath, err := getConfigPath()
	if err != nil {
		return ux.FormatError(err, "getting config path")
	}

	if _, err := loadConfig(); err != nil {
		return ux.FormatError(err, "loading configuration")
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("failed to run editor: %w", err)
	}

	if _, err := loadConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Configuration may contain errors: %v\n", err)
		fmt.Fprintf(os.Stderr, "Please check and fix the configuration file.\n")
		return err
	}

	fmt.Println("✓ Configuration updated successfully")
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	config, err := loadConfig()
	if err != nil {
		return ux.FormatError(err, "loading configuration")
	}

	value, err := getNestedValue(config, key)
	if err != nil {
		return fmt.Errorf("failed to get value: %w", err)
	}

	fmt.Println(value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	config, err := loadConfig()
	if err != nil {
		return ux.FormatError(err, "loading configuration")
	}

	if err := setNestedValue(config, key, value); err != nil {
		return fmt.Errorf("failed to set value: %w", err)
	}

	configPath, err := getConfigPath()
	if err != nil {
		return err
	}

	if err := saveConfig(config, configPath); err != nil {
		return ux.FormatError(err, "saving configuration")
	}

	fmt.Printf("✓ Set %s = %s\n", key, value)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	configPath, err := getConfigPath()
	if err != nil {
		return ux.FormatError(err, "getting config path")
	}

	fmt.Println(configPath)
	return nil
}

// getNestedValue retrieves a value from the config using dot notation
func getNestedValue(config *GlobalConfig, key string) (string, error) {
	switch key {
	case "api.base_url":
		return config.API.BaseURL, nil
	case "defaults.format":
		return config.Defaults.Format, nil
	case "defaults.no_color":
		return fmt.Sprintf("%t", config.Defaults.NoColor), nil
	case "defaults.page_size":
		return fmt.Sprintf("%d", config.Defaults.PageSize), nil
	case "logging.level":
		return config.Logging.Level, nil
	case "security.seal_credentials":
		return fmt.Sprintf("%t", config.Security.SealCredentials), nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// setNestedValue sets a value in the config using dot notation
func setNestedValue(config *GlobalConfig, key, value string) error {
	switch key {
	case "api.base_url":
		config.API.BaseURL = value
	case "defaults.format":
		config.Defaults.Format = value
	case "defaults.no_color":
		config.Defaults.NoColor = parseBool(value)
	case "defaults.page_size":
		if v, err := parseInt(value); err == nil {
			config.Defaults.PageSize = v
		} else {
			return err
		}
	case "logging.level":
		config.Logging.Level = value
	case "security.seal_credentials":
		config.Security.SealCredentials = parseBool(value)
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	return nil
}

// Helper functions for parsing values
func parseBool(s string) bool {
	s = strings.ToLower(s)
	return s == "true" || s == "yes" || s == "1"
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(s)
}
