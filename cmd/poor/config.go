package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reergymerej/poor-nosql/internal/config"
)

// ConfigResponse is the response for showing the global config.
type ConfigResponse struct {
	Path       string `json:"path"`
	DBPath     string `json:"db_path"`
	MirrorPath string `json:"mirror_path"`
	LogLevel   string `json:"log_level"`
	Indent     bool   `json:"indent"`
}

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set global configuration values",
	Long: `Get or set values in the global config file.

Usage:
  poor config                        # Show all config
  poor config db_path                # Get specific value
  poor config db_path ~/data/db.json # Set value

Keys:
  db_path      Dataset file used when --db and POOR_DB are unset
  mirror_path  SQLite mirror file (default: next to the dataset)
  log_level    debug, info, warn, or error (default: warn)
  indent       true to pretty-print the dataset file`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	// No args: show all config
	if len(args) == 0 {
		resp := ConfigResponse{
			Path:       config.GlobalConfigPath(),
			DBPath:     cfg.DBPath,
			MirrorPath: cfg.MirrorPath,
			LogLevel:   cfg.LogLevel,
			Indent:     cfg.Indent,
		}
		if humanOutput {
			outputHuman("config:      %s\n", resp.Path)
			outputHuman("db_path:     %s\n", resp.DBPath)
			outputHuman("mirror_path: %s\n", resp.MirrorPath)
			outputHuman("log_level:   %s\n", resp.LogLevel)
			outputHuman("indent:      %t\n", resp.Indent)
		} else {
			outputJSON(resp)
		}
		return nil
	}

	key := normalizeKey(args[0])

	// One arg: get specific value
	if len(args) == 1 {
		value, ok := configValue(cfg, key)
		if !ok {
			exitWithError(ExitError, "unknown configuration key: %s (valid: %s)", args[0], strings.Join(config.Keys, ", "))
		}
		if humanOutput {
			outputHuman("%s\n", value)
		} else {
			outputJSON(map[string]string{key: value})
		}
		return nil
	}

	// Two args: set value
	value := args[1]
	if key == "db_path" || key == "mirror_path" {
		value = config.ExpandPath(value)
	}
	if err := cfg.Set(key, value); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	if err := config.SaveGlobalConfig(cfg); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	if humanOutput {
		outputHuman("Updated %s to %s\n", key, value)
	} else {
		outputJSON(UpdateResponse{
			Status: "updated",
			Key:    key,
			Value:  value,
		})
	}

	return nil
}

// configValue returns the string form of one setting.
func configValue(cfg *config.GlobalConfig, key string) (string, bool) {
	switch key {
	case "db_path":
		return cfg.DBPath, true
	case "mirror_path":
		return cfg.MirrorPath, true
	case "log_level":
		return cfg.LogLevel, true
	case "indent":
		return fmt.Sprintf("%t", cfg.Indent), true
	default:
		return "", false
	}
}

// normalizeKey converts key formats (db-path, DB_PATH) to the stored form.
func normalizeKey(key string) string {
	key = strings.ToLower(key)
	return strings.ReplaceAll(key, "-", "_")
}
