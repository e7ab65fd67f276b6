package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultDBFile is used when no path is configured anywhere.
	DefaultDBFile = "db.json"
	// EnvDBPath overrides the global config db_path.
	EnvDBPath = "POOR_DB"
	// EnvMirrorPath overrides the global config mirror_path.
	EnvMirrorPath = "POOR_MIRROR"
)

// Keys lists the settings accepted by Set, in display order.
var Keys = []string{"db_path", "mirror_path", "log_level", "indent"}

// ValidLogLevels lists the accepted log_level values.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// ResolveDBPath picks the dataset file path. Precedence: flag, POOR_DB,
// global config db_path, then db.json in the working directory.
func ResolveDBPath(flag string) (string, error) {
	if flag != "" {
		return ExpandPath(flag), nil
	}
	if env := os.Getenv(EnvDBPath); env != "" {
		return ExpandPath(env), nil
	}

	cfg, err := LoadGlobalConfig()
	if err != nil {
		return "", err
	}
	if cfg.DBPath != "" {
		return cfg.DBPath, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	return filepath.Join(cwd, DefaultDBFile), nil
}

// ResolveMirrorPath picks the SQLite mirror path for dbPath. Precedence:
// flag, POOR_MIRROR, global config mirror_path, then dbPath with its
// extension replaced by .sqlite.
func ResolveMirrorPath(flag, dbPath string) (string, error) {
	if flag != "" {
		return ExpandPath(flag), nil
	}
	if env := os.Getenv(EnvMirrorPath); env != "" {
		return ExpandPath(env), nil
	}

	cfg, err := LoadGlobalConfig()
	if err != nil {
		return "", err
	}
	if cfg.MirrorPath != "" {
		return cfg.MirrorPath, nil
	}

	return strings.TrimSuffix(dbPath, filepath.Ext(dbPath)) + ".sqlite", nil
}

// Set updates one setting by key.
func (c *GlobalConfig) Set(key, value string) error {
	switch key {
	case "db_path":
		c.DBPath = value
	case "mirror_path":
		c.MirrorPath = value
	case "log_level":
		if err := ValidateLogLevel(value); err != nil {
			return err
		}
		c.LogLevel = value
	case "indent":
		switch value {
		case "true":
			c.Indent = true
		case "false":
			c.Indent = false
		default:
			return fmt.Errorf("invalid indent: %s (valid: true, false)", value)
		}
	default:
		return fmt.Errorf("unknown config key: %s (valid: %s)", key, strings.Join(Keys, ", "))
	}
	return nil
}

// ValidateLogLevel checks that the level value is valid.
func ValidateLogLevel(level string) error {
	if level == "" {
		return nil // Empty defaults to "warn"
	}

	for _, valid := range ValidLogLevels {
		if level == valid {
			return nil
		}
	}

	return fmt.Errorf("invalid log_level: %s (valid: %v)", level, ValidLogLevels)
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
