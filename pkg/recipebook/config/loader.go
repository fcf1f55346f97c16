package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/recipebook/pkg/recipebook/internalerr"
)

// Environment variables that override file values.
const (
	EnvInput    = "RECIPEBOOK_INPUT"
	EnvSheet    = "RECIPEBOOK_SHEET"
	EnvCoverDir = "RECIPEBOOK_COVER_DIR"
	EnvOutput   = "RECIPEBOOK_OUTPUT"
	EnvSQLite   = "RECIPEBOOK_SQLITE"
	EnvLogLevel = "RECIPEBOOK_LOG_LEVEL"
)

// Load reads a YAML file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
	}

	return cfg, nil
}

// ApplyEnv overrides fields from the environment. lookup is usually
// os.LookupEnv.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	set(EnvInput, &cfg.Input.Path)
	set(EnvSheet, &cfg.Input.Sheet)
	set(EnvCoverDir, &cfg.Cover.Dir)
	set(EnvOutput, &cfg.Output.JSON)
	set(EnvSQLite, &cfg.Output.SQLite)
	set(EnvLogLevel, &cfg.Log.Level)
}

// DefaultOutputPath returns recipes_backup_<timestamp>.json in the input
// file's directory.
func DefaultOutputPath(inputPath string, now time.Time) string {
	name := fmt.Sprintf("recipes_backup_%s.json", now.Format("20060102_150405"))
	return filepath.Join(filepath.Dir(inputPath), name)
}
