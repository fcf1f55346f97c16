package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/cognicore/recipebook/pkg/recipebook/cover"
	"github.com/cognicore/recipebook/pkg/recipebook/internalerr"
)

// Config is the full converter configuration.
type Config struct {
	Input  InputConfig  `yaml:"input"`
	Cover  CoverConfig  `yaml:"cover"`
	Output OutputConfig `yaml:"output"`
	Log    LogConfig    `yaml:"log"`
}

// InputConfig locates the recipe sheet.
type InputConfig struct {
	Path      string `yaml:"path" validate:"required"`
	Sheet     string `yaml:"sheet"`
	StripHTML bool   `yaml:"strip_html"`
}

// CoverConfig controls cover lookup. An empty Dir disables covers.
type CoverConfig struct {
	Dir     string `yaml:"dir"`
	MaxEdge int    `yaml:"max_edge" validate:"gte=1,lte=10000"`
	Quality int    `yaml:"quality" validate:"gte=1,lte=100"`
}

// OutputConfig names the produced files. An empty JSON path means a
// timestamped file next to the input; an empty SQLite path skips the store.
type OutputConfig struct {
	JSON   string `yaml:"json"`
	SQLite string `yaml:"sqlite"`
}

// LogConfig selects the log level and encoder.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=console json"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Input: InputConfig{Path: "recipes.xlsx"},
		Cover: CoverConfig{
			MaxEdge: cover.DefaultMaxEdge,
			Quality: cover.DefaultQuality,
		},
		Log: LogConfig{Level: "info", Format: "console"},
	}
}

// CoverOptions converts the cover section for the cover package.
func (c Config) CoverOptions() cover.Options {
	return cover.Options{MaxEdge: c.Cover.MaxEdge, Quality: c.Cover.Quality}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field ranges and enumerations.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("%w: %s", internalerr.ErrInvalidConfig, strings.Join(msgs, "; "))
}
