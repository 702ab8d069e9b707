// Package config loads pdfrotate settings from a .env file and the environment.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every environment variable name.
const Prefix = "PDFROTATE"

// Defaults, kept in sync with the struct tags below.
const (
	DefaultLogLevel      = "INFO"
	DefaultLogFormat     = LogFormatPretty
	DefaultOutputSuffix  = "_rotated"
	DefaultValidation    = ValidationRelaxed
	DefaultDetectMaxSkew = 2.5
)

// LogFormat selects the log handler.
type LogFormat string

// Log formats.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// Validation selects how strictly input PDFs are validated.
type Validation string

// Validation modes.
const (
	ValidationRelaxed Validation = "relaxed"
	ValidationStrict  Validation = "strict"
)

// Config holds all settings.
type Config struct {
	// LogLevel is one of DEBUG, INFO, WARN, ERROR.
	// Env: PDFROTATE_LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is pretty or json.
	// Env: PDFROTATE_LOG_FORMAT (default: pretty)
	LogFormat LogFormat `envconfig:"LOG_FORMAT" default:"pretty"`

	// OutputSuffix is appended to the input stem when no output name is given.
	// Env: PDFROTATE_OUTPUT_SUFFIX (default: _rotated)
	OutputSuffix string `envconfig:"OUTPUT_SUFFIX" default:"_rotated"`

	// Validation is the PDF validation mode, relaxed or strict.
	// Env: PDFROTATE_VALIDATION (default: relaxed)
	Validation Validation `envconfig:"VALIDATION" default:"relaxed"`

	// DetectMaxSkew is the largest deviation from a multiple of 90 degrees
	// that detect still reports as a rotated page.
	// Env: PDFROTATE_DETECT_MAX_SKEW (default: 2.5)
	DetectMaxSkew float64 `envconfig:"DETECT_MAX_SKEW" default:"2.5"`
}

// Load reads envPath (if it exists) and then the environment.
// Variables already present in the environment win over the .env file.
func Load(envPath string) (Config, error) {
	if err := loadDotEnv(envPath); err != nil {
		return Config{}, fmt.Errorf("load %s: %w", envPath, err)
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return Config{}, err
	}
	return cfg.normalize()
}

func loadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

func (c Config) normalize() (Config, error) {
	c.LogFormat = LogFormat(strings.ToLower(string(c.LogFormat)))
	switch c.LogFormat {
	case LogFormatPretty, LogFormatJSON:
	default:
		return Config{}, fmt.Errorf("unknown log format %q", c.LogFormat)
	}

	c.Validation = Validation(strings.ToLower(string(c.Validation)))
	switch c.Validation {
	case ValidationRelaxed, ValidationStrict:
	default:
		return Config{}, fmt.Errorf("unknown validation mode %q", c.Validation)
	}

	if c.DetectMaxSkew < 0 {
		return Config{}, fmt.Errorf("detect max skew must not be negative, got %v", c.DetectMaxSkew)
	}
	return c, nil
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		LogLevel:      DefaultLogLevel,
		LogFormat:     DefaultLogFormat,
		OutputSuffix:  DefaultOutputSuffix,
		Validation:    DefaultValidation,
		DetectMaxSkew: DefaultDetectMaxSkew,
	}
}
