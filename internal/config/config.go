// Package config provides configuration management for csvread loads.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	gojson "github.com/goccy/go-json"
	"github.com/paveg/csvread/internal/column"
	"github.com/paveg/csvread/internal/errors"
	"github.com/paveg/csvread/internal/linereader"
	"github.com/paveg/csvread/internal/loader"
	"github.com/paveg/csvread/internal/validation"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by LoadFromEnv.
const EnvPrefix = "CSVREAD_"

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config holds the defaults applied to loads that leave a setting unset.
type Config struct {
	// Reading
	ChunkSize      int      `json:"chunk_size" yaml:"chunk_size" mapstructure:"chunk_size"`                   // Bytes read per chunk (0 = default)
	Delimiter      string   `json:"delimiter" yaml:"delimiter" mapstructure:"delimiter"`                      // Field delimiter
	Header         bool     `json:"header" yaml:"header" mapstructure:"header"`                               // First line holds column names
	NAStrings      []string `json:"na_strings" yaml:"na_strings" mapstructure:"na_strings"`                   // Texts meaning missing
	StringNAPolicy string   `json:"string_na_policy" yaml:"string_na_policy" mapstructure:"string_na_policy"` // na-set or legacy-null

	// Logging
	VerboseLogging bool   `json:"verbose_logging" yaml:"verbose_logging" mapstructure:"verbose_logging"`
	LogLevel       string `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
	LogFormat      string `json:"log_format" yaml:"log_format" mapstructure:"log_format"`

	// Metrics
	MetricsCollection bool   `json:"metrics_collection" yaml:"metrics_collection" mapstructure:"metrics_collection"`
	MetricsTextfile   string `json:"metrics_textfile" yaml:"metrics_textfile" mapstructure:"metrics_textfile"` // Prometheus textfile path
}

// Global configuration instance
var (
	globalConfig Config
	configMutex  sync.RWMutex
)

// Default configuration values
const (
	DefaultDelimiter      = ","
	DefaultStringNAPolicy = "na-set"
	DefaultLogLevel       = "info"

	// MaxChunkSize caps the read chunk at 1 GiB.
	MaxChunkSize = 1 << 30
)

// DefaultNAStrings is the NA set used when none is configured.
func DefaultNAStrings() []string {
	return []string{"NA"}
}

func init() {
	globalConfig, _ = FromEnvironment()
}

// FromEnvironment returns NewConfig overridden by the CSVREAD_* variables.
// When the result does not validate, the variables are ignored and the
// defaults are returned with the validation error.
func FromEnvironment() (Config, error) {
	cfg := LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		return NewConfig(), err
	}
	return cfg, nil
}

// NewConfig creates a new configuration with default values
func NewConfig() Config {
	return Config{
		ChunkSize:      linereader.DefaultChunkSize,
		Delimiter:      DefaultDelimiter,
		Header:         true,
		NAStrings:      DefaultNAStrings(),
		StringNAPolicy: DefaultStringNAPolicy,
		LogLevel:       DefaultLogLevel,
		LogFormat:      LogFormatText,
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if err := validation.ValidateRange("chunk_size", c.ChunkSize, 0, MaxChunkSize, "Config"); err != nil {
		return err
	}
	if err := validation.ValidateRequired(c.NAStrings != nil, errors.ErrMissingNAStrings, "Config"); err != nil {
		return err
	}
	if err := validation.ValidateDelimiter(c.Delimiter, "Config"); err != nil {
		return err
	}
	if _, err := column.ParseStringNAPolicy(c.StringNAPolicy); err != nil {
		return err
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("LogFormat must be %q or %q, got %q", LogFormatText, LogFormatJSON, c.LogFormat)
	}
	return nil
}

// WithDefaults returns a new configuration with default values filled in for zero values
func (c Config) WithDefaults() Config {
	defaults := NewConfig()

	if c.ChunkSize == 0 {
		c.ChunkSize = defaults.ChunkSize
	}
	if c.Delimiter == "" {
		c.Delimiter = defaults.Delimiter
	}
	if c.NAStrings == nil {
		c.NAStrings = defaults.NAStrings
	}
	if c.StringNAPolicy == "" {
		c.StringNAPolicy = defaults.StringNAPolicy
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = defaults.LogFormat
	}
	return c
}

// SlogLevel parses LogLevel. Verbose logging lowers the level to Info at
// most, so load progress is visible.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel != "" {
		if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
			return 0, fmt.Errorf("parsing log level %q: %w", c.LogLevel, err)
		}
	}
	if c.VerboseLogging && level > slog.LevelInfo {
		level = slog.LevelInfo
	}
	return level, nil
}

// ApplyTo fills the unset fields of schema from the configuration. A schema
// value always wins.
func (c Config) ApplyTo(schema loader.Schema) loader.Schema {
	if schema.Delimiter == "" {
		schema.Delimiter = c.Delimiter
	}
	if schema.Header == nil {
		header := c.Header
		schema.Header = &header
	}
	if schema.NAStrings == nil && c.NAStrings != nil {
		schema.NAStrings = append([]string(nil), c.NAStrings...)
	}
	if schema.StringNAPolicy == "" {
		schema.StringNAPolicy = c.StringNAPolicy
	}
	if c.VerboseLogging {
		schema.Verbose = true
	}
	return schema
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config Config) {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = config
}

// GetGlobalConfig returns the current global configuration
func GetGlobalConfig() Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// LoadFromJSON loads configuration from JSON data. Keys that are absent
// keep their NewConfig values.
func LoadFromJSON(data []byte) (Config, error) {
	config := NewConfig()
	if err := gojson.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing JSON configuration: %w", err)
	}
	return config.WithDefaults(), nil
}

// LoadFromYAML loads configuration from YAML data. Keys that are absent
// keep their NewConfig values.
func LoadFromYAML(data []byte) (Config, error) {
	config := NewConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing YAML configuration: %w", err)
	}
	return config.WithDefaults(), nil
}

// LoadFromFile loads configuration from a JSON or YAML file
func LoadFromFile(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", filename, err)
	}

	var config Config
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".json":
		config, err = LoadFromJSON(data)
	case ".yaml", ".yml":
		config, err = LoadFromYAML(data)
	default:
		return Config{}, fmt.Errorf("unsupported config file format: %s", ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config file %s: %w", filename, err)
	}
	return config, nil
}

// LoadFromEnv loads configuration from environment variables. Values that
// do not parse are ignored.
func LoadFromEnv() Config {
	config := NewConfig()

	if val := os.Getenv(EnvPrefix + "CHUNK_SIZE"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			config.ChunkSize = parsed
		}
	}

	if val := os.Getenv(EnvPrefix + "DELIMITER"); val != "" {
		config.Delimiter = val
	}

	if val := os.Getenv(EnvPrefix + "HEADER"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			config.Header = parsed
		}
	}

	// Comma separated; set but empty means no NA text.
	if val, ok := os.LookupEnv(EnvPrefix + "NA_STRINGS"); ok {
		config.NAStrings = splitList(val)
	}

	if val := os.Getenv(EnvPrefix + "STRING_NA_POLICY"); val != "" {
		config.StringNAPolicy = val
	}

	if val := os.Getenv(EnvPrefix + "VERBOSE_LOGGING"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			config.VerboseLogging = parsed
		}
	}

	if val := os.Getenv(EnvPrefix + "LOG_LEVEL"); val != "" {
		config.LogLevel = val
	}

	if val := os.Getenv(EnvPrefix + "LOG_FORMAT"); val != "" {
		config.LogFormat = val
	}

	if val := os.Getenv(EnvPrefix + "METRICS_COLLECTION"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			config.MetricsCollection = parsed
		}
	}

	if val := os.Getenv(EnvPrefix + "METRICS_TEXTFILE"); val != "" {
		config.MetricsTextfile = val
	}

	return config
}

func splitList(val string) []string {
	if val == "" {
		return []string{}
	}
	return strings.Split(val, ",")
}
