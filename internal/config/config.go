package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "s38cli/internal/errors"
	"s38cli/pkg/contracts/domain"
)

// Config represents the complete application configuration
type Config struct {
	Decode    DecodeConfig    `yaml:"decode" envconfig:"DECODE"`
	Discovery DiscoveryConfig `yaml:"discovery" envconfig:"DISCOVERY"`
	Output    OutputConfig    `yaml:"output" envconfig:"OUTPUT"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
}

// DecodeConfig controls how S38 record lines are decoded and validated.
type DecodeConfig struct {
	Encoding              string         `yaml:"encoding" envconfig:"ENCODING" validate:"required,charset"`
	Variant               domain.Variant `yaml:"variant" envconfig:"VARIANT" validate:"oneof=basic filtering"`
	MinPrice              float64        `yaml:"min_price" envconfig:"MIN_PRICE" validate:"gte=0"`
	MaxPrice              float64        `yaml:"max_price" envconfig:"MAX_PRICE" validate:"gtfield=MinPrice"`
	MinVolume             int64          `yaml:"min_volume" envconfig:"MIN_VOLUME" validate:"gte=0"`
	MinAmount             int64          `yaml:"min_amount" envconfig:"MIN_AMOUNT" validate:"gte=0"`
	AcceptedIDRanges      IDRanges       `yaml:"accepted_id_ranges" envconfig:"ACCEPTED_ID_RANGES" validate:"dive"`
	StripLeadingZeros     bool           `yaml:"strip_leading_zeros" envconfig:"STRIP_LEADING_ZEROS"`
	PreviewLength         int            `yaml:"preview_length" envconfig:"PREVIEW_LENGTH" validate:"gt=0"`
	ValidateCalendarDates bool           `yaml:"validate_calendar_dates" envconfig:"VALIDATE_CALENDAR_DATES"`
}

// DiscoveryConfig controls which quote files are picked up under Root.
type DiscoveryConfig struct {
	Root           string   `yaml:"root" envconfig:"ROOT"`
	YearOnly       string   `yaml:"year_only" envconfig:"YEAR_ONLY" validate:"omitempty,len=4,numeric"`
	MaxFilesPerDir int      `yaml:"max_files_per_dir" envconfig:"MAX_FILES_PER_DIR" validate:"gte=0"`
	Prefixes       []string `yaml:"prefixes" envconfig:"PREFIXES" validate:"min=1,dive,required"`
}

// OutputConfig controls the batch sink.
// The csv format writes RecordsPath and DiagnosticsPath; xlsx and sqlite keep
// both tables in the single file at RecordsPath.
type OutputConfig struct {
	Format          string `yaml:"format" envconfig:"FORMAT" validate:"oneof=csv xlsx sqlite"`
	RecordsPath     string `yaml:"records_path" envconfig:"RECORDS_PATH" validate:"required"`
	DiagnosticsPath string `yaml:"diagnostics_path" envconfig:"DIAGNOSTICS_PATH" validate:"required_if=Format csv"`
	BatchSize       int    `yaml:"batch_size" envconfig:"BATCH_SIZE" validate:"gt=0"`
	Workers         int    `yaml:"workers" envconfig:"WORKERS" validate:"gte=0"`
	BOM             bool   `yaml:"bom" envconfig:"BOM"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	EnableMetrics  bool    `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
	EnableTracing  bool    `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" validate:"oneof=prometheus none"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
}

// ServerConfig contains the optional status server configuration.
// An empty Addr disables the server.
type ServerConfig struct {
	Addr         string        `yaml:"addr" envconfig:"ADDR"`
	ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gte=0"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gte=0"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Use yaml tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("charset", validateCharset); err != nil {
		panic(err)
	}
	return v
}

// Load builds the configuration from defaults, the YAML file at path (or the
// first config file found in the usual locations when path is empty) and
// S38_* environment variables, in increasing order of precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).
				WithContext("path", path)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile overlays the YAML file at filePath onto cfg.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks struct constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return apperrors.NewConfigError("config validation failed", err)
	}
	if c.Decode.Variant == domain.VariantFiltering && len(c.Decode.AcceptedIDRanges) == 0 {
		return apperrors.NewConfigError("config validation failed",
			fmt.Errorf("accepted_id_ranges must not be empty for the filtering variant"))
	}
	if c.Logging.Format != "json" {
		// Logs are always JSON
		c.Logging.Format = "json"
	}
	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"s38.yaml",
		"configs/s38.yaml",
		"../configs/s38.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Decode: DecodeConfig{
			Encoding:              DefaultEncoding,
			Variant:               domain.VariantBasic,
			MinPrice:              DefaultMinPrice,
			MaxPrice:              DefaultMaxPrice,
			MinVolume:             DefaultMinVolume,
			MinAmount:             DefaultMinAmount,
			AcceptedIDRanges:      IDRanges{{Min: 1000, Max: 9999}},
			StripLeadingZeros:     false,
			PreviewLength:         DefaultPreviewLength,
			ValidateCalendarDates: true,
		},
		Discovery: DiscoveryConfig{
			Root:           ".",
			MaxFilesPerDir: 0,
			Prefixes:       []string{"STKT2QUOTESN", "STKWQUOTES"},
		},
		Output: OutputConfig{
			Format:          "csv",
			RecordsPath:     DefaultRecordsPath,
			DiagnosticsPath: DefaultDiagnosticsPath,
			BatchSize:       DefaultBatchSize,
			Workers:         0,
			BOM:             true,
		},
		Logging: LoggingConfig{
			Level:       "info",
			Format:      "json",
			Output:      "console",
			FilePath:    "logs/s38extract.log",
			Development: false,
		},
		Telemetry: TelemetryConfig{
			EnableMetrics:  true,
			EnableTracing:  false,
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
		Server: ServerConfig{
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
	}
}

// UseVariant switches c to variant together with the policies that belong to
// it. Unknown variants are stored as given and fail Validate.
func (c *Config) UseVariant(variant domain.Variant) {
	if variant == domain.VariantFiltering {
		c.FilteringDefaults()
		return
	}
	c.Decode.Variant = variant
	c.Decode.StripLeadingZeros = false
}

// FilteringDefaults switches c to the filtering variant with the thresholds
// used for the machine-learning export.
func (c *Config) FilteringDefaults() {
	c.Decode.Variant = domain.VariantFiltering
	c.Decode.StripLeadingZeros = true
	if len(c.Decode.AcceptedIDRanges) == 0 {
		c.Decode.AcceptedIDRanges = IDRanges{{Min: 1000, Max: 9999}}
	}
}
