package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Output formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// Defaults.
const (
	DefaultRandomState = 42
	DefaultFraudRate   = 0.05
	DefaultSamples     = 50000
	DefaultOutputPath  = "data/raw/synthetic_upi_transactions.csv"
)

// Config holds all configuration for a generation run
type Config struct {
	Generation GenerationConfig `yaml:"generation"`
	Output     OutputConfig     `yaml:"output"`
}

// GenerationConfig holds sampler and injector configuration
type GenerationConfig struct {
	RandomState int64   `yaml:"random_state"`
	FraudRate   float64 `yaml:"fraud_rate" validate:"gte=0,lte=1"`
	Samples     int     `yaml:"n_samples" validate:"min=1"`
	// AnchorTime is the end of the 90-day history window, RFC3339.
	// Empty means the moment the run starts.
	AnchorTime string `yaml:"anchor_time" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// OutputConfig holds output configuration
type OutputConfig struct {
	Path        string `yaml:"path" validate:"required"`
	Format      string `yaml:"format" validate:"oneof=csv json"`
	MetricsFile string `yaml:"metrics_file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Generation: GenerationConfig{
			RandomState: DefaultRandomState,
			FraudRate:   DefaultFraudRate,
			Samples:     DefaultSamples,
		},
		Output: OutputConfig{
			Path:   DefaultOutputPath,
			Format: FormatCSV,
		},
	}
}

// Load loads configuration from a YAML file. Fields missing from the file
// keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables. A variable
// that is set but does not parse is an error wrapping ErrInvalidConfig.
func LoadFromEnv() (*Config, error) {
	env := &envReader{}
	cfg := &Config{
		Generation: GenerationConfig{
			RandomState: env.getInt64("RANDOM_STATE", DefaultRandomState),
			FraudRate:   env.getFloat("FRAUD_RATE", DefaultFraudRate),
			Samples:     env.getInt("N_SAMPLES", DefaultSamples),
			AnchorTime:  getEnv("ANCHOR_TIME", ""),
		},
		Output: OutputConfig{
			Path:        getEnv("OUTPUT_PATH", DefaultOutputPath),
			Format:      strings.ToLower(getEnv("OUTPUT_FORMAT", FormatCSV)),
			MetricsFile: getEnv("METRICS_FILE", ""),
		},
	}
	if len(env.errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(env.errs, "; "))
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are skipped.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Validate checks value ranges. Every failure wraps ErrInvalidConfig.
func (c *Config) Validate() error {
	validate := validator.New()

	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	msgs := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

// Anchor parses AnchorTime. It returns the zero time when unset.
func (g GenerationConfig) Anchor() (time.Time, error) {
	if g.AnchorTime == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, g.AnchorTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: anchor_time: %v", ErrInvalidConfig, err)
	}
	return t, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// envReader parses typed environment variables and collects every failure.
type envReader struct {
	errs []string
}

func (r *envReader) fail(key, value string, err error) {
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		err = numErr.Err
	}
	r.errs = append(r.errs, fmt.Sprintf("%s=%q: %v", key, value, err))
}

func (r *envReader) getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		r.fail(key, value, err)
		return defaultValue
	}
	return i
}

func (r *envReader) getInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	i, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		r.fail(key, value, err)
		return defaultValue
	}
	return i
}

func (r *envReader) getFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		r.fail(key, value, err)
		return defaultValue
	}
	return f
}
