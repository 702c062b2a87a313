package config

import (
	"os"
	"runtime"
	"strconv"
	"strings"

	"bayesab/domain/bayes"
	"bayesab/internal/errors"

	"github.com/go-playground/validator/v10"
)

// Config represents the complete engine configuration
type Config struct {
	Engine EngineConfig `validate:"required"`
	Batch  BatchConfig  `validate:"required"`
	Log    LogConfig    `validate:"required"`
}

// EngineConfig holds defaults for single A/B comparisons
type EngineConfig struct {
	SimulationCount int     `validate:"gte=1"`
	CredibleLevel   float64 `validate:"gt=0,lt=1"`
	Seed            *uint64 // nil means a fresh seed per test
}

// BatchConfig holds calibration batch settings
type BatchConfig struct {
	Workers int `validate:"gte=1"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `validate:"oneof=ERROR WARN INFO DEBUG TRACE"`
}

var validate = validator.New()

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	seed, err := getEnvUint64Ptr("BAYESAB_SEED")
	if err != nil {
		return nil, err
	}

	config := &Config{
		Engine: EngineConfig{
			SimulationCount: getEnvIntOrDefault("BAYESAB_SIMULATIONS", bayes.DefaultSimulationCount),
			CredibleLevel:   getEnvFloatOrDefault("BAYESAB_CRED_LEVEL", bayes.DefaultCredibleLevel),
			Seed:            seed,
		},
		Batch: BatchConfig{
			Workers: getEnvIntOrDefault("BAYESAB_WORKERS", runtime.GOMAXPROCS(0)),
		},
		Log: LogConfig{
			Level: strings.ToUpper(getEnvOrDefault("LOG_LEVEL", "INFO")),
		},
	}

	if err := Validate(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Validate checks struct constraints and reports the first failing field
func Validate(config *Config) error {
	if err := validate.Struct(config); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			return errors.ConfigInvalid(fe.Namespace() + " failed '" + fe.Tag() + "' constraint (value " + toString(fe.Value()) + ")")
		}
		return errors.ConfigInvalid(err.Error())
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvUint64Ptr(key string) (*uint64, error) {
	value := os.Getenv(key)
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return nil, errors.ConfigInvalid(key + " must be an unsigned integer")
	}
	return &parsed, nil
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case string:
		return strconv.Quote(t)
	default:
		return "?"
	}
}
