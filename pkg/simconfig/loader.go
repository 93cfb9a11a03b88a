package simconfig

import (
	"fmt"
	"os"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// ConfigError reports that a loaded configuration failed validation. It
// wraps the validator.ValidationErrors (or, for the Hybrid cross-field
// check, a plain error) so errors.As can recover structured detail, but
// its Error() message is a human-readable field-by-field summary.
type ConfigError struct {
	Struct string
	Cause  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Struct, formatValidationError(e.Cause))
}

func (e *ConfigError) Unwrap() error { return e.Cause }

// formatValidationError converts validator errors into one message per
// offending field.
func formatValidationError(err error) string {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}

	msgs := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s: field is required", e.Field()))
		case "gt":
			msgs = append(msgs, fmt.Sprintf("%s: must be greater than %s", e.Field(), e.Param()))
		case "gte":
			msgs = append(msgs, fmt.Sprintf("%s: must be at least %s", e.Field(), e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s: validation failed (%s)", e.Field(), e.Tag()))
		}
	}
	return fmt.Sprintf("%v", msgs)
}

func loadYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// LoadLSMConfig reads and validates an LSMConfig from a YAML file.
func LoadLSMConfig(path string) (*LSMConfig, error) {
	var cfg LSMConfig
	if err := loadYAML(path, &cfg); err != nil {
		return nil, err
	}
	if err := getValidator().Struct(&cfg); err != nil {
		return nil, &ConfigError{Struct: "LSMConfig", Cause: err}
	}
	return &cfg, nil
}

// LoadTLSMConfig reads and validates a TLSMConfig from a YAML file.
func LoadTLSMConfig(path string) (*TLSMConfig, error) {
	var cfg TLSMConfig
	if err := loadYAML(path, &cfg); err != nil {
		return nil, err
	}
	if err := getValidator().Struct(&cfg); err != nil {
		return nil, &ConfigError{Struct: "TLSMConfig", Cause: err}
	}
	return &cfg, nil
}

// LoadHybridConfig reads and validates a HybridConfig from a YAML file.
func LoadHybridConfig(path string) (*HybridConfig, error) {
	var cfg HybridConfig
	if err := loadYAML(path, &cfg); err != nil {
		return nil, err
	}
	if err := getValidator().Struct(&cfg); err != nil {
		return nil, &ConfigError{Struct: "HybridConfig", Cause: err}
	}
	if cfg.MinSequentialBufferSize >= cfg.LSMBufferSize {
		return nil, &ConfigError{
			Struct: "HybridConfig",
			Cause:  fmt.Errorf("min_sequential_buffer_size (%d) must be below lsm_buffer_size (%d)", cfg.MinSequentialBufferSize, cfg.LSMBufferSize),
		}
	}
	return &cfg, nil
}
