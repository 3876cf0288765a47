package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/logiclink/logiclink/internal/telemetry"
	"github.com/logiclink/logiclink/pkg/codec"
)

// ErrInvalidConfig wraps every error returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their YAML names so messages match the file.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks struct tags first, then the rules spanning several
// fields. It does not modify cfg.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return formatValidationErrors(verrs)
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.Endpoint == "" {
		return fmt.Errorf("%w: telemetry.endpoint is required when telemetry is enabled", ErrInvalidConfig)
	}
	if p := cfg.Telemetry.Profiling; p.Enabled {
		if p.Endpoint == "" {
			return fmt.Errorf("%w: telemetry.profiling.endpoint is required when profiling is enabled", ErrInvalidConfig)
		}
		for _, name := range p.ProfileTypes {
			if _, err := telemetry.ParseProfileType(name); err != nil {
				return fmt.Errorf("%w: telemetry.profiling: %w", ErrInvalidConfig, err)
			}
		}
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Port == 0 {
		return fmt.Errorf("%w: metrics.port is required when metrics are enabled", ErrInvalidConfig)
	}

	if err := cfg.Acquisition.Acquisition.Validate(); err != nil {
		return fmt.Errorf("%w: acquisition: %w", ErrInvalidConfig, err)
	}
	if _, err := codec.Get(cfg.Acquisition.Codec); err != nil {
		return fmt.Errorf("%w: acquisition.codec: %w", ErrInvalidConfig, err)
	}
	if _, err := cfg.BlockArrayConfig(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func formatValidationErrors(verrs validator.ValidationErrors) error {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		// Namespace is "Config.logging.level"; drop the root type name.
		_, field, _ := strings.Cut(fe.Namespace(), ".")
		msg := fmt.Sprintf("%s failed on '%s'", field, fe.Tag())
		if fe.Param() != "" {
			msg += fmt.Sprintf(" (%s)", fe.Param())
		}
		msgs = append(msgs, msg)
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}
