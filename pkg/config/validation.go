package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validate checks cfg for internally-consistent values after defaulting,
// driven by the `validate` struct tags on Config's fields.
func Validate(cfg *Config) error {
	val := validator.New()
	err := val.Struct(cfg)
	if err == nil {
		return nil
	}

	if e, ok := err.(*validator.InvalidValidationError); ok {
		return fmt.Errorf("config: validate: %w", e)
	}

	var combined error
	for _, e := range err.(validator.ValidationErrors) {
		fieldErr := fmt.Errorf("config: field %q fails constraint %q", e.Namespace(), e.ActualTag())
		if combined == nil {
			combined = fieldErr
			continue
		}
		combined = fmt.Errorf("%w; %w", combined, fieldErr)
	}
	return combined
}
