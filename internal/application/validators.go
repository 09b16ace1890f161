package application

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/ahrav/go-muonsel/internal/domain"
	"github.com/ahrav/go-muonsel/internal/ports"
)

// selectorValidator is shared by the loader and NewEngine. validator.Validate
// is safe for concurrent use once its registrations are done.
var selectorValidator = sync.OnceValues(newSelectorValidator)

func newSelectorValidator() (*validator.Validate, error) {
	v := validator.New()
	// Report fields by their YAML names so errors point at the document.
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
	if err := registerCustomValidators(v); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}
	return v, nil
}

// registerCustomValidators adds the tags used by SelectorConfig beyond the
// validator's built-ins.
func registerCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("semver", validateSemver); err != nil {
		return fmt.Errorf("failed to register semver validator: %w", err)
	}
	if err := v.RegisterValidation("ascending", validateAscending); err != nil {
		return fmt.Errorf("failed to register ascending validator: %w", err)
	}
	return nil
}

// validateSemver accepts X.Y.Z where X, Y and Z are non-negative integers.
func validateSemver(fl validator.FieldLevel) bool {
	var major, minor, patch int
	n, err := fmt.Sscanf(fl.Field().String(), "%d.%d.%d", &major, &minor, &patch)
	return err == nil && n == 3 && major >= 0 && minor >= 0 && patch >= 0
}

// validateAscending accepts a float slice whose elements strictly increase.
func validateAscending(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Slice {
		return false
	}
	for i := 1; i < field.Len(); i++ {
		if !(field.Index(i).Float() > field.Index(i-1).Float()) {
			return false
		}
	}
	return true
}

// ValidateSelectorConfig checks struct tags and the cross-field rules that
// tags cannot express. Failures are returned as *domain.ConfigError keyed
// by the first offending YAML path. Tag failures carry a
// *domain.ValidationError listing every failed field.
func ValidateSelectorConfig(cfg *SelectorConfig) error {
	v, err := selectorValidator()
	if err != nil {
		return err
	}
	if err := v.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return domain.NewConfigError("selector", fmt.Errorf("struct validation failed: %w", err))
		}
		verr := domain.NewValidationError("selector")
		for _, fe := range fieldErrs {
			verr.AddError(fmt.Sprintf("%s: failed %q check", fieldPath(fe.Namespace()), fe.Tag()))
		}
		if verr.HasErrors() {
			return domain.NewConfigError(fieldPath(fieldErrs[0].Namespace()), verr)
		}
	}
	return validateSemantics(cfg)
}

// fieldPath drops the root type name from a validator namespace.
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

// validateSemantics enforces the rules that depend on more than one field.
func validateSemantics(cfg *SelectorConfig) error {
	_, iso, err := cfg.Variants()
	if err != nil {
		return err
	}

	switch iso {
	case IsoTracker, IsoPF, IsoCombined:
		if cfg.Isolation.Max <= 0 {
			return domain.NewConfigError("isolation.max",
				fmt.Errorf("%w: %s isolation needs a positive maximum", ports.ErrConfigNotFound, iso))
		}
	}

	if cfg.AttributeResolution.Mode != ResolutionLegacy && len(cfg.AttributeResolution.Remap) > 0 {
		return domain.NewConfigError("attribute_resolution.remap",
			fmt.Errorf("%w: remap requires mode %q", domain.ErrInvalidConfiguration, ResolutionLegacy))
	}
	return nil
}
