// Package validation checks engine configuration payloads at the API
// boundary before they reach the store.
package validation

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"marksight/internal/config"
	"marksight/pkg/contracts/domain"
)

// ConfigValidator validates section and credit configuration payloads.
type ConfigValidator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewConfigValidator creates a new config validator.
func NewConfigValidator(logger *slog.Logger) *ConfigValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfigValidator{
		validate: validator.New(),
		logger:   logger,
	}
}

// ValidateSections validates a section configuration: section names and
// range bounds must be non-empty, and range bounds must carry a digit
// run to compare identifiers against.
func (v *ConfigValidator) ValidateSections(cfg domain.SectionConfig) error {
	if err := v.validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid section config: %w", err)
	}

	for section, rng := range cfg.Ranges {
		if strings.TrimSpace(section) == "" {
			return fmt.Errorf("invalid section config: empty section name in ranges")
		}
		if !hasDigit(rng.Start) || !hasDigit(rng.End) {
			return fmt.Errorf("invalid section config: range for %q needs numeric bounds, got %q..%q", section, rng.Start, rng.End)
		}
	}

	for studentID, section := range cfg.Explicit {
		if strings.TrimSpace(studentID) == "" {
			return fmt.Errorf("invalid section config: empty student identifier in explicit map")
		}
		if strings.TrimSpace(section) == "" {
			return fmt.Errorf("invalid section config: empty section for student %q", studentID)
		}
	}

	v.logger.Debug("section config validated",
		slog.Int("ranges", len(cfg.Ranges)),
		slog.Int("explicit", len(cfg.Explicit)))

	return nil
}

// ValidateCredits validates a credit configuration: non-empty subject
// codes and weights inside the allowed band.
func (v *ConfigValidator) ValidateCredits(cfg domain.CreditConfig) error {
	for code, credit := range cfg {
		if strings.TrimSpace(code) == "" {
			return fmt.Errorf("invalid credit config: empty subject code")
		}
		constraint := fmt.Sprintf("min=%d,max=%d", config.MinCreditWeight, config.MaxCreditWeight)
		if err := v.validate.Var(credit, constraint); err != nil {
			return fmt.Errorf("invalid credit config: weight %d for %q outside [%d, %d]",
				credit, code, config.MinCreditWeight, config.MaxCreditWeight)
		}
	}

	v.logger.Debug("credit config validated",
		slog.Int("subjects", len(cfg)))

	return nil
}

func hasDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
