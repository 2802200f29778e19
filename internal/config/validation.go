package config

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// Dynamic token patterns that must not appear in configuration values.
// These indicate unexpanded template variables.
var dynamicTokenPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$\{[^}]+\}`),        // ${VAR}
	regexp.MustCompile(`\{\{[^}]+\}\}`),      // {{VAR}}
	regexp.MustCompile(`\$[A-Z_][A-Z0-9_]*`), // $VAR
}

// Validate checks the configuration for correctness.
func Validate(cfg *Config) error {
	var errs []ValidationError

	errs = append(errs, validatePaths(&cfg.Paths)...)
	errs = append(errs, validateStorage(&cfg.Storage)...)
	errs = append(errs, validateLog(&cfg.Log)...)
	errs = append(errs, validateDynamicTokens(cfg)...)

	if len(errs) > 0 {
		return &ValidationErrors{Errors: errs}
	}
	return nil
}

func validatePaths(p *PathsConfig) []ValidationError {
	if strings.TrimSpace(p.ProfileDir) == "" {
		return []ValidationError{{
			Field:   "paths.profile_dir",
			Message: "required field is empty",
			Wrapped: ErrInvalidConfig,
		}}
	}
	return nil
}

func validateStorage(s *StorageConfig) []ValidationError {
	var errs []ValidationError

	if s.SaveDelay <= 0 || s.SaveDelay > MaxSaveDelay {
		errs = append(errs, ValidationError{
			Field:   "storage.save_delay",
			Message: fmt.Sprintf("must be greater than 0 and at most %s", MaxSaveDelay),
			Value:   s.SaveDelay.String(),
			Wrapped: ErrInvalidDuration,
		})
	}

	if s.BackupSuffix == "" || strings.ContainsAny(s.BackupSuffix, `/\`) {
		errs = append(errs, ValidationError{
			Field:   "storage.backup_suffix",
			Message: "must be non-empty and must not contain path separators",
			Value:   s.BackupSuffix,
			Wrapped: ErrInvalidConfig,
		})
	}

	return errs
}

func validateLog(l *LogConfig) []ValidationError {
	var errs []ValidationError

	if !slices.Contains(ValidLogLevels, l.Level) {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels, ", ")),
			Value:   l.Level,
			Wrapped: ErrInvalidConfig,
		})
	}
	if !slices.Contains(ValidLogFormats, l.Format) {
		errs = append(errs, ValidationError{
			Field:   "log.format",
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogFormats, ", ")),
			Value:   l.Format,
			Wrapped: ErrInvalidConfig,
		})
	}

	return errs
}

// validateDynamicTokens checks path values for unexpanded dynamic tokens.
func validateDynamicTokens(cfg *Config) []ValidationError {
	var errs []ValidationError

	check := func(field, value string) {
		if value == "" {
			return
		}
		for _, pattern := range dynamicTokenPatterns {
			if pattern.MatchString(value) {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: "contains unexpanded dynamic token",
					Value:   value,
					Wrapped: ErrDynamicToken,
				})
				return
			}
		}
	}

	check("paths.profile_dir", cfg.Paths.ProfileDir)
	check("paths.bundled_dir", cfg.Paths.BundledDir)
	check("storage.backup_suffix", cfg.Storage.BackupSuffix)

	return errs
}
