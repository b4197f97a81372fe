package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/rs/zerolog"
)

var (
	// ErrInvalidFileName indicates an output file name that is not a single path component
	ErrInvalidFileName = errors.New("invalid output file name")

	// ErrInvalidInterval indicates a non-positive progress interval
	ErrInvalidInterval = errors.New("invalid progress interval")

	// ErrInvalidWorkers indicates a negative worker count
	ErrInvalidWorkers = errors.New("invalid worker count")

	// ErrInvalidPattern indicates an exclude pattern that does not compile
	ErrInvalidPattern = errors.New("invalid exclude pattern")

	// ErrInvalidLogLevel indicates an unknown log level
	ErrInvalidLogLevel = errors.New("invalid log level")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateFilters(&cfg.Filters); err != nil {
		errs = append(errs, err)
	}

	if err := validateOutput(&cfg.Output); err != nil {
		errs = append(errs, err)
	}

	if cfg.Extract.Workers < 0 {
		errs = append(errs, fmt.Errorf("%w: workers cannot be negative, got %d", ErrInvalidWorkers, cfg.Extract.Workers))
	}

	if _, err := zerolog.ParseLevel(strings.ToLower(cfg.Log.Level)); err != nil {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidLogLevel, cfg.Log.Level))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateFilters(cfg *FiltersConfig) error {
	var errs []error

	for _, p := range cfg.ExcludePatterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if _, err := glob.Compile(p); err != nil {
			errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, p, err))
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateOutput(cfg *OutputConfig) error {
	var errs []error

	if err := validateFileName("properties_file", cfg.PropertiesFile); err != nil {
		errs = append(errs, err)
	}
	if err := validateFileName("script_file", cfg.ScriptFile); err != nil {
		errs = append(errs, err)
	}
	if cfg.PropertiesFile != "" && strings.EqualFold(cfg.PropertiesFile, cfg.ScriptFile) {
		errs = append(errs, fmt.Errorf("%w: properties_file and script_file must differ, both are %q", ErrInvalidFileName, cfg.ScriptFile))
	}

	if cfg.ProgressInterval <= 0 {
		errs = append(errs, fmt.Errorf("%w: progress_interval must be positive, got %d", ErrInvalidInterval, cfg.ProgressInterval))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateFileName(key, name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: %s is required", ErrInvalidFileName, key)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %s cannot be %q", ErrInvalidFileName, key, name)
	case strings.ContainsAny(name, `/\`) || filepath.Base(name) != name:
		return fmt.Errorf("%w: %s must be a plain file name, got %q", ErrInvalidFileName, key, name)
	}
	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
// The result still matches each sentinel with errors.Is.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return &validationError{
		msg:  fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - ")),
		errs: errs,
	}
}

type validationError struct {
	msg  string
	errs []error
}

func (e *validationError) Error() string   { return e.msg }
func (e *validationError) Unwrap() []error { return e.errs }
