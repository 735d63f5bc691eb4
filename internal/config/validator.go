package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation: %s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors collects multiple validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator validates configuration.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{
		errors: make(ValidationErrors, 0),
	}
}

// Validate validates the entire configuration.
func (v *Validator) Validate(cfg *Config) error {
	v.validateAPI(&cfg.API)
	v.validateProposals(&cfg.Proposals)
	v.validateJournal(&cfg.Journal)
	v.validateSandbox(&cfg.Sandbox)
	v.validateLog(&cfg.Log)

	if len(v.errors) > 0 {
		return v.errors
	}
	return nil
}

// Errors returns the collected validation errors.
func (v *Validator) Errors() ValidationErrors {
	return v.errors
}

func (v *Validator) addError(field string, value interface{}, msg string) {
	v.errors = append(v.errors, ValidationError{
		Field:   field,
		Value:   value,
		Message: msg,
	})
}

func (v *Validator) validateAPI(cfg *APIConfig) {
	if cfg.BaseURL == "" {
		v.addError("api.base_url", cfg.BaseURL, "base URL required")
	} else {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil || u.Host == "" {
			v.addError("api.base_url", cfg.BaseURL, "invalid URL")
		} else if u.Scheme != "http" && u.Scheme != "https" {
			v.addError("api.base_url", cfg.BaseURL, "scheme must be http or https")
		}
	}

	if _, err := time.ParseDuration(cfg.Timeout); err != nil {
		v.addError("api.timeout", cfg.Timeout, "invalid duration format")
	}
}

func (v *Validator) validateProposals(cfg *ProposalsConfig) {
	if cfg.Limit <= 0 {
		v.addError("proposals.limit", cfg.Limit, "must be positive")
	}

	if cfg.Limit > 1000 {
		v.addError("proposals.limit", cfg.Limit, "must be at most 1000")
	}
}

func (v *Validator) validateJournal(cfg *JournalConfig) {
	if !cfg.Enabled {
		return
	}

	if cfg.Path == "" {
		v.addError("journal.path", cfg.Path, "path required when journal is enabled")
		return
	}

	if !isValidPath(ExpandUser(cfg.Path)) {
		v.addError("journal.path", cfg.Path, "invalid file path")
	}
}

func (v *Validator) validateSandbox(cfg *SandboxConfig) {
	if cfg.Addr == "" {
		v.addError("sandbox.addr", cfg.Addr, "listen address required")
	} else if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		v.addError("sandbox.addr", cfg.Addr, "must be host:port")
	}

	if cfg.Fixtures != "" && !isValidPath(cfg.Fixtures) {
		v.addError("sandbox.fixtures", cfg.Fixtures, "invalid file path")
	}
}

func (v *Validator) validateLog(cfg *LogConfig) {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[cfg.Level] {
		v.addError("log.level", cfg.Level, "must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"auto": true, "text": true, "json": true,
	}
	if !validFormats[cfg.Format] {
		v.addError("log.format", cfg.Format, "must be one of: auto, text, json")
	}

	if cfg.File != "" && !isValidPath(cfg.File) {
		v.addError("log.file", cfg.File, "invalid file path")
	}
}

func isValidPath(path string) bool {
	dir := filepath.Dir(path)
	_, err := os.Stat(dir)
	return err == nil || os.IsNotExist(err)
}

// ValidateConfig is a convenience function that creates a validator and validates config.
func ValidateConfig(cfg *Config) error {
	v := NewValidator()
	return v.Validate(cfg)
}
