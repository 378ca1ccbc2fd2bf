package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FieldError is one validation failure against a specific configuration
// field, addressed with a dotted path (e.g. "backends[0].port").
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every FieldError found in one validation pass.
type ValidationError struct {
	Errors []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d errors:\n", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}
	return sb.String()
}

var knownAlgorithms = map[string]bool{
	"round-robin":       true,
	"least-connections": true,
	"ip-hash":           true,
}

// Validate checks the entire configuration and returns a ValidationError
// collecting every violated field, or nil if the configuration is valid.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateAlgorithm(cfg.Algorithm)...)
	errs = append(errs, validateBackends(cfg.Backends)...)
	errs = append(errs, validateHealthCheck(&cfg.HealthCheck)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)

	if len(errs) == 0 {
		return nil
	}
	return ValidationError{Errors: errs}
}

func validateServer(s *Server) []FieldError {
	var errs []FieldError
	if s.Host == "" {
		errs = append(errs, FieldError{"server.host", "must not be empty"})
	}
	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, FieldError{"server.port", "must be between 1 and 65535"})
	}
	if s.ThreadPoolSize < 0 {
		errs = append(errs, FieldError{"server.thread_pool_size", "must not be negative"})
	}
	return errs
}

func validateAlgorithm(name string) []FieldError {
	if !knownAlgorithms[name] {
		return []FieldError{{"algorithm", fmt.Sprintf("unknown selection algorithm %q", name)}}
	}
	return nil
}

func validateBackends(backends []Backend) []FieldError {
	var errs []FieldError
	if len(backends) == 0 {
		errs = append(errs, FieldError{"backends", "must list at least one backend"})
		return errs
	}
	for i, b := range backends {
		prefix := fmt.Sprintf("backends[%d]", i)
		if b.Host == "" {
			errs = append(errs, FieldError{prefix + ".host", "must not be empty"})
		}
		if b.Port < 1 || b.Port > 65535 {
			errs = append(errs, FieldError{prefix + ".port", "must be between 1 and 65535"})
		}
		if b.Weight < 1 {
			errs = append(errs, FieldError{prefix + ".weight", "must be at least 1"})
		}
	}
	return errs
}

func validateHealthCheck(hc *HealthCheck) []FieldError {
	var errs []FieldError
	if !hc.Enabled {
		return errs
	}
	if _, err := ParseDurationOrSeconds(hc.Interval); err != nil {
		errs = append(errs, FieldError{"health_check.interval", err.Error()})
	}
	if _, err := ParseDurationOrSeconds(hc.Timeout); err != nil {
		errs = append(errs, FieldError{"health_check.timeout", err.Error()})
	}
	if hc.Path == "" {
		errs = append(errs, FieldError{"health_check.path", "must not be empty"})
	}
	if hc.UnhealthyThreshold < 1 {
		errs = append(errs, FieldError{"health_check.unhealthy_threshold", "must be at least 1"})
	}
	if hc.HealthyThreshold < 1 {
		errs = append(errs, FieldError{"health_check.healthy_threshold", "must be at least 1"})
	}
	return errs
}

var knownLogLevels = map[string]bool{"DEBUG": true, "INFO": true, "WARN": true, "ERROR": true}

func validateLogging(l *Logging) []FieldError {
	if !knownLogLevels[strings.ToUpper(l.Level)] {
		return []FieldError{{"logging.level", fmt.Sprintf("unknown level %q", l.Level)}}
	}
	return nil
}

// ParseDurationOrSeconds parses a duration string that is either a Go
// duration (accepted trailing unit, e.g. "10s") or a bare integer, which is
// treated as seconds, per spec §6.
func ParseDurationOrSeconds(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("must not be empty")
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}

	seconds, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return time.Duration(seconds) * time.Second, nil
}
