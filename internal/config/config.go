// Package config decodes and validates the YAML configuration record the
// rest of the proxy consumes at startup, grounded on mercator-hq-jupiter's
// pkg/config package structure (config.go/defaults.go/validate.go/load.go).
package config

// Config is the root configuration record, matching spec §6's shape.
type Config struct {
	Server      Server      `yaml:"server"`
	Algorithm   string      `yaml:"algorithm"`
	Backends    []Backend   `yaml:"backends"`
	HealthCheck HealthCheck `yaml:"health_check"`
	Logging     Logging     `yaml:"logging"`
}

// Server is the listener configuration.
type Server struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	ThreadPoolSize int    `yaml:"thread_pool_size"`
}

// Backend is one configured origin.
type Backend struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	Weight int    `yaml:"weight"`
}

// HealthCheck configures the background probe.
type HealthCheck struct {
	Enabled            bool   `yaml:"enabled"`
	Interval           string `yaml:"interval"`
	Timeout            string `yaml:"timeout"`
	Path               string `yaml:"path"`
	UnhealthyThreshold int    `yaml:"unhealthy_threshold"`
	HealthyThreshold   int    `yaml:"healthy_threshold"`
}

// Logging configures the leveled logger.
type Logging struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}
