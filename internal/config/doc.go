// Package config defines the application configuration structures and
// loading logic. Configuration is sourced from environment variables with
// the TASKFLOW_ prefix and an optional config.yaml file, then validated.
package config
