// Package redact sanitizes error strings before they reach logs, keeping
// connection strings, tokens and API keys out of log aggregation.
package redact

import (
	"regexp"
)

const placeholder = "[REDACTED]"

var patterns = []*regexp.Regexp{
	// Postgres connection URLs with embedded credentials
	regexp.MustCompile(`postgres(?:ql)?://[^\s]+`),
	// Bearer tokens and JWT-shaped strings
	regexp.MustCompile(`Bearer\s+[A-Za-z0-9\-_.]+`),
	regexp.MustCompile(`eyJ[A-Za-z0-9\-_]+\.[A-Za-z0-9\-_]+\.[A-Za-z0-9\-_]*`),
	// key=value style secrets
	regexp.MustCompile(`(?i)(api[-_]?key|token|secret|password)\s*[=:]\s*[^\s&"']+`),
}

// String replaces secret-shaped substrings with a placeholder.
func String(s string) string {
	for _, p := range patterns {
		s = p.ReplaceAllString(s, placeholder)
	}
	return s
}

// Error redacts an error's message. Returns an empty string for nil errors.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
