// Package redact scrubs sensitive fragments from strings before they reach
// logs or error responses: connection strings, tokens, SQL text, and file
// paths that internal errors tend to drag along.
package redact

import "regexp"

// Redaction placeholders
const (
	RedactedCredential = "[REDACTED_CREDENTIAL]"
	RedactedToken      = "[REDACTED_TOKEN]"
	RedactedPath       = "[REDACTED_PATH]"
	RedactedSQL        = "[REDACTED_SQL]"
	RedactedHost       = "[REDACTED_HOST]"
)

var replacements = []struct {
	pattern     *regexp.Regexp
	placeholder string
}{
	// Database connection strings with embedded credentials
	{regexp.MustCompile(`(?i)(postgres|postgresql|mysql)://[^@\s]+@`), RedactedCredential},

	// Secrets in key=value or key: value form
	{regexp.MustCompile(`(?i)(password|passwd|secret|api[_-]?key|token)([=:\s]['"]?)[^'"&\s]{3,}`), RedactedCredential},

	// JWT tokens (three base64url segments, header starting with {"...)
	{regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`), RedactedToken},

	// SQL statements leaking through driver errors
	{regexp.MustCompile(`(?i)(SELECT|INSERT|UPDATE|DELETE|CREATE|ALTER|DROP)[\s\w,*()]+(?:FROM|INTO|SET|TABLE)[\s\S]*`), RedactedSQL},

	// Absolute file paths
	{regexp.MustCompile(`(/[\w.-]+){2,}`), RedactedPath},

	// host:port pairs
	{regexp.MustCompile(`\b(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}(?::\d{1,5})?\b`), RedactedHost},
}

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}
	result := input
	for _, r := range replacements {
		result = r.pattern.ReplaceAllString(result, r.placeholder)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
