package utils

import (
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^A-Z0-9]+`)

// GenerateEnvVarName generates a standardized environment variable name from a given string.
// It converts the input to uppercase and replaces any non-alphanumeric characters with underscores.
// Leading and trailing underscores are removed.
func GenerateEnvVarName(input string) string {
	normalized := nonAlphanumeric.ReplaceAllString(strings.ToUpper(input), "_")
	return strings.Trim(normalized, "_")
}

// SmtpCredentialEnvVarNames returns the env variables holding credentials for one SMTP host.
// Format: SMTP_USERNAME_FOR_{HOST} and SMTP_PASSWORD_FOR_{HOST}
func SmtpCredentialEnvVarNames(host string) (usernameVar string, passwordVar string) {
	normalizedHost := GenerateEnvVarName(host)
	return "SMTP_USERNAME_FOR_" + normalizedHost, "SMTP_PASSWORD_FOR_" + normalizedHost
}
