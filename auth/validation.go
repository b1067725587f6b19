package auth

import (
	"regexp"
	"strings"
)

const minSecretLength = 6

var (
	identityPattern     = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	secondFactorPattern = regexp.MustCompile(`^\d{6}$`)
)

// Validator checks request shape at the boundary so malformed input never
// reaches the orchestrator.
type Validator struct{}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateCredentials returns one message per problem with the supplied
// identity, secret and optional second-factor code. An empty slice means the
// input is acceptable.
func (v *Validator) ValidateCredentials(identity, secret, secondFactorCode string) []string {
	var problems []string

	trimmed := strings.TrimSpace(identity)
	if trimmed == "" {
		problems = append(problems, "identity is required")
	} else if !identityPattern.MatchString(trimmed) {
		problems = append(problems, "identity is not a valid email address")
	}

	if secret == "" {
		problems = append(problems, "secret is required")
	} else if len(secret) < minSecretLength {
		problems = append(problems, "secret must be at least 6 characters")
	}

	if secondFactorCode != "" && !secondFactorPattern.MatchString(secondFactorCode) {
		problems = append(problems, "second factor code must be exactly 6 digits")
	}

	return problems
}

// NormalizeIdentity produces the canonical session key for an identity:
// trimmed and lower-cased. All store and provider calls use this form.
func NormalizeIdentity(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}
