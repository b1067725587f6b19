package utils

import "strings"

// MaskIdentity obscures the local part of an email-shaped identity for log
// output. "john.doe@example.com" becomes "jo****@example.com". Identities
// without an @ are returned unchanged.
func MaskIdentity(identity string) string {
	at := strings.IndexByte(identity, '@')
	if at < 0 {
		return identity
	}

	// Slice on runes, a multi-byte character at the keep boundary must not
	// be split mid-sequence.
	local, domain := []rune(identity[:at]), identity[at+1:]
	if len(local) <= 2 {
		return strings.Repeat("*", len(local)) + "@" + domain
	}

	masked := len(local) - 2
	if masked > 4 {
		masked = 4
	}
	return string(local[:2]) + strings.Repeat("*", masked) + "@" + domain
}
