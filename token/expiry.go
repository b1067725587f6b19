// Package token reads the expiry claim out of provider-issued tokens.
// Tokens are otherwise opaque; signatures are deliberately not verified here
// (the provider is the authority, this service only caches).
package token

import (
	"github.com/golang-jwt/jwt/v5"
)

// Expiry returns the exp claim of a JWT as epoch seconds. ok is false when
// the string is not a parseable JWT or carries no exp claim.
func Expiry(raw string) (int64, bool) {
	if raw == "" {
		return 0, false
	}

	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return 0, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return 0, false
	}
	return exp.Unix(), true
}
