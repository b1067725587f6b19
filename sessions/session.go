package sessions

import (
	"time"
)

// Record holds the cached token set for one identity. Exactly one record
// exists per normalized identity; every successful authentication or refresh
// overwrites it in full. Expiry is judged at read time, records are never
// evicted.
type Record struct {
	Identity       string    // Normalized identity (lower-cased, trimmed)
	AccessToken    string    // Provider-issued bearer token
	IDToken        string    // Provider-issued identity token
	RefreshToken   string    // Used to renew the access token without credentials
	SecondaryToken string    // Best-effort side-channel credential; may be empty
	ExpiresAt      int64     // Epoch seconds after which AccessToken is invalid
	UpdatedAt      time.Time // Last write time
}

// ValidFor reports whether the record's access token is still usable at the
// given instant, allowing for the grace period. A token expiring within the
// grace window is treated as already expired so it cannot go stale mid-flight.
func (r *Record) ValidFor(now time.Time, grace time.Duration) bool {
	if r == nil || r.AccessToken == "" {
		return false
	}
	return r.ExpiresAt > now.Add(grace).Unix()
}
