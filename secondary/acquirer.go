// Package secondary fetches the optional downstream credential issued by a
// separate system after primary authentication. The fetch is strictly best
// effort: the orchestrator absorbs every failure and the primary flow never
// depends on it.
package secondary

import (
	"context"
)

// Acquirer fetches the secondary bearer credential for an identity.
// A non-nil error means no token this round; callers log it and move on.
type Acquirer interface {
	Fetch(ctx context.Context, identity, secret string) (string, error)
}
