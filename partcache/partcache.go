package partcache

import (
	"context"

	"github.com/danthegoodman1/partman/gologger"
	"github.com/danthegoodman1/partman/syspart"
)

var (
	logger = gologger.NewLogger()
)

type (
	// Cache holds short-lived snapshots of part listings so the HTTP API
	// doesn't hammer system.parts. Listings are invalidated whenever a
	// partition operation runs.
	Cache interface {
		// GetParts returns the cached listing for key, with a hit flag
		GetParts(ctx context.Context, key string) ([]syspart.Part, bool, error)
		SetParts(ctx context.Context, key string, parts []syspart.Part) error
		Invalidate(ctx context.Context, keys ...string) error

		Shutdown(ctx context.Context) error
	}
)

// ListingKey names the cached listing for a database, split by whether
// the inactive parts were filtered out.
func ListingKey(database string, activeOnly bool) string {
	if activeOnly {
		return "parts_" + database + "_active"
	}
	return "parts_" + database + "_all"
}
