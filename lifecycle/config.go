package lifecycle

import "github.com/kelseyhightower/envconfig"

// Config holds the externally supplied lifecycle constants. Values are taken
// from environment variables with the prefix "LIFECYCLE_".
// Example: LIFECYCLE_LISTING_EXPIRY_DAYS=60 .
type Config struct {
	// ListingExpiryDays is how long a renewal extends a listing.
	ListingExpiryDays int `envconfig:"LISTING_EXPIRY_DAYS" default:"30"`
	// AutoRefreshDays is the staleness threshold for NeedsRefresh.
	AutoRefreshDays int `envconfig:"AUTO_REFRESH_DAYS" default:"7"`
}

// LoadConfig populates Config from environment variables (prefix LIFECYCLE_).
func LoadConfig() (Config, error) {
	var c Config
	return c, envconfig.Process("LIFECYCLE", &c)
}
