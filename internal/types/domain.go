package types

import "time"

// ------------------------------
// Core Domain Entities
// ------------------------------

// Listing statuses. Expiry is derived from timestamps, never stored: a
// published listing whose expiry has passed reads as expired without any
// status write.
const (
	ListingDraft     = "draft"
	ListingPublished = "published"
)

// Seller subscription plans.
const (
	PlanFree    = "free"
	PlanPro     = "pro"
	PlanPremium = "premium"
)

// RecentlyViewedCapacity bounds the per-user recently-viewed history.
const RecentlyViewedCapacity = 20

// Vehicle is a catalog entry.
type Vehicle struct {
	ID           string `json:"vehicleId"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	Year         int    `json:"year"`
	Price        int    `json:"price"`
	Category     string `json:"category,omitempty"`
	FuelType     string `json:"fuelType,omitempty"`
	Transmission string `json:"transmission,omitempty"`
	Location     string `json:"location,omitempty"`
}

// Listing is a seller's advert. Renewal and refresh timestamps drive the
// lifecycle engine; RenewalCount strictly increases and is never reset.
type Listing struct {
	ID            string     `json:"listingId"`
	SellerID      string     `json:"sellerId"`
	VehicleID     string     `json:"vehicleId,omitempty"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"createdAt"`
	ExpiresAt     *time.Time `json:"listingExpiresAt,omitempty"`
	LastRefreshed *time.Time `json:"listingLastRefreshed,omitempty"`
	AutoRenew     bool       `json:"listingAutoRenew"`
	RenewalCount  int        `json:"listingRenewalCount"`
}

// Plan is a seller subscription. Read-only to this SDK; owned by billing.
type Plan struct {
	SubscriptionPlan string     `json:"subscriptionPlan"`
	ExpiryDate       *time.Time `json:"planExpiryDate,omitempty"`
}

// FilterSet is a sparse set of saved-search predicates. A nil field is a
// wildcard for that dimension.
type FilterSet struct {
	Make         *string `json:"make,omitempty"`
	Model        *string `json:"model,omitempty"`
	MinPrice     *int    `json:"minPrice,omitempty"`
	MaxPrice     *int    `json:"maxPrice,omitempty"`
	MinYear      *int    `json:"minYear,omitempty"`
	MaxYear      *int    `json:"maxYear,omitempty"`
	Category     *string `json:"category,omitempty"`
	FuelType     *string `json:"fuelType,omitempty"`
	Transmission *string `json:"transmission,omitempty"`
	Location     *string `json:"location,omitempty"`
}

// SavedSearch is a persisted buyer search.
type SavedSearch struct {
	ID        string    `json:"searchId"`
	CreatedAt time.Time `json:"createdAt"`
	Filters   FilterSet `json:"filters"`
}

// Notifications groups the per-user pending notification sets.
type Notifications struct {
	PriceDrops []string `json:"priceDrops,omitempty"`
	NewMatches []string `json:"newMatches,omitempty"`
}

// BuyerActivity is the per-user activity record. RecentlyViewed is
// most-recent-first, deduplicated, capped at RecentlyViewedCapacity.
type BuyerActivity struct {
	UserID         string        `json:"userId"`
	RecentlyViewed []string      `json:"recentlyViewed,omitempty"`
	SavedSearches  []SavedSearch `json:"savedSearches,omitempty"`
	Notifications  Notifications `json:"notifications"`
}

// Ticket is a support/service request. The indexed fields are queryable on
// the remote store; everything else lives in the Metadata bag. Partial
// updates must merge into Metadata, never replace it wholesale.
type Ticket struct {
	ID        string         `json:"ticketId"`
	UserID    string         `json:"userId"`
	VehicleID string         `json:"vehicleId,omitempty"`
	Status    string         `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Message is a single conversation message.
type Message struct {
	ID     string    `json:"messageId"`
	Sender string    `json:"sender"`
	Body   string    `json:"body"`
	SentAt time.Time `json:"sentAt"`
}

// Conversation is a buyer/seller thread.
type Conversation struct {
	ID        string    `json:"conversationId"`
	UserID    string    `json:"userId"`
	ListingID string    `json:"listingId,omitempty"`
	Messages  []Message `json:"messages,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PriceHistory maps vehicleId to the last observed price. Append/overwrite
// only; entries are removed only by an external purge.
type PriceHistory map[string]int
