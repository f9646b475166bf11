// Package lifecycle computes a listing's time-driven expiry/renewal state.
// The engine is pure: every operation is a function of the listing, the
// seller's plan, and the injected clock. The states {active, expiring-soon,
// expired} are derived, never stored; only refresh and renew mutate a
// listing, and they do so by returning an updated copy.
package lifecycle

import (
	"math"
	"time"

	"github.com/autolot/autolot-client/internal/types"
)

// State is the derived lifecycle state of a listing.
type State string

const (
	StateActive       State = "active"
	StateExpiringSoon State = "expiring-soon"
	StateExpired      State = "expired"
)

// Notice identifies the staged expiry notification to show, if any.
type Notice int

const (
	NoticeNone Notice = iota
	NoticeExpiringSoon
	NoticeLastDay
	NoticeExpired
)

// Message returns the user-facing notification text.
func (n Notice) Message() string {
	switch n {
	case NoticeLastDay:
		return "Your listing expires tomorrow. Renew now to keep it live."
	case NoticeExpiringSoon:
		return "Your listing expires in a few days. Renew to keep it live."
	case NoticeExpired:
		return "Your listing has expired and is no longer visible to buyers."
	default:
		return ""
	}
}

// Engine evaluates lifecycle rules under a Config and a Clock.
type Engine struct {
	cfg   Config
	clock Clock
}

// NewEngine constructs an engine; a nil clock means the system clock.
func NewEngine(cfg Config, clock Clock) *Engine {
	if cfg.ListingExpiryDays <= 0 {
		cfg.ListingExpiryDays = 30
	}
	if cfg.AutoRefreshDays <= 0 {
		cfg.AutoRefreshDays = 7
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &Engine{cfg: cfg, clock: clock}
}

// premiumActive reports whether an active premium plan currently suppresses
// per-listing expiry.
func premiumActive(plan *types.Plan, now time.Time) bool {
	return plan != nil &&
		plan.SubscriptionPlan == types.PlanPremium &&
		plan.ExpiryDate != nil &&
		plan.ExpiryDate.After(now)
}

// IsExpired reports whether the listing is expired at the current instant.
// A listing without an expiry date never expires; an active premium plan
// suppresses per-listing expiry while the plan itself is live.
func (e *Engine) IsExpired(l types.Listing, plan *types.Plan) bool {
	if l.ExpiresAt == nil {
		return false
	}
	now := e.clock.Now()
	if premiumActive(plan, now) {
		return false
	}
	return l.ExpiresAt.Before(now)
}

// DaysUntilExpiry returns the whole days (ceiling) until the governing
// expiry: the plan's under an active premium plan, the listing's otherwise.
// Returns -1 when no expiry date exists at all.
func (e *Engine) DaysUntilExpiry(l types.Listing, plan *types.Plan) int {
	now := e.clock.Now()
	if premiumActive(plan, now) {
		return ceilDays(plan.ExpiryDate.Sub(now))
	}
	if l.ExpiresAt == nil {
		return -1
	}
	return ceilDays(l.ExpiresAt.Sub(now))
}

// Refresh stamps the listing as freshly bumped. Expiry and status are untouched.
func (e *Engine) Refresh(l types.Listing) types.Listing {
	now := e.clock.Now()
	l.LastRefreshed = &now
	return l
}

// NeedsRefresh reports whether the listing has never been refreshed, or the
// configured number of whole days has elapsed since the last refresh.
func (e *Engine) NeedsRefresh(l types.Listing) bool {
	if l.LastRefreshed == nil {
		return true
	}
	days := int(math.Floor(e.clock.Now().Sub(*l.LastRefreshed).Hours() / 24))
	return days >= e.cfg.AutoRefreshDays
}

// Renew extends the listing by ListingExpiryDays from now, bumps the renewal
// counter (it only ever advances; renewing twice is two renewals), records
// the refresh, applies autoRenew, and forces the listing back to published.
func (e *Engine) Renew(l types.Listing, autoRenew bool) types.Listing {
	now := e.clock.Now()
	expires := now.Add(time.Duration(e.cfg.ListingExpiryDays) * 24 * time.Hour)
	l.RenewalCount++
	l.ExpiresAt = &expires
	l.LastRefreshed = &now
	l.AutoRenew = autoRenew
	l.Status = types.ListingPublished
	return l
}

// SweepAutoRenew renews every listing that has auto-renew set and is
// currently expired; all other listings pass through unchanged. Listings are
// independent values, so the sweep is safe to run concurrently per listing.
func (e *Engine) SweepAutoRenew(listings []types.Listing, plan *types.Plan) []types.Listing {
	out := make([]types.Listing, len(listings))
	for i, l := range listings {
		if l.AutoRenew && e.IsExpired(l, plan) {
			out[i] = e.Renew(l, true)
		} else {
			out[i] = l
		}
	}
	return out
}

// ShouldNotifyExpiry reports whether a staged notification is due: exactly
// at 7, 3, and 1 days before expiry.
func (e *Engine) ShouldNotifyExpiry(l types.Listing, plan *types.Plan) bool {
	switch e.DaysUntilExpiry(l, plan) {
	case 7, 3, 1:
		return true
	}
	return false
}

// ExpiryNotice selects the notification for the listing's current state.
func (e *Engine) ExpiryNotice(l types.Listing, plan *types.Plan) Notice {
	if e.IsExpired(l, plan) {
		return NoticeExpired
	}
	switch d := e.DaysUntilExpiry(l, plan); {
	case d == 1:
		return NoticeLastDay
	case d > 1 && d <= 7:
		return NoticeExpiringSoon
	default:
		return NoticeNone
	}
}

// State derives the lifecycle state from the clock alone.
func (e *Engine) State(l types.Listing, plan *types.Plan) State {
	if e.IsExpired(l, plan) {
		return StateExpired
	}
	if d := e.DaysUntilExpiry(l, plan); d >= 0 && d <= 7 {
		return StateExpiringSoon
	}
	return StateActive
}

func ceilDays(d time.Duration) int {
	return int(math.Ceil(d.Hours() / 24))
}
