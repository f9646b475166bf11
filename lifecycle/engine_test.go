package lifecycle

import (
	"testing"
	"time"

	"github.com/autolot/autolot-client/internal/types"
)

var now = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func testEngine() *Engine {
	return NewEngine(Config{ListingExpiryDays: 30, AutoRefreshDays: 7}, FixedClock{T: now})
}

func tp(t time.Time) *time.Time { return &t }

func listingExpiring(at time.Time) types.Listing {
	return types.Listing{
		ID:        "l1",
		Status:    types.ListingPublished,
		CreatedAt: now.Add(-40 * 24 * time.Hour),
		ExpiresAt: tp(at),
	}
}

func premiumPlan(expiry time.Time) *types.Plan {
	return &types.Plan{SubscriptionPlan: types.PlanPremium, ExpiryDate: tp(expiry)}
}

func TestIsExpired_PremiumSuppressesListingExpiry(t *testing.T) {
	e := testEngine()
	l := listingExpiring(now.Add(-24 * time.Hour)) // expired a day ago

	if e.IsExpired(l, premiumPlan(now.Add(10*24*time.Hour))) {
		t.Fatal("active premium plan must suppress listing expiry")
	}
	if !e.IsExpired(l, nil) {
		t.Fatal("same listing without a plan must be expired")
	}
	if !e.IsExpired(l, premiumPlan(now.Add(-time.Hour))) {
		t.Fatal("a lapsed premium plan suppresses nothing")
	}
	if !e.IsExpired(l, &types.Plan{SubscriptionPlan: types.PlanPro, ExpiryDate: tp(now.Add(10 * 24 * time.Hour))}) {
		t.Fatal("non-premium plans suppress nothing")
	}
}

func TestIsExpired_NoExpiryDateNeverExpires(t *testing.T) {
	e := testEngine()
	l := types.Listing{ID: "l1", Status: types.ListingPublished}
	if e.IsExpired(l, nil) {
		t.Fatal("listing without expiry date must never expire")
	}
}

func TestDaysUntilExpiry_Ceiling(t *testing.T) {
	e := testEngine()
	l := listingExpiring(now.Add(3*24*time.Hour + time.Hour))
	if got := e.DaysUntilExpiry(l, nil); got != 4 {
		t.Fatalf("days = %d, want 4 (ceiling)", got)
	}
}

func TestDaysUntilExpiry_PremiumUsesPlanDate(t *testing.T) {
	e := testEngine()
	l := listingExpiring(now.Add(2 * 24 * time.Hour))
	if got := e.DaysUntilExpiry(l, premiumPlan(now.Add(10*24*time.Hour))); got != 10 {
		t.Fatalf("days = %d, want 10 (plan expiry governs)", got)
	}
}

func TestDaysUntilExpiry_NoDatesAnywhere(t *testing.T) {
	e := testEngine()
	if got := e.DaysUntilExpiry(types.Listing{ID: "l1"}, nil); got != -1 {
		t.Fatalf("days = %d, want -1", got)
	}
}

func TestShouldNotifyExpiry_ExactThresholds(t *testing.T) {
	e := testEngine()
	cases := map[int]bool{8: false, 7: true, 6: false, 3: true, 2: false, 1: true, 0: false, -2: false}
	for days, want := range cases {
		l := listingExpiring(now.Add(time.Duration(days) * 24 * time.Hour))
		if got := e.ShouldNotifyExpiry(l, nil); got != want {
			t.Errorf("days=%d: notify = %v, want %v", days, got, want)
		}
	}
}

func TestExpiryNotice_DistinctStages(t *testing.T) {
	e := testEngine()

	cases := []struct {
		name    string
		listing types.Listing
		want    Notice
	}{
		{"expired", listingExpiring(now.Add(-time.Hour)), NoticeExpired},
		{"last day", listingExpiring(now.Add(20 * time.Hour)), NoticeLastDay},
		{"soon", listingExpiring(now.Add(5 * 24 * time.Hour)), NoticeExpiringSoon},
		{"active", listingExpiring(now.Add(20 * 24 * time.Hour)), NoticeNone},
		{"no expiry", types.Listing{ID: "l1"}, NoticeNone},
	}
	seen := map[string]Notice{}
	for _, c := range cases {
		got := e.ExpiryNotice(c.listing, nil)
		if got != c.want {
			t.Errorf("%s: notice = %d, want %d", c.name, got, c.want)
		}
		seen[got.Message()] = got
	}
	// Each non-none stage carries its own message.
	if len(seen) != 4 {
		t.Fatalf("expected 4 distinct messages (incl. empty), got %d", len(seen))
	}
}

func TestRefresh_DoesNotTouchExpiryOrStatus(t *testing.T) {
	e := testEngine()
	l := listingExpiring(now.Add(48 * time.Hour))
	got := e.Refresh(l)

	if got.LastRefreshed == nil || !got.LastRefreshed.Equal(now) {
		t.Fatalf("lastRefreshed = %v, want %v", got.LastRefreshed, now)
	}
	if !got.ExpiresAt.Equal(*l.ExpiresAt) || got.Status != l.Status {
		t.Fatal("refresh must not alter expiry or status")
	}
}

func TestNeedsRefresh(t *testing.T) {
	e := testEngine()

	if !e.NeedsRefresh(types.Listing{ID: "l1"}) {
		t.Fatal("never-refreshed listing needs refresh")
	}

	fresh := types.Listing{ID: "l1", LastRefreshed: tp(now.Add(-6*24*time.Hour - 23*time.Hour))}
	if e.NeedsRefresh(fresh) {
		t.Fatal("6.96 days is under the 7-day threshold (floor)")
	}

	stale := types.Listing{ID: "l1", LastRefreshed: tp(now.Add(-7 * 24 * time.Hour))}
	if !e.NeedsRefresh(stale) {
		t.Fatal("exactly 7 days must trigger refresh")
	}
}

func TestRenew_AdvancesCounterAndRepublishes(t *testing.T) {
	e := testEngine()
	l := listingExpiring(now.Add(-time.Hour))
	l.Status = types.ListingDraft
	l.RenewalCount = 2

	got := e.Renew(l, true)

	if got.RenewalCount != 3 {
		t.Fatalf("renewalCount = %d, want 3", got.RenewalCount)
	}
	wantExpiry := now.Add(30 * 24 * time.Hour)
	if got.ExpiresAt == nil || !got.ExpiresAt.Equal(wantExpiry) {
		t.Fatalf("expiresAt = %v, want %v", got.ExpiresAt, wantExpiry)
	}
	if got.Status != types.ListingPublished || !got.AutoRenew {
		t.Fatalf("renew must republish with autoRenew applied: %+v", got)
	}
	if got.LastRefreshed == nil || !got.LastRefreshed.Equal(now) {
		t.Fatal("renew must stamp lastRefreshed")
	}

	// Not idempotent in count: renewing again advances again.
	again := e.Renew(got, true)
	if again.RenewalCount != 4 {
		t.Fatalf("second renew count = %d, want 4", again.RenewalCount)
	}
}

func TestSweepAutoRenew_RenewsOnlyExpiredAutoRenewListings(t *testing.T) {
	e := testEngine()
	a := listingExpiring(now.Add(-time.Hour))
	a.ID, a.AutoRenew = "A", true
	b := listingExpiring(now.Add(-time.Hour))
	b.ID, b.AutoRenew = "B", false
	c := listingExpiring(now.Add(10 * 24 * time.Hour))
	c.ID, c.AutoRenew = "C", true

	out := e.SweepAutoRenew([]types.Listing{a, b, c}, nil)

	if out[0].RenewalCount != 1 || !out[0].AutoRenew {
		t.Fatalf("A should have been renewed: %+v", out[0])
	}
	if out[1].RenewalCount != 0 || !out[1].ExpiresAt.Equal(*b.ExpiresAt) {
		t.Fatalf("B must pass through unchanged: %+v", out[1])
	}
	if out[2].RenewalCount != 0 || !out[2].ExpiresAt.Equal(*c.ExpiresAt) {
		t.Fatalf("C must pass through unchanged: %+v", out[2])
	}
}

func TestState_Derived(t *testing.T) {
	e := testEngine()
	cases := []struct {
		name    string
		listing types.Listing
		want    State
	}{
		{"expired", listingExpiring(now.Add(-time.Hour)), StateExpired},
		{"soon", listingExpiring(now.Add(3 * 24 * time.Hour)), StateExpiringSoon},
		{"active", listingExpiring(now.Add(15 * 24 * time.Hour)), StateActive},
		{"no expiry", types.Listing{ID: "x"}, StateActive},
	}
	for _, c := range cases {
		if got := e.State(c.listing, nil); got != c.want {
			t.Errorf("%s: state = %s, want %s", c.name, got, c.want)
		}
	}
}
