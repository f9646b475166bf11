package client

import (
	"context"

	"github.com/google/uuid"

	"github.com/autolot/autolot-client/internal/types"
)

const entityActivity = "activity"

func activityKey(userID string) string { return "activity/" + userID }

func defaultActivity(userID string) types.BuyerActivity {
	return types.BuyerActivity{UserID: userID}
}

// Activity returns the user's activity record, freshly reconciled with the
// remote store when it is reachable.
func (c *Client) Activity(ctx context.Context, userID string) (*BuyerActivity, error) {
	if err := types.ValidateIDPresent(userID, "userId"); err != nil {
		return nil, err
	}
	a, err := reconciledRead(ctx, c, activityKey(userID), entityActivity, userID,
		jsonDecode[types.BuyerActivity],
		func() types.BuyerActivity { return defaultActivity(userID) },
	)
	return &a, err
}

// ActivitySync returns the locally cached activity record immediately.
// It never blocks and never touches the network; absent data yields the
// empty per-user default.
func (c *Client) ActivitySync(userID string) *BuyerActivity {
	if a, ok := cacheGet[types.BuyerActivity](c, activityKey(userID)); ok {
		return &a
	}
	a := defaultActivity(userID)
	return &a
}

// RecordView notes that the user viewed a vehicle. The recently-viewed list
// is most-recent-first, deduplicated, and capped.
func (c *Client) RecordView(ctx context.Context, userID, vehicleID string) error {
	if err := types.ValidateIDPresent(userID, "userId"); err != nil {
		return err
	}
	if err := types.ValidateIDPresent(vehicleID, "vehicleId"); err != nil {
		return err
	}
	a := c.ActivitySync(userID)
	a.RecentlyViewed = pushRecent(a.RecentlyViewed, vehicleID, types.RecentlyViewedCapacity)
	return c.writeThrough(ctx, activityKey(userID), entityActivity, userID, a)
}

// pushRecent prepends id, removing any earlier occurrence and trimming to limit.
func pushRecent(ids []string, id string, limit int) []string {
	out := make([]string, 0, len(ids)+1)
	out = append(out, id)
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// SaveSearch persists a new saved search for the user.
func (c *Client) SaveSearch(ctx context.Context, userID string, filters FilterSet) (*SavedSearch, error) {
	if err := types.ValidateIDPresent(userID, "userId"); err != nil {
		return nil, err
	}
	s := types.SavedSearch{
		ID:        uuid.NewString(),
		CreatedAt: c.clock.Now(),
		Filters:   filters,
	}
	a := c.ActivitySync(userID)
	a.SavedSearches = append(a.SavedSearches, s)
	if err := c.writeThrough(ctx, activityKey(userID), entityActivity, userID, a); err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteSavedSearch removes a saved search; unknown IDs are a no-op.
func (c *Client) DeleteSavedSearch(ctx context.Context, userID, searchID string) error {
	if err := types.ValidateIDPresent(userID, "userId"); err != nil {
		return err
	}
	a := c.ActivitySync(userID)
	kept := a.SavedSearches[:0]
	for _, s := range a.SavedSearches {
		if s.ID != searchID {
			kept = append(kept, s)
		}
	}
	a.SavedSearches = kept
	return c.writeThrough(ctx, activityKey(userID), entityActivity, userID, a)
}

// addNotices unions vehicleIDs into one of the notification sets.
func (c *Client) addNotices(ctx context.Context, userID string, vehicleIDs []string, priceDrops bool) error {
	if len(vehicleIDs) == 0 {
		return nil
	}
	a := c.ActivitySync(userID)
	target := &a.Notifications.NewMatches
	if priceDrops {
		target = &a.Notifications.PriceDrops
	}
	*target = unionIDs(*target, vehicleIDs)
	return c.writeThrough(ctx, activityKey(userID), entityActivity, userID, a)
}

// AddPriceDropNotices records pending price-drop notifications.
func (c *Client) AddPriceDropNotices(ctx context.Context, userID string, vehicleIDs []string) error {
	return c.addNotices(ctx, userID, vehicleIDs, true)
}

// AddNewMatchNotices records pending new-match notifications.
func (c *Client) AddNewMatchNotices(ctx context.Context, userID string, vehicleIDs []string) error {
	return c.addNotices(ctx, userID, vehicleIDs, false)
}

// ClearNotifications empties both pending notification sets.
func (c *Client) ClearNotifications(ctx context.Context, userID string) error {
	a := c.ActivitySync(userID)
	a.Notifications = types.Notifications{}
	return c.writeThrough(ctx, activityKey(userID), entityActivity, userID, a)
}

func unionIDs(existing, add []string) []string {
	seen := make(map[string]struct{}, len(existing))
	out := append([]string(nil), existing...)
	for _, id := range existing {
		seen[id] = struct{}{}
	}
	for _, id := range add {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
