package client

import (
	"context"

	"github.com/autolot/autolot-client/internal/types"
	"github.com/autolot/autolot-client/match"
)

const entityPrices = "prices"

func pricesKey(userID string) string { return "prices/" + userID }

// historyAdapter exposes a loaded PriceHistory to the match watcher.
type historyAdapter struct {
	prices types.PriceHistory
}

func (h *historyAdapter) Last(vehicleID string) (int, bool) {
	p, ok := h.prices[vehicleID]
	return p, ok
}

func (h *historyAdapter) Record(vehicleID string, price int) {
	h.prices[vehicleID] = price
}

// PriceHistoryFor returns the user's persisted price observations,
// reconciled with the remote store when it is reachable.
func (c *Client) PriceHistoryFor(ctx context.Context, userID string) (PriceHistory, error) {
	if err := types.ValidateIDPresent(userID, "userId"); err != nil {
		return nil, err
	}
	return reconciledRead(ctx, c, pricesKey(userID), entityPrices, userID,
		jsonDecode[types.PriceHistory],
		func() types.PriceHistory { return make(types.PriceHistory) },
	)
}

// CheckPriceDrops runs the price watcher over the given vehicles against the
// user's persisted observation history. Detected drops are added to the
// pending price-drop notifications, and the updated history (always the
// latest observed price per vehicle, drop or not) is persisted through the
// usual write path.
func (c *Client) CheckPriceDrops(ctx context.Context, userID string, vehicles []Vehicle) ([]match.PriceDrop, error) {
	history, err := c.PriceHistoryFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = make(types.PriceHistory)
	}

	adapter := &historyAdapter{prices: history}
	drops := match.NewWatcher(adapter).CheckPriceDrops(vehicles)

	if err := c.writeThrough(ctx, pricesKey(userID), entityPrices, userID, adapter.prices); err != nil {
		return nil, err
	}

	if len(drops) > 0 {
		ids := make([]string, len(drops))
		for i, d := range drops {
			ids[i] = d.VehicleID
		}
		if err := c.AddPriceDropNotices(ctx, userID, ids); err != nil {
			return drops, err
		}
	}
	return drops, nil
}

// CheckNewMatches evaluates the vehicles against every saved search of the
// user and records a pending new-match notification for each hit. The
// per-search results are returned keyed by search ID, vehicle order
// preserved.
func (c *Client) CheckNewMatches(ctx context.Context, userID string, vehicles []Vehicle) (map[string][]Vehicle, error) {
	if err := types.ValidateIDPresent(userID, "userId"); err != nil {
		return nil, err
	}
	a := c.ActivitySync(userID)
	results := match.MatchAll(vehicles, a.SavedSearches)

	seen := make(map[string]struct{})
	var ids []string
	for _, hits := range results {
		for _, v := range hits {
			if _, ok := seen[v.ID]; !ok {
				seen[v.ID] = struct{}{}
				ids = append(ids, v.ID)
			}
		}
	}
	if len(ids) > 0 {
		if err := c.AddNewMatchNotices(ctx, userID, ids); err != nil {
			return results, err
		}
	}
	return results, nil
}
