package match

import "github.com/autolot/autolot-client/internal/types"

// HistoryStore is the price-observation collaborator. Injected rather than
// module-global so independent watchers (and tests) never share state.
type HistoryStore interface {
	Last(vehicleID string) (price int, ok bool)
	Record(vehicleID string, price int)
}

// MemHistory is an in-memory HistoryStore.
type MemHistory struct {
	prices types.PriceHistory
}

// NewMemHistory returns an empty in-memory history.
func NewMemHistory() *MemHistory {
	return &MemHistory{prices: make(types.PriceHistory)}
}

func (h *MemHistory) Last(vehicleID string) (int, bool) {
	p, ok := h.prices[vehicleID]
	return p, ok
}

func (h *MemHistory) Record(vehicleID string, price int) {
	h.prices[vehicleID] = price
}

// Snapshot returns a copy of the current history.
func (h *MemHistory) Snapshot() types.PriceHistory {
	out := make(types.PriceHistory, len(h.prices))
	for k, v := range h.prices {
		out[k] = v
	}
	return out
}

// PriceDrop is one detected decrease against the last observation.
type PriceDrop struct {
	VehicleID string
	OldPrice  int
	NewPrice  int
}

// Watcher detects price drops against a history store.
type Watcher struct {
	history HistoryStore
}

// NewWatcher builds a watcher over the given history store.
func NewWatcher(history HistoryStore) *Watcher {
	return &Watcher{history: history}
}

// CheckPriceDrops compares each vehicle's current price with its last
// observation, recording a drop only when the price decreased. The history
// is updated to the current price on every check either way: it always
// reflects the latest observation, so a recorded price may rise again after
// a drop (deliberate; see the package tests).
func (w *Watcher) CheckPriceDrops(vehicles []types.Vehicle) []PriceDrop {
	var drops []PriceDrop
	for _, v := range vehicles {
		if last, ok := w.history.Last(v.ID); ok && v.Price < last {
			drops = append(drops, PriceDrop{VehicleID: v.ID, OldPrice: last, NewPrice: v.Price})
		}
		w.history.Record(v.ID, v.Price)
	}
	return drops
}
