package match

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/autolot/autolot-client/internal/types"
)

func sp(s string) *string { return &s }
func ip(i int) *int       { return &i }

var honda = types.Vehicle{
	ID:    "v1",
	Make:  "Honda",
	Model: "City",
	Year:  2019,
	Price: 500000,
}

func TestMatch_CategoricalAndRange(t *testing.T) {
	assert.True(t, Match(honda, types.FilterSet{Make: sp("Honda"), MaxPrice: ip(600000)}))
	assert.False(t, Match(honda, types.FilterSet{MaxPrice: ip(400000)}))
	assert.False(t, Match(honda, types.FilterSet{Make: sp("Toyota")}))

	// Inclusive range bounds.
	assert.True(t, Match(honda, types.FilterSet{MinPrice: ip(500000), MaxPrice: ip(500000)}))
	assert.True(t, Match(honda, types.FilterSet{MinYear: ip(2019), MaxYear: ip(2019)}))
	assert.False(t, Match(honda, types.FilterSet{MinYear: ip(2020)}))
}

func TestMatch_EmptyFilterIsWildcard(t *testing.T) {
	assert.True(t, Match(honda, types.FilterSet{}), "no predicates matches everything")
}

func TestMatch_ConjunctionAcrossDimensions(t *testing.T) {
	f := types.FilterSet{
		Make:     sp("Honda"),
		Model:    sp("City"),
		MaxPrice: ip(600000),
		MinYear:  ip(2015),
	}
	assert.True(t, Match(honda, f))

	f.Model = sp("Civic")
	assert.False(t, Match(honda, f), "one failing predicate fails the conjunction")
}

func TestMatchAll_IndependentAndOrderPreserving(t *testing.T) {
	cheap := types.Vehicle{ID: "v2", Make: "Maruti", Model: "Alto", Year: 2021, Price: 300000}
	diesel := types.Vehicle{ID: "v3", Make: "Honda", Model: "Amaze", Year: 2020, Price: 700000, FuelType: "diesel"}
	vehicles := []types.Vehicle{honda, cheap, diesel}

	searches := []types.SavedSearch{
		{ID: "s-honda", Filters: types.FilterSet{Make: sp("Honda")}},
		{ID: "s-budget", Filters: types.FilterSet{MaxPrice: ip(550000)}},
		{ID: "s-none", Filters: types.FilterSet{Make: sp("Tesla")}},
	}

	got := MatchAll(vehicles, searches)

	assert.Equal(t, []types.Vehicle{honda, diesel}, got["s-honda"])
	assert.Equal(t, []types.Vehicle{honda, cheap}, got["s-budget"])
	assert.Empty(t, got["s-none"])
}

func TestWatcher_DetectsDropOnly(t *testing.T) {
	w := NewWatcher(NewMemHistory())

	// First observation: nothing to compare against.
	drops := w.CheckPriceDrops([]types.Vehicle{honda})
	assert.Empty(t, drops)

	cheaper := honda
	cheaper.Price = 450000
	drops = w.CheckPriceDrops([]types.Vehicle{cheaper})
	assert.Equal(t, []PriceDrop{{VehicleID: "v1", OldPrice: 500000, NewPrice: 450000}}, drops)

	// Equal price is not a drop.
	drops = w.CheckPriceDrops([]types.Vehicle{cheaper})
	assert.Empty(t, drops)
}

// The history records the latest observation even when the price went up
// after a drop. This is deliberate, not a bug: the table tracks
// "last seen", it is not a downward-only ratchet.
func TestWatcher_RecordsLatestEvenAfterDrop(t *testing.T) {
	h := NewMemHistory()
	w := NewWatcher(h)

	start := honda // 500000
	w.CheckPriceDrops([]types.Vehicle{start})

	dropped := honda
	dropped.Price = 400000
	assert.Len(t, w.CheckPriceDrops([]types.Vehicle{dropped}), 1)

	raised := honda
	raised.Price = 480000
	drops := w.CheckPriceDrops([]types.Vehicle{raised})
	assert.Empty(t, drops, "a rise is never a drop")

	last, ok := h.Last("v1")
	assert.True(t, ok)
	assert.Equal(t, 480000, last, "history reflects the latest observation, above the prior drop")

	// A later dip below the raised price counts again, even though it is
	// above nothing historical; comparison is strictly against last seen.
	dip := honda
	dip.Price = 470000
	drops = w.CheckPriceDrops([]types.Vehicle{dip})
	assert.Equal(t, []PriceDrop{{VehicleID: "v1", OldPrice: 480000, NewPrice: 470000}}, drops)
}

func TestWatcher_IsolatedHistories(t *testing.T) {
	a := NewWatcher(NewMemHistory())
	b := NewWatcher(NewMemHistory())

	a.CheckPriceDrops([]types.Vehicle{honda})

	cheaper := honda
	cheaper.Price = 1
	assert.Empty(t, b.CheckPriceDrops([]types.Vehicle{cheaper}), "watchers must not share state")
}
