// Package match evaluates vehicles against saved-search criteria and tracks
// price observations. Everything here is pure or operates through injected
// stores; the package performs no I/O of its own.
package match

import "github.com/autolot/autolot-client/internal/types"

// Match reports whether the vehicle satisfies every present predicate of the
// filter set. An absent predicate matches everything: categorical fields
// compare by equality, price and year by inclusive range.
func Match(v types.Vehicle, f types.FilterSet) bool {
	if f.Make != nil && v.Make != *f.Make {
		return false
	}
	if f.Model != nil && v.Model != *f.Model {
		return false
	}
	if f.MinPrice != nil && v.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && v.Price > *f.MaxPrice {
		return false
	}
	if f.MinYear != nil && v.Year < *f.MinYear {
		return false
	}
	if f.MaxYear != nil && v.Year > *f.MaxYear {
		return false
	}
	if f.Category != nil && v.Category != *f.Category {
		return false
	}
	if f.FuelType != nil && v.FuelType != *f.FuelType {
		return false
	}
	if f.Transmission != nil && v.Transmission != *f.Transmission {
		return false
	}
	if f.Location != nil && v.Location != *f.Location {
		return false
	}
	return true
}

// MatchAll evaluates each saved search independently, preserving the input
// order of vehicles within every result slice.
func MatchAll(vehicles []types.Vehicle, searches []types.SavedSearch) map[string][]types.Vehicle {
	out := make(map[string][]types.Vehicle, len(searches))
	for _, s := range searches {
		var hits []types.Vehicle
		for _, v := range vehicles {
			if Match(v, s.Filters) {
				hits = append(hits, v)
			}
		}
		out[s.ID] = hits
	}
	return out
}
