package client

import (
	"context"

	"github.com/autolot/autolot-client/internal/types"
)

const entityListing = "listing"

func listingKey(id string) string { return "listing/" + id }

// Listing returns the listing, freshly reconciled with the remote store
// when it is reachable. A listing unknown to both stores yields ErrNotFound.
func (c *Client) Listing(ctx context.Context, id string) (*Listing, error) {
	if err := types.ValidateIDPresent(id, "listingId"); err != nil {
		return nil, err
	}
	l, err := reconciledRead(ctx, c, listingKey(id), entityListing, id,
		jsonDecode[types.Listing], nil)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// ListingSync returns the locally cached listing immediately, or nil when
// the cache has never seen it.
func (c *Client) ListingSync(id string) *Listing {
	if l, ok := cacheGet[types.Listing](c, listingKey(id)); ok {
		return &l
	}
	return nil
}

// SaveListing persists the listing locally and replicates it asynchronously.
func (c *Client) SaveListing(ctx context.Context, l Listing) error {
	if err := types.ValidateIDPresent(l.ID, "listingId"); err != nil {
		return err
	}
	return c.writeThrough(ctx, listingKey(l.ID), entityListing, l.ID, l)
}

// RefreshListing bumps the listing's last-refreshed stamp. Expiry and
// status are untouched.
func (c *Client) RefreshListing(ctx context.Context, id string) (*Listing, error) {
	l, err := c.Listing(ctx, id)
	if err != nil {
		return nil, err
	}
	refreshed := c.lc.Refresh(*l)
	if err := c.SaveListing(ctx, refreshed); err != nil {
		return nil, err
	}
	return &refreshed, nil
}

// RenewListing extends the listing by the configured expiry window, advances
// its renewal counter, and republishes it.
func (c *Client) RenewListing(ctx context.Context, id string, autoRenew bool) (*Listing, error) {
	l, err := c.Listing(ctx, id)
	if err != nil {
		return nil, err
	}
	renewed := c.lc.Renew(*l, autoRenew)
	if err := c.SaveListing(ctx, renewed); err != nil {
		return nil, err
	}
	return &renewed, nil
}

// SweepAutoRenew renews every auto-renew listing that has expired (under the
// seller's plan rules) and persists exactly the listings the sweep changed.
// The returned slice mirrors the input order.
func (c *Client) SweepAutoRenew(ctx context.Context, listings []Listing, plan *Plan) ([]Listing, error) {
	out := c.lc.SweepAutoRenew(listings, plan)
	for i := range out {
		if out[i].RenewalCount != listings[i].RenewalCount {
			if err := c.SaveListing(ctx, out[i]); err != nil {
				return out, err
			}
		}
	}
	return out, nil
}
