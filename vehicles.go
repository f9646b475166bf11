package client

import (
	"context"

	"github.com/autolot/autolot-client/internal/types"
)

const entityVehicle = "vehicle"

func vehicleKey(id string) string { return "vehicle/" + id }

// Vehicle returns the catalog entry for id. Remote payloads pass through the
// strict vehicle parser, so a corrupt record surfaces as an error instead of
// a half-populated value. Unknown vehicles yield ErrNotFound.
func (c *Client) Vehicle(ctx context.Context, id string) (*Vehicle, error) {
	if err := types.ValidateIDPresent(id, "vehicleId"); err != nil {
		return nil, err
	}
	v, err := reconciledRead(ctx, c, vehicleKey(id), entityVehicle, id,
		types.ParseVehicle, nil)
	if err != nil {
		return nil, err
	}
	return v, nil
}
