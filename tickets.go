package client

import (
	"context"

	"github.com/google/uuid"

	"github.com/autolot/autolot-client/internal/types"
)

const entityTicket = "ticket"

func ticketKey(id string) string { return "ticket/" + id }

// Ticket indexed fields; every other update key lands in the metadata bag.
const (
	ticketFieldStatus    = "status"
	ticketFieldVehicleID = "vehicleId"
)

// CreateTicket opens a support ticket. Optional attributes beyond the
// indexed fields go into the metadata bag.
func (c *Client) CreateTicket(ctx context.Context, userID, vehicleID, status string, metadata map[string]any) (*Ticket, error) {
	if err := types.ValidateIDPresent(userID, "userId"); err != nil {
		return nil, err
	}
	t := types.Ticket{
		ID:        uuid.NewString(),
		UserID:    userID,
		VehicleID: vehicleID,
		Status:    status,
		CreatedAt: c.clock.Now(),
		Metadata:  MergeMetadata(nil, metadata),
	}
	if err := c.writeThrough(ctx, ticketKey(t.ID), entityTicket, t.ID, t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Ticket returns the ticket, freshly reconciled with the remote store when
// it is reachable. Unknown tickets yield ErrNotFound.
func (c *Client) Ticket(ctx context.Context, id string) (*Ticket, error) {
	if err := types.ValidateIDPresent(id, "ticketId"); err != nil {
		return nil, err
	}
	t, err := reconciledRead(ctx, c, ticketKey(id), entityTicket, id,
		jsonDecode[types.Ticket], nil)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTicket applies a partial update. Indexed fields update in place;
// everything else merges into the existing metadata bag: keys absent from
// the update are preserved, never dropped.
func (c *Client) UpdateTicket(ctx context.Context, id string, fields map[string]any) (*Ticket, error) {
	t, err := c.Ticket(ctx, id)
	if err != nil {
		return nil, err
	}

	meta := make(map[string]any)
	for k, v := range fields {
		switch k {
		case ticketFieldStatus:
			if s, ok := v.(string); ok {
				t.Status = s
			}
		case ticketFieldVehicleID:
			if s, ok := v.(string); ok {
				t.VehicleID = s
			}
		default:
			meta[k] = v
		}
	}
	t.Metadata = MergeMetadata(t.Metadata, meta)

	if err := c.writeThrough(ctx, ticketKey(id), entityTicket, id, t); err != nil {
		return nil, err
	}
	return t, nil
}

// CloseTicket marks the ticket closed, preserving its metadata.
func (c *Client) CloseTicket(ctx context.Context, id string) (*Ticket, error) {
	return c.UpdateTicket(ctx, id, map[string]any{ticketFieldStatus: "closed"})
}
