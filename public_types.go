package client

import (
	"github.com/autolot/autolot-client/internal/cache"
	"github.com/autolot/autolot-client/internal/remote"
	"github.com/autolot/autolot-client/internal/syncq"
	"github.com/autolot/autolot-client/internal/types"
)

// Public type aliases so SDK consumers can import only the client package.

// Domain entities
type (
	Vehicle       = types.Vehicle
	Listing       = types.Listing
	Plan          = types.Plan
	FilterSet     = types.FilterSet
	SavedSearch   = types.SavedSearch
	BuyerActivity = types.BuyerActivity
	Notifications = types.Notifications
	Ticket        = types.Ticket
	Conversation  = types.Conversation
	Message       = types.Message
	PriceHistory  = types.PriceHistory
)

// Collaborator capabilities (injectable via options)
type (
	LocalCache   = cache.Store
	RemoteStore  = remote.Store
	RetryQueue   = syncq.Queue
	PendingWrite = syncq.PendingWrite
)

// Errors re-exported in errors.go
