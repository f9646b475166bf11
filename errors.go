package client

import (
	"errors"

	"github.com/autolot/autolot-client/internal/scheduler"
)

// ErrBackPressure is returned when the client's internal scheduler queue is full.
var ErrBackPressure = errors.New("back-pressure (queue full)")

// IsBackPressure reports whether err is a back-pressure error.
func IsBackPressure(err error) bool {
	return errors.Is(err, ErrBackPressure) || errors.Is(err, scheduler.ErrQueueFull)
}

// ErrNotFound is returned when neither the remote store nor the local cache
// has data for an entity that has no synthesizable default (e.g. a vehicle).
var ErrNotFound = errors.New("no local or remote data")
