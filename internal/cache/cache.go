// Package cache provides the local-first storage collaborator. Reads and
// writes are synchronous and never fail observably: backend I/O errors are
// logged and swallowed so the SDK degrades to remote-only instead of
// surfacing local storage trouble to callers.
package cache

import "time"

// Entry is a stored value with its write timestamp. Values are whole-value
// replaced on every write, never partially merged.
type Entry struct {
	Key       string
	Value     []byte
	WrittenAt time.Time
}

// Store is the local cache capability. Get returns (nil, false) when the key
// is absent or the backend is unavailable.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Delete(key string)
}
