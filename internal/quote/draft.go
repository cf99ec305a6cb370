// Package quote implements the short-lived draft that bridges the price
// calculator and the contact form. The draft is a single slot owned by the
// visitor's browser: in production it round-trips through a cookie, so the
// server never keeps a copy. The expiry and corruption handling live here,
// behind a small key-value abstraction, so they are testable without a
// browser.
package quote

import (
	"encoding/json"
	"time"
)

// StorageKey is the fixed key under which the draft is stored.
const StorageKey = "loire_digital_quote"

// DraftTTL is how long a saved draft stays loadable. One hour is long
// enough to finish the contact form and short enough that stale pricing is
// not silently reused. Policy constant, not configurable.
const DraftTTL = time.Hour

// Draft is the persisted snapshot of a finished calculator session.
// Field names match the JSON the calculator UI reads and writes.
type Draft struct {
	PackID           string   `json:"packId"`
	PackName         string   `json:"packName"`
	Pages            int      `json:"pages"`
	OptionIDs        []string `json:"optionIds"`
	OptionNames      []string `json:"optionNames"`
	Maintenance      string   `json:"maintenance"`
	MaintenanceName  string   `json:"maintenanceName"`
	TotalPrice       int      `json:"totalPrice"`
	MaintenancePrice int      `json:"maintenancePrice"`
	// Timestamp is the creation instant in Unix milliseconds.
	Timestamp int64 `json:"timestamp"`
}

// KV is the minimal string-blob storage the draft store needs. The
// production implementation is an HTTP cookie; tests use an in-memory map.
type KV interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Remove(key string)
}

// Store reads and writes the single draft slot.
type Store struct {
	kv  KV
	now func() time.Time
}

// NewStore creates a draft store over the given KV. A nil KV produces a
// store whose operations are no-ops (Load always reports absent), matching
// execution contexts without persistent client storage.
func NewStore(kv KV) *Store {
	return &Store{kv: kv, now: time.Now}
}

// Save serializes the draft and stores it, overwriting any existing draft.
// If the draft has no timestamp yet, the current instant is recorded.
func (s *Store) Save(d Draft) {
	if s.kv == nil {
		return
	}
	if d.Timestamp == 0 {
		d.Timestamp = s.now().UnixMilli()
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return
	}
	s.kv.Set(StorageKey, string(raw))
}

// Load returns the stored draft. Absent, corrupt and expired drafts all
// yield ok=false; in the corrupt and expired cases the slot is cleared as
// a side effect, so a later Load finds nothing at all. Callers never need
// to distinguish the three cases.
func (s *Store) Load() (Draft, bool) {
	if s.kv == nil {
		return Draft{}, false
	}

	raw, ok := s.kv.Get(StorageKey)
	if !ok {
		return Draft{}, false
	}

	var d Draft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		s.Clear()
		return Draft{}, false
	}

	age := s.now().Sub(time.UnixMilli(d.Timestamp))
	if age >= DraftTTL {
		s.Clear()
		return Draft{}, false
	}

	return d, true
}

// Clear removes any stored draft. Idempotent.
func (s *Store) Clear() {
	if s.kv == nil {
		return
	}
	s.kv.Remove(StorageKey)
}
