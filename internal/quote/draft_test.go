package quote

import (
	"reflect"
	"testing"
	"time"
)

// mapKV is an in-memory KV for tests.
type mapKV map[string]string

func (m mapKV) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (m mapKV) Set(key, value string) { m[key] = value }

func (m mapKV) Remove(key string) { delete(m, key) }

func testDraft(ts time.Time) Draft {
	return Draft{
		PackID:           "essentiel",
		PackName:         "Essentiel",
		Pages:            7,
		OptionIDs:        []string{"seo", "blog"},
		OptionNames:      []string{"SEO local avancé", "Blog"},
		Maintenance:      "premium",
		MaintenanceName:  "Maintenance premium",
		TotalPrice:       1649,
		MaintenancePrice: 59,
		Timestamp:        ts.UnixMilli(),
	}
}

func storeAt(kv KV, at time.Time) *Store {
	s := NewStore(kv)
	s.now = func() time.Time { return at }
	return s
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	kv := mapKV{}
	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	s := storeAt(kv, now)

	want := testDraft(now)
	s.Save(want)

	got, ok := s.Load()
	if !ok {
		t.Fatal("expected draft to load")
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("loaded draft differs:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestStoreLoadWithinTTL(t *testing.T) {
	kv := mapKV{}
	created := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	storeAt(kv, created).Save(testDraft(created))

	// Readable right up to (but not at) the one hour mark.
	for _, age := range []time.Duration{0, time.Minute, 59 * time.Minute, time.Hour - time.Millisecond} {
		s := storeAt(kv, created.Add(age))
		if _, ok := s.Load(); !ok {
			t.Errorf("draft should load at age %v", age)
		}
	}
}

func TestStoreExpiry(t *testing.T) {
	kv := mapKV{}
	created := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	storeAt(kv, created).Save(testDraft(created))

	s := storeAt(kv, created.Add(DraftTTL))
	if _, ok := s.Load(); ok {
		t.Error("draft should be absent once the TTL elapses")
	}

	// The expired read purges the slot.
	if _, exists := kv[StorageKey]; exists {
		t.Error("expired draft should be physically removed")
	}
	if _, ok := s.Load(); ok {
		t.Error("second load should find nothing")
	}
}

func TestStoreCorruptData(t *testing.T) {
	kv := mapKV{StorageKey: "{not json"}
	s := storeAt(kv, time.Now())

	if _, ok := s.Load(); ok {
		t.Error("corrupt draft should read as absent")
	}
	if _, exists := kv[StorageKey]; exists {
		t.Error("corrupt draft should be cleared on read")
	}
}

func TestStoreOverwrite(t *testing.T) {
	kv := mapKV{}
	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	s := storeAt(kv, now)

	first := testDraft(now)
	s.Save(first)

	second := testDraft(now)
	second.PackID = "complet"
	second.PackName = "Complet"
	second.TotalPrice = 2100
	s.Save(second)

	got, ok := s.Load()
	if !ok {
		t.Fatal("expected draft to load")
	}
	if got.PackID != "complet" || got.TotalPrice != 2100 {
		t.Errorf("expected second draft to win, got %+v", got)
	}
}

func TestStoreClearIdempotent(t *testing.T) {
	kv := mapKV{}
	now := time.Now()
	s := storeAt(kv, now)

	s.Save(testDraft(now))
	s.Clear()
	s.Clear()

	if _, ok := s.Load(); ok {
		t.Error("draft should be absent after clear")
	}
}

func TestStoreSaveFillsTimestamp(t *testing.T) {
	kv := mapKV{}
	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	s := storeAt(kv, now)

	d := testDraft(now)
	d.Timestamp = 0
	s.Save(d)

	got, ok := s.Load()
	if !ok {
		t.Fatal("expected draft to load")
	}
	if got.Timestamp != now.UnixMilli() {
		t.Errorf("Timestamp = %d, want %d", got.Timestamp, now.UnixMilli())
	}
}

func TestStoreNilKV(t *testing.T) {
	s := NewStore(nil)

	// All operations are no-ops without backing storage.
	s.Save(testDraft(time.Now()))
	if _, ok := s.Load(); ok {
		t.Error("nil-backed store should never load a draft")
	}
	s.Clear()
}
