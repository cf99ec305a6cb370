package quote

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCookieStoreSaveSetsCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/quote-draft", nil)

	s := NewCookieStore(rec, req, false)
	now := time.Now()
	s.Save(testDraft(now))

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != StorageKey {
		t.Errorf("cookie name = %q, want %q", c.Name, StorageKey)
	}
	if c.MaxAge != int(DraftTTL.Seconds()) {
		t.Errorf("cookie max age = %d, want %d", c.MaxAge, int(DraftTTL.Seconds()))
	}
}

func TestCookieStoreRoundTrip(t *testing.T) {
	// Save on one request, read back from the cookie on the next.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/quote-draft", nil)
	now := time.Now()
	want := testDraft(now)
	NewCookieStore(rec, req, false).Save(want)

	next := httptest.NewRequest("GET", "/api/quote-draft", nil)
	for _, c := range rec.Result().Cookies() {
		next.AddCookie(c)
	}

	got, ok := NewCookieStore(httptest.NewRecorder(), next, false).Load()
	if !ok {
		t.Fatal("expected draft to load from cookie")
	}
	if got.PackID != want.PackID || got.TotalPrice != want.TotalPrice {
		t.Errorf("loaded %+v, want %+v", got, want)
	}
}

func TestCookieStoreClearExpiresCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/api/quote-draft", nil)
	req.AddCookie(&http.Cookie{Name: StorageKey, Value: "whatever"})

	NewCookieStore(rec, req, false).Clear()

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	if cookies[0].MaxAge != -1 {
		t.Errorf("clear should expire the cookie, got MaxAge %d", cookies[0].MaxAge)
	}
}

func TestCookieStoreMissingCookie(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/quote-draft", nil)
	if _, ok := NewCookieStore(httptest.NewRecorder(), req, false).Load(); ok {
		t.Error("expected absent draft without a cookie")
	}
}

func TestCookieStoreGarbageCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/quote-draft", nil)
	req.AddCookie(&http.Cookie{Name: StorageKey, Value: "not-base64-json!!"})

	s := NewCookieStore(rec, req, false)
	if _, ok := s.Load(); ok {
		t.Error("expected garbage cookie to read as absent")
	}

	// The corrupt read clears the cookie.
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge != -1 {
		t.Error("corrupt cookie should be expired on read")
	}
}
