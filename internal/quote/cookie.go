package quote

import (
	"encoding/base64"
	"net/http"
)

// cookieKV adapts an HTTP request/response pair to the KV interface.
// Values are base64url-encoded so arbitrary JSON survives cookie encoding
// rules. The cookie is deliberately not HttpOnly: the calculator script
// owns the draft and reads it directly.
type cookieKV struct {
	w      http.ResponseWriter
	r      *http.Request
	secure bool
}

// NewCookieStore returns a draft store backed by a cookie on the given
// request/response pair. Each request gets its own store; the browser is
// the only durable holder of the draft.
func NewCookieStore(w http.ResponseWriter, r *http.Request, secure bool) *Store {
	return NewStore(&cookieKV{w: w, r: r, secure: secure})
}

func (c *cookieKV) Get(key string) (string, bool) {
	cookie, err := c.r.Cookie(key)
	if err != nil {
		return "", false
	}
	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		// Undecodable cookie value reads as corrupt data upstream.
		return cookie.Value, true
	}
	return string(raw), true
}

func (c *cookieKV) Set(key, value string) {
	http.SetCookie(c.w, &http.Cookie{
		Name:     key,
		Value:    base64.RawURLEncoding.EncodeToString([]byte(value)),
		Path:     "/",
		MaxAge:   int(DraftTTL.Seconds()),
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c *cookieKV) Remove(key string) {
	http.SetCookie(c.w, &http.Cookie{
		Name:     key,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
