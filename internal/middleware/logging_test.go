package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestLoggingMiddleware_LogsRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	mw := NewRequestLoggingMiddleware(logger)

	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest("POST", "/api/devis", nil)
	req.RemoteAddr = "192.168.1.1:5000"
	handler.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	if !strings.Contains(out, "method=POST") {
		t.Errorf("log missing method: %s", out)
	}
	if !strings.Contains(out, "path=/api/devis") {
		t.Errorf("log missing path: %s", out)
	}
	if !strings.Contains(out, "status=201") {
		t.Errorf("log missing status: %s", out)
	}
}

func TestRequestLoggingMiddleware_SkipsNoisyPaths(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	mw := NewRequestLoggingMiddleware(logger)

	handler := mw.Handler(okHandler())

	for _, path := range []string{"/health", "/metrics", "/files/quotes/x.html"} {
		req := httptest.NewRequest("GET", path, nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	if buf.Len() != 0 {
		t.Errorf("expected no log output for skipped paths, got: %s", buf.String())
	}
}

func TestMetricsAuthMiddleware(t *testing.T) {
	mw := NewMetricsAuthMiddleware("metrics", "s3cret")
	handler := mw.Handler(okHandler())

	// Missing credentials
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without credentials, got %d", rec.Code)
	}

	// Wrong credentials
	req := httptest.NewRequest("GET", "/metrics", nil)
	req.SetBasicAuth("metrics", "wrong")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with wrong password, got %d", rec.Code)
	}

	// Correct credentials
	req = httptest.NewRequest("GET", "/metrics", nil)
	req.SetBasicAuth("metrics", "s3cret")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with correct credentials, got %d", rec.Code)
	}
}

func TestMetricsAuthMiddleware_Disabled(t *testing.T) {
	mw := NewMetricsAuthMiddleware("", "")
	handler := mw.Handler(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected pass-through when auth disabled, got %d", rec.Code)
	}
}
