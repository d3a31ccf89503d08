package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRootRedirectsToNewMatch(t *testing.T) {
	router := NewRouter(newTestService(), Options{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	loc := rec.Header().Get("Location")
	if !strings.HasPrefix(loc, "/match/") || len(loc) != len("/match/")+8 {
		t.Fatalf("unexpected location %q", loc)
	}
}

func TestMatchPageOpensMatch(t *testing.T) {
	router := NewRouter(newTestService(), Options{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/match/m1/state", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before the page is opened, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/match/m1", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "/assets/app.js") {
		t.Fatalf("expected match page, got %d", rec.Code)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("expected security headers")
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/match/m1/state", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected state, got %d", rec.Code)
	}
	var view map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if view["status"] != "NOT_STARTED" || view["ropeOffset"].(float64) != 50 || view["team1Name"] != "Magma Riders" {
		t.Fatalf("unexpected view %+v", view)
	}
}

func TestQRCodeIsPNG(t *testing.T) {
	router := NewRouter(newTestService(), Options{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/match/m1/qr", nil))

	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("expected png, got %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Fatalf("expected png signature")
	}
}

func TestAssetsAndHealth(t *testing.T) {
	router := NewRouter(newTestService(), Options{Version: "1.2.3"})

	cases := []struct {
		path        string
		code        int
		contentType string
	}{
		{"/assets/app.js", http.StatusOK, "text/javascript; charset=utf-8"},
		{"/assets/app.css", http.StatusOK, "text/css; charset=utf-8"},
		{"/assets/missing.js", http.StatusNotFound, ""},
		{"/healthz", http.StatusOK, "text/plain; charset=utf-8"},
		{"/version", http.StatusOK, "text/plain; charset=utf-8"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
		if rec.Code != tc.code {
			t.Fatalf("%s: expected %d, got %d", tc.path, tc.code, rec.Code)
		}
		if tc.contentType != "" && rec.Header().Get("Content-Type") != tc.contentType {
			t.Fatalf("%s: unexpected content type %q", tc.path, rec.Header().Get("Content-Type"))
		}
	}
}
