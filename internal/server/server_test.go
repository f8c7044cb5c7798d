package server

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tramboard/internal/config"
	"tramboard/internal/departure"
	"tramboard/internal/directory"
	"tramboard/internal/messages"
	"tramboard/internal/notify"
	"tramboard/internal/query"
	"tramboard/internal/resolver"
	"tramboard/internal/stoplist"
)

type memKV map[string]string

func (m memKV) GetValue(_ context.Context, key string) (string, error) { return m[key], nil }

func (m memKV) SetValue(_ context.Context, key, value string) error {
	m[key] = value
	return nil
}

func (m memKV) DeleteValue(_ context.Context, key string) error {
	delete(m, key)
	return nil
}

type noDepartures struct{}

func (noDepartures) Fetch(context.Context, resolver.Stop, int, []string) ([]departure.Departure, error) {
	return []departure.Departure{}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return newLoggingTestServer(t, discard)
}

func newLoggingTestServer(t *testing.T, logger *slog.Logger) *Server {
	t.Helper()
	dir := directory.Default()
	store, err := stoplist.Load(context.Background(), memKV{}, discard)
	if err != nil {
		t.Fatal(err)
	}
	broker := notify.NewBroker(notify.Granted, discard)
	msgs := messages.New("en")
	orch := query.New(dir, noDepartures{}, store, notify.NewDispatcher(broker, discard), msgs, query.Options{Limit: 10}, discard)
	return New(config.Default(), orch, dir, broker, msgs, logger)
}

func TestRequestLog_QueryOutcome(t *testing.T) {
	var buf bytes.Buffer
	h := newLoggingTestServer(t, slog.New(slog.NewTextHandler(&buf, nil))).Handler()

	tests := []struct {
		path string
		want []string
	}{
		{"/api/departures?q=Borstei", []string{"path=/api/departures", "term=Borstei", "kind=empty_result", "stop=Borstei"}},
		{"/?q=zzzz", []string{"path=/", "term=zzzz", "kind=no_match"}},
	}
	for _, tt := range tests {
		buf.Reset()
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", tt.path, nil))
		for _, want := range tt.want {
			if !strings.Contains(buf.String(), want) {
				t.Errorf("%s: log %q missing %q", tt.path, buf.String(), want)
			}
		}
	}
}

func TestRoutes(t *testing.T) {
	h := newTestServer(t).Handler()

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{"GET", "/", http.StatusOK},
		{"GET", "/?q=Borstei", http.StatusOK},
		{"GET", "/manifest.json", http.StatusOK},
		{"GET", "/static/style.css", http.StatusOK},
		{"GET", "/static/app.js?v=1", http.StatusOK},
		{"GET", "/api/stops?q=bors", http.StatusOK},
		{"GET", "/api/departures?q=Borstei", http.StatusOK},
		{"GET", "/api/departures?q=", http.StatusBadRequest},
		{"GET", "/api/recent", http.StatusOK},
		{"DELETE", "/api/recent", http.StatusNoContent},
		{"GET", "/api/favorites", http.StatusOK},
		{"POST", "/recent/clear", http.StatusSeeOther},
		{"POST", "/", http.StatusMethodNotAllowed},
		{"GET", "/favorites/toggle", http.StatusMethodNotAllowed},
		{"GET", "/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if rec.Header().Get("X-Frame-Options") != "DENY" {
				t.Error("security headers missing")
			}
		})
	}
}

func TestAPIToggleFavoriteRoute(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/api/favorites/toggle", strings.NewReader(`{"name":"Borstei"}`)))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"favorite":true`) {
		t.Errorf("got %d %s", rec.Code, rec.Body.String())
	}
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	s := newTestServer(t)
	s.cfg.Port = 0

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
