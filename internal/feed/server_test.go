package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pavlovtv/telemetry-bridge"
)

func TestServer_HandleStatus_ReturnsSnapshot(t *testing.T) {
	sink := NewMemorySink()
	sink.OnState(bridge.Connected)
	s := NewServer(sink, 0, nil, "", nil)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	s.router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var snap statusSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if snap.State != bridge.Connected {
		t.Fatalf("state = %v, want Connected", snap.State)
	}
}

func TestServer_HandleDashboard_404sWithoutAssets(t *testing.T) {
	sink := NewMemorySink()
	s := NewServer(sink, 0, nil, "", nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 when no assets are mounted", rec.Code)
	}
}

func TestServer_Start_BindsAndStopsOnContextCancel(t *testing.T) {
	sink := NewMemorySink()
	s := NewServer(sink, 0, nil, "", nil)

	ctx, cancel := context.WithCancel(context.Background())
	if err := s.Start(ctx); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	cancel()
}
