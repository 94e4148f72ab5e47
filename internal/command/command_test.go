package command

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pavlovtv/telemetry-bridge/internal/httpclient"
)

func TestSetTime_ClampsNegativeToZero(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	caller := New(httpclient.New(srv.URL+"/"), time.Second)
	res := caller.SetTime(context.Background(), -45.0)
	if !res.OK {
		t.Fatalf("expected OK, got %v", res.Error)
	}
	if gotBody["MatchTime"] != float64(0) {
		t.Fatalf("expected clamped MatchTime 0, got %v", gotBody["MatchTime"])
	}
}

func TestLoadReplay_SendsID(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Successful": true}`))
	}))
	defer srv.Close()

	caller := New(httpclient.New(srv.URL+"/"), time.Second)
	res := caller.LoadReplay(context.Background(), "abc123")
	if !res.OK {
		t.Fatalf("expected OK, got %v", res.Error)
	}
	if res.Data == nil || !res.Data.Successful {
		t.Fatalf("expected successful load, got %+v", res.Data)
	}
	if gotBody["Id"] != "abc123" {
		t.Fatalf("expected Id=abc123, got %v", gotBody["Id"])
	}
}

func TestLoadReplay_RejectsEmptyOrWhitespaceID(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	caller := New(httpclient.New(srv.URL+"/"), time.Second)
	for _, id := range []string{"", "   ", "\t\n"} {
		res := caller.LoadReplay(context.Background(), id)
		if res.OK {
			t.Fatalf("expected validation failure for id %q", id)
		}
		if res.Error == nil {
			t.Fatalf("expected non-nil error for id %q", id)
		}
	}
	if called {
		t.Fatal("expected no request to be issued for an invalid id")
	}
}

func TestSetPause_SendsPausedFlag(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	caller := New(httpclient.New(srv.URL+"/"), time.Second)
	res := caller.SetPause(context.Background(), true)
	if !res.OK {
		t.Fatalf("expected OK, got %v", res.Error)
	}
	if gotBody["Paused"] != true {
		t.Fatalf("expected Paused=true, got %v", gotBody["Paused"])
	}
}
