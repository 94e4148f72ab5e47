package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/pavlovtv/telemetry-bridge/internal/httpclient"
)

func TestWalker_List_PaginatesAndDedupes(t *testing.T) {
	pages := [][]string{
		{`{"_id":"a","mapName":"Hangar","created":"2024-01-01T00:00:00Z"}`, `{"_id":"b","mapName":"Stalingrad","created":"2024-01-02T00:00:00Z"}`},
		{`{"_id":"b","mapName":"Stalingrad","created":"2024-01-02T00:00:00Z"}`, `{"_id":"c","mapName":"Bridge","created":"2024-01-03T00:00:00Z"}`},
		{},
	}

	var callCount int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		idx := callCount
		callCount++
		w.Header().Set("Content-Type", "application/json")
		if idx >= len(pages) {
			_, _ = fmt.Fprint(w, `{"replays":[],"total":3}`)
			return
		}
		body := `{"replays":[` + joinReplays(pages[idx]) + `],"total":3}`
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	w := New(httpclient.New(srv.URL+"/"), time.Second)
	replays, err := w.List(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(replays) != 3 {
		t.Fatalf("expected 3 unique replays, got %d: %+v", len(replays), replays)
	}
	if replays[0].ID != "c" {
		t.Fatalf("expected newest replay first, got %s", replays[0].ID)
	}
}

func TestWalker_List_StopsOnEmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"replays":[],"total":0}`)
	}))
	defer srv.Close()

	w := New(httpclient.New(srv.URL+"/"), time.Second)
	replays, err := w.List(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(replays) != 0 {
		t.Fatalf("expected no replays, got %d", len(replays))
	}
}

func TestWithOffset_EncodesQuery(t *testing.T) {
	got := withOffset("find", 40)
	want := "find?offset=" + strconv.Itoa(40)
	if got != want {
		t.Fatalf("withOffset = %q, want %q", got, want)
	}
}

func joinReplays(items []string) string {
	out := ""
	for i, it := range items {
		if i > 0 {
			out += ","
		}
		out += it
	}
	return out
}
