package elevation

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestElevationAt_FetchAndCache(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Query().Get("lat") == "" || r.URL.Query().Get("lon") == "" {
			t.Errorf("missing lat/lon query: %s", r.URL.RawQuery)
		}
		fmt.Fprint(w, `{"elevations":[146.2]}`)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)

	elev, err := c.ElevationAt(context.Background(), 43.6047, 1.4442)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elev != 146.2 {
		t.Errorf("elevation = %.1f, want 146.2", elev)
	}

	// Same rounded coordinate: served from cache, no second request.
	if _, err := c.ElevationAt(context.Background(), 43.60472, 1.44418); err != nil {
		t.Fatalf("cached lookup failed: %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("expected 1 upstream request, got %d", hits.Load())
	}
	if c.CacheSize() != 1 {
		t.Errorf("cache size = %d, want 1", c.CacheSize())
	}
}

func TestElevationAt_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	if _, err := c.ElevationAt(context.Background(), 43.6, 1.44); err == nil {
		t.Error("expected error on 502 response")
	}
}

func TestElevationAt_EmptyPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"elevations":[]}`)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	if _, err := c.ElevationAt(context.Background(), 43.6, 1.44); err == nil {
		t.Error("expected error on empty elevations array")
	}
}

func TestElevationAt_ContextTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	c := New(srv.URL, 10*time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	if _, err := c.ElevationAt(ctx, 43.6, 1.44); err == nil {
		t.Error("expected timeout error")
	}
	if time.Since(start) > time.Second {
		t.Error("lookup did not respect context deadline")
	}
}
