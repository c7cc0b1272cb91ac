// Package elevation implements ports.ElevationProvider against the IGN
// Géoplateforme altimetry REST service.
package elevation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/camier/spots/internal/pkg/metrics"
)

// Client queries terrain heights and memoises them for the process lifetime.
// Elevation is static, so cache entries never expire; the key is the
// coordinate rounded to 4 decimal places (an ~11 m grid), which collapses
// nearby lookups onto one entry.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	cache map[string]float64
}

// New creates a Client. timeout bounds each remote call.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		cache:   make(map[string]float64),
	}
}

// apiResponse is the altimetry service's payload shape.
type apiResponse struct {
	Elevations []float64 `json:"elevations"`
}

// ElevationAt returns the terrain height in meters at (lat, lon).
// Errors mean "unknown": callers substitute 0 and carry on.
func (c *Client) ElevationAt(ctx context.Context, lat, lon float64) (float64, error) {
	key := fmt.Sprintf("%.4f:%.4f", lat, lon)

	c.mu.RLock()
	if elev, ok := c.cache[key]; ok {
		c.mu.RUnlock()
		metrics.ElevationLookups.WithLabelValues("hit").Inc()
		return elev, nil
	}
	c.mu.RUnlock()

	start := time.Now()
	elev, err := c.fetch(ctx, lat, lon)
	metrics.ElevationLookupDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return 0, err
	}
	metrics.ElevationLookups.WithLabelValues("fetch").Inc()

	c.mu.Lock()
	c.cache[key] = elev
	c.mu.Unlock()

	return elev, nil
}

func (c *Client) fetch(ctx context.Context, lat, lon float64) (float64, error) {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%.6f", lat))
	q.Set("lon", fmt.Sprintf("%.6f", lon))
	q.Set("resource", "ign_rge_alti_wgs84g")
	q.Set("zonly", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("build elevation request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("elevation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("elevation service returned %d", resp.StatusCode)
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode elevation response: %w", err)
	}
	if len(payload.Elevations) == 0 {
		return 0, fmt.Errorf("elevation response contained no samples")
	}

	return payload.Elevations[0], nil
}

// CacheSize reports the number of memoised coordinates.
func (c *Client) CacheSize() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}
