package usecases

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/camier/spots/internal/core/domain"
	"github.com/camier/spots/internal/core/ports"
	"github.com/camier/spots/internal/pkg/metrics"
)

// ErrStaleViewport is returned when a viewport render finishes after a newer
// viewport has superseded it. The caller must drop the result unrendered.
var ErrStaleViewport = errors.New("viewport superseded during render")

// ViewportEpoch orders the renders of one view surface (one map client or
// WebSocket session). Each render takes the next token; a render whose token
// is no longer current when it completes is stale. Surfaces must not share an
// epoch, or they would supersede each other's renders.
type ViewportEpoch struct {
	counter atomic.Uint64
}

// Invalidate fences every in-flight render on this surface without starting a
// new one. Used when the surface goes away (engine deactivated, client gone).
func (e *ViewportEpoch) Invalidate() {
	e.counter.Add(1)
}

// TerrainConfig carries the terrain-shadow tunables.
type TerrainConfig struct {
	HeightM    float64 // assumed "local relief" height per grid point
	MinShadowM float64 // segments shorter than this are not emitted
	GridLow    int     // lattice size below ZoomMedium
	GridMedium int     // lattice size in [ZoomMedium, ZoomHigh)
	GridHigh   int     // lattice size at ZoomHigh and above
	ZoomMedium int
	ZoomHigh   int

	ElevationTimeout time.Duration // bounded wait per elevation lookup
}

// TerrainService renders terrain shadow overlays for a map viewport: an
// assumed constant relief height at every grid point, projected away from the
// sun at the viewport center. Elevation is sampled per point but does not
// occlude neighbours; that simplification is deliberate and documented.
type TerrainService struct {
	sun    *SunService
	shadow *ShadowService
	elev   ports.ElevationProvider
	cfg    TerrainConfig
}

// NewTerrainService creates a TerrainService. elev may be nil; all elevations
// then read as 0.
func NewTerrainService(sun *SunService, shadow *ShadowService, elev ports.ElevationProvider, cfg TerrainConfig) *TerrainService {
	if cfg.ElevationTimeout <= 0 {
		cfg.ElevationTimeout = 2 * time.Second
	}
	return &TerrainService{sun: sun, shadow: shadow, elev: elev, cfg: cfg}
}

// GridSizeForZoom scales sample density down as the map zooms out, bounding
// the number of elevation lookups per render.
func (t *TerrainService) GridSizeForZoom(zoom int) int {
	switch {
	case zoom >= t.cfg.ZoomHigh:
		return t.cfg.GridHigh
	case zoom >= t.cfg.ZoomMedium:
		return t.cfg.GridMedium
	default:
		return t.cfg.GridLow
	}
}

// RenderViewport computes the shadow segments for one viewport and instant.
// Within one epoch (one view surface), each call supersedes any in-flight
// render: when a render completes after a newer one has started, it returns
// ErrStaleViewport and its results must be discarded (last viewport wins,
// never stale overlays). Renders on different epochs never interfere. A nil
// epoch runs a one-shot render that cannot go stale.
func (t *TerrainService) RenderViewport(ctx context.Context, epoch *ViewportEpoch, bounds domain.Bounds, zoom int, at time.Time) ([]domain.ShadowSegment, error) {
	if err := bounds.Validate(); err != nil {
		return nil, err
	}

	var token uint64
	if epoch != nil {
		token = epoch.counter.Add(1)
	}
	start := time.Now()

	sun, err := t.sun.PositionAt(bounds.Center(), at)
	if err != nil {
		return nil, err
	}
	if !sun.AboveHorizon() {
		// Below horizon: defined "no shadow" state, an empty overlay.
		return nil, finishRender(epoch, token, start)
	}

	grid, err := domain.NewGrid(bounds, t.GridSizeForZoom(zoom))
	if err != nil {
		return nil, err
	}

	elevations := t.fetchElevations(ctx, grid.Points)

	segments := make([]domain.ShadowSegment, 0, len(grid.Points))
	for i, p := range grid.Points {
		seg, ok := t.shadow.Shadow(p, sun, t.cfg.HeightM)
		if !ok || seg.LengthM < t.cfg.MinShadowM {
			continue
		}
		seg.ElevationM = elevations[i] // informational; no occlusion between points
		segments = append(segments, seg)
	}

	if err := finishRender(epoch, token, start); err != nil {
		return nil, err
	}
	return segments, nil
}

// finishRender validates the epoch token and records render metrics.
func finishRender(epoch *ViewportEpoch, token uint64, start time.Time) error {
	if epoch != nil && epoch.counter.Load() != token {
		metrics.StaleViewportDrops.Inc()
		return ErrStaleViewport
	}
	metrics.TerrainRenders.Inc()
	metrics.TerrainRenderDuration.Observe(time.Since(start).Seconds())
	return nil
}

// fetchElevations resolves terrain height for every grid point concurrently.
// Each lookup has a bounded wait and falls back to 0 independently: one slow
// or failing point never blocks or fails its siblings.
func (t *TerrainService) fetchElevations(ctx context.Context, points []domain.GeoPoint) []float64 {
	elevations := make([]float64, len(points))
	if t.elev == nil {
		return elevations
	}

	var wg sync.WaitGroup
	for i, p := range points {
		wg.Add(1)
		go func(i int, p domain.GeoPoint) {
			defer wg.Done()

			lookupCtx, cancel := context.WithTimeout(ctx, t.cfg.ElevationTimeout)
			defer cancel()

			elev, err := t.elev.ElevationAt(lookupCtx, p.Lat, p.Lon)
			if err != nil {
				slog.Debug("elevation lookup failed, assuming 0",
					"lat", p.Lat, "lon", p.Lon, "error", err)
				metrics.ElevationLookups.WithLabelValues("fallback").Inc()
				return
			}
			elevations[i] = elev
		}(i, p)
	}
	wg.Wait()

	return elevations
}
