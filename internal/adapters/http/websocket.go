package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	"github.com/camier/spots/internal/core/domain"
	"github.com/camier/spots/internal/core/usecases"
	"github.com/camier/spots/internal/pkg/metrics"
)

// wsMessage is a client -> server control message driving the shadow engine
// session. The engine idles until "activate"; viewport and time updates while
// active each trigger a fresh overlay render.
type wsMessage struct {
	Action string  `json:"action"` // "activate" | "deactivate" | "viewport" | "time"
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
	Zoom   int     `json:"zoom"`
	At     string  `json:"at"` // RFC 3339; "" keeps the current session time
}

// wsSession tracks one client's engine state. The epoch outlives resets: it
// is the connection's render ordering and fences in-flight renders across
// activate/deactivate cycles.
type wsSession struct {
	epoch    *usecases.ViewportEpoch
	active   bool
	bounds   domain.Bounds
	zoom     int
	at       time.Time
	hasBound bool
}

// activate starts a fresh engine session. Viewport and time from any earlier
// activation are discarded; the client must send a new viewport before the
// first overlay renders.
func (s *wsSession) activate() {
	*s = wsSession{epoch: s.epoch, active: true, zoom: 12, at: time.Now().UTC()}
}

// deactivate stops the engine and fences any render still in flight, so no
// overlay frame can arrive after the inactive acknowledgement.
func (s *wsSession) deactivate() {
	s.active = false
	s.hasBound = false
	s.epoch.Invalidate()
}

// WebSocketHandler runs the per-connection shadow engine session and relays
// catalog broadcast events. Overlay renders run off the read loop; a render
// superseded by a newer viewport is dropped silently (the newer render
// already covers the screen).
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		remoteAddr := c.RemoteAddr().String()
		slog.Info("ws client connected", "remote", remoteAddr)
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		var mu sync.Mutex
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		// Relay catalog broadcasts (new spots, fresh digests) while connected.
		var natsSub *nats.Subscription
		if deps.NATS != nil {
			sub, err := deps.NATS.Subscribe("spots.updates.broadcast", func(msg *nats.Msg) {
				_ = writeJSON(map[string]interface{}{
					"type": "broadcast",
					"data": json.RawMessage(msg.Data),
				})
			})
			if err != nil {
				slog.Warn("ws broadcast subscribe failed", "error", err)
			} else {
				natsSub = sub
			}
		}

		session := wsSession{epoch: &usecases.ViewportEpoch{}, zoom: 12, at: time.Now().UTC()}

		render := func(s wsSession) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			segments, err := deps.Terrain.RenderViewport(ctx, s.epoch, s.bounds, s.zoom, s.at)
			if err != nil {
				if errors.Is(err, usecases.ErrStaleViewport) {
					return // a newer render owns the screen
				}
				_ = writeJSON(map[string]string{"type": "error", "error": err.Error()})
				return
			}
			_ = writeJSON(map[string]interface{}{
				"type":     "overlay",
				"at":       s.at.Format(time.RFC3339),
				"zoom":     s.zoom,
				"segments": segments,
				"count":    len(segments),
			})
		}

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"type": "error", "error": "invalid JSON"})
				continue
			}

			switch m.Action {
			case "activate":
				session.activate()
				_ = writeJSON(map[string]string{"type": "status", "status": "active"})

			case "deactivate":
				session.deactivate()
				_ = writeJSON(map[string]string{"type": "clear"})
				_ = writeJSON(map[string]string{"type": "status", "status": "inactive"})

			case "viewport":
				bounds := domain.Bounds{MinLat: m.MinLat, MinLon: m.MinLon, MaxLat: m.MaxLat, MaxLon: m.MaxLon}
				if err := bounds.Validate(); err != nil {
					_ = writeJSON(map[string]string{"type": "error", "error": err.Error()})
					continue
				}
				session.bounds = bounds
				session.hasBound = true
				if m.Zoom > 0 {
					session.zoom = m.Zoom
				}
				if session.active {
					go render(session)
				}

			case "time":
				if m.At != "" {
					at, err := time.Parse(time.RFC3339, m.At)
					if err != nil {
						_ = writeJSON(map[string]string{"type": "error", "error": "at must be RFC 3339"})
						continue
					}
					session.at = at.UTC()
				} else {
					session.at = time.Now().UTC()
				}
				if session.active && session.hasBound {
					go render(session)
				}

			default:
				_ = writeJSON(map[string]string{"type": "error", "error": "unknown action: " + m.Action})
			}
		}

		close(done)
		if natsSub != nil {
			_ = natsSub.Unsubscribe()
		}
		slog.Info("ws client disconnected", "remote", remoteAddr)
	}
}
