package http

import (
	"github.com/nats-io/nats.go"

	"github.com/camier/spots/internal/adapters/postgres"
	"github.com/camier/spots/internal/adapters/valkey"
	"github.com/camier/spots/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Sun      *usecases.SunService
	Shadows  *usecases.ShadowService
	Exposure *usecases.ExposureService
	Terrain  *usecases.TerrainService
	Spots    *usecases.SpotService
	Digests  *usecases.DigestService
	NATS     *nats.Conn
	DB       *postgres.DB
	Cache    *valkey.Cache
}
