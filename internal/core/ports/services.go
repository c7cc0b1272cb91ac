package ports

import (
	"context"

	"github.com/camier/spots/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishSpotIngested(ctx context.Context, spot *domain.Spot) error
	PublishExposureDigest(ctx context.Context, digest *domain.ExposureDigest) error
	PublishBroadcast(ctx context.Context, data []byte) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeSpotIngested(ctx context.Context, handler func(ctx context.Context, spot *domain.Spot) error) error
	SubscribeExposureDigests(ctx context.Context, handler func(ctx context.Context, digest *domain.ExposureDigest) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
