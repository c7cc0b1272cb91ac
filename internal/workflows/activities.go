package workflows

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/camier/spots/internal/core/ports"
	"github.com/camier/spots/internal/core/usecases"
)

// DigestActivities holds the activity implementations for the digest workflows.
type DigestActivities struct {
	Digests   *usecases.DigestService
	Spots     ports.SpotRepository
	Publisher ports.EventPublisher
}

// ListSpotIDs returns the IDs of every catalog spot.
func (a *DigestActivities) ListSpotIDs(ctx context.Context) ([]string, error) {
	spots, err := a.Spots.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list spots: %w", err)
	}
	ids := make([]string, 0, len(spots))
	for _, s := range spots {
		ids = append(ids, s.ID)
	}
	return ids, nil
}

// ComputeDigest computes and stores one spot's digest, returning its sun hours.
func (a *DigestActivities) ComputeDigest(ctx context.Context, spotID, date string) (float64, error) {
	digest, err := a.Digests.ComputeAndStore(ctx, spotID, date)
	if err != nil {
		return 0, fmt.Errorf("compute digest: %w", err)
	}
	return digest.SunHours, nil
}

// PublishDigest publishes a stored digest to the broker and broadcasts it to
// connected map clients.
func (a *DigestActivities) PublishDigest(ctx context.Context, spotID, date string) error {
	digest, err := a.Digests.Get(ctx, spotID, date)
	if err != nil {
		return fmt.Errorf("load digest %s/%s: %w", spotID, date, err)
	}

	if a.Publisher == nil {
		log.Printf("PUBLISH (no broker) spot=%s date=%s sunHours=%.1f", spotID, date, digest.SunHours)
		return nil
	}

	if err := a.Publisher.PublishExposureDigest(ctx, digest); err != nil {
		return fmt.Errorf("publish digest: %w", err)
	}

	if data, err := json.Marshal(digest); err == nil {
		_ = a.Publisher.PublishBroadcast(ctx, data)
	}
	return nil
}

// DeleteDigest removes a stored digest (saga compensation / rollback).
func (a *DigestActivities) DeleteDigest(ctx context.Context, spotID, date string) error {
	if err := a.Digests.Delete(ctx, spotID, date); err != nil {
		return fmt.Errorf("delete digest %s/%s: %w", spotID, date, err)
	}
	log.Printf("Digest %s/%s deleted (saga compensation)", spotID, date)
	return nil
}
