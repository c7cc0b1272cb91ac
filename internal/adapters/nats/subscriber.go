package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/camier/spots/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber sharing a NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

func (s *Subscriber) SubscribeSpotIngested(ctx context.Context, handler func(ctx context.Context, spot *domain.Spot) error) error {
	sub, err := s.js.Subscribe("spots.ingested.>", func(msg *nats.Msg) {
		var spot domain.Spot
		if err := json.Unmarshal(msg.Data, &spot); err != nil {
			_ = msg.Nak()
			return
		}
		if err := handler(ctx, &spot); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("spot-ingest-processor"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

func (s *Subscriber) SubscribeExposureDigests(ctx context.Context, handler func(ctx context.Context, digest *domain.ExposureDigest) error) error {
	sub, err := s.js.Subscribe("spots.exposure.>", func(msg *nats.Msg) {
		var digest domain.ExposureDigest
		if err := json.Unmarshal(msg.Data, &digest); err != nil {
			_ = msg.Nak()
			return
		}
		if err := handler(ctx, &digest); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("exposure-digest-processor"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
