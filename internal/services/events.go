package services

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mams-ops/apiserver/internal/mq"
)

// AssetEventChannel is the broker channel carrying recorded movements.
const AssetEventChannel = "asset-events"

// AssetEvent announces a recorded ledger entry to downstream consumers.
type AssetEvent struct {
	Kind      string `json:"kind"`
	ID        string `json:"id"`
	Base      string `json:"base"`
	AssetType string `json:"asset_type"`
	Quantity  int    `json:"quantity"`
}

// EventPublisher publishes asset events to the configured broker.
// Publishing is best-effort: the record is already committed, so a broker
// failure is logged and swallowed. A nil publisher discards everything.
type EventPublisher struct {
	broker *mq.MQ
	logger *slog.Logger
}

// NewEventPublisher wraps the broker. broker may be nil when events are
// disabled by config.
func NewEventPublisher(broker *mq.MQ, logger *slog.Logger) *EventPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventPublisher{broker: broker, logger: logger}
}

// Publish sends the event to the asset-events channel.
func (p *EventPublisher) Publish(ctx context.Context, event AssetEvent) {
	if p == nil || p.broker == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("encode asset event", "error", err)
		return
	}
	attrs := map[string]string{"kind": event.Kind, "base": event.Base}
	if _, err := p.broker.Publish(ctx, AssetEventChannel, data, attrs); err != nil {
		p.logger.Warn("publish asset event", "kind", event.Kind, "id", event.ID, "error", err)
	}
}

// LogAssetEvents consumes the asset-events channel and mirrors each
// delivery into the log, giving deployments without a dedicated consumer
// an audit trail of recorded movements. It blocks until ctx is cancelled
// or the subscription fails. Undecodable payloads are logged and acked
// rather than redelivered forever.
func LogAssetEvents(ctx context.Context, broker *mq.MQ, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	return broker.Subscribe(ctx, AssetEventChannel, func(ctx context.Context, msg mq.Message) error {
		var event AssetEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			logger.Warn("decode asset event", "message_id", msg.ID, "error", err)
			return nil
		}
		logger.Info("asset event",
			"kind", event.Kind,
			"id", event.ID,
			"base", event.Base,
			"asset_type", event.AssetType,
			"quantity", event.Quantity,
		)
		return nil
	})
}
