package events

import (
	"context"

	"go.uber.org/zap"

	"github.com/mybus-app/service-transit/internal/domain/marker"
	"github.com/mybus-app/service-transit/internal/platform/kafka"
)

// EventProducer is the subset of the Kafka producer used to publish events.
type EventProducer interface {
	PublishEventWithKey(ctx context.Context, topic, key string, event kafka.CloudEvent) error
}

// KafkaMarkerPublisher writes marker events to the map.markers topic, keyed by map
// so one map's events stay ordered.
type KafkaMarkerPublisher struct {
	producer EventProducer
	logger   *zap.Logger
}

func NewKafkaMarkerPublisher(producer EventProducer, logger *zap.Logger) *KafkaMarkerPublisher {
	return &KafkaMarkerPublisher{producer: producer, logger: logger}
}

// PublishMarkerEvent logs and drops the event on failure.
func (p *KafkaMarkerPublisher) PublishMarkerEvent(ctx context.Context, evt marker.Event) {
	cloudEvent, err := kafka.NewCloudEvent(Source, evt.Type, evt)
	if err != nil {
		p.logger.Error("failed to create cloud event",
			zap.String("event_type", evt.Type),
			zap.Error(err),
		)
		return
	}

	if err := p.producer.PublishEventWithKey(ctx, TopicMapMarkers, evt.MapID.String(), cloudEvent); err != nil {
		p.logger.Error("failed to publish event",
			zap.String("topic", TopicMapMarkers),
			zap.String("event_type", evt.Type),
			zap.Error(err),
		)
	}
}

// MultiPublisher fans an event out to several publishers in order.
type MultiPublisher []marker.Publisher

func (m MultiPublisher) PublishMarkerEvent(ctx context.Context, evt marker.Event) {
	for _, p := range m {
		p.PublishMarkerEvent(ctx, evt)
	}
}
