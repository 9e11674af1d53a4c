package events

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/mybus-app/service-transit/internal/application"
	"github.com/mybus-app/service-transit/internal/domain/geo"
	"github.com/mybus-app/service-transit/internal/platform/kafka"
)

// DeviceLocationReportedEvent is a position fix pushed by the mobile app.
type DeviceLocationReportedEvent struct {
	DeviceID   string    `json:"device_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Accuracy   float64   `json:"accuracy"`
	ReportedAt time.Time `json:"reported_at"`
}

// LocationSink receives decoded position fixes.
type LocationSink interface {
	Report(pos application.Position)
}

// DeviceLocationConsumer feeds device position reports into a LocationSink.
type DeviceLocationConsumer struct {
	consumer *kafka.Consumer
	sink     LocationSink
	logger   *zap.Logger
}

// NewDeviceLocationConsumer creates a new DeviceLocationConsumer.
func NewDeviceLocationConsumer(
	brokers []string,
	groupID string,
	sink LocationSink,
	logger *zap.Logger,
) *DeviceLocationConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, TopicDeviceLocation, logger)
	return &DeviceLocationConsumer{
		consumer: consumer,
		sink:     sink,
		logger:   logger,
	}
}

// Start begins consuming location reports. This blocks until the context is cancelled.
func (c *DeviceLocationConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *DeviceLocationConsumer) Close() error {
	return c.consumer.Close()
}

func (c *DeviceLocationConsumer) handleMessage(_ context.Context, msg kafkago.Message) error {
	var cloudEvent kafka.CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		c.logger.Error("failed to parse cloud event from device location topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case DeviceLocationReported:
		return c.handleLocationReported(cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled device event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *DeviceLocationConsumer) handleLocationReported(cloudEvent kafka.CloudEvent) error {
	var evt DeviceLocationReportedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse DeviceLocationReportedEvent data", zap.Error(err))
		return nil
	}

	coord := geo.Coordinate{Latitude: evt.Latitude, Longitude: evt.Longitude}
	if err := coord.Validate(); err != nil {
		c.logger.Warn("dropping out-of-range location report",
			zap.String("device_id", evt.DeviceID),
			zap.Error(err),
		)
		return nil
	}

	reportedAt := evt.ReportedAt
	if reportedAt.IsZero() {
		reportedAt = cloudEvent.Time
	}
	c.sink.Report(application.Position{
		Coords:    coord,
		Accuracy:  evt.Accuracy,
		Timestamp: reportedAt,
	})

	c.logger.Debug("device location updated",
		zap.String("device_id", evt.DeviceID),
		zap.Float64("lat", evt.Latitude),
		zap.Float64("lon", evt.Longitude),
	)
	return nil
}
