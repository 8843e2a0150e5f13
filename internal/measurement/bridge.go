package measurement

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/infrastructure/mqtt"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/location"
)

const bridgeIngestTimeout = 5 * time.Second

// Publisher sends a message to a broker topic. *mqtt.Client implements it.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// readingMessage is the payload a sensor publishes on its reading topic.
// Value may be a JSON number or a numeric string.
type readingMessage struct {
	ID       string        `json:"id"`
	Value    json.Number   `json:"value"`
	Unit     string        `json:"unit"`
	Start    *time.Time    `json:"start"`
	Time     time.Time     `json:"time"`
	Location *location.GPS `json:"location"`
}

// Bridge connects the Service to an MQTT broker. Readings published on
// {prefix}/readings/{sensor_id} are ingested, and every accepted reading is
// announced on {prefix}/events/readings/{device_id}.
type Bridge struct {
	svc    *Service
	pub    Publisher
	topics mqtt.Topics
	qos    byte
	logger Logger
	now    func() time.Time
}

// NewBridge creates a bridge. pub may be nil, in which case accepted
// readings are not announced.
func NewBridge(svc *Service, pub Publisher, topics mqtt.Topics, qos byte) *Bridge {
	return &Bridge{svc: svc, pub: pub, topics: topics, qos: qos, logger: noopLogger{}, now: time.Now}
}

// SetLogger sets the logger for the bridge.
func (b *Bridge) SetLogger(logger Logger) {
	b.logger = logger
}

// HandleMessage ingests one reading message. The sensor ID comes from the
// topic; a message without a time is stamped with the receive time.
//
// It has the mqtt.MessageHandler signature.
func (b *Bridge) HandleMessage(topic string, payload []byte) error {
	sensorID, ok := b.topics.ParseReading(topic)
	if !ok {
		return fmt.Errorf("%w: unexpected topic %q", ErrMalformedReading, topic)
	}

	var msg readingMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("%w: sensor %s: %v", ErrMalformedReading, sensorID, err)
	}
	if msg.Time.IsZero() {
		msg.Time = b.now()
	}

	ctx, cancel := context.WithTimeout(context.Background(), bridgeIngestTimeout)
	defer cancel()

	r, err := b.svc.Ingest(ctx, Reading{
		ID:       msg.ID,
		SensorID: sensorID,
		Value:    msg.Value.String(),
		Unit:     msg.Unit,
		Start:    msg.Start,
		Time:     msg.Time,
		Location: msg.Location,
	})
	if err != nil {
		return fmt.Errorf("ingesting mqtt reading from %s: %w", sensorID, err)
	}
	b.logger.Debug("mqtt reading ingested", "sensor_id", sensorID, "reading_id", r.ID)
	return nil
}

// ReadingIngested publishes e on the device's reading event topic.
// Publish failures are logged and dropped.
func (b *Bridge) ReadingIngested(_ context.Context, e Event) {
	if b.pub == nil {
		return
	}
	payload, err := json.Marshal(e)
	if err != nil {
		b.logger.Error("encoding reading event", "reading_id", e.Reading.ID, "error", err)
		return
	}
	if err := b.pub.Publish(b.topics.ReadingEvent(e.DeviceID), payload, b.qos, false); err != nil {
		b.logger.Warn("publishing reading event", "device_id", e.DeviceID, "error", err)
	}
}
