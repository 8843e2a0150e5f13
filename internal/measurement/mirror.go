package measurement

import (
	"context"

	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/infrastructure/influxdb"
)

// PointWriter queues a reading point for a time-series database.
// *influxdb.Client implements it.
type PointWriter interface {
	WriteReading(p influxdb.ReadingPoint)
}

// Mirror is a Listener that copies every accepted reading to a PointWriter.
type Mirror struct {
	w      PointWriter
	logger Logger
}

// NewMirror creates a mirror writing to w.
func NewMirror(w PointWriter) *Mirror {
	return &Mirror{w: w, logger: noopLogger{}}
}

// SetLogger sets the logger for the mirror.
func (m *Mirror) SetLogger(logger Logger) {
	m.logger = logger
}

// ReadingIngested converts e into a point and queues it.
func (m *Mirror) ReadingIngested(_ context.Context, e Event) {
	value, err := e.Reading.Number()
	if err != nil {
		m.logger.Warn("skipping mirror of unparseable reading", "reading_id", e.Reading.ID, "error", err)
		return
	}

	p := influxdb.ReadingPoint{
		ReadingID:     e.Reading.ID,
		SensorID:      e.Reading.SensorID,
		DeviceID:      e.DeviceID,
		Functionality: e.Functionality,
		Shape:         string(e.Shape),
		Unit:          e.Reading.Unit,
		Value:         value.InexactFloat64(),
		Start:         e.Reading.Start,
		Time:          e.Reading.Time,
	}
	if loc := e.Reading.Location; loc != nil {
		lat, lon := loc.Latitude, loc.Longitude
		p.Latitude, p.Longitude = &lat, &lon
	}
	m.w.WriteReading(p)
}
