package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// ReadingsMeasurement is the InfluxDB measurement readings are written to.
const ReadingsMeasurement = "readings"

// ReadingPoint is one sensor reading as mirrored to InfluxDB.
//
// Sensor, device, functionality, shape and unit become tags. Value,
// the optional interval start and the optional coordinates become fields.
type ReadingPoint struct {
	ReadingID     string
	SensorID      string
	DeviceID      string
	Functionality string
	Shape         string
	Unit          string
	Value         float64
	Start         *time.Time
	Time          time.Time
	Latitude      *float64
	Longitude     *float64
}

// WriteReading queues a reading for the next batch. It is a no-op on a
// disconnected client.
func (c *Client) WriteReading(p ReadingPoint) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(newReadingPoint(p))
}

func newReadingPoint(p ReadingPoint) *write.Point {
	tags := map[string]string{
		"sensor_id":     p.SensorID,
		"device_id":     p.DeviceID,
		"functionality": p.Functionality,
		"shape":         p.Shape,
	}
	if p.Unit != "" {
		tags["unit"] = p.Unit
	}

	fields := map[string]interface{}{
		"value":      p.Value,
		"reading_id": p.ReadingID,
	}
	if p.Start != nil {
		fields["started_at"] = p.Start.UnixNano()
		fields["duration_seconds"] = p.Time.Sub(*p.Start).Seconds()
	}
	if p.Latitude != nil && p.Longitude != nil {
		fields["latitude"] = *p.Latitude
		fields["longitude"] = *p.Longitude
	}

	return write.NewPoint(ReadingsMeasurement, tags, fields, p.Time)
}

