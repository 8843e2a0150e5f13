// Package influxdb mirrors accepted sensor readings into InfluxDB v2.
//
// The SQL stores remain the source of truth for every query the backend
// answers. The mirror exists for dashboards and long-term retention.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteReading(influxdb.ReadingPoint{
//	    SensorID: "temp-kitchen",
//	    DeviceID: "thermostat",
//	    Shape:    "instant",
//	    Value:    21.5,
//	    Time:     time.Now(),
//	})
//
// Writes are non-blocking and batched according to batch_size and
// flush_interval. Failures are delivered to the SetOnError callback.
package influxdb
