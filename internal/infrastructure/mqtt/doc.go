// Package mqtt connects the backend to an MQTT broker.
//
// Sensors that cannot call the HTTP API publish readings to
// {prefix}/readings/{sensor_id}; the measurement package subscribes to
// {prefix}/readings/+ and ingests every message. Accepted readings are
// announced on {prefix}/events/readings/{device_id}.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Topic subscriptions restored after every reconnect
//   - Last Will and Testament on {prefix}/system/status
//   - Publishing with QoS and payload size limits
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	topics := client.Topics()
//	err = client.Subscribe(topics.AllReadings(), 1, handler)
package mqtt
