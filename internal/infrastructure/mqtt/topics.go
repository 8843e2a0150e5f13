package mqtt

import (
	"fmt"
	"strings"
)

// DefaultTopicPrefix is used when the configuration leaves the prefix empty.
const DefaultTopicPrefix = "smarthome"

// Topics builds the topic names under one prefix.
//
//	topics := mqtt.NewTopics("smarthome")
//	topics.Reading("temp-kitchen")
//	// Returns: "smarthome/readings/temp-kitchen"
type Topics struct {
	prefix string
}

// NewTopics creates a topic builder. Surrounding slashes are trimmed.
func NewTopics(prefix string) Topics {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return Topics{prefix: prefix}
}

// Prefix returns the topic prefix.
func (t Topics) Prefix() string { return t.prefix }

// Reading returns the topic a sensor publishes its readings to.
//
// Example: smarthome/readings/temp-kitchen
func (t Topics) Reading(sensorID string) string {
	return fmt.Sprintf("%s/readings/%s", t.prefix, sensorID)
}

// AllReadings returns the wildcard subscription for every sensor's readings.
func (t Topics) AllReadings() string {
	return t.prefix + "/readings/+"
}

// ReadingEvent returns the topic accepted readings of a device are announced on.
//
// Example: smarthome/events/readings/HeatPump
func (t Topics) ReadingEvent(deviceID string) string {
	return fmt.Sprintf("%s/events/readings/%s", t.prefix, deviceID)
}

// SystemStatus returns the retained online/offline status topic.
func (t Topics) SystemStatus() string {
	return t.prefix + "/system/status"
}

// ParseReading extracts the sensor ID from a reading topic. It reports false
// for any other topic.
func (t Topics) ParseReading(topic string) (string, bool) {
	rest, ok := strings.CutPrefix(topic, t.prefix+"/readings/")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}
