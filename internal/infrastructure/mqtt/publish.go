package mqtt

import (
	"fmt"
)

const maxPayloadSize = 1 << 20

// Publish sends payload to topic.
//
// Parameters:
//   - topic: destination, e.g. Topics.ReadingEvent("dev-1")
//   - payload: message body, at most 1MB
//   - qos: 0, 1 or 2
//   - retained: whether the broker keeps the message for new subscribers
//
// Returns ErrNotConnected when the broker connection is down.
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}

