package api

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/device"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/infrastructure/logging"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/measurement"
)

func event(deviceID, sensorID, functionality string) measurement.Event {
	return measurement.Event{
		Reading:       measurement.Reading{ID: sensorID + "-r", SensorID: sensorID, Value: "1", Time: t0},
		DeviceID:      deviceID,
		Functionality: functionality,
		Shape:         measurement.ShapeInstant,
	}
}

func TestReadingFilter_Matches(t *testing.T) {
	e := event("heater", "temp", "TemperatureCelsius")

	tests := []struct {
		name string
		sub  WSSubscribePayload
		want bool
	}{
		{"no filter", WSSubscribePayload{}, true},
		{"device match", WSSubscribePayload{DeviceIDs: []string{"oven", "heater"}}, true},
		{"device mismatch", WSSubscribePayload{DeviceIDs: []string{"oven"}}, false},
		{"sensor match", WSSubscribePayload{SensorIDs: []string{"temp"}}, true},
		{"sensor mismatch", WSSubscribePayload{SensorIDs: []string{"power"}}, false},
		{"functionality match", WSSubscribePayload{Functionalities: []string{"TemperatureCelsius"}}, true},
		{"all lists must match", WSSubscribePayload{DeviceIDs: []string{"heater"}, SensorIDs: []string{"power"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := newReadingFilter(tt.sub).matches(e); got != tt.want {
				t.Errorf("matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadingHub_Publish(t *testing.T) {
	hub := NewReadingHub(logging.Discard())

	newClient := func(buffer int, sub *WSSubscribePayload) *WSClient {
		c := &WSClient{hub: hub, send: make(chan []byte, buffer)}
		if sub != nil {
			c.subscribed = true
			c.filter = newReadingFilter(*sub)
		}
		hub.register(c)
		return c
	}
	all := newClient(4, &WSSubscribePayload{})
	heaterOnly := newClient(4, &WSSubscribePayload{DeviceIDs: []string{"heater"}})
	idle := newClient(4, nil)
	full := newClient(0, &WSSubscribePayload{})

	hub.Publish(event("heater", "temp", "TemperatureCelsius"))
	hub.Publish(event("oven", "power", "SpecificTimePowerConsumption"))

	if got := len(all.send); got != 2 {
		t.Errorf("unfiltered client queued %d events, want 2", got)
	}
	if got := len(heaterOnly.send); got != 1 {
		t.Fatalf("filtered client queued %d events, want 1", got)
	}
	var msg struct {
		EventType string            `json:"event_type"`
		Payload   measurement.Event `json:"payload"`
	}
	if err := json.Unmarshal(<-heaterOnly.send, &msg); err != nil {
		t.Fatal(err)
	}
	if msg.EventType != ChannelReadingCreated || msg.Payload.DeviceID != "heater" {
		t.Errorf("filtered client got %s for %s", msg.EventType, msg.Payload.DeviceID)
	}
	if got := len(idle.send); got != 0 {
		t.Errorf("unsubscribed client queued %d events", got)
	}

	sent, dropped := hub.Delivered()
	if sent != 3 || dropped != 2 {
		t.Errorf("Delivered() = %d sent, %d dropped; want 3, 2", sent, dropped)
	}
	if hub.SubscriberCount() != 3 || hub.ClientCount() != 4 {
		t.Errorf("subscribers = %d, clients = %d", hub.SubscriberCount(), hub.ClientCount())
	}

	hub.unregister(full)
	hub.Publish(event("heater", "temp", "TemperatureCelsius"))
	if _, dropped := hub.Delivered(); dropped != 2 {
		t.Errorf("dropped = %d after unregistering the full client, want 2", dropped)
	}
}

func dialFeed(t *testing.T, env testEnv) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(env.handler)
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	//nolint:errcheck // test deadline
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestWebSocket_FilteredSubscription(t *testing.T) {
	env := newTestEnv(t, false)
	env.seedDevice(t, "heater", device.Sensor{ID: "temp", Functionality: "TemperatureCelsius"})
	env.seedDevice(t, "oven", device.Sensor{ID: "oven-power", Functionality: "SpecificTimePowerConsumption"})
	conn := dialFeed(t, env)

	sub := WSMessage{Type: WSTypeSubscribe, ID: "1", Payload: WSSubscribePayload{
		Channels:  []string{ChannelReadingCreated},
		DeviceIDs: []string{"heater"},
	}}
	if err := conn.WriteJSON(sub); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	var resp WSMessage
	if err := conn.ReadJSON(&resp); err != nil || resp.Type != WSTypeResponse {
		t.Fatalf("subscribe response = %+v, %v", resp, err)
	}

	env.ingest(t, measurement.Reading{SensorID: "oven-power", Value: "900", Time: t0})
	env.ingest(t, measurement.Reading{SensorID: "temp", Value: "21", Time: t0})

	var got struct {
		Payload measurement.Event `json:"payload"`
	}
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("reading event: %v", err)
	}
	if got.Payload.DeviceID != "heater" || got.Payload.Reading.SensorID != "temp" {
		t.Errorf("first event = %+v, want the heater reading", got.Payload)
	}
}

func TestWebSocket_UnknownChannel(t *testing.T) {
	env := newTestEnv(t, false)
	conn := dialFeed(t, env)

	sub := WSMessage{Type: WSTypeSubscribe, ID: "7", Payload: WSSubscribePayload{Channels: []string{"scene.activated"}}}
	if err := conn.WriteJSON(sub); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	var resp WSMessage
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("reading response: %v", err)
	}
	if resp.Type != WSTypeError || resp.ID != "7" {
		t.Errorf("response = %+v, want an error for id 7", resp)
	}
	if env.srv.hub.SubscriberCount() != 0 {
		t.Error("rejected subscribe should not register a subscriber")
	}
}
