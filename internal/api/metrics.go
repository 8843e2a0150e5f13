package api

import (
	"net/http"
	"runtime"
	"time"
)

// SystemMetrics represents the complete system metrics response.
type SystemMetrics struct {
	Timestamp     string           `json:"timestamp"`
	Version       string           `json:"version"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	Runtime       RuntimeMetrics   `json:"runtime"`
	WebSocket     WSMetrics        `json:"websocket"`
	MQTT          *BackendMetrics  `json:"mqtt,omitempty"`
	InfluxDB      *BackendMetrics  `json:"influxdb,omitempty"`
	Devices       DeviceMetrics    `json:"devices"`
	Database      *DatabaseMetrics `json:"database,omitempty"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// WSMetrics describes the WebSocket reading feed.
type WSMetrics struct {
	ConnectedClients int    `json:"connected_clients"`
	Subscribers      int    `json:"subscribers"`
	EventsSent       uint64 `json:"events_sent"`
	EventsDropped    uint64 `json:"events_dropped"`
}

// BackendMetrics reports an optional backend's connection state.
type BackendMetrics struct {
	Connected bool `json:"connected"`
}

// DeviceMetrics counts registered devices, sensors and actuators.
type DeviceMetrics struct {
	Total       int `json:"total"`
	Active      int `json:"active"`
	Deactivated int `json:"deactivated"`
	Sensors     int `json:"sensors"`
	Actuators   int `json:"actuators"`
}

// DatabaseMetrics contains database connection pool statistics.
type DatabaseMetrics struct {
	OpenConnections int   `json:"open_connections"`
	InUse           int   `json:"in_use"`
	Idle            int   `json:"idle"`
	WaitCount       int64 `json:"wait_count"`
}

const bytesPerMB = 1024 * 1024

// handleMetrics returns runtime, backend and registry statistics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	metrics := SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / bytesPerMB,
			MemoryTotalMB: float64(memStats.TotalAlloc) / bytesPerMB,
			NumGC:         memStats.NumGC,
		},
		WebSocket: WSMetrics{
			ConnectedClients: s.hub.ClientCount(),
			Subscribers:      s.hub.SubscriberCount(),
		},
	}
	metrics.WebSocket.EventsSent, metrics.WebSocket.EventsDropped = s.hub.Delivered()

	if s.mqtt != nil {
		metrics.MQTT = &BackendMetrics{Connected: s.mqtt.IsConnected()}
	}
	if s.influx != nil {
		metrics.InfluxDB = &BackendMetrics{Connected: s.influx.IsConnected()}
	}

	devices, err := s.registry.ListDevices(ctx)
	if err != nil {
		s.writeDomainError(w, err, "failed to collect device metrics")
		return
	}
	metrics.Devices.Total = len(devices)
	for i := range devices {
		if devices[i].IsActive() {
			metrics.Devices.Active++
		} else {
			metrics.Devices.Deactivated++
		}
	}
	sensors, err := s.registry.ListSensors(ctx)
	if err != nil {
		s.writeDomainError(w, err, "failed to collect sensor metrics")
		return
	}
	metrics.Devices.Sensors = len(sensors)
	actuators, err := s.registry.ListActuators(ctx)
	if err != nil {
		s.writeDomainError(w, err, "failed to collect actuator metrics")
		return
	}
	metrics.Devices.Actuators = len(actuators)

	if s.db != nil {
		dbStats := s.db.Stats()
		metrics.Database = &DatabaseMetrics{
			OpenConnections: dbStats.OpenConnections,
			InUse:           dbStats.InUse,
			Idle:            dbStats.Idle,
			WaitCount:       dbStats.WaitCount,
		}
	}

	writeJSON(w, http.StatusOK, metrics)
}
