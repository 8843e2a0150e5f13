package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/analysis"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/device"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/infrastructure/config"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/infrastructure/logging"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/location"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/measurement"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/weather"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// WeatherGateway answers the pass-through weather endpoints.
// *weather.Client implements it.
type WeatherGateway interface {
	InstantaneousTemperature(ctx context.Context, gps location.GPS, hour int) (weather.Observation, error)
	InstantaneousWindSpeedAndDirection(ctx context.Context, gps location.GPS, hour int) (weather.Observation, error)
	SunriseOrSunset(ctx context.Context, gps location.GPS, event weather.SunEvent) (weather.Observation, error)
}

// Connectivity reports whether an optional backend is reachable.
// *mqtt.Client and *influxdb.Client implement it.
type Connectivity interface {
	IsConnected() bool
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config       config.APIConfig
	Logger       *logging.Logger
	HouseID      string
	Houses       location.HouseRepository
	Rooms        location.RoomRepository
	Registry     *device.Registry
	Router       *measurement.Router
	Measurements *measurement.Service
	Aggregator   *analysis.Aggregator
	Peak         *analysis.PeakCalculator
	Temperature  *analysis.TemperatureService
	Weather      WeatherGateway // optional; weather endpoints return 503 without it
	MQTT         Connectivity   // optional
	InfluxDB     Connectivity   // optional
	DB           *sql.DB        // optional; pool stats in /metrics
	Version      string
}

// Server is the HTTP API server.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg          config.APIConfig
	logger       *logging.Logger
	houseID      string
	houses       location.HouseRepository
	rooms        location.RoomRepository
	registry     *device.Registry
	router       *measurement.Router
	measurements *measurement.Service
	aggregator   *analysis.Aggregator
	peak         *analysis.PeakCalculator
	temperature  *analysis.TemperatureService
	weather      WeatherGateway
	mqtt         Connectivity
	influx       Connectivity
	db           *sql.DB
	version      string
	startTime    time.Time
	server       *http.Server
	hub          *ReadingHub
	cancel       context.CancelFunc
}

// New creates a new API server with the given dependencies. The WebSocket
// hub is created immediately so the server can be registered as a reading
// listener before Start.
//
// Returns an error if a required dependency is missing.
func New(deps Deps) (*Server, error) {
	switch {
	case deps.Logger == nil:
		return nil, fmt.Errorf("logger is required")
	case deps.Houses == nil || deps.Rooms == nil:
		return nil, fmt.Errorf("house and room repositories are required")
	case deps.Registry == nil:
		return nil, fmt.Errorf("device registry is required")
	case deps.Router == nil || deps.Measurements == nil:
		return nil, fmt.Errorf("measurement router and service are required")
	case deps.Aggregator == nil || deps.Peak == nil || deps.Temperature == nil:
		return nil, fmt.Errorf("analysis services are required")
	}

	return &Server{
		cfg:          deps.Config,
		logger:       deps.Logger,
		houseID:      deps.HouseID,
		houses:       deps.Houses,
		rooms:        deps.Rooms,
		registry:     deps.Registry,
		router:       deps.Router,
		measurements: deps.Measurements,
		aggregator:   deps.Aggregator,
		peak:         deps.Peak,
		temperature:  deps.Temperature,
		weather:      deps.Weather,
		mqtt:         deps.MQTT,
		influx:       deps.InfluxDB,
		db:           deps.DB,
		version:      deps.Version,
		startTime:    time.Now(),
		hub:          NewReadingHub(deps.Logger),
	}, nil
}

// Handler returns the HTTP handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// ReadingIngested broadcasts an accepted reading to WebSocket subscribers.
// It makes the server a measurement.Listener.
func (s *Server) ReadingIngested(_ context.Context, e measurement.Event) {
	s.hub.Publish(e)
}

// Start runs the WebSocket hub and begins listening for HTTP connections
// in a background goroutine. The server can be stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)
	go s.hub.Run(srvCtx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server listening", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
