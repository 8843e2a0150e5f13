package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/analysis"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/api"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/device"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/infrastructure/config"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/infrastructure/database"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/infrastructure/influxdb"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/infrastructure/logging"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/infrastructure/mqtt"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/location"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/measurement"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/weather"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/migrations"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, logging.New(cfg.Logging, version))
		},
	}
}

// storage groups the repositories of the configured backend.
type storage struct {
	db        *database.DB // nil for the memory backend
	houses    location.HouseRepository
	rooms     location.RoomRepository
	devices   device.DeviceRepository
	sensors   device.SensorRepository
	actuators device.ActuatorRepository
	stores    *measurement.Stores
}

// serve wires every component and blocks until ctx is cancelled.
//
// Parameters:
//   - ctx: Cancelled on shutdown signals
//   - cfg: Validated configuration
//   - log: Logger shared by every component
//
// Returns:
//   - error: nil on clean shutdown, or the first initialisation failure
func serve(ctx context.Context, cfg *config.Config, log *logging.Logger) error {
	log.Info("starting smart-home backend",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	st, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	if st.db != nil {
		defer func() {
			log.Info("closing database")
			if closeErr := st.db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()
	}

	if err := ensureHouse(ctx, st.houses, cfg.House); err != nil {
		return err
	}

	router, err := newMeasurementRouter(cfg.Functionalities)
	if err != nil {
		return err
	}

	registry := device.NewRegistry(st.devices, st.sensors, st.actuators, st.rooms, router, cfg.Actuators)
	registry.SetLogger(log)

	svc := measurement.NewService(registry, router, st.stores)
	svc.SetLogger(log)

	policy, err := analysis.ParsePolicy(cfg.Measurement.CorrelationPolicy)
	if err != nil {
		return err
	}

	houseGPS := func(ctx context.Context) (location.GPS, error) {
		h, err := st.houses.GetByID(ctx, cfg.House.ID)
		if err != nil {
			return location.GPS{}, err
		}
		return h.Location.GPS, nil
	}

	deps := api.Deps{
		Config:       cfg.API,
		Logger:       log,
		HouseID:      cfg.House.ID,
		Houses:       st.houses,
		Rooms:        st.rooms,
		Registry:     registry,
		Router:       router,
		Measurements: svc,
		Aggregator:   analysis.NewAggregator(registry, router, st.stores),
		Peak: analysis.NewPeakCalculator(registry, router, st.stores, analysis.PeakConfig{
			GridDeviceID:        cfg.Measurement.GridMeterDeviceID,
			GridFunctionality:   cfg.Measurement.GridMeterFunctionality,
			SourceFunctionality: cfg.Measurement.SourceFunctionality,
			Cadence:             cfg.Measurement.Cadence(),
		}),
		Version: version,
	}
	if st.db != nil {
		deps.DB = st.db.DB
	}

	// Only assign interfaces from non-nil clients so optional backends stay nil.
	var weatherSource analysis.WeatherSource
	if cfg.Weather.Enabled {
		client := weather.NewClient(cfg.Weather)
		weatherSource = client
		deps.Weather = client
		log.Info("weather service enabled", "base_url", cfg.Weather.BaseURL)
	} else {
		log.Info("weather service disabled")
	}
	deps.Temperature = analysis.NewTemperatureService(registry, router, st.stores,
		analysis.NewCorrelator(cfg.Measurement.Tolerance(), policy),
		weatherSource, houseGPS, cfg.House.TimeLocation())

	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = startMQTT(cfg.MQTT, svc, log)
		if err != nil {
			return err
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		deps.MQTT = mqttClient
	} else {
		log.Info("MQTT disabled")
	}

	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		mirror := measurement.NewMirror(influxClient)
		mirror.SetLogger(log)
		svc.AddListener(mirror)
		deps.InfluxDB = influxClient
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	server, err := api.New(deps)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	svc.AddListener(server)
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if err := healthCheck(ctx, st.db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	// Deferred closes run in reverse order: API, InfluxDB, MQTT, database.
	log.Info("shutdown signal received, cleaning up")
	return nil
}

// openStorage returns the repositories of the configured backend. The
// sqlite backend opens the database and applies pending migrations.
func openStorage(ctx context.Context, cfg *config.Config, log *logging.Logger) (*storage, error) {
	if cfg.Storage.Backend == config.BackendMemory {
		log.Info("using in-memory storage")
		return &storage{
			houses:    location.NewMemoryHouseRepository(),
			rooms:     location.NewMemoryRoomRepository(),
			devices:   device.NewMemoryDeviceRepository(),
			sensors:   device.NewMemorySensorRepository(),
			actuators: device.NewMemoryActuatorRepository(),
			stores:    measurement.NewMemoryStores(),
		}, nil
	}

	db, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database ready", "path", cfg.Database.Path)

	return &storage{
		db:        db,
		houses:    location.NewSQLiteHouseRepository(db.DB),
		rooms:     location.NewSQLiteRoomRepository(db.DB),
		devices:   device.NewSQLiteDeviceRepository(db.DB),
		sensors:   device.NewSQLiteSensorRepository(db.DB),
		actuators: device.NewSQLiteActuatorRepository(db.DB),
		stores:    measurement.NewSQLiteStores(db.DB),
	}, nil
}

// ensureHouse creates the configured house on first start. An existing
// house keeps its stored location; the configuration only seeds it.
func ensureHouse(ctx context.Context, houses location.HouseRepository, cfg config.HouseConfig) error {
	_, err := houses.GetByID(ctx, cfg.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, location.ErrHouseNotFound) {
		return fmt.Errorf("loading house %s: %w", cfg.ID, err)
	}

	house := houseFromConfig(cfg)
	if err := location.ValidateHouse(house); err != nil {
		return fmt.Errorf("seeding house %s: %w", cfg.ID, err)
	}
	if err := houses.Create(ctx, house); err != nil {
		return fmt.Errorf("seeding house %s: %w", cfg.ID, err)
	}
	return nil
}

func houseFromConfig(cfg config.HouseConfig) *location.House {
	l := cfg.Location
	return &location.House{
		ID: cfg.ID,
		Location: location.Location{
			Address: location.Address{
				Street:  l.Street,
				Door:    l.Door,
				ZipCode: l.ZipCode,
				City:    l.City,
				Country: l.Country,
			},
			GPS: location.GPS{Latitude: l.Latitude, Longitude: l.Longitude},
		},
	}
}

func newMeasurementRouter(functionalities []config.FunctionalityConfig) (*measurement.Router, error) {
	routes := make([]measurement.Route, 0, len(functionalities))
	for _, f := range functionalities {
		routes = append(routes, measurement.Route{
			Functionality: f.Name,
			Shape:         measurement.Shape(f.Shape),
			Unit:          f.Unit,
		})
	}
	router, err := measurement.NewRouter(routes)
	if err != nil {
		return nil, fmt.Errorf("building measurement router: %w", err)
	}
	return router, nil
}

// startMQTT connects to the broker, feeds published readings into svc and
// announces accepted readings back on the broker.
func startMQTT(cfg config.MQTTConfig, svc *measurement.Service, log *logging.Logger) (*mqtt.Client, error) {
	client, err := mqtt.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to MQTT: %w", err)
	}
	client.SetLogger(log)
	client.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	client.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	qos := byte(cfg.QoS)
	topics := client.Topics()
	bridge := measurement.NewBridge(svc, client, topics, qos)
	bridge.SetLogger(log)
	svc.AddListener(bridge)

	if err := client.Subscribe(topics.AllReadings(), qos, bridge.HandleMessage); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("subscribing to readings: %w", err)
	}
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.Broker.Host, cfg.Broker.Port),
		"client_id", cfg.Broker.ClientID,
		"readings_topic", topics.AllReadings(),
	)
	return client, nil
}

// healthCheck verifies every enabled backend. Nil arguments are skipped.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if db != nil {
		if err := db.HealthCheck(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}
	return nil
}
