package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/device"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/location"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/measurement"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/weather"
)

// SensorGetter resolves a sensor by ID.
type SensorGetter interface {
	GetSensor(ctx context.Context, id string) (*device.Sensor, error)
}

// WeatherSource reports the outside temperature for an hour of the day.
// *weather.Client implements it.
type WeatherSource interface {
	InstantaneousTemperature(ctx context.Context, gps location.GPS, hour int) (weather.Observation, error)
}

// HouseLocator returns the GPS coordinate weather lookups are made for.
type HouseLocator func(ctx context.Context) (location.GPS, error)

// TemperatureService compares an inside temperature series against another
// sensor or against the weather service.
type TemperatureService struct {
	sensors    SensorGetter
	router     *measurement.Router
	stores     *measurement.Stores
	correlator *Correlator
	weather    WeatherSource
	house      HouseLocator
	tz         *time.Location
}

// NewTemperatureService creates a TemperatureService. weather may be nil,
// in which case MaxDifferenceWithWeather returns ErrWeatherDisabled. tz is
// the zone whose wall-clock hours the weather service expects.
func NewTemperatureService(sensors SensorGetter, router *measurement.Router, stores *measurement.Stores,
	correlator *Correlator, weather WeatherSource, house HouseLocator, tz *time.Location) *TemperatureService {
	if tz == nil {
		tz = time.UTC
	}
	return &TemperatureService{
		sensors:    sensors,
		router:     router,
		stores:     stores,
		correlator: correlator,
		weather:    weather,
		house:      house,
		tz:         tz,
	}
}

// MaxDifferenceBetweenSensors returns the largest absolute difference
// between readings of the inside sensor within [start, end] and their
// within-tolerance partners from the outside sensor.
func (s *TemperatureService) MaxDifferenceBetweenSensors(ctx context.Context, insideID, outsideID string, start, end time.Time) (Difference, error) {
	if err := measurement.CheckRange(start, end); err != nil {
		return Difference{}, err
	}
	inside, err := s.readings(ctx, insideID)
	if err != nil {
		return Difference{}, err
	}
	outside, err := s.readings(ctx, outsideID)
	if err != nil {
		return Difference{}, err
	}
	return s.correlator.MaxAbsoluteDifference(inside, outside, start, end)
}

// MaxDifferenceWithWeather compares the inside sensor with the outside
// temperature reported by the weather service. Each inside reading's
// timestamp is rounded to an hour in the house time zone (minute 45 and
// later rounds up) and the service is asked once per distinct hour. The
// answers form a one-reading-per-hour series that is correlated like a
// sensor series.
func (s *TemperatureService) MaxDifferenceWithWeather(ctx context.Context, insideID string, start, end time.Time) (Difference, error) {
	if err := measurement.CheckRange(start, end); err != nil {
		return Difference{}, err
	}
	if s.weather == nil {
		return Difference{}, ErrWeatherDisabled
	}
	inside, err := s.readings(ctx, insideID)
	if err != nil {
		return Difference{}, err
	}
	gps, err := s.house(ctx)
	if err != nil {
		return Difference{}, fmt.Errorf("locating house: %w", err)
	}

	seen := make(map[int64]bool)
	var outside []measurement.Reading
	for _, r := range inside {
		if r.Time.Before(start) || r.Time.After(end) {
			continue
		}
		hour := RoundToHour(r.Time.In(s.tz))
		if seen[hour.UnixNano()] {
			continue
		}
		seen[hour.UnixNano()] = true

		obs, err := s.weather.InstantaneousTemperature(ctx, gps, hour.Hour())
		if err != nil {
			return Difference{}, err
		}
		outside = append(outside, measurement.Reading{
			ID:    fmt.Sprintf("weather-%d", hour.Unix()),
			Value: decimal.NewFromFloat(obs.Measurement).String(),
			Unit:  obs.Unit,
			Time:  hour.UTC(),
		})
	}
	return s.correlator.MaxAbsoluteDifference(inside, outside, start, end)
}

// RoundToHour truncates t to the hour, first moving it to the next hour
// when its minute is 45 or later.
func RoundToHour(t time.Time) time.Time {
	if t.Minute() >= 45 {
		t = t.Add(15 * time.Minute)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

func (s *TemperatureService) readings(ctx context.Context, sensorID string) ([]measurement.Reading, error) {
	sensor, err := s.sensors.GetSensor(ctx, sensorID)
	if err != nil {
		return nil, err
	}
	store, err := s.router.Resolve(s.stores, sensor.Functionality)
	if err != nil {
		return nil, err
	}
	return store.FindBySensor(ctx, sensorID)
}
