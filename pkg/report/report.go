// Package report assembles entrypoint outputs from NOAA data. Each report is
// JSON-ready and never fails outright: required data that cannot be fetched
// becomes an Error string alongside the request's context, and optional
// enrichment that cannot be fetched is left empty.
package report

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/spencer-p/tidewire/pkg/noaa"
	"github.com/spencer-p/tidewire/pkg/tides"
)

const (
	day = 24 * time.Hour

	DefaultWindHours = 1
)

// Upstream is the subset of NOAA the reports need; *noaa.Client satisfies it.
type Upstream interface {
	GetPredictions(ctx context.Context, q *noaa.PredictionQuery) ([]noaa.RawPrediction, error)
	GetWind(ctx context.Context, q *noaa.WindQuery) ([]noaa.RawWind, error)
	GetStation(ctx context.Context, id string) (*noaa.Station, error)
	GetStations(ctx context.Context) ([]noaa.Station, error)
}

var _ Upstream = (*noaa.Client)(nil)

// Config holds what a Service needs.
type Config struct {
	Upstream Upstream
	Logger   zerolog.Logger

	// WindHours is how much wind history to request; only the newest sample
	// is reported. Defaults to DefaultWindHours.
	WindHours int

	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
}

// Service builds reports.
type Service struct {
	upstream  Upstream
	log       zerolog.Logger
	windHours int
	now       func() time.Time
}

func NewService(cfg Config) *Service {
	s := &Service{
		upstream:  cfg.Upstream,
		log:       cfg.Logger.With().Str("component", "report").Logger(),
		windHours: cfg.WindHours,
		now:       cfg.Now,
	}
	if s.windHours < 1 {
		s.windHours = DefaultWindHours
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Station is station metadata as reported to callers.
type Station struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	State    string  `json:"state"`
	Timezone *string `json:"timezone,omitempty"`
	TideType *string `json:"tideType,omitempty"`

	loc *time.Location
}

// Location is the zone the station's timestamps are in; see
// noaa.Station.Location.
func (s *Station) Location() *time.Location {
	if s == nil || s.loc == nil {
		return time.Local
	}
	return s.loc
}

func stationOf(s *noaa.Station) *Station {
	if s == nil {
		return nil
	}
	return &Station{
		ID:       s.ID,
		Name:     s.Name,
		Lat:      s.Lat,
		Lng:      s.Lng,
		State:    s.State,
		Timezone: s.Timezone,
		TideType: s.TideType,
		loc:      s.Location(),
	}
}

// TideReport is the output of the tides entrypoint.
type TideReport struct {
	Error         string                 `json:"error,omitempty"`
	StationID     string                 `json:"stationId"`
	Station       *Station               `json:"station,omitempty"`
	Date          string                 `json:"date,omitempty"`
	Today         []tides.TidePrediction `json:"today,omitempty"`
	Next          *tides.TidePrediction  `json:"nextTide,omitempty"`
	Wind          *tides.WindReading     `json:"wind,omitempty"`
	WindCondition tides.WindCondition    `json:"windCondition,omitempty"`
}

// ForecastDay is one calendar day of a forecast.
type ForecastDay struct {
	Date         string                 `json:"date"`
	Tides        []tides.TidePrediction `json:"tides"`
	Sunrise      string                 `json:"sunrise,omitempty"`
	Sunset       string                 `json:"sunset,omitempty"`
	DaylightLows []tides.TidePrediction `json:"daylightLows,omitempty"`
}

// ForecastReport is the output of the forecast entrypoint.
type ForecastReport struct {
	Error     string        `json:"error,omitempty"`
	StationID string        `json:"stationId"`
	Days      int           `json:"days"`
	Station   *Station      `json:"station,omitempty"`
	Forecast  []ForecastDay `json:"forecast,omitempty"`
}

// StationList is the output of the stations entrypoint.
type StationList struct {
	Error    string    `json:"error,omitempty"`
	State    string    `json:"state"`
	Count    int       `json:"count"`
	Stations []Station `json:"stations"`
}

// WindReport is the output of the wind entrypoint.
type WindReport struct {
	Error     string              `json:"error,omitempty"`
	StationID string              `json:"stationId"`
	Wind      *tides.WindReading  `json:"wind"`
	Condition tides.WindCondition `json:"condition"`
}
