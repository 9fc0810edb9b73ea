package report_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spencer-p/tidewire/pkg/noaa"
	"github.com/spencer-p/tidewire/pkg/report"
	"github.com/spencer-p/tidewire/pkg/tides"
)

type fakeUpstream struct {
	preds      []noaa.RawPrediction
	predsErr   error
	wind       []noaa.RawWind
	windErr    error
	station    *noaa.Station
	stationErr error
	stations   []noaa.Station

	mu      sync.Mutex
	queries []noaa.PredictionQuery
}

func (f *fakeUpstream) GetPredictions(_ context.Context, q *noaa.PredictionQuery) ([]noaa.RawPrediction, error) {
	f.mu.Lock()
	f.queries = append(f.queries, *q)
	f.mu.Unlock()
	return f.preds, f.predsErr
}

func (f *fakeUpstream) GetWind(context.Context, *noaa.WindQuery) ([]noaa.RawWind, error) {
	return f.wind, f.windErr
}

func (f *fakeUpstream) GetStation(context.Context, string) (*noaa.Station, error) {
	return f.station, f.stationErr
}

func (f *fakeUpstream) GetStations(context.Context) ([]noaa.Station, error) {
	return f.stations, f.stationErr
}

func ptr[T any](t T) *T {
	return &t
}

var santaCruz = &noaa.Station{
	ID:           noaa.SantaCruz,
	Name:         "Santa Cruz",
	Lat:          36.9583,
	Lng:          -122.017,
	State:        "CA",
	Timezone:     ptr("PST"),
	TimezoneCorr: ptr(-8.0),
	TideType:     ptr("Mixed"),
}

var threeDays = []noaa.RawPrediction{
	{T: "2023-12-31 22:10", V: "1.2", Type: "L"},
	{T: "2024-01-01 05:00", V: "5.1", Type: "H"},
	{T: "2024-01-01 12:40", V: "-0.4", Type: "L"},
	{T: "2024-01-01 19:20", V: "4.0", Type: "H"},
	{T: "2024-01-02 05:50", V: "5.3", Type: "H"},
	{T: "2024-01-02 13:20", V: "-0.6", Type: "L"},
	{T: "2024-01-03 06:30", V: "5.4", Type: "H"},
}

func newService(t *testing.T, up *fakeUpstream) *report.Service {
	t.Helper()
	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	return report.NewService(report.Config{
		Upstream: up,
		Logger:   zerolog.Nop(),
		Now: func() time.Time {
			return time.Date(2024, time.January, 1, 12, 0, 0, 0, la)
		},
	})
}

func TestTides(t *testing.T) {
	up := &fakeUpstream{
		preds:   threeDays,
		wind:    []noaa.RawWind{{T: "2024-01-01 11:54", S: "9.5", D: "300", DR: "WNW", G: "12.1"}},
		station: santaCruz,
	}
	got := newService(t, up).Tides(context.Background(), noaa.SantaCruz)

	assert.Empty(t, got.Error)
	assert.Equal(t, "2024-01-01", got.Date)
	require.NotNil(t, got.Station)
	assert.Equal(t, "Santa Cruz", got.Station.Name)
	require.Len(t, got.Today, 3)
	assert.Equal(t, "2024-01-01 05:00", got.Today[0].Time)
	require.NotNil(t, got.Next)
	assert.Equal(t, "2024-01-01 12:40", got.Next.Time)
	assert.Equal(t, tides.Low, got.Next.Kind)
	require.NotNil(t, got.Wind)
	assert.Equal(t, 300, got.Wind.DirectionDegrees)
	assert.Equal(t, tides.Moderate, got.WindCondition)

	require.Len(t, up.queries, 1)
	assert.Equal(t, noaa.SantaCruz, up.queries[0].Station)
	assert.Equal(t, 4*24*time.Hour, up.queries[0].Duration)
}

func TestTidesOptionalFailuresDegrade(t *testing.T) {
	up := &fakeUpstream{
		preds:      threeDays,
		windErr:    &noaa.APIError{Message: "No data was found."},
		stationErr: errors.New("connection reset"),
	}
	got := newService(t, up).Tides(context.Background(), noaa.SantaCruz)

	assert.Empty(t, got.Error)
	assert.Nil(t, got.Station)
	assert.Nil(t, got.Wind)
	assert.Equal(t, tides.Unknown, got.WindCondition)
	assert.NotEmpty(t, got.Today)
}

func TestTidesRequiredFailureIsReported(t *testing.T) {
	up := &fakeUpstream{
		predsErr: &noaa.APIError{Message: "Station not found"},
		station:  santaCruz,
	}
	got := newService(t, up).Tides(context.Background(), "bogus")

	assert.Equal(t, "noaa: Station not found", got.Error)
	assert.Equal(t, "bogus", got.StationID)
	assert.Nil(t, got.Today)
	assert.Nil(t, got.Next)
}

func TestForecast(t *testing.T) {
	up := &fakeUpstream{preds: threeDays, station: santaCruz}
	got := newService(t, up).Forecast(context.Background(), noaa.SantaCruz, 2)

	assert.Empty(t, got.Error)
	assert.Equal(t, 2, got.Days)
	require.Len(t, got.Forecast, 2)

	first := got.Forecast[0]
	assert.Equal(t, "2024-01-01", first.Date)
	require.Len(t, first.Tides, 3)
	assert.Equal(t, "2024-01-01 05:00", first.Tides[0].Time)
	assert.Equal(t, "2024-01-01 19:20", first.Tides[2].Time)
	assert.NotEmpty(t, first.Sunrise)
	assert.NotEmpty(t, first.Sunset)
	require.Len(t, first.DaylightLows, 1)
	assert.Equal(t, "2024-01-01 12:40", first.DaylightLows[0].Time)

	assert.Equal(t, "2024-01-02", got.Forecast[1].Date)
}

func TestForecastWithoutStationMetadata(t *testing.T) {
	up := &fakeUpstream{preds: threeDays, stationErr: errors.New("boom")}
	got := newService(t, up).Forecast(context.Background(), noaa.SantaCruz, 3)

	assert.Empty(t, got.Error)
	assert.Nil(t, got.Station)
	require.Len(t, got.Forecast, 3)
	for _, d := range got.Forecast {
		assert.Empty(t, d.Sunrise)
		assert.Nil(t, d.DaylightLows)
	}
}

func TestForecastFailure(t *testing.T) {
	up := &fakeUpstream{predsErr: errors.New("timeout")}
	got := newService(t, up).Forecast(context.Background(), "9414290", 5)

	assert.Equal(t, report.ForecastReport{Error: "timeout", StationID: "9414290", Days: 5}, got)
}

func TestStations(t *testing.T) {
	up := &fakeUpstream{stations: []noaa.Station{
		{ID: "1", Name: "Alpha", State: "CA"},
		{ID: "2", Name: "Beta", State: "OR"},
		{ID: "3", Name: "Gamma", State: "CA"},
		{ID: "4", Name: "Delta", State: "CA"},
	}}
	got := newService(t, up).Stations(context.Background(), "ca", 2)

	assert.Empty(t, got.Error)
	assert.Equal(t, "CA", got.State)
	assert.Equal(t, 2, got.Count)
	require.Len(t, got.Stations, 2)
	assert.Equal(t, "Alpha", got.Stations[0].Name)
	assert.Equal(t, "Gamma", got.Stations[1].Name)
}

func TestStationsFailure(t *testing.T) {
	up := &fakeUpstream{stationErr: errors.New("unexpected status 503")}
	got := newService(t, up).Stations(context.Background(), "WA", 20)

	assert.Equal(t, "unexpected status 503", got.Error)
	assert.Equal(t, "WA", got.State)
	assert.Empty(t, got.Stations)
}

func TestWind(t *testing.T) {
	up := &fakeUpstream{wind: []noaa.RawWind{
		{T: "2024-01-01 11:48", S: "2.0", D: "90", DR: "E", G: "3.0"},
		{T: "2024-01-01 11:54", S: "17.5", D: "270", DR: "W", G: "22.0"},
	}}
	got := newService(t, up).Wind(context.Background(), noaa.SantaCruz)

	assert.Empty(t, got.Error)
	require.NotNil(t, got.Wind)
	assert.Equal(t, "2024-01-01 11:54", got.Wind.Time)
	assert.Equal(t, tides.Windy, got.Condition)
}

func TestWindFailure(t *testing.T) {
	up := &fakeUpstream{windErr: &noaa.APIError{Message: "No data was found."}}
	got := newService(t, up).Wind(context.Background(), noaa.SantaCruz)

	assert.Equal(t, "noaa: No data was found.", got.Error)
	assert.Nil(t, got.Wind)
	assert.Equal(t, tides.Unknown, got.Condition)
}

func TestForecastRejectsNonPositiveDays(t *testing.T) {
	for _, days := range []int{0, -1} {
		up := &fakeUpstream{preds: threeDays, station: santaCruz}
		got := newService(t, up).Forecast(context.Background(), noaa.SantaCruz, days)

		assert.NotEmpty(t, got.Error, "days=%d", days)
		assert.Equal(t, days, got.Days)
		assert.Nil(t, got.Forecast)
		assert.Empty(t, up.queries, "days=%d should not reach NOAA", days)
	}
}

func TestForecastStationLocation(t *testing.T) {
	up := &fakeUpstream{preds: threeDays, station: santaCruz}
	got := newService(t, up).Forecast(context.Background(), noaa.SantaCruz, 1)

	require.NotNil(t, got.Station)
	assert.Equal(t, "America/Los_Angeles", got.Station.Location().String())

	var missing *report.Station
	assert.Equal(t, time.Local, missing.Location())
}
