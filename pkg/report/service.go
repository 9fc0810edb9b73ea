package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spencer-p/tidewire/pkg/noaa"
	"github.com/spencer-p/tidewire/pkg/sunset"
	"github.com/spencer-p/tidewire/pkg/tides"
	"github.com/spencer-p/tidewire/pkg/timetricks"
)

const clockFmt = "15:04"

// Tides reports today's tides, the next tide, and current wind at a station.
func (s *Service) Tides(ctx context.Context, stationID string) TideReport {
	var (
		g       errgroup.Group
		raw     []noaa.RawPrediction
		wind    *tides.WindReading
		station *noaa.Station
	)
	g.Go(func() (err error) {
		// Tomorrow too, so there is a next tide after today's last.
		raw, err = s.predictions(ctx, stationID, 2)
		return err
	})
	g.Go(func() error {
		wind = s.optionalWind(ctx, stationID)
		return nil
	})
	g.Go(func() error {
		station = s.optionalStation(ctx, stationID)
		return nil
	})
	if err := g.Wait(); err != nil {
		s.log.Warn().Err(err).Str("station", stationID).Msg("tide predictions unavailable")
		return TideReport{Error: err.Error(), StationID: stationID}
	}

	preds := tides.ParseTides(raw)
	now := s.now().In(station.Location())
	today := timetricks.UniqueDay(now)

	return TideReport{
		StationID:     stationID,
		Station:       stationOf(station),
		Date:          today,
		Today:         tides.BucketByDate(preds)[today],
		Next:          tides.NextUpcoming(preds, now),
		Wind:          wind,
		WindCondition: tides.ClassifyWind(wind),
	}
}

// Forecast reports tides for days calendar days starting today, grouped by
// day. When the station's coordinates are known each day also carries sun
// times and the low tides that fall in daylight.
func (s *Service) Forecast(ctx context.Context, stationID string, days int) ForecastReport {
	if days < 1 {
		return ForecastReport{Error: fmt.Sprintf("days must be positive, got %d", days), StationID: stationID, Days: days}
	}

	var (
		g       errgroup.Group
		raw     []noaa.RawPrediction
		station *noaa.Station
	)
	g.Go(func() (err error) {
		raw, err = s.predictions(ctx, stationID, days)
		return err
	})
	g.Go(func() error {
		station = s.optionalStation(ctx, stationID)
		return nil
	})
	if err := g.Wait(); err != nil {
		s.log.Warn().Err(err).Str("station", stationID).Msg("tide predictions unavailable")
		return ForecastReport{Error: err.Error(), StationID: stationID, Days: days}
	}

	buckets := tides.BucketByDate(tides.ParseTides(raw))
	loc := station.Location()
	today := timetricks.UniqueDay(s.now().In(loc))

	var daylight map[string]sunset.Daylight
	if station != nil {
		place := sunset.Place{Lat: station.Lat, Long: station.Lng, Location: loc}
		daylight = sunset.DaylightByDay(sunset.GetSunEvents(s.now(), days, place))
	}

	forecast := make([]ForecastDay, 0, days)
	for _, date := range buckets.Dates() {
		if date < today {
			continue
		}
		if len(forecast) == days {
			break
		}
		fd := ForecastDay{Date: date, Tides: buckets[date]}
		if d, ok := daylight[date]; ok {
			fd.Sunrise = d.Rise.Format(clockFmt)
			fd.Sunset = d.Set.Format(clockFmt)
			fd.DaylightLows = daylightLows(fd.Tides, d)
		}
		forecast = append(forecast, fd)
	}

	return ForecastReport{
		StationID: stationID,
		Days:      days,
		Station:   stationOf(station),
		Forecast:  forecast,
	}
}

// daylightLows picks the low tides that fall between sunrise and sunset.
func daylightLows(preds []tides.TidePrediction, d sunset.Daylight) []tides.TidePrediction {
	var lows []tides.TidePrediction
	for _, p := range preds {
		if p.Kind != tides.Low {
			continue
		}
		t, err := timetricks.ParseStamp(p.Time, d.Rise.Location())
		if err != nil {
			continue
		}
		if d.Contains(t) {
			lows = append(lows, p)
		}
	}
	return lows
}

// Stations lists up to limit tide stations in a state, in NOAA's order.
func (s *Service) Stations(ctx context.Context, state string, limit int) StationList {
	state = strings.ToUpper(state)
	all, err := s.upstream.GetStations(ctx)
	if err != nil {
		s.log.Warn().Err(err).Str("state", state).Msg("station listing unavailable")
		return StationList{Error: err.Error(), State: state, Stations: []Station{}}
	}

	result := StationList{State: state, Stations: []Station{}}
	for i := range all {
		if len(result.Stations) >= limit {
			break
		}
		if strings.EqualFold(all[i].State, state) {
			result.Stations = append(result.Stations, *stationOf(&all[i]))
		}
	}
	result.Count = len(result.Stations)
	return result
}

// Wind reports the latest wind sample at a station.
func (s *Service) Wind(ctx context.Context, stationID string) WindReport {
	series, err := s.upstream.GetWind(ctx, &noaa.WindQuery{Station: stationID, Hours: s.windHours})
	if err != nil {
		s.log.Warn().Err(err).Str("station", stationID).Msg("wind unavailable")
		return WindReport{Error: err.Error(), StationID: stationID, Condition: tides.Unknown}
	}
	wind := tides.ParseWind(series)
	return WindReport{
		StationID: stationID,
		Wind:      wind,
		Condition: tides.ClassifyWind(wind),
	}
}

// predictions fetches days calendar days of predictions starting today. The
// station's zone is not known until its metadata arrives, so the window is
// padded by a day on each side of the server's today.
func (s *Service) predictions(ctx context.Context, stationID string, days int) ([]noaa.RawPrediction, error) {
	return s.upstream.GetPredictions(ctx, &noaa.PredictionQuery{
		Start:    timetricks.TrimClock(s.now()).Add(-day),
		Duration: time.Duration(days+2) * day,
		Station:  stationID,
	})
}

func (s *Service) optionalWind(ctx context.Context, stationID string) *tides.WindReading {
	series, err := s.upstream.GetWind(ctx, &noaa.WindQuery{Station: stationID, Hours: s.windHours})
	if err != nil {
		s.log.Info().Err(err).Str("station", stationID).Msg("no wind, continuing without")
		return nil
	}
	return tides.ParseWind(series)
}

func (s *Service) optionalStation(ctx context.Context, stationID string) *noaa.Station {
	station, err := s.upstream.GetStation(ctx, stationID)
	if err != nil {
		s.log.Info().Err(err).Str("station", stationID).Msg("no station metadata, continuing without")
		return nil
	}
	return station
}
