package sunset

import (
	"time"

	"github.com/keep94/sunrise"

	"github.com/spencer-p/tidewire/pkg/timetricks"
)

// maxDrift bounds how many days we step the sunrise package to line it up
// with the requested start day.
const maxDrift = 3

// GetSunEvents returns sunrise and sunset pairs for numDays days starting on
// start's calendar day in place. The first result is always a sunrise.
func GetSunEvents(start time.Time, numDays int, place Place) SunEvents {
	if numDays < 1 {
		return nil
	}
	start = timetricks.TrimClock(start.In(place.Location))

	var s sunrise.Sunrise
	s.Around(place.Lat, place.Long, start)

	// The sunrise package is not very clean with its dates; step it to the
	// right day.
	for i := 0; i < maxDrift && !timetricks.SameDay(start, s.Sunrise().In(place.Location)); i++ {
		if s.Sunrise().Before(start) {
			s.AddDays(1)
		} else {
			s.AddDays(-1)
		}
	}

	ret := make(SunEvents, 0, numDays*2)
	for i := 0; i < numDays; i++ {
		ret = append(ret,
			SunEvent{s.Sunrise().In(place.Location), Sunrise},
			SunEvent{s.Sunset().In(place.Location), Sunset})
		s.AddDays(1)
	}
	return ret
}

// DaylightByDay pairs each sunrise with the following sunset, keyed by the
// calendar day of the sunrise. Days where the sun does not rise or set (polar
// stations) are omitted.
func DaylightByDay(events SunEvents) map[string]Daylight {
	result := make(map[string]Daylight)
	for i := 0; i+1 < len(events); i += 2 {
		rise, set := events[i], events[i+1]
		if rise.Event != Sunrise || set.Event != Sunset {
			continue
		}
		if rise.Time.IsZero() || set.Time.IsZero() || !set.Time.After(rise.Time) {
			continue
		}
		result[timetricks.UniqueDay(rise.Time)] = Daylight{Rise: rise.Time, Set: set.Time}
	}
	return result
}
