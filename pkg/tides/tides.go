// Package tides normalizes raw NOAA records into the service's schema and
// groups predictions by day. Everything here is pure; upstream ordering is
// trusted, never re-sorted.
package tides

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spencer-p/tidewire/pkg/noaa"
	"github.com/spencer-p/tidewire/pkg/timetricks"
)

const (
	windyThresh    = 15.0 // knots
	moderateThresh = 8.0  // knots
)

// Kind is whether a prediction is a high, a low, or a plain reading.
type Kind string

const (
	High    Kind = "high"
	Low     Kind = "low"
	Reading Kind = "reading"
)

func kindOf(code string) Kind {
	switch code {
	case "H":
		return High
	case "L":
		return Low
	default:
		return Reading
	}
}

// Measure is a float that may be NaN when NOAA sent garbage. NaN is encoded
// as null since JSON has no spelling for it.
type Measure float64

var _ json.Marshaler = Measure(0)

func (m Measure) MarshalJSON() ([]byte, error) {
	f := float64(m)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

// parseMeasure reads the leading number of s, so "1.5ft" is 1.5. It never
// fails; input without a leading number is NaN.
func parseMeasure(s string) Measure {
	f, err := strconv.ParseFloat(leadingNumber(s), 64)
	if err != nil {
		return Measure(math.NaN())
	}
	return Measure(f)
}

// leadingNumber returns the longest prefix of s, after spaces, that looks like
// a signed decimal with optional fraction and exponent. Words such as "inf"
// and "NaN" are not numbers here.
func leadingNumber(s string) string {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := 0
	for end < len(s) && isDigit(s[end]) {
		end++
		digits++
	}
	if end < len(s) && s[end] == '.' {
		frac := end + 1
		for frac < len(s) && isDigit(s[frac]) {
			frac++
			digits++
		}
		end = frac
	}
	if digits == 0 {
		return ""
	}
	if end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		exp := end + 1
		if exp < len(s) && (s[exp] == '-' || s[exp] == '+') {
			exp++
		}
		if exp < len(s) && isDigit(s[exp]) {
			for exp < len(s) && isDigit(s[exp]) {
				exp++
			}
			end = exp
		}
	}
	return s[:end]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// TidePrediction is a single normalized tide event.
type TidePrediction struct {
	// Local time, "2006-01-02 15:04"
	Time string `json:"time"`
	// Height in feet above MLLW
	Height Measure `json:"height"`
	Kind   Kind    `json:"type"`
}

// WindReading is the latest wind observation at a station.
type WindReading struct {
	Time             string  `json:"time"`
	SpeedKnots       Measure `json:"speedKnots"`
	DirectionDegrees int     `json:"directionDegrees"`
	DirectionLabel   string  `json:"directionLabel"`
	GustKnots        Measure `json:"gustKnots"`
}

// WindCondition is a coarse description of wind speed.
type WindCondition string

const (
	Calm     WindCondition = "calm"
	Moderate WindCondition = "moderate"
	Windy    WindCondition = "windy"
	Unknown  WindCondition = "unknown"
)

// DateBuckets maps a calendar date to its predictions in upstream order.
type DateBuckets map[string][]TidePrediction

// Dates returns the bucket keys in chronological order.
func (b DateBuckets) Dates() []string {
	dates := make([]string, 0, len(b))
	for d := range b {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// ParseTides normalizes every raw prediction, one output per input, in order.
func ParseTides(raw []noaa.RawPrediction) []TidePrediction {
	result := make([]TidePrediction, len(raw))
	for i, r := range raw {
		result[i] = TidePrediction{
			Time:   r.T,
			Height: parseMeasure(r.V),
			Kind:   kindOf(r.Type),
		}
	}
	return result
}

// ParseWind normalizes the last sample of series, or returns nil if there is
// none.
func ParseWind(series []noaa.RawWind) *WindReading {
	if len(series) == 0 {
		return nil
	}
	last := series[len(series)-1]
	return &WindReading{
		Time:             last.T,
		SpeedKnots:       parseMeasure(last.S),
		DirectionDegrees: parseDegrees(last.D),
		DirectionLabel:   last.DR,
		GustKnots:        parseMeasure(last.G),
	}
}

// parseDegrees reads the leading integer of s, so "280.00" is 280. Anything
// without one is 0.
func parseDegrees(s string) int {
	n := leadingNumber(s)
	if i := strings.IndexAny(n, ".eE"); i >= 0 {
		n = n[:i]
	}
	d, err := strconv.Atoi(n)
	if err != nil {
		return 0
	}
	return d
}

// BucketByDate groups predictions by the date part of their time.
func BucketByDate(preds []TidePrediction) DateBuckets {
	buckets := make(DateBuckets)
	for _, p := range preds {
		day := timetricks.DateOf(p.Time)
		buckets[day] = append(buckets[day], p)
	}
	return buckets
}

// NextUpcoming returns the first prediction strictly after now, reading
// prediction times as wall clock times in now's location. Predictions must be
// in ascending time order.
func NextUpcoming(preds []TidePrediction, now time.Time) *TidePrediction {
	for i := range preds {
		t, err := timetricks.ParseStamp(preds[i].Time, now.Location())
		if err != nil {
			continue
		}
		if t.After(now) {
			p := preds[i]
			return &p
		}
	}
	return nil
}

// ClassifyWind buckets a reading by speed.
func ClassifyWind(w *WindReading) WindCondition {
	if w == nil {
		return Unknown
	}
	switch speed := float64(w.SpeedKnots); {
	case speed > windyThresh:
		return Windy
	case speed > moderateThresh:
		return Moderate
	default:
		return Calm
	}
}
