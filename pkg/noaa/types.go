package noaa

import (
	"fmt"
	"time"
)

// RawPrediction is a single tide prediction as NOAA encodes it.
type RawPrediction struct {
	// Local time, "2006-01-02 15:04"
	T string `json:"t"`
	// Height in feet above MLLW
	V string `json:"v"`
	// "H" or "L" in hilo mode, empty otherwise
	Type string `json:"type"`
}

// RawWind is a single wind sample as NOAA encodes it.
type RawWind struct {
	T string `json:"t"`
	// Speed in knots
	S string `json:"s"`
	// Direction in degrees true
	D string `json:"d"`
	// Direction label, e.g. "NNW"
	DR string `json:"dr"`
	// Gust in knots
	G string `json:"g"`
}

// Station is station metadata from the mdapi endpoint.
type Station struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Lat          float64  `json:"lat"`
	Lng          float64  `json:"lng"`
	State        string   `json:"state"`
	Timezone     *string  `json:"timezone,omitempty"`
	TimezoneCorr *float64 `json:"timezonecorr,omitempty"`
	TideType     *string  `json:"tideType,omitempty"`
}

// APIError is a failure NOAA reported in the body of a response.
type APIError struct {
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("noaa: %s", e.Message)
}

// DataResult is the data type returned by the datagetter API.
type DataResult struct {
	Predictions []RawPrediction `json:"predictions"`
	Data        []RawWind       `json:"data"`
	Error       *APIError       `json:"error,omitempty"`
}

// MetadataResult is the data type returned by the mdapi API.
type MetadataResult struct {
	Count    int       `json:"count"`
	Stations []Station `json:"stations"`
	Error    *APIError `json:"error,omitempty"`
}

// PredictionQuery is used to query tide data at a station in a given time
// window; see Client.GetPredictions.
type PredictionQuery struct {
	Start    time.Time
	Duration time.Duration
	Station  string
}

// WindQuery asks for the last Hours of wind samples at a station.
type WindQuery struct {
	Station string
	Hours   int
}

const (
	SantaCruz = "9413745"
)

// NOAA reports station time zones as US abbreviations. lst_ldt data follows
// daylight saving, so these map onto zones that do too.
var zoneNames = map[string]string{
	"AST":  "America/Puerto_Rico",
	"EST":  "America/New_York",
	"CST":  "America/Chicago",
	"MST":  "America/Denver",
	"PST":  "America/Los_Angeles",
	"AKST": "America/Anchorage",
	"HST":  "Pacific/Honolulu",
	"CHST": "Pacific/Guam",
	"SST":  "Pacific/Pago_Pago",
}

// Location returns the time zone station-local timestamps are reported in.
// Unknown zones fall back to the fixed offset, then to time.Local.
func (s *Station) Location() *time.Location {
	if s == nil {
		return time.Local
	}
	if s.Timezone != nil {
		if name, ok := zoneNames[*s.Timezone]; ok {
			if loc, err := time.LoadLocation(name); err == nil {
				return loc
			}
		}
	}
	if s.TimezoneCorr != nil {
		name := "UTC"
		if s.Timezone != nil {
			name = *s.Timezone
		}
		return time.FixedZone(name, int(*s.TimezoneCorr*3600))
	}
	return time.Local
}
