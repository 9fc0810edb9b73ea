// Package noaa implements queries to the NOAA CO-OPS APIs. Tide predictions
// and wind observations come from the datagetter endpoint as time series per
// station (see PredictionQuery and WindQuery); station metadata comes from the
// mdapi endpoint. Records are returned as NOAA encodes them, strings and all.
// All times are local to the station.
package noaa
