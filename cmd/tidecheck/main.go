// Command tidecheck prints a station's tides grouped by day and the next tide.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/spencer-p/tidewire/pkg/noaa"
	"github.com/spencer-p/tidewire/pkg/report"
	"github.com/spencer-p/tidewire/pkg/tides"
	"github.com/spencer-p/tidewire/pkg/timetricks"
)

var (
	station string
	days    int
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "tidecheck",
	Short: "Print NOAA tide predictions for a station",
	Long: `tidecheck fetches hi/lo tide predictions and the latest wind for a NOAA
station and prints them grouped by day, followed by the next upcoming tide.`,
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVarP(&station, "station", "s", noaa.SantaCruz, "NOAA station id")
	rootCmd.Flags().IntVarP(&days, "days", "d", 3, "number of days to print (1-7)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log upstream requests")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if days < 1 || days > 7 {
		return fmt.Errorf("days must be between 1 and 7, got %d", days)
	}

	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	svc := report.NewService(report.Config{
		Upstream: noaa.NewClient(noaa.ClientConfig{Logger: log}),
		Logger:   log,
	})

	return check(context.Background(), svc, station, days, cmd.OutOrStdout(), time.Now())
}

// check fetches one forecast and one wind report and prints them.
func check(ctx context.Context, svc *report.Service, station string, days int, out io.Writer, now time.Time) error {
	forecast := svc.Forecast(ctx, station, days)
	if forecast.Error != "" {
		return fmt.Errorf("fetching tides for %s: %s", station, forecast.Error)
	}
	printReport(out, forecast, svc.Wind(ctx, station), now)
	return nil
}

// printReport writes the forecast by day, then the next tide after now and the
// wind. Times are read in the station's zone from the forecast's metadata.
func printReport(out io.Writer, forecast report.ForecastReport, wind report.WindReport, now time.Time) {
	name := forecast.StationID
	if forecast.Station != nil {
		name = fmt.Sprintf("%s (%s, %s)", forecast.Station.Name, forecast.StationID, forecast.Station.State)
	}
	fmt.Fprintf(out, "%s\n", name)

	var all []tides.TidePrediction
	for _, day := range forecast.Forecast {
		fmt.Fprintf(out, "\n%s", day.Date)
		if day.Sunrise != "" {
			fmt.Fprintf(out, "  (sun %s-%s)", day.Sunrise, day.Sunset)
		}
		fmt.Fprintln(out)
		for _, p := range day.Tides {
			fmt.Fprintf(out, "  %s  %-7s %6.2f ft\n", timeOfDay(p), p.Kind, float64(p.Height))
		}
		all = append(all, day.Tides...)
	}

	now = now.In(forecast.Station.Location())
	if next := tides.NextUpcoming(all, now); next != nil {
		when := next.Time
		if t, err := timetricks.ParseStamp(next.Time, now.Location()); err == nil {
			when = humanize.RelTime(t, now, "ago", "from now")
		}
		fmt.Fprintf(out, "\nnext: %s tide of %.2f ft %s\n", next.Kind, float64(next.Height), when)
	}
	if wind.Wind != nil {
		fmt.Fprintf(out, "wind: %.1f kt %s gusting %.1f kt (%s)\n",
			float64(wind.Wind.SpeedKnots), wind.Wind.DirectionLabel, float64(wind.Wind.GustKnots), wind.Condition)
	}
}

// timeOfDay drops the date from a prediction's time.
func timeOfDay(p tides.TidePrediction) string {
	date := timetricks.DateOf(p.Time)
	if len(p.Time) > len(date) {
		return p.Time[len(date)+1:]
	}
	return p.Time
}
