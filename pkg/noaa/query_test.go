package noaa

import (
	"fmt"
	"testing"
	"time"
)

func TestQueryURL(t *testing.T) {
	table := []struct {
		name string
		in   PredictionQuery
		want string
	}{{
		name: "under a day",
		in: PredictionQuery{
			Start:    time.Date(2020, time.January, 5, 0, 0, 0, 0, time.Local),
			Duration: 1 * time.Hour,
			Station:  SantaCruz,
		},
		want: fmt.Sprintf("%s?begin_date=20200105&datum=MLLW&end_date=20200105&format=json&interval=hilo&product=predictions&station=%s&time_zone=lst_ldt&units=english", NOAA_URL, SantaCruz),
	}, {
		name: "three whole days",
		in: PredictionQuery{
			Start:    time.Date(2020, time.January, 30, 0, 0, 0, 0, time.Local),
			Duration: 3 * 24 * time.Hour,
			Station:  "8454000",
		},
		want: fmt.Sprintf("%s?begin_date=20200130&datum=MLLW&end_date=20200201&format=json&interval=hilo&product=predictions&station=8454000&time_zone=lst_ldt&units=english", NOAA_URL),
	}}

	for _, test := range table {
		t.Run(test.name, func(t *testing.T) {
			got := test.in.url(NOAA_URL).String()
			if test.want != got {
				t.Errorf("got  %q", got)
				t.Errorf("want %q", test.want)
			}
		})
	}
}

func TestWindQueryURL(t *testing.T) {
	q := WindQuery{Station: SantaCruz}
	want := fmt.Sprintf("%s?format=json&product=wind&range=1&station=%s&time_zone=lst_ldt&units=english", NOAA_URL, SantaCruz)
	if got := q.url(NOAA_URL).String(); got != want {
		t.Errorf("got  %q", got)
		t.Errorf("want %q", want)
	}
}
