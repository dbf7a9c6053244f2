// Command genmock writes synthetic gauge exports for one station, laid out the
// way the ingestion expects them: one file per year under a water level and a
// water temperature directory. Values follow a seasonal curve with gaps and
// mixed status labels, so every parser path gets exercised.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out data \
//	  -station 16005701 \
//	  -from 2019-11-01 -to 2021-02-28
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	levelDir       = "fluesse-wasserstand"
	temperatureDir = "fluesse-wassertemperatur"
	dayLayout      = "2006-01-02"
	rowLayout      = "2006-01-02 15:04"
)

// series describes one parameter's export.
type series struct {
	dir      string
	header   string
	decimals int
	value    func(t time.Time, r *rand.Rand) float64
}

var allSeries = []series{
	{
		dir:      levelDir,
		header:   `Datum;"Wasserstand [cm]";Prüfstatus`,
		decimals: 2,
		value: func(t time.Time, r *rand.Rand) float64 {
			season := math.Sin(2 * math.Pi * float64(t.YearDay()) / 365)
			return 120 + 35*season + r.NormFloat64()*2
		},
	},
	{
		dir:      temperatureDir,
		header:   `Datum;"Wassertemperatur [°C]";Prüfstatus`,
		decimals: 1,
		value: func(t time.Time, r *rand.Rand) float64 {
			season := -math.Cos(2 * math.Pi * float64(t.YearDay()) / 365)
			daily := math.Sin(2 * math.Pi * float64(t.Hour()) / 24)
			return 9 + 7*season + 0.8*daily + r.NormFloat64()*0.2
		},
	},
}

var statuses = []string{"Geprüft", "Geprüft", "Geprüft", "Rohdaten"}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "data root to write the parameter directories into")
	station := flag.String("station", "16005701", "station number")
	name := flag.String("name", "München", "station name written to the header")
	from := flag.String("from", "2019-11-01", "first day (YYYY-MM-DD)")
	to := flag.String("to", "2021-02-28", "last day (YYYY-MM-DD)")
	interval := flag.Duration("interval", 15*time.Minute, "spacing between rows")
	gapRate := flag.Float64("gap-rate", 0.01, "share of rows with an empty value")
	seed := flag.Uint64("seed", 1, "random seed")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	start, err := time.Parse(dayLayout, *from)
	if err != nil {
		return fmt.Errorf("parse -from: %w", err)
	}
	end, err := time.Parse(dayLayout, *to)
	if err != nil {
		return fmt.Errorf("parse -to: %w", err)
	}
	if end.Before(start) {
		return fmt.Errorf("-to %s is before -from %s", *to, *from)
	}

	r := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
	for _, s := range allSeries {
		for year := start.Year(); year <= end.Year(); year++ {
			yearStart := maxTime(start, time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC))
			yearEnd := minTime(end.AddDate(0, 0, 1), time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC))

			path := filepath.Join(*out, s.dir, fmt.Sprintf("%s_%d.csv", *station, year))
			rows, err := writeExport(path, s, *station, *name, yearStart, yearEnd, *interval, *gapRate, r)
			if err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			log.Printf("%s: %d rows", path, rows)
		}
	}
	return nil
}

func writeExport(path string, s series, station, name string, from, to time.Time, step time.Duration, gapRate float64, r *rand.Rand) (int, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	writeHeader(w, station, name, s.header)

	rows := 0
	for t := from; t.Before(to); t = t.Add(step) {
		value := ""
		if r.Float64() >= gapRate {
			value = decimalComma(s.value(t, r), s.decimals)
		}
		fmt.Fprintf(w, "%s;%s;%s\r\n", t.Format(rowLayout), value, statuses[r.IntN(len(statuses))])
		rows++
	}
	if err := w.Flush(); err != nil {
		return 0, err
	}
	return rows, f.Close()
}

func writeHeader(w *bufio.Writer, station, name, tableHeader string) {
	lines := []string{
		"\ufeffQuelle:;Bayerisches Landesamt für Umwelt, www.gkd.bayern.de",
		"Messstellen-Name:;" + name,
		"Messstellen-Nr.:;" + station,
		"Gewässer:;Isar",
		`Ostwert:;691234;Nordwert:;5334321;"ETRS89 / UTM Zone 32N"`,
		"Pegelnullpunktshöhe:;508,37 m NHN",
		"Zeitbezug:;MEZ",
		"",
		tableHeader,
	}
	for _, l := range lines {
		w.WriteString(l + "\r\n") //nolint:errcheck // checked by Flush
	}
}

func decimalComma(v float64, decimals int) string {
	return strings.Replace(fmt.Sprintf("%.*f", decimals, v), ".", ",", 1)
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
