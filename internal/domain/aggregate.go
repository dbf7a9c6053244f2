package domain

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

const dateLayout = "2006-01-02"

// ErrMalformedDate is returned when a row's timestamp does not start with a
// valid calendar date. It signals a parser regression rather than data noise.
var ErrMalformedDate = errors.New("malformed date")

// DailyRecord is one aggregated output row per station, parameter, and date.
type DailyRecord struct {
	StationID  *int32    `json:"station_id"`
	Parameter  Parameter `json:"parameter"`
	Date       string    `json:"date"`
	Count      int32     `json:"count"`
	Mean       float64   `json:"mean"`
	Min        *float64  `json:"min"`
	Max        *float64  `json:"max"`
	StatusMode *string   `json:"status_mode"`
}

// DailyBatch is the finished output of one parameter group.
type DailyBatch struct {
	Station   StationMetadata
	Parameter Parameter
	Records   []DailyRecord
}

// statusTally counts one status value. Tallies are kept in first-seen order.
type statusTally struct {
	status string
	n      int
}

// DailyAccumulator holds the running state for one calendar date.
type DailyAccumulator struct {
	Sum    float64
	Count  int
	Min    *float64
	Max    *float64
	tally  []statusTally
	byName map[string]int
}

func (a *DailyAccumulator) addValue(v float64) {
	a.Sum += v
	a.Count++
	if a.Min == nil || v < *a.Min {
		a.Min = &v
	}
	if a.Max == nil || v > *a.Max {
		a.Max = &v
	}
}

func (a *DailyAccumulator) addStatus(status string) {
	if a.byName == nil {
		a.byName = make(map[string]int)
	}
	i, ok := a.byName[status]
	if !ok {
		a.byName[status] = len(a.tally)
		a.tally = append(a.tally, statusTally{status: status, n: 1})
		return
	}
	a.tally[i].n++
}

// StatusCount returns how often status was seen for the date.
func (a *DailyAccumulator) StatusCount(status string) int {
	if i, ok := a.byName[status]; ok {
		return a.tally[i].n
	}
	return 0
}

// StatusMode returns the most frequent status. On a tie the status seen first
// wins. It returns nil when no status was seen.
func (a *DailyAccumulator) StatusMode() *string {
	best := -1
	var mode *string
	for i := range a.tally {
		if a.tally[i].n > best {
			best = a.tally[i].n
			mode = &a.tally[i].status
		}
	}
	if mode == nil {
		return nil
	}
	s := *mode
	return &s
}

// Aggregator folds measurements into per-date accumulators. Dates before the
// start cutoff are discarded entirely.
type Aggregator struct {
	startDate string
	days      map[string]*DailyAccumulator
}

// NewAggregator returns an aggregator that drops rows dated before startDate
// ("YYYY-MM-DD", compared lexically).
func NewAggregator(startDate string) *Aggregator {
	return &Aggregator{
		startDate: startDate,
		days:      make(map[string]*DailyAccumulator),
	}
}

// Add folds one measurement. It reports whether the row was kept (false when
// it falls before the start date) and fails only on a malformed date.
func (a *Aggregator) Add(m Measurement) (bool, error) {
	date := m.Date()
	if _, err := time.Parse(dateLayout, date); err != nil {
		return false, fmt.Errorf("%w: timestamp %q", ErrMalformedDate, m.Timestamp)
	}
	if date < a.startDate {
		return false, nil
	}

	if m.Value != nil {
		a.day(date).addValue(*m.Value)
	}
	if m.Status != nil {
		a.day(date).addStatus(*m.Status)
	}
	return true, nil
}

// day returns the accumulator for date, creating an empty one on first use.
func (a *Aggregator) day(date string) *DailyAccumulator {
	acc, ok := a.days[date]
	if !ok {
		acc = &DailyAccumulator{}
		a.days[date] = acc
	}
	return acc
}

// Accumulator returns the in-flight state for date, if any.
func (a *Aggregator) Accumulator(date string) (*DailyAccumulator, bool) {
	acc, ok := a.days[date]
	return acc, ok
}

// Len returns the number of dates touched so far, including dates that only
// saw statuses.
func (a *Aggregator) Len() int {
	return len(a.days)
}

// Records emits one record per date with at least one value, in ascending
// date order.
func (a *Aggregator) Records(stationID *int32, parameter Parameter) []DailyRecord {
	dates := make([]string, 0, len(a.days))
	for d := range a.days {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	records := make([]DailyRecord, 0, len(dates))
	for _, d := range dates {
		acc := a.days[d]
		if acc.Count <= 0 {
			continue
		}
		records = append(records, DailyRecord{
			StationID:  stationID,
			Parameter:  parameter,
			Date:       d,
			Count:      int32(acc.Count),
			Mean:       acc.Sum / float64(acc.Count),
			Min:        acc.Min,
			Max:        acc.Max,
			StatusMode: acc.StatusMode(),
		})
	}
	return records
}
