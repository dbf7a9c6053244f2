package domain

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testStartDate = "1975-01-01"

func measurement(ts string, value *float64, status *string) Measurement {
	return Measurement{Timestamp: ts, Value: value, Status: status}
}

func addAll(t *testing.T, a *Aggregator, ms ...Measurement) {
	t.Helper()
	for _, m := range ms {
		_, err := a.Add(m)
		require.NoError(t, err)
	}
}

func TestAggregator_BasicDailyRollup(t *testing.T) {
	a := NewAggregator(testStartDate)
	addAll(t, a,
		measurement("2020-06-01 00:00", floatPtr(100), strPtr("checked")),
		measurement("2020-06-01 00:15", floatPtr(102), strPtr("checked")),
		measurement("2020-06-01 00:30", nil, strPtr("suspect")),
	)

	id := testStationID
	got := a.Records(&id, ParameterWaterLevel)

	want := []DailyRecord{{
		StationID:  &id,
		Parameter:  ParameterWaterLevel,
		Date:       "2020-06-01",
		Count:      2,
		Mean:       101,
		Min:        floatPtr(100),
		Max:        floatPtr(102),
		StatusMode: strPtr("checked"),
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregator_AllNullDayDropped(t *testing.T) {
	a := NewAggregator(testStartDate)
	addAll(t, a,
		measurement("2020-06-01 00:00", floatPtr(5), nil),
		measurement("2020-06-02 00:00", nil, strPtr("Lücke")),
		measurement("2020-06-02 00:15", nil, strPtr("Lücke")),
		measurement("2020-06-02 00:30", nil, nil),
	)

	acc, ok := a.Accumulator("2020-06-02")
	require.True(t, ok, "status-only dates still get an accumulator")
	assert.Equal(t, 0, acc.Count)
	assert.Equal(t, 2, acc.StatusCount("Lücke"))

	records := a.Records(nil, ParameterWaterLevel)
	require.Len(t, records, 1)
	assert.Equal(t, "2020-06-01", records[0].Date)
	assert.Nil(t, records[0].StatusMode)
	assert.Nil(t, records[0].StationID)
}

func TestAggregator_NullValueCountsStatusOnly(t *testing.T) {
	a := NewAggregator(testStartDate)
	row, ok := ParseRow(`"2020-01-01 00:15";;checked`)
	require.True(t, ok)
	addAll(t, a, row)

	acc, ok := a.Accumulator("2020-01-01")
	require.True(t, ok)
	assert.Equal(t, 1, acc.StatusCount("checked"))
	assert.Equal(t, 0, acc.Count)
	assert.Zero(t, acc.Sum)
	assert.Nil(t, acc.Min)
	assert.Nil(t, acc.Max)
}

func TestAggregator_StatusBeforeValueKeepsExtrema(t *testing.T) {
	a := NewAggregator(testStartDate)
	addAll(t, a,
		measurement("2020-06-01 00:00", nil, strPtr("raw")),
		measurement("2020-06-01 00:15", floatPtr(40), nil),
		measurement("2020-06-01 00:30", floatPtr(42), nil),
	)

	records := a.Records(nil, ParameterWaterTemperature)
	require.Len(t, records, 1)
	assert.Equal(t, 40.0, *records[0].Min)
	assert.Equal(t, 42.0, *records[0].Max)
	assert.Equal(t, "raw", *records[0].StatusMode)
}

func TestAggregator_StatusModeTieBreak(t *testing.T) {
	a := NewAggregator(testStartDate)
	for i := 0; i < 3; i++ {
		addAll(t, a, measurement("2020-06-01 00:00", floatPtr(1), strPtr("raw")))
	}
	for i := 0; i < 3; i++ {
		addAll(t, a, measurement("2020-06-01 01:00", floatPtr(1), strPtr("checked")))
	}

	records := a.Records(nil, ParameterWaterLevel)
	require.Len(t, records, 1)
	assert.Equal(t, "raw", *records[0].StatusMode)
}

func TestAggregator_StatusModeStrictMajority(t *testing.T) {
	a := NewAggregator(testStartDate)
	addAll(t, a,
		measurement("2020-06-01 00:00", floatPtr(1), strPtr("raw")),
		measurement("2020-06-01 00:15", floatPtr(1), strPtr("checked")),
		measurement("2020-06-01 00:30", nil, strPtr("checked")),
	)

	records := a.Records(nil, ParameterWaterLevel)
	require.Len(t, records, 1)
	assert.Equal(t, "checked", *records[0].StatusMode)
}

func TestAggregator_StartDateFloor(t *testing.T) {
	a := NewAggregator("2000-01-01")

	kept, err := a.Add(measurement("1999-12-31 23:45", floatPtr(1), strPtr("raw")))
	require.NoError(t, err)
	assert.False(t, kept)

	kept, err = a.Add(measurement("2000-01-01 00:00", floatPtr(2), strPtr("raw")))
	require.NoError(t, err)
	assert.True(t, kept)

	_, ok := a.Accumulator("1999-12-31")
	assert.False(t, ok, "rows before the cutoff must not touch any accumulator")

	records := a.Records(nil, ParameterWaterLevel)
	require.Len(t, records, 1)
	for _, r := range records {
		assert.GreaterOrEqual(t, r.Date, "2000-01-01")
	}
}

func TestAggregator_MalformedDate(t *testing.T) {
	tests := []string{"", "2020-06", "06/01/2020 00:00", "2020-13-01 00:00", "Datum"}

	for _, ts := range tests {
		t.Run(ts, func(t *testing.T) {
			a := NewAggregator(testStartDate)
			_, err := a.Add(measurement(ts, floatPtr(1), nil))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedDate))
		})
	}
}

func TestAggregator_RecordsSortedAndConsistent(t *testing.T) {
	a := NewAggregator(testStartDate)
	addAll(t, a,
		measurement("2021-03-02 00:00", floatPtr(3.5), strPtr("raw")),
		measurement("2019-11-30 12:00", floatPtr(-1.25), strPtr("checked")),
		measurement("2020-06-01 00:00", floatPtr(10), nil),
		measurement("2020-06-01 00:15", floatPtr(11), nil),
		measurement("2020-06-01 00:30", floatPtr(15), nil),
		measurement("2019-11-30 12:15", floatPtr(0.75), nil),
	)

	records := a.Records(nil, ParameterWaterTemperature)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"2019-11-30", "2020-06-01", "2021-03-02"},
		[]string{records[0].Date, records[1].Date, records[2].Date})

	for _, r := range records {
		assert.Positive(t, r.Count)
		assert.LessOrEqual(t, *r.Min, r.Mean)
		assert.LessOrEqual(t, r.Mean, *r.Max)
		assert.Equal(t, ParameterWaterTemperature, r.Parameter)
	}
	assert.InDelta(t, 12.0, records[1].Mean, 1e-9)
	assert.InDelta(t, -0.25, records[0].Mean, 1e-9)
}

func TestAggregator_OrderIndependentSums(t *testing.T) {
	rows := []Measurement{
		measurement("2020-06-01 00:00", floatPtr(1), strPtr("a")),
		measurement("2020-06-01 00:15", floatPtr(2), strPtr("b")),
		measurement("2020-06-02 00:00", floatPtr(4), strPtr("a")),
	}

	forward := NewAggregator(testStartDate)
	addAll(t, forward, rows...)
	backward := NewAggregator(testStartDate)
	for i := len(rows) - 1; i >= 0; i-- {
		addAll(t, backward, rows[i])
	}

	f := forward.Records(nil, ParameterWaterLevel)
	b := backward.Records(nil, ParameterWaterLevel)
	require.Len(t, b, len(f))
	for i := range f {
		assert.Equal(t, f[i].Date, b[i].Date)
		assert.Equal(t, f[i].Count, b[i].Count)
		assert.Equal(t, f[i].Mean, b[i].Mean)
		assert.Equal(t, *f[i].Min, *b[i].Min)
		assert.Equal(t, *f[i].Max, *b[i].Max)
	}
}

func TestAggregator_Len(t *testing.T) {
	a := NewAggregator(testStartDate)
	assert.Equal(t, 0, a.Len())
	addAll(t, a,
		measurement("2020-06-01 00:00", floatPtr(1), nil),
		measurement("2020-06-02 00:00", nil, strPtr("raw")),
		measurement("2020-06-03 00:00", nil, nil),
	)
	assert.Equal(t, 2, a.Len())
}
