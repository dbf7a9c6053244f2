package postgres

import (
	"testing"
	"time"

	"github.com/couchcryptid/river-gauge-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestDailyArgs(t *testing.T) {
	r := domain.DailyRecord{
		StationID:  ptr(int32(16005701)),
		Parameter:  domain.ParameterWaterLevel,
		Date:       "2020-06-01",
		Count:      3,
		Mean:       101,
		Min:        ptr(100.0),
		Max:        ptr(102.0),
		StatusMode: ptr("Geprüft"),
	}

	args, err := dailyArgs(16005701, r)
	require.NoError(t, err)
	require.Len(t, args, 8)

	assert.Equal(t, int32(16005701), args[0])
	assert.Equal(t, "water_level_cm", args[1])
	assert.Equal(t, time.Date(2020, time.June, 1, 0, 0, 0, 0, time.UTC), args[2])
	assert.Equal(t, int32(3), args[3])
	assert.Equal(t, 101.0, args[4])
	assert.Equal(t, ptr(100.0), args[5])
	assert.Equal(t, ptr(102.0), args[6])
	assert.Equal(t, ptr("Geprüft"), args[7])
}

func TestDailyArgs_NullStatus(t *testing.T) {
	r := domain.DailyRecord{
		Parameter: domain.ParameterWaterTemperature,
		Date:      "1975-01-01",
		Count:     1,
		Mean:      4.5,
		Min:       ptr(4.5),
		Max:       ptr(4.5),
	}

	args, err := dailyArgs(1, r)
	require.NoError(t, err)
	assert.Nil(t, args[7].(*string))
}

func TestDailyArgs_MalformedDate(t *testing.T) {
	_, err := dailyArgs(1, domain.DailyRecord{Date: "01.06.2020"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMalformedDate)
}

func TestStationArgs(t *testing.T) {
	m := domain.StationMetadata{
		StationID:   ptr(int32(16005701)),
		StationName: ptr("München"),
		River:       ptr("Isar"),
		Easting:     ptr(693161.0),
	}

	args := stationArgs(m)
	require.Len(t, args, 9)
	assert.Equal(t, int32(16005701), args[0])
	assert.Equal(t, ptr("München"), args[1])
	assert.Equal(t, ptr("Isar"), args[2])
	assert.Nil(t, args[3].(*string))
	assert.Equal(t, ptr(693161.0), args[4])
	assert.Nil(t, args[5].(*float64))
	assert.Equal(t, map[string]string{}, args[8], "raw metadata defaults to an empty object")
}
