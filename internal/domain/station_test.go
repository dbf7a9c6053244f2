package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testStationID = int32(16005701)

func TestApplyHeaderLine_KnownKeys(t *testing.T) {
	s := NewStationMetadata()
	for _, line := range []string{
		"Messstellen-Name:;München",
		"Messstellen-Nr.:;16005701",
		"Gewässer:;Isar",
		`Zeitbezug:;"MEZ"`,
		"Pegelnullpunktshöhe:;508,00 m NN",
		"Datenquelle:;Bayerisches Landesamt für Umwelt",
	} {
		s.ApplyHeaderLine(line)
	}

	require.NotNil(t, s.StationID)
	assert.Equal(t, testStationID, *s.StationID)
	assert.Equal(t, "München", *s.StationName)
	assert.Equal(t, "Isar", *s.River)
	assert.Equal(t, "MEZ", *s.TimeReference)
	assert.Equal(t, "508,00 m NN", *s.GaugeZero)
	assert.Equal(t, "Bayerisches Landesamt für Umwelt", s.RawMetadata["Datenquelle"])
	assert.Equal(t, "16005701", s.RawMetadata["Messstellen-Nr."])
	assert.Len(t, s.RawMetadata, 6)
}

func TestApplyHeaderLine_CoordinateLine(t *testing.T) {
	s := NewStationMetadata()
	s.ApplyHeaderLine(`Ostwert:;693161;Nordwert:;5335716;"ETRS89 / UTM Zone 32N"`)

	require.NotNil(t, s.Easting)
	require.NotNil(t, s.Northing)
	require.NotNil(t, s.CoordinateReferenceSystem)
	assert.Equal(t, 693161.0, *s.Easting)
	assert.Equal(t, 5335716.0, *s.Northing)
	assert.Equal(t, "ETRS89 / UTM Zone 32N", *s.CoordinateReferenceSystem)
	assert.Equal(t, "693161", s.RawMetadata["Ostwert"])
}

func TestApplyHeaderLine_CoordinateLineVariants(t *testing.T) {
	t.Run("missing northing sub-key", func(t *testing.T) {
		s := NewStationMetadata()
		s.ApplyHeaderLine(`Ostwert:;693161;Hochwert:;5335716`)
		assert.Equal(t, 693161.0, *s.Easting)
		assert.Nil(t, s.Northing)
		assert.Nil(t, s.CoordinateReferenceSystem)
	})

	t.Run("easting only", func(t *testing.T) {
		s := NewStationMetadata()
		s.ApplyHeaderLine(`Ostwert:;693161`)
		assert.Equal(t, 693161.0, *s.Easting)
		assert.Nil(t, s.Northing)
	})

	t.Run("empty reference label", func(t *testing.T) {
		s := NewStationMetadata()
		s.ApplyHeaderLine(`Ostwert:;693161;Nordwert:;5335716;""`)
		assert.Equal(t, 5335716.0, *s.Northing)
		assert.Nil(t, s.CoordinateReferenceSystem)
	})

	t.Run("non-numeric easting", func(t *testing.T) {
		s := NewStationMetadata()
		s.ApplyHeaderLine(`Ostwert:;k.A.;Nordwert:;5335716`)
		assert.Nil(t, s.Easting)
		assert.Equal(t, 5335716.0, *s.Northing)
	})
}

func TestApplyHeaderLine_IgnoresNonEntries(t *testing.T) {
	s := NewStationMetadata()
	s.ApplyHeaderLine("Bayerisches Landesamt für Umwelt")
	s.ApplyHeaderLine("")
	assert.Empty(t, s.RawMetadata)
	assert.Nil(t, s.StationID)
}

func TestApplyHeaderLine_LastWriteWins(t *testing.T) {
	s := NewStationMetadata()
	s.ApplyHeaderLine("Messstellen-Name:;Muenchen")
	s.ApplyHeaderLine("Messstellen-Name:;München")
	assert.Equal(t, "München", *s.StationName)
	assert.Equal(t, "München", s.RawMetadata["Messstellen-Name"])
}

func TestApplyHeaderLine_InvalidStationID(t *testing.T) {
	s := NewStationMetadata()
	s.ApplyHeaderLine("Messstellen-Nr.:;unbekannt")
	assert.Nil(t, s.StationID)
	assert.Equal(t, "unbekannt", s.RawMetadata["Messstellen-Nr."])
}

func TestApplyHeaderLine_StripsByteOrderMark(t *testing.T) {
	s := NewStationMetadata()
	s.ApplyHeaderLine("\ufeffMessstellen-Name:;München")
	assert.Equal(t, "München", *s.StationName)
}
