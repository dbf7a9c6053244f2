package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const levelExport = "\ufeffBayerisches Landesamt für Umwelt\n" +
	"Messstellen-Name:;München\n" +
	"Messstellen-Nr.:;16005701\n" +
	"Gewässer:;Isar\n" +
	`Ostwert:;693161;Nordwert:;5335716;"ETRS89 / UTM Zone 32N"` + "\n" +
	"Zeitbezug:;MEZ\n" +
	"\n" +
	`Datum;"Wasserstand [cm]";Prüfstatus` + "\n" +
	`"2020-06-01 00:00";100,00;Geprüft` + "\n" +
	`"2020-06-01 00:15";;Rohdaten` + "\n" +
	"\n" +
	`"2020-06-01 00:30";102,00` + "\n" +
	"Messstellen-Name:;Not a header anymore\n"

func TestFileParser_Sections(t *testing.T) {
	station := NewStationMetadata()
	p := NewFileParser(station)
	assert.Equal(t, ParameterUnknown, p.Parameter())

	var rows []Measurement
	for _, line := range strings.Split(levelExport, "\n") {
		if m, ok := p.ParseLine(line); ok {
			rows = append(rows, m)
		}
	}

	assert.True(t, p.InTable())
	assert.Equal(t, ParameterWaterLevel, p.Parameter())
	require.Len(t, rows, 2, "short rows and text lines in the table are skipped")
	assert.Equal(t, "2020-06-01 00:00", rows[0].Timestamp)
	assert.Nil(t, rows[1].Value)

	assert.Equal(t, "München", *station.StationName)
	assert.Equal(t, testStationID, *station.StationID)
	assert.Equal(t, 693161.0, *station.Easting)
	_, sawTableHeader := station.RawMetadata["Datum"]
	assert.False(t, sawTableHeader)
}

func TestFileParser_NoTableHeader(t *testing.T) {
	p := NewFileParser(NewStationMetadata())
	_, ok := p.ParseLine(`"2020-06-01 00:00";100,00;Geprüft`)
	assert.False(t, ok, "rows before the table header are header lines")
	assert.False(t, p.InTable())
	assert.Equal(t, ParameterUnknown, p.Parameter())
}

func TestFileParser_SharedStationLastFileWins(t *testing.T) {
	station := NewStationMetadata()
	first := NewFileParser(station)
	first.ParseLine("Messstellen-Name:;Muenchen")
	first.ParseLine("Gewässer:;Isar")

	second := NewFileParser(station)
	second.ParseLine("Messstellen-Name:;München")

	assert.Equal(t, "München", *station.StationName)
	assert.Equal(t, "Isar", *station.River)
}
