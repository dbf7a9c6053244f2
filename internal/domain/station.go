package domain

import (
	"strconv"
	"strings"
)

// Header keys with a dedicated StationMetadata field.
const (
	keyStationID     = "Messstellen-Nr."
	keyStationName   = "Messstellen-Name"
	keyRiver         = "Gewässer"
	keyTimeReference = "Zeitbezug"
	keyGaugeZero     = "Pegelnullpunktshöhe"
	keyEasting       = "Ostwert"
	subKeyNorthing   = "Nordwert"
)

const byteOrderMark = "\ufeff"

// StationMetadata describes the gauge station, as read from export headers.
type StationMetadata struct {
	StationID                 *int32            `json:"station_id"`
	StationName               *string           `json:"station_name"`
	River                     *string           `json:"river"`
	TimeReference             *string           `json:"time_ref"`
	Easting                   *float64          `json:"easting"`
	Northing                  *float64          `json:"northing"`
	CoordinateReferenceSystem *string           `json:"coord_ref"`
	GaugeZero                 *string           `json:"gauge_zero"`
	RawMetadata               map[string]string `json:"raw_meta"`
}

// NewStationMetadata returns an empty record ready to absorb header lines.
func NewStationMetadata() *StationMetadata {
	return &StationMetadata{RawMetadata: make(map[string]string)}
}

// headerLine is one "Key:;Value" line split into its parts.
type headerLine struct {
	key    string
	value  string
	fields []string
}

// parseHeaderLine splits a header line. Lines without a delimiter are not
// header entries and report false.
func parseHeaderLine(line string) (headerLine, bool) {
	fields := strings.Split(line, fieldDelimiter)
	if len(fields) < 2 {
		return headerLine{}, false
	}
	key := strings.TrimSpace(strings.TrimPrefix(fields[0], byteOrderMark))
	key = strings.TrimSuffix(key, ":")
	return headerLine{
		key:    key,
		value:  unquote(fields[1]),
		fields: fields,
	}, true
}

// ApplyHeaderLine folds one header line into the record. Later values for the
// same key overwrite earlier ones. Lines that are not key/value pairs are
// ignored.
func (s *StationMetadata) ApplyHeaderLine(line string) {
	h, ok := parseHeaderLine(line)
	if !ok {
		return
	}
	if s.RawMetadata == nil {
		s.RawMetadata = make(map[string]string)
	}
	s.RawMetadata[h.key] = h.value

	switch h.key {
	case keyStationID:
		s.StationID = parseStationID(h.value)
	case keyStationName:
		s.StationName = stringPtr(h.value)
	case keyRiver:
		s.River = stringPtr(h.value)
	case keyTimeReference:
		s.TimeReference = stringPtr(h.value)
	case keyGaugeZero:
		s.GaugeZero = stringPtr(h.value)
	case keyEasting:
		s.applyCoordinates(h)
	}
}

// applyCoordinates reads the packed coordinate line:
//
//	Ostwert:;693161;Nordwert:;5335716;"ETRS89 / UTM Zone 32N"
//
// Field positions are fixed: northing in the fourth field when the third names
// it, the reference system label in the fifth.
func (s *StationMetadata) applyCoordinates(h headerLine) {
	s.Easting = parseCoordinate(h.value)
	if len(h.fields) >= 4 && strings.HasPrefix(strings.TrimSpace(h.fields[2]), subKeyNorthing) {
		s.Northing = parseCoordinate(strings.ReplaceAll(h.fields[3], `"`, ""))
	}
	if len(h.fields) >= 5 {
		label := strings.TrimSpace(strings.ReplaceAll(h.fields[4], `"`, ""))
		s.CoordinateReferenceSystem = nonEmpty(label)
	}
}

// parseCoordinate parses a coordinate cell. Zero, empty, and unparseable
// cells yield nil.
func parseCoordinate(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v == 0 {
		return nil
	}
	return &v
}

func parseStationID(s string) *int32 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return nil
	}
	id := int32(v)
	return &id
}

func stringPtr(s string) *string {
	return &s
}
