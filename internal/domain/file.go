package domain

import "strings"

const tableHeaderPrefix = "Datum;"

// FileParser walks the lines of one export file. It starts in header mode,
// feeding lines into the station record, and switches to table mode for good
// at the first line starting with "Datum;".
type FileParser struct {
	station   *StationMetadata
	parameter Parameter
	inTable   bool
}

// NewFileParser returns a parser that writes header values into station.
// Several parsers may share one station record; later files win per key.
func NewFileParser(station *StationMetadata) *FileParser {
	return &FileParser{station: station, parameter: ParameterUnknown}
}

// ParseLine consumes one raw line. It returns a measurement and true only for
// table rows; header lines, the table header, blank lines, and short rows all
// return false.
func (p *FileParser) ParseLine(line string) (Measurement, bool) {
	line = strings.TrimSpace(strings.TrimPrefix(line, byteOrderMark))
	if line == "" {
		return Measurement{}, false
	}

	if !p.inTable {
		if strings.HasPrefix(line, tableHeaderPrefix) {
			p.inTable = true
			p.parameter = DetectParameter(line)
			return Measurement{}, false
		}
		p.station.ApplyHeaderLine(line)
		return Measurement{}, false
	}

	return ParseRow(line)
}

// Parameter returns the parameter detected from the table header, or
// ParameterUnknown before one was seen.
func (p *FileParser) Parameter() Parameter {
	return p.parameter
}

// InTable reports whether the table header has been seen.
func (p *FileParser) InTable() bool {
	return p.inTable
}
