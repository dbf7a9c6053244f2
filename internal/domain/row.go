package domain

import (
	"math"
	"strconv"
	"strings"
)

const fieldDelimiter = ";"

// Measurement is one parsed table row.
type Measurement struct {
	Timestamp string   // "YYYY-MM-DD HH:MM"
	Value     *float64 // nil when the cell is empty or not numeric
	Status    *string  // nil when the cell is empty
}

// Date returns the calendar date portion of the timestamp ("YYYY-MM-DD").
// It returns the whole timestamp when it is shorter than a date.
func (m Measurement) Date() string {
	if len(m.Timestamp) < len(dateLayout) {
		return m.Timestamp
	}
	return m.Timestamp[:len(dateLayout)]
}

// ParseRow parses one table line. It reports false when the line has fewer
// than three fields, in which case the caller skips it.
func ParseRow(line string) (Measurement, bool) {
	parts := strings.Split(line, fieldDelimiter)
	if len(parts) < 3 {
		return Measurement{}, false
	}

	return Measurement{
		Timestamp: unquote(parts[0]),
		Value:     parseDecimalComma(unquote(parts[1])),
		Status:    nonEmpty(unquote(parts[2])),
	}, true
}

// parseDecimalComma parses a number written with a decimal comma ("94,00").
// Empty, unparseable, and non-finite inputs yield nil. The whole cell must be
// numeric: a trailing unit such as "94,00 cm" is rejected, not truncated.
func parseDecimalComma(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// unquote trims whitespace and one leading and one trailing double quote.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, `"`)
	return strings.TrimSuffix(s, `"`)
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
