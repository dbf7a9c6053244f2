package domain

import "strings"

// Parameter identifies the physical quantity measured by an export file.
type Parameter string

const (
	ParameterWaterLevel       Parameter = "water_level_cm"
	ParameterWaterTemperature Parameter = "water_temperature_c"
	ParameterUnknown          Parameter = "unknown"
)

const (
	levelMarker       = "Wasserstand"
	temperatureMarker = "Wassertemperatur"
)

// DetectParameter classifies a table header line by marker substring.
func DetectParameter(headerLine string) Parameter {
	switch {
	case strings.Contains(headerLine, levelMarker):
		return ParameterWaterLevel
	case strings.Contains(headerLine, temperatureMarker):
		return ParameterWaterTemperature
	default:
		return ParameterUnknown
	}
}

// Unit returns the display unit for the parameter.
func (p Parameter) Unit() string {
	switch p {
	case ParameterWaterLevel:
		return "cm"
	case ParameterWaterTemperature:
		return "°C"
	default:
		return ""
	}
}
