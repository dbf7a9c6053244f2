package domain

import "time"

// generatedAtLayout renders UTC timestamps with millisecond precision.
const generatedAtLayout = "2006-01-02T15:04:05.000Z"

// RunMetadata is written next to the daily artifacts after every run.
type RunMetadata struct {
	GeneratedAt           string           `json:"generated_at"`
	WaterLevelFiles       []string         `json:"water_level_files,omitempty"`
	WaterTemperatureFiles []string         `json:"water_temperature_files,omitempty"`
	Station               *StationMetadata `json:"station"`
}

// NewRunMetadata returns run metadata stamped with the current time.
func NewRunMetadata() RunMetadata {
	return RunMetadata{GeneratedAt: FormatGeneratedAt(clock.Now())}
}

// FormatGeneratedAt renders t as an ISO-8601 UTC timestamp.
func FormatGeneratedAt(t time.Time) string {
	return t.UTC().Format(generatedAtLayout)
}
