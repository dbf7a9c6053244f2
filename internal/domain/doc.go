// Package domain models river gauge exports and their daily aggregates.
//
// # Data Source
//
// Gauge exports are semicolon-delimited text files published per station and
// per measured quantity (one directory for water level, one for water
// temperature). Every file has two sections: a free-form metadata header and a
// tabular section with one row per 15-minute reading.
//
// # Header Section
//
// Lines of the form:
//
//	Key:;Value
//
// in any order. Values may be wrapped in double quotes. Known keys:
//
//	Messstellen-Nr.      numeric station identifier
//	Messstellen-Name     station name
//	Gewässer             river
//	Zeitbezug            time reference (e.g. "MEZ")
//	Pegelnullpunktshöhe  gauge zero elevation
//	Ostwert              coordinate line, see below
//
// The coordinate line packs two key/value pairs and a reference system label:
//
//	Ostwert:;693161;Nordwert:;5335716;"ETRS89 / UTM Zone 32N"
//
// Every other key is kept verbatim in [StationMetadata.RawMetadata].
//
// # Table Section
//
// The header ends at the first line starting with "Datum;". That line names
// the measured quantity and selects the [Parameter] for the whole file:
//
//	Datum;"Wasserstand [cm]";Prüfstatus
//	Datum;"Wassertemperatur [°C]";Prüfstatus
//
// Rows follow:
//
//	"2020-06-01 00:15";94,00;Rohdaten
//
// The value uses a decimal comma and may be empty; the status may be empty.
// Malformed rows and cells are treated as absent, never as errors.
//
// # Daily Aggregation
//
// Rows are folded into one [DailyRecord] per calendar date by [Aggregator].
// Values feed count/sum/min/max; statuses are tallied independently so rows
// without a usable value still shape the dominant status of the day. Dates
// that never saw a value are not emitted.
package domain
