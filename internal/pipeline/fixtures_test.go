package pipeline_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testStation  = "16005701"
	levelDir     = "fluesse-wasserstand"
	temperDir    = "fluesse-wassertemperatur"
	levelHeader  = `Datum;"Wasserstand [cm]";Prüfstatus`
	temperHeader = `Datum;"Wassertemperatur [°C]";Prüfstatus`
)

// exportText renders a gauge export with the given station name, table
// header, and rows.
func exportText(stationName, tableHeader string, rows ...string) string {
	var b strings.Builder
	b.WriteString("\ufeffBayerisches Landesamt für Umwelt\n")
	fmt.Fprintf(&b, "Messstellen-Name:;%s\n", stationName)
	fmt.Fprintf(&b, "Messstellen-Nr.:;%s\n", testStation)
	b.WriteString("Gewässer:;Isar\n")
	b.WriteString(`Ostwert:;693161;Nordwert:;5335716;"ETRS89 / UTM Zone 32N"` + "\n")
	b.WriteString("Zeitbezug:;MEZ\n")
	b.WriteString("\n")
	b.WriteString(tableHeader + "\r\n")
	for _, r := range rows {
		b.WriteString(r + "\r\n")
	}
	return b.String()
}

func writeExport(t *testing.T, root, subdir, name, content string) string {
	t.Helper()
	path := filepath.Join(root, subdir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
