//go:build integration

package integration_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
	tcminio "github.com/testcontainers/testcontainers-go/modules/minio"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

const testStation = "16005701"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// startPostgres runs a throwaway database and returns its connection URL.
func startPostgres(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("river"),
		tcpostgres.WithUsername("river"),
		tcpostgres.WithPassword("river"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return url
}

// startMinio runs an object store and returns its endpoint and credentials.
func startMinio(ctx context.Context, t *testing.T) (endpoint, user, password string) {
	t.Helper()
	container, err := tcminio.Run(ctx, "minio/minio:RELEASE.2024-01-16T16-07-38Z",
		tcminio.WithUsername("river"),
		tcminio.WithPassword("river-secret"),
	)
	require.NoError(t, err, "start minio container")
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	endpoint, err = container.ConnectionString(ctx)
	require.NoError(t, err)
	return endpoint, container.Username, container.Password
}

// writeExports lays out one water level and one water temperature export.
func writeExports(t *testing.T, root string) {
	t.Helper()
	files := map[string]string{
		filepath.Join("fluesse-wasserstand", testStation+"_2020.csv"): "Messstellen-Name:;München\n" +
			"Messstellen-Nr.:;" + testStation + "\n" +
			"Gewässer:;Isar\n" +
			"Datum;\"Wasserstand [cm]\";Prüfstatus\n" +
			"\"2020-06-01 00:00\";100,00;Geprüft\n" +
			"\"2020-06-01 00:15\";102,00;Geprüft\n" +
			"\"2020-06-02 00:00\";98,00;Rohdaten\n",
		filepath.Join("fluesse-wassertemperatur", testStation+"_2020.csv"): "Messstellen-Name:;München\n" +
			"Messstellen-Nr.:;" + testStation + "\n" +
			"Datum;\"Wassertemperatur [°C]\";Prüfstatus\n" +
			"\"2020-06-01 00:00\";12,5;Geprüft\n",
	}
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}
