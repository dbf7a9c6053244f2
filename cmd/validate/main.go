// Command validate checks the outputs of an ingestion run: every daily
// artifact must be sorted, unique per date, and internally consistent, the
// run metadata must be well formed, and a fresh run over the same inputs must
// reproduce the artifacts exactly.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -out data/parquet \
//	  -data-root data \
//	  -station 16005701 \
//	  -start-date 1975-01-01
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
)

func main() {
	outRoot := flag.String("out", "data/parquet", "output directory of the run to validate")
	dataRoot := flag.String("data-root", "data", "input directory the run read from")
	station := flag.String("station", "16005701", "station number")
	startDate := flag.String("start-date", "1975-01-01", "start date the run used")
	flag.Parse()

	if code := run(*outRoot, *dataRoot, *station, *startDate); code != 0 {
		os.Exit(code)
	}
}

func run(outRoot, dataRoot, station, startDate string) int {
	fmt.Println("=== River Gauge Output Validation ===")
	fmt.Println()

	out, err := loadOutputs(outRoot, station)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load outputs: %v\n", err)
		return 1
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	phases := []*phase{
		validateMetadata(out.meta),
		validateArtifacts(out, startDate),
		validateReproducible(out, dataRoot, station, startDate, logger),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = "FAIL"
			allPassed = false
		}
		fmt.Printf("[%s] %s\n", status, p.name)
		for _, e := range p.errors {
			fmt.Printf("       - %s\n", e)
		}
	}

	fmt.Println()
	if !allPassed {
		fmt.Println("RESULT: FAILED")
		return 1
	}
	fmt.Println("RESULT: ALL CHECKS PASSED")
	return 0
}
