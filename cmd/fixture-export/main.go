package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/vigenere-analyzer/internal/replay"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to the run history database")
	last := flag.Int("last", 10, "number of most recent runs to export")
	outPath := flag.String("out", "", "output fixture JSON path")
	failedOnly := flag.Bool("failed", false, "export only runs that ended in an error")
	description := flag.String("description", "", "fixture description")
	flag.Parse()

	if *dbPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/db --out path/to/fixture.json [--last N] [--failed]")
		os.Exit(2)
	}

	if err := run(*dbPath, *last, *failedOnly, *description, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region extract

func run(dbPath string, last int, failedOnly bool, description, outPath string) error {
	st, err := store.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer st.Close()

	runs, err := st.ListRuns(last)
	if err != nil {
		return err
	}

	// DESC from the store, reverse for chronological order
	var selected []store.Run
	for i := len(runs) - 1; i >= 0; i-- {
		if failedOnly && !runs[i].Failed() {
			continue
		}
		selected = append(selected, runs[i])
	}
	if len(selected) == 0 {
		return fmt.Errorf("no runs to export in last %d", last)
	}

	fmt.Printf("Found %d runs\n", len(selected))

	if description == "" {
		description = fmt.Sprintf("Exported from %s", dbPath)
	}
	return writeFixture(replay.FromRuns(description, selected), outPath)
}

// #endregion extract

// #region output

func writeFixture(fixture replay.Fixture, outPath string) error {
	data, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}

	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}

	fmt.Printf("Wrote fixture to %s (%d bytes, %d cases)\n", outPath, len(data), len(fixture.Cases))
	return nil
}

// #endregion output
