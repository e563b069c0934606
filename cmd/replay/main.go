package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/danielpatrickdp/vigenere-analyzer/internal/analysis"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/config"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/errkind"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/profile"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/replay"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to the run history database (DB mode)")
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	last := flag.Int("last", 50, "DB mode: replay N most recent runs")
	profileDir := flag.String("profiles", "", "directory of extra language profiles")
	verbose := flag.Bool("v", false, "print mismatch details")
	flag.Parse()

	if (*dbPath == "" && *fixturePath == "") || (*dbPath != "" && *fixturePath != "") {
		fmt.Fprintln(os.Stderr, "usage: replay --db path/to/vigenere.db [--last N]")
		fmt.Fprintln(os.Stderr, "       replay --fixture path/to/fixture.json")
		os.Exit(2)
	}

	analyzer, err := newAnalyzer(*profileDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load profiles: %v\n", err)
		os.Exit(2)
	}

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(analyzer, *fixturePath, *verbose)
	} else {
		exitCode = runDBMode(analyzer, *dbPath, *last, *verbose)
	}
	os.Exit(exitCode)
}

func newAnalyzer(profileDir string) (*analysis.Analyzer, error) {
	var registry *profile.Registry
	var err error
	if profileDir != "" {
		registry, err = profile.Load(profileDir)
	} else {
		registry, err = profile.Builtin()
	}
	if err != nil {
		return nil, err
	}
	cfg := analysis.DefaultConfig()
	cfg.FoldDiacritics = config.Default().FoldDiacritics
	return analysis.NewAnalyzer(registry, cfg, nil), nil
}

// #endregion main

// #region db-mode

func runDBMode(a *analysis.Analyzer, dbPath string, last int, verbose bool) int {
	st, err := store.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer st.Close()

	runs, err := st.ListRuns(last)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list runs: %v\n", err)
		return 2
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stderr, "no runs found")
		return 2
	}

	// Oldest first so the table reads chronologically.
	cases := make([]replay.Case, len(runs))
	for i, r := range runs {
		cases[len(runs)-1-i] = replay.CaseFromRun(r)
	}
	return printComparison(cases, replay.Replay(a, cases), verbose)
}

// #endregion db-mode

// #region fixture-mode

func runFixtureMode(a *analysis.Analyzer, fixturePath string, verbose bool) int {
	f, err := replay.LoadFixture(fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 2
	}
	cases, err := f.ToCases(a.PlaintextNormalizer())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 2
	}
	if f.Description != "" {
		fmt.Printf("%s\n\n", f.Description)
	}
	return printComparison(cases, replay.Replay(a, cases), verbose)
}

// #endregion fixture-mode

// #region compare

// printComparison outputs a comparison table and returns exit code.
func printComparison(cases []replay.Case, results []replay.Result, verbose bool) int {
	fmt.Printf("%-24s| %-22s| %-22s| %s\n", "Case", "Expected", "Replayed", "Match")
	fmt.Printf("%-24s+%-23s+%-23s+%s\n",
		strings.Repeat("-", 24), strings.Repeat("-", 23), strings.Repeat("-", 23), "------")

	for i, r := range results {
		match := "OK"
		if !r.Passed {
			match = "DIVERGE"
		}
		fmt.Printf("%-24s| %-22s| %-22s| %s\n", shortID(r.ID), expected(cases[i].Expected), replayed(r), match)
		if verbose && !r.Passed {
			for _, m := range r.Mismatches {
				fmt.Printf("    %s\n", m)
			}
		}
	}

	s := replay.Summarize(results)
	fmt.Printf("\nSummary: %d total, %d match, %d diverge (%d recovered, %d not found, %d errors)\n",
		s.Total, s.Passed, s.Failed, s.Recovered, s.NotFound, s.Errors)
	if s.Failed > 0 {
		return 1
	}
	return 0
}

func expected(e replay.Expected) string {
	if e.ErrorCode != "" {
		return string(e.ErrorCode)
	}
	if e.Key == "" {
		return fmt.Sprintf("len %d", e.KeyLength)
	}
	return fmt.Sprintf("%s/%d", e.Key, e.KeyLength)
}

func replayed(r replay.Result) string {
	if r.Err != nil {
		return string(errkind.Classify(r.Err))
	}
	return fmt.Sprintf("%s/%d", r.Report.Key, r.Report.KeyLength)
}

func shortID(id string) string {
	if len(id) > 24 {
		return id[:8]
	}
	return id
}

// #endregion compare
