package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/vigenere-analyzer/internal/eval"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/keylength"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to the run history database")
	last := flag.Int("last", 20, "show N most recent runs")
	runID := flag.String("run", "", "show single run detail")
	history := flag.Bool("history", false, "with -run, list every run over the same ciphertext")
	del := flag.String("delete", "", "delete a run and its attempts")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/vigenere.db [--last N] [--run id [--history]] [--delete id] [--json]")
		os.Exit(2)
	}

	st, err := store.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	switch {
	case *del != "":
		err = st.DeleteRun(*del)
		if err == nil {
			fmt.Printf("deleted %s\n", *del)
		}
	case *runID != "":
		err = runDetailMode(st, *runID, *history, *jsonOut)
	default:
		err = runListMode(st, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	RunID     string `json:"run_id"`
	Language  string `json:"language"`
	Window    int    `json:"max_key_length"`
	KeyLength int    `json:"key_length"`
	Key       string `json:"key,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
	Symbols   int    `json:"symbols"`
	CreatedAt string `json:"created_at"`
}

func toListRow(r store.Run) listRow {
	return listRow{
		RunID:     r.RunID,
		Language:  r.Language,
		Window:    r.MaxKeyLength,
		KeyLength: r.KeyLength,
		Key:       r.Key,
		ErrorCode: r.ErrorCode,
		Symbols:   len(r.Ciphertext),
		CreatedAt: r.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func runListMode(st *store.Store, last int, jsonOut bool) error {
	runs, err := st.ListRuns(last)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stderr, "no runs found")
		return nil
	}

	// Store returns DESC, reverse for chronological
	rows := make([]listRow, len(runs))
	for i, r := range runs {
		rows[len(runs)-1-i] = toListRow(r)
	}

	if jsonOut {
		return printJSON(rows)
	}
	printListTable(rows)
	return nil
}

func printListTable(rows []listRow) {
	fmt.Printf("%-8s  %-4s  %3s  %3s  %-20s  %7s  %s\n",
		"Run", "Lang", "Max", "Len", "Key / Error", "Symbols", "Time")
	fmt.Printf("%-8s+-%-4s+-%3s+-%3s+-%-20s+-%7s+-%s\n",
		"--------", "----", "---", "---", "--------------------", "-------", "--------------------")
	for _, r := range rows {
		outcome := r.Key
		if r.ErrorCode != "" {
			outcome = r.ErrorCode
		}
		fmt.Printf("%-8s  %-4s  %3d  %3d  %-20s  %7d  %s\n",
			shortID(r.RunID), r.Language, r.Window, r.KeyLength, outcome, r.Symbols, r.CreatedAt)
	}
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	RunID      string                `json:"run_id"`
	ParentID   string                `json:"parent_id,omitempty"`
	CreatedAt  string                `json:"created_at"`
	Language   string                `json:"language"`
	Window     int                   `json:"max_key_length"`
	KeyLength  int                   `json:"key_length"`
	Key        string                `json:"key,omitempty"`
	ErrorCode  string                `json:"error_code,omitempty"`
	Error      string                `json:"error,omitempty"`
	Plaintext  string                `json:"plaintext,omitempty"`
	Candidates []keylength.Candidate `json:"candidates,omitempty"`
	Eval       *eval.EvalResult      `json:"eval,omitempty"`
	Attempts   []attemptDetail       `json:"attempts"`
	History    []listRow             `json:"history,omitempty"`
}

type attemptDetail struct {
	Language   string `json:"language"`
	KeyLength  int    `json:"key_length"`
	Key        string `json:"key,omitempty"`
	Outcome    string `json:"outcome"`
	Reason     string `json:"reason,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

func runDetailMode(st *store.Store, runID string, history, jsonOut bool) error {
	r, err := st.GetRun(runID)
	if err != nil {
		return err
	}
	out := detailOutput{
		RunID:     r.RunID,
		ParentID:  r.ParentID,
		CreatedAt: r.CreatedAt.Format("2006-01-02T15:04:05Z"),
		Language:  r.Language,
		Window:    r.MaxKeyLength,
		KeyLength: r.KeyLength,
		Key:       r.Key,
		ErrorCode: r.ErrorCode,
		Error:     r.Error,
		Plaintext: r.Plaintext,
	}
	if r.CandidatesJSON != "" {
		if err := json.Unmarshal([]byte(r.CandidatesJSON), &out.Candidates); err != nil {
			return fmt.Errorf("parse candidates: %w", err)
		}
	}
	if r.EvalJSON != "" {
		var res eval.EvalResult
		if err := json.Unmarshal([]byte(r.EvalJSON), &res); err != nil {
			return fmt.Errorf("parse eval: %w", err)
		}
		out.Eval = &res
	}

	attempts, err := st.Attempts(r.RunID)
	if err != nil {
		return err
	}
	for _, a := range attempts {
		out.Attempts = append(out.Attempts, attemptDetail{
			Language:   a.Language,
			KeyLength:  a.KeyLength,
			Key:        a.Key,
			Outcome:    a.Outcome,
			Reason:     a.Reason,
			DurationMS: a.DurationMS,
		})
	}

	if history {
		runs, err := st.RunsForCiphertext(r.CiphertextHash)
		if err != nil {
			return err
		}
		for _, h := range runs {
			out.History = append(out.History, toListRow(h))
		}
	}

	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("Run:        %s\n", out.RunID)
	fmt.Printf("Parent:     %s\n", out.ParentID)
	fmt.Printf("Created:    %s\n", out.CreatedAt)
	fmt.Printf("Language:   %s\n", out.Language)
	fmt.Printf("Window:     %d\n", out.Window)
	fmt.Printf("Key Length: %d\n", out.KeyLength)
	if out.ErrorCode != "" {
		fmt.Printf("Error:      %s (%s)\n", out.ErrorCode, out.Error)
	} else {
		fmt.Printf("Key:        %s\n", out.Key)
	}

	if len(out.Candidates) > 0 {
		fmt.Printf("\nCandidates:\n")
		for _, c := range out.Candidates {
			fmt.Printf("  %2d  %.4f  (%d classes, %d excluded)\n", c.Length, c.AverageIC, c.Classes, c.Excluded)
		}
	}
	if out.Eval != nil {
		fmt.Printf("\nEval: passed=%v %s\n", out.Eval.Passed, out.Eval.Reason)
		for _, m := range out.Eval.Metrics {
			fmt.Printf("  %-18s %10.4f  %v\n", m.Name, m.Value, m.Pass)
		}
	}
	if len(out.Attempts) > 0 {
		fmt.Printf("\nAttempts:\n")
		for _, a := range out.Attempts {
			fmt.Printf("  %-4s  %-9s  %2d  %-20s  %dms  %s\n", a.Language, a.Outcome, a.KeyLength, a.Key, a.DurationMS, a.Reason)
		}
	}
	if len(out.History) > 0 {
		fmt.Printf("\nHistory:\n")
		printListTable(out.History)
	}
	return nil
}

// #endregion detail-mode

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
