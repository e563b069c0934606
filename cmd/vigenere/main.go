package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/danielpatrickdp/vigenere-analyzer/internal/alphabet"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/analysis"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/config"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/keylength"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/logging"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/profile"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/rpc"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/store"
)

const (
	defaultFile = "vig.txt"
	prompt      = "Please enter the file name (containing Vigenere's ciphered text) [" + defaultFile + "]: "
)

// #region main
func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type options struct {
	configPath string
	file       string
	encipher   string
	decipher   string
	scan       bool
	all        bool
	timeout    time.Duration
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("vigenere", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var opt options
	fs.StringVar(&opt.configPath, "config", "vigenere.yaml", "optional YAML config file")
	fs.StringVar(&opt.file, "file", "", "file holding the ciphertext (prompted for when absent)")
	fs.StringVar(&opt.encipher, "encipher", "", "encipher the file with KEY instead of analyzing")
	fs.StringVar(&opt.decipher, "decipher", "", "decipher the file with a known KEY")
	fs.BoolVar(&opt.scan, "scan", false, "print the average IC of every key length in the window")
	fs.BoolVar(&opt.all, "all", false, "analyze once per language profile and print each outcome")
	fs.DurationVar(&opt.timeout, "timeout", 30*time.Second, "deadline for remote calls")
	lang := fs.String("lang", "", "language profile code, or auto")
	maxLen := fs.Int("max", 0, "largest key length to probe")
	dbPath := fs.String("db", "", "record the run in this SQLite database")
	remote := fs.String("remote", "", "analyze on a remote analyzerd at this address")
	preserve := fs.Bool("preserve", false, "keep spacing, punctuation and case in the output")
	logLevel := fs.String("log-level", "", "debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if opt.encipher != "" && opt.decipher != "" {
		fmt.Fprintln(stderr, "usage: vigenere [-encipher KEY | -decipher KEY | -scan | -all] [-file path | path]")
		return 2
	}

	cfg, err := config.Load(opt.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "lang":
			cfg.Language = *lang
		case "max":
			cfg.MaxKeyLength = *maxLen
		case "db":
			cfg.DBPath = *dbPath
		case "remote":
			cfg.RemoteAddr = *remote
		case "preserve":
			cfg.PreserveFormat = *preserve
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}
	if opt.file == "" && fs.NArg() > 0 {
		opt.file = fs.Arg(0)
	}

	text, err := readInput(opt.file, stdin, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	level, _ := logging.ParseLevel(cfg.LogLevel)
	logger := logging.NewLogger(stderr, level)

	if cfg.RemoteAddr != "" {
		return runRemote(cfg, opt, text, stdout, stderr)
	}
	return runLocal(cfg, opt, text, logger, stdout, stderr)
}

// #endregion main

// #region input
// readInput reads the ciphertext file, prompting for its name when none was given.
func readInput(file string, stdin io.Reader, stdout io.Writer) (string, error) {
	if file == "" {
		fmt.Fprint(stdout, prompt)
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read file name: %w", err)
		}
		file = strings.TrimSpace(line)
		if file == "" {
			file = defaultFile
		}
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("read ciphertext: %w", err)
	}
	return string(data), nil
}

// #endregion input

// #region local
func runLocal(cfg config.Config, opt options, text string, logger *slog.Logger, stdout, stderr io.Writer) int {
	registry, err := loadRegistry(cfg.ProfileDir)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	acfg := analysis.DefaultConfig()
	acfg.MaxKeyLength = cfg.MaxKeyLength
	acfg.FoldDiacritics = cfg.FoldDiacritics
	analyzer := analysis.NewAnalyzer(registry, acfg, logger)

	switch {
	case opt.encipher != "" || opt.decipher != "":
		return transformLocal(analyzer, cfg, opt, text, stdout, stderr)
	case opt.scan:
		return scan(analyzer, cfg, text, stdout, stderr)
	case opt.all:
		return analyzeAll(analyzer, cfg, text, stdout)
	}

	req := analysis.Request{Text: text, Language: cfg.Language, MaxKeyLength: cfg.MaxKeyLength, PreserveFormat: cfg.PreserveFormat}
	rep, analyzeErr := analyzer.Analyze(req)

	if cfg.DBPath != "" {
		st, err := store.NewStore(cfg.DBPath)
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		defer st.Close()
		rec, err := st.Record(req, rep, analyzeErr)
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		logger.Info("run recorded", "run_id", rec.RunID, "db", cfg.DBPath)
	}

	printReport(stdout, rep.KeyLength, rep.Key.String(), rep.Plaintext, analyzeErr)
	if analyzeErr != nil {
		fmt.Fprintf(stderr, "error: %v\n", analyzeErr)
		for _, a := range rep.Attempts {
			fmt.Fprintf(stderr, "  %s: %v\n", a.Language, a.Err)
		}
		return 1
	}
	return 0
}

func loadRegistry(dir string) (*profile.Registry, error) {
	if dir != "" {
		return profile.Load(dir)
	}
	return profile.Builtin()
}

func transformLocal(a *analysis.Analyzer, cfg config.Config, opt options, text string, stdout, stderr io.Writer) int {
	apply, raw := a.Decipher, opt.decipher
	if opt.encipher != "" {
		apply, raw = a.Encipher, opt.encipher
	}
	key, err := alphabet.ParseKey(raw)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}
	out, err := apply(text, key, cfg.PreserveFormat)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, out)
	return 0
}

func scan(a *analysis.Analyzer, cfg config.Config, text string, stdout, stderr io.Writer) int {
	seq := a.Normalizer().Normalize(text)
	cands, err := keylength.Scan(seq, cfg.MaxKeyLength)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "%6s  %10s  %7s  %8s\n", "Length", "Average IC", "Classes", "Excluded")
	for _, c := range cands {
		fmt.Fprintf(stdout, "%6d  %10.4f  %7d  %8d\n", c.Length, c.AverageIC, c.Classes, c.Excluded)
	}
	for _, lang := range a.Registry().Languages() {
		fmt.Fprintf(stdout, "threshold %s: %.4f\n", lang.Code, lang.IC)
	}
	return 0
}

func analyzeAll(a *analysis.Analyzer, cfg config.Config, text string, stdout io.Writer) int {
	code := 1
	outcomes := a.AnalyzeAll(analysis.Request{Text: text, MaxKeyLength: cfg.MaxKeyLength, PreserveFormat: cfg.PreserveFormat})
	for _, o := range outcomes {
		fmt.Fprintf(stdout, "[%s]\n", o.Language)
		printReport(stdout, o.Report.KeyLength, o.Report.Key.String(), o.Report.Plaintext, o.Err)
		if o.Err != nil {
			fmt.Fprintf(stdout, "error: %v\n", o.Err)
		} else {
			code = 0
		}
		fmt.Fprintln(stdout)
	}
	return code
}

// #endregion local

// #region remote
func runRemote(cfg config.Config, opt options, text string, stdout, stderr io.Writer) int {
	if opt.scan || opt.all {
		fmt.Fprintln(stderr, "usage: -scan and -all run locally only")
		return 2
	}
	client, err := rpc.NewClient(cfg.RemoteAddr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), opt.timeout)
	defer cancel()

	if opt.encipher != "" || opt.decipher != "" {
		call, key := client.Decipher, opt.decipher
		if opt.encipher != "" {
			call, key = client.Encipher, opt.encipher
		}
		out, err := call(ctx, text, key, cfg.PreserveFormat)
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		fmt.Fprintln(stdout, out)
		return 0
	}

	res, err := client.Analyze(ctx, analysis.Request{
		Text:           text,
		Language:       cfg.Language,
		MaxKeyLength:   cfg.MaxKeyLength,
		PreserveFormat: cfg.PreserveFormat,
	})
	printReport(stdout, res.KeyLength, res.Key, res.Plaintext, err)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	if res.RunID != "" {
		fmt.Fprintf(stderr, "run %s\n", res.RunID)
	}
	return 0
}

// #endregion remote

// #region report
// printReport writes the key summary and, on success, the plaintext.
func printReport(w io.Writer, keyLength int, key, plaintext string, err error) {
	fmt.Fprintf(w, "Probable key length : %d\n", keyLength)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "Probable key        : %s\n", key)
	fmt.Fprintln(w)
	fmt.Fprintln(w, plaintext)
}

// #endregion report
