package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/himanishpuri/audiomatch/pkg/audiomatch"
	"github.com/himanishpuri/audiomatch/pkg/logger"
)

const (
	exitMatch   = 0
	exitError   = 1
	exitNoMatch = 2
)

var (
	green  = color.New(color.FgGreen, color.Bold)
	red    = color.New(color.FgRed, color.Bold)
	yellow = color.New(color.FgYellow)
	faint  = color.New(color.Faint)
)

type globalOptions struct {
	dbPath    string
	tempDir   string
	window    string
	threshold float64
	workers   int
	timeout   time.Duration
	rate      int
	quiet     bool
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var g globalOptions
	fs := flag.NewFlagSet("audiomatch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(stderr) }
	fs.StringVar(&g.dbPath, "db", "", "Path to the SQLite history database (default: $AUDIOMATCH_DB_PATH or audiomatch.sqlite3)")
	fs.StringVar(&g.tempDir, "temp", getEnvOrDefault("AUDIOMATCH_TEMP_DIR", os.TempDir()), "Directory for temporary transcoded files")
	fs.StringVar(&g.window, "window", getEnvOrDefault("AUDIOMATCH_WINDOW", "rectangular"), "Window applied before the FFT: rectangular, hamming or hann")
	fs.Float64Var(&g.threshold, "threshold", 0, "Score must be strictly above this to count as a match")
	fs.IntVar(&g.workers, "workers", 0, "Concurrent fingerprinting tasks (0 = number of CPUs)")
	fs.DurationVar(&g.timeout, "timeout", 2*time.Minute, "Per-file fingerprinting timeout (0 = none)")
	fs.IntVar(&g.rate, "rate", 0, "Sample rate for ffmpeg-transcoded inputs (0 = keep source rate)")
	fs.BoolVar(&g.quiet, "quiet", false, "Suppress log output")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitMatch
		}
		return exitError
	}
	if fs.NArg() < 1 {
		printUsage(stderr)
		return exitError
	}

	command, rest := fs.Arg(0), fs.Args()[1:]
	switch command {
	case "compare":
		return handleCompare(ctx, g, rest, stdout, stderr)
	case "history":
		return handleHistory(g, rest, stdout, stderr)
	case "show":
		return handleShow(g, rest, stdout, stderr)
	case "forget":
		return handleForget(g, rest, stdout, stderr)
	case "inspect":
		return handleInspect(ctx, g, rest, stdout, stderr)
	case "spectrogram":
		return handleSpectrogram(ctx, g, rest, stdout, stderr)
	case "help":
		printUsage(stdout)
		return exitMatch
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		printUsage(stderr)
		return exitError
	}
}

// createService builds a service from the global options. History is
// only opened when the command needs it.
func createService(g globalOptions, withHistory bool) (audiomatch.Service, error) {
	opts := []audiomatch.Option{
		audiomatch.WithTempDir(g.tempDir),
		audiomatch.WithWindow(g.window),
		audiomatch.WithScoreThreshold(g.threshold),
		audiomatch.WithTaskTimeout(g.timeout),
		audiomatch.WithTranscodeRate(g.rate),
	}
	if g.workers > 0 {
		opts = append(opts, audiomatch.WithWorkers(g.workers))
	}
	if g.quiet {
		opts = append(opts, audiomatch.WithLogger(logger.Discard()))
	}
	if !withHistory {
		return audiomatch.NewService(opts...)
	}

	hist, err := audiomatch.NewSQLiteHistory(g.dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	svc, err := audiomatch.NewService(append(opts, audiomatch.WithHistory(hist))...)
	if err != nil {
		hist.Close()
		return nil, err
	}
	return svc, nil
}

// parseInterspersed parses fs over args, allowing flags after positional
// arguments, and returns the positional arguments in order.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func handleCompare(ctx context.Context, g globalOptions, args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("compare", flag.ContinueOnError)
	cmd.SetOutput(stderr)
	debug := cmd.Bool("debug", false, "Print the raw (max offset count, shorter duration) pair")
	record := cmd.Bool("record", false, "Store the result in the history database")
	positional, err := parseInterspersed(cmd, args)
	if err != nil {
		return exitError
	}

	if len(positional) != 2 {
		fmt.Fprintln(stderr, "Usage: audiomatch compare <file_a> <file_b> [--debug] [--record]")
		return exitError
	}
	pathA, pathB := positional[0], positional[1]

	svc, err := createService(g, *record)
	if err != nil {
		red.Fprintf(stderr, "Failed to create service: %v\n", err)
		return exitError
	}
	defer svc.Close()

	var (
		res audiomatch.Result
		rec *audiomatch.Record
	)
	if *record {
		res, rec, err = svc.MatchAndRecord(ctx, pathA, pathB)
	} else {
		res, err = svc.Match(ctx, pathA, pathB)
	}
	if err != nil {
		red.Fprintf(stderr, "Comparison failed: %v\n", err)
		return exitError
	}

	if *debug {
		maxOffset, minDuration := res.Debug()
		fmt.Fprintf(stdout, "(%d, %g)\n", maxOffset, minDuration)
		faint.Fprintf(stdout, "chunks: %d / %d, shared fingerprints: %d, peak offset: %d (%.3fs)\n",
			res.ChunksA, res.ChunksB, res.SharedFingerprints, res.PeakOffset, res.PeakOffsetSeconds)
		faint.Fprintf(stdout, "offset histogram: %d pairs over %d offsets\n", res.HistogramPairs, res.HistogramOffsets)
	}

	if res.Matched() {
		green.Fprint(stdout, "MATCH")
	} else {
		red.Fprint(stdout, "NO MATCH")
	}
	fmt.Fprintf(stdout, " %s %s (score %.3f)\n", pathA, pathB, res.Score)

	if rec != nil {
		faint.Fprintf(stdout, "recorded as %s\n", rec.ID)
		if len(rec.Earlier) > 0 {
			yellow.Fprintf(stdout, "compared %d time(s) before:\n", len(rec.Earlier))
			for _, e := range rec.Earlier {
				fmt.Fprintf(stdout, "   %s  %s  score %.3f\n", e.ID, e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Score)
			}
		}
	}

	if !res.Matched() {
		return exitNoMatch
	}
	return exitMatch
}

func handleHistory(g globalOptions, args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("history", flag.ContinueOnError)
	cmd.SetOutput(stderr)
	limit := cmd.Int("limit", 20, "Maximum number of records to show")
	if err := cmd.Parse(args); err != nil {
		return exitError
	}

	svc, err := createService(g, true)
	if err != nil {
		red.Fprintf(stderr, "Failed to create service: %v\n", err)
		return exitError
	}
	defer svc.Close()

	records, err := svc.History(*limit)
	if err != nil {
		red.Fprintf(stderr, "Failed to read history: %v\n", err)
		return exitError
	}

	if len(records) == 0 {
		fmt.Fprintln(stdout, "No comparisons recorded")
		return exitMatch
	}

	for _, r := range records {
		printRecord(stdout, r)
	}

	total, err := svc.HistorySize()
	if err != nil {
		red.Fprintf(stderr, "Failed to count history: %v\n", err)
		return exitError
	}
	faint.Fprintf(stdout, "showing %d of %d\n", len(records), total)
	return exitMatch
}

func handleShow(g globalOptions, args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "Usage: audiomatch show <record_id>")
		return exitError
	}
	id := args[0]

	svc, err := createService(g, true)
	if err != nil {
		red.Fprintf(stderr, "Failed to create service: %v\n", err)
		return exitError
	}
	defer svc.Close()

	rec, err := svc.Lookup(id)
	if err != nil {
		if errors.Is(err, audiomatch.ErrRecordNotFound) {
			yellow.Fprintf(stderr, "No record with ID %s\n", id)
		} else {
			red.Fprintf(stderr, "Failed to read record: %v\n", err)
		}
		return exitError
	}

	printRecord(stdout, *rec)
	faint.Fprintf(stdout, "   %s (%s)\n   %s (%s)\n", rec.PathA, rec.DigestA, rec.PathB, rec.DigestB)
	faint.Fprintf(stdout, "   peak offset %d | threshold %g\n", rec.PeakOffset, rec.Threshold)
	return exitMatch
}

func printRecord(w io.Writer, r audiomatch.Record) {
	verdict := red.Sprint("no match")
	if r.Matched {
		verdict = green.Sprint("match")
	}
	fmt.Fprintf(w, "%s  %s  %s\n", r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"), verdict)
	fmt.Fprintf(w, "   %s\n   %s\n", r.LabelA, r.LabelB)
	faint.Fprintf(w, "   score %.3f | max offset %d | min duration %.2fs\n", r.Score, r.MaxOffset, r.MinDuration)
}

func handleForget(g globalOptions, args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "Usage: audiomatch forget <record_id>")
		return exitError
	}
	id := args[0]

	svc, err := createService(g, true)
	if err != nil {
		red.Fprintf(stderr, "Failed to create service: %v\n", err)
		return exitError
	}
	defer svc.Close()

	if err := svc.Forget(id); err != nil {
		if errors.Is(err, audiomatch.ErrRecordNotFound) {
			yellow.Fprintf(stderr, "No record with ID %s\n", id)
		} else {
			red.Fprintf(stderr, "Failed to delete record: %v\n", err)
		}
		return exitError
	}

	fmt.Fprintf(stdout, "Deleted %s\n", id)
	return exitMatch
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "audiomatch - compare two audio files by spectral fingerprint")
	fmt.Fprintln(w, "\nGlobal Options:")
	fmt.Fprintln(w, "  --db <path>         History database (env: AUDIOMATCH_DB_PATH, default: audiomatch.sqlite3)")
	fmt.Fprintln(w, "  --temp <dir>        Directory for transcoded files (env: AUDIOMATCH_TEMP_DIR)")
	fmt.Fprintln(w, "  --window <name>     rectangular, hamming or hann (env: AUDIOMATCH_WINDOW)")
	fmt.Fprintln(w, "  --threshold <n>     Match when score is above n (default: 0)")
	fmt.Fprintln(w, "  --workers <n>       Concurrent fingerprinting tasks")
	fmt.Fprintln(w, "  --timeout <d>       Per-file timeout, e.g. 30s (default: 2m)")
	fmt.Fprintln(w, "  --rate <hz>         Sample rate for ffmpeg-transcoded inputs")
	fmt.Fprintln(w, "  --quiet             Suppress log output")
	fmt.Fprintln(w, "\nUsage:")
	fmt.Fprintln(w, "  audiomatch [global-options] compare <file_a> <file_b> [--debug] [--record]")
	fmt.Fprintln(w, "  audiomatch [global-options] history [--limit <n>]")
	fmt.Fprintln(w, "  audiomatch [global-options] show <record_id>")
	fmt.Fprintln(w, "  audiomatch [global-options] forget <record_id>")
	fmt.Fprintln(w, "  audiomatch [global-options] inspect <file> [--top <n>]")
	fmt.Fprintln(w, "  audiomatch [global-options] spectrogram <file> [-o <out.png>] [--width <px>] [--height <bins>] [--log]")
	fmt.Fprintln(w, "\nExit status of compare: 0 match, 2 no match, 1 error")
}
