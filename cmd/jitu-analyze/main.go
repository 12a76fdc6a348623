package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"jitu/internal/analytics"
	"jitu/internal/config"
	"jitu/internal/dataprocessing"
	"jitu/internal/exporter"
	"jitu/internal/infrastructure"
	"jitu/internal/mapping"
	"jitu/internal/services"
	"jitu/internal/validation"
	"jitu/pkg/contracts"
	"jitu/pkg/contracts/domain"
)

// Exit codes
const (
	exitOK       = 0
	exitFailure  = 1
	exitUsage    = 2
	exitRejected = 3
)

// cliOptions holds the parsed command line
type cliOptions struct {
	file        string
	configPath  string
	outDir      string
	workbook    bool
	mappingJSON string
	logLevel    string
	compact     bool
	version     bool

	// overrides, applied only when named in set
	granularity    string
	inactivityDays int
	paretoTarget   float64
	topN           int

	// set holds the names of flags given on the command line
	set map[string]bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one analysis and returns the process exit code. The JSON
// result goes to stdout; logs go to stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	if opts.version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return exitOK
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "configuration error: %v\n", err)
		return exitUsage
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	// console logs go to stderr so stdout carries only the result
	logger, err := infrastructure.NewLogger(cfg.Logging, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "logger error: %v\n", err)
		return exitFailure
	}
	defer infrastructure.CloseLogFile()
	ctx = infrastructure.EnsureTraceID(ctx)

	analysisOpts, err := buildOptions(cfg.Analysis.Options(), opts)
	if err != nil {
		logger.Error("invalid analysis options", slog.String("error", err.Error()))
		return exitUsage
	}

	var explicit domain.ColumnMapping
	if opts.mappingJSON != "" {
		if err := json.Unmarshal([]byte(opts.mappingJSON), &explicit); err != nil {
			logger.Error("invalid -mapping value", slog.String("error", err.Error()))
			return exitUsage
		}
	}

	files := validation.NewFileValidator(cfg.Ingest.MaxUploadBytes, logger)
	if err := files.ValidateInputFile(opts.file); err != nil {
		logger.Error("invalid input file", slog.String("error", err.Error()))
		if errors.Is(err, validation.ErrInputRejected) {
			return exitRejected
		}
		return exitFailure
	}
	if opts.outDir != "" {
		if err := files.ValidateOutputDirectory(opts.outDir); err != nil {
			logger.Error("invalid output directory", slog.String("error", err.Error()))
			return exitFailure
		}
	}

	svc, err := services.NewAnalysisService(cfg, nil, nil, logger)
	if err != nil {
		logger.Error("failed to initialize analysis service", slog.String("error", err.Error()))
		return exitFailure
	}

	result, err := analyzeFile(ctx, svc, opts.file, services.AnalysisRequest{
		Mapping: explicit,
		Options: &analysisOpts,
	})
	if err != nil {
		logger.Error("analysis failed",
			slog.String("file", opts.file),
			slog.String("error", err.Error()))
		if isRejection(err) {
			return exitRejected
		}
		return exitFailure
	}

	enc := json.NewEncoder(stdout)
	if !opts.compact {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result); err != nil {
		logger.Error("failed to write result", slog.String("error", err.Error()))
		return exitFailure
	}

	if opts.outDir != "" {
		paths, err := exporter.NewReportExporter(opts.outDir, opts.workbook, logger).
			Export(ctx, result.Metrics, result.Report)
		if err != nil {
			logger.Error("export failed",
				slog.String("dir", opts.outDir),
				slog.String("error", err.Error()))
			return exitFailure
		}
		logger.Info("tables written",
			slog.String("dir", opts.outDir),
			slog.Int("files", len(paths)))
	}
	return exitOK
}

func parseFlags(args []string, stderr io.Writer) (cliOptions, error) {
	opts := cliOptions{set: map[string]bool{}}
	fs := flag.NewFlagSet("jitu-analyze", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: jitu-analyze [flags] <file.csv|file.xlsx>\n\n")
		fs.PrintDefaults()
	}

	fs.StringVar(&opts.file, "file", "", "transaction file to analyze (.csv or .xlsx); may also be given as the first argument")
	fs.StringVar(&opts.configPath, "config", "", "path to a YAML configuration file")
	fs.StringVar(&opts.outDir, "out", "", "directory to write CSV result tables to")
	fs.BoolVar(&opts.workbook, "xlsx", false, "also write a report.xlsx workbook to -out")
	fs.StringVar(&opts.mappingJSON, "mapping", "", `explicit column mapping as JSON, e.g. {"date":"Tanggal","product":"Produk","price":"Harga"}`)
	fs.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	fs.BoolVar(&opts.compact, "compact", false, "write the result as a single JSON line")
	fs.BoolVar(&opts.version, "version", false, "print version information and exit")
	fs.StringVar(&opts.granularity, "granularity", "", "trend granularity: daily, weekly or monthly")
	fs.IntVar(&opts.inactivityDays, "inactivity-days", 0, "slow-mover threshold in days (default from configuration)")
	fs.Float64Var(&opts.paretoTarget, "pareto-target", 0, "cumulative revenue share for the Pareto prefix, in (0, 1] (default from configuration)")
	fs.IntVar(&opts.topN, "top-n", 0, "length of the best-seller lists; 0 keeps every product (default from configuration)")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	if opts.version {
		return opts, nil
	}
	if opts.file == "" && fs.NArg() > 0 {
		opts.file = fs.Arg(0)
	}
	if opts.file == "" {
		fs.Usage()
		return opts, errors.New("a transaction file is required")
	}
	if opts.workbook && opts.outDir == "" {
		return opts, errors.New("-xlsx requires -out")
	}
	return opts, nil
}

// buildOptions applies the flags given on the command line to the configured
// options. Out-of-range values are rejected, never replaced by defaults.
func buildOptions(base analytics.Options, opts cliOptions) (analytics.Options, error) {
	if opts.set["granularity"] {
		g, err := domain.ParseGranularity(opts.granularity)
		if err != nil {
			return base, err
		}
		base.Granularity = g
	}
	if opts.set["inactivity-days"] {
		base.InactivityDays = opts.inactivityDays
	}
	if opts.set["pareto-target"] {
		base.ParetoTarget = opts.paretoTarget
	}
	if opts.set["top-n"] {
		base.TopN = opts.topN
	}
	return base, base.Validate()
}

func analyzeFile(ctx context.Context, svc *services.AnalysisService, path string, req services.AnalysisRequest) (*services.AnalysisResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	table, err := svc.Load(ctx, f, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	req.Table = table
	return svc.Analyze(ctx, req)
}

// isRejection reports errors caused by the input rather than the program
func isRejection(err error) bool {
	for _, target := range []error{
		mapping.ErrIncompleteMapping,
		mapping.ErrInvalidMapping,
		dataprocessing.ErrUnsupportedFormat,
		dataprocessing.ErrNoData,
		services.ErrInvalidInput,
		services.ErrNoColumns,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
