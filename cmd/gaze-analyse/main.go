// Command gaze-analyse analyses a recorded eye-tracking CSV and reports the
// recommended base alignment, detected events and summary statistics.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/banshee-data/gaze.report/internal/config"
	"github.com/banshee-data/gaze.report/internal/db"
	"github.com/banshee-data/gaze.report/internal/fsutil"
	"github.com/banshee-data/gaze.report/internal/gaze/l1samples"
	"github.com/banshee-data/gaze.report/internal/gaze/pipeline"
	"github.com/banshee-data/gaze.report/internal/gaze/report"
	"github.com/banshee-data/gaze.report/internal/gaze/storage/sqlite"
	"github.com/banshee-data/gaze.report/internal/monitoring"
	"github.com/banshee-data/gaze.report/internal/units"
	"github.com/banshee-data/gaze.report/internal/version"
)

// Config holds the command-line options.
type Config struct {
	InputCSV   string
	ConfigPath string
	OutputDir  string
	HTMLPath   string
	JSONPath   string
	DBPath     string
	Units      string
	Verbose    bool
	Trace      bool
	Version    bool
}

// errUsage marks bad invocations; the flag package has already printed why.
var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr, fsutil.OSFileSystem{}))
}

func parseFlags(args []string, stderr io.Writer) (Config, error) {
	cfg := Config{}

	fs := flag.NewFlagSet("gaze-analyse", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.ConfigPath, "config", "config.json", "Path to the analysis configuration (JSON, YAML or INI)")
	fs.StringVar(&cfg.OutputDir, "output", "", "Directory for PNG plots (skipped when empty)")
	fs.StringVar(&cfg.HTMLPath, "html", "", "Write an interactive HTML report to this path")
	fs.StringVar(&cfg.JSONPath, "json", "", "Write the JSON export to this path (- for stdout)")
	fs.StringVar(&cfg.DBPath, "db", "", "Store the run in this SQLite database")
	fs.StringVar(&cfg.Units, "units", units.DEG, "Angle units for the console report: "+units.GetValidUnitsString())
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Log one diagnostic line per pipeline stage")
	fs.BoolVar(&cfg.Trace, "trace", false, "Log per-sample pipeline detail (implies -verbose)")
	fs.BoolVar(&cfg.Version, "version", false, "Print version information and exit")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: gaze-analyse [flags] <samples.csv>\n\nFlags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return cfg, errUsage
	}
	if cfg.Version {
		return cfg, nil
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return cfg, errUsage
	}
	cfg.InputCSV = fs.Arg(0)

	if !units.IsValid(cfg.Units) {
		return cfg, fmt.Errorf("invalid units %q, must be one of: %s", cfg.Units, units.GetValidUnitsString())
	}
	return cfg, nil
}

// run executes one analysis and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, fsys fsutil.FileSystem) int {
	logger := log.New(stderr, "", log.LstdFlags)
	monitoring.SetLogger(logger.Printf)

	cfg, err := parseFlags(args, stderr)
	if errors.Is(err, errUsage) {
		return 2
	}
	if err != nil {
		logger.Printf("Error: %v", err)
		return 2
	}
	if cfg.Version {
		fmt.Fprintf(stdout, "gaze-analyse %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return 0
	}

	var diag, trace io.Writer
	if cfg.Verbose || cfg.Trace {
		diag = stderr
	}
	if cfg.Trace {
		trace = stderr
	}
	pipeline.SetLogWriters(stderr, diag, trace)

	analysisCfg, err := config.LoadOrDefault(fsys, cfg.ConfigPath)
	if err != nil {
		logger.Printf("Error: %v", err)
		return 1
	}

	samples, err := l1samples.LoadCSV(fsys, cfg.InputCSV)
	if err != nil {
		logger.Printf("Error: %v", err)
		return 1
	}

	res, err := pipeline.Run(ctx, samples, pipeline.ConfigFromAnalysis(analysisCfg))
	if err != nil {
		logger.Printf("Error: %v", err)
		return 1
	}

	text := report.TextOptions{Units: cfg.Units, DegreesPerDiopter: analysisCfg.GetDiopterToDegreeConversion()}
	if err := report.WriteText(stdout, res, text); err != nil {
		logger.Printf("Error: write report: %v", err)
		return 1
	}

	// Output files are best effort once the console report is out.
	status := 0
	if err := writeOutputs(cfg, fsys, stdout, res, logger); err != nil {
		logger.Printf("Warning: %v", err)
		status = 1
	}

	if cfg.DBPath != "" {
		runID, err := storeRun(cfg, res, analysisCfg)
		if err != nil {
			logger.Printf("Warning: failed to store run: %v", err)
			status = 1
		} else {
			logger.Printf("Stored run %s in %s", runID, cfg.DBPath)
		}
	}
	return status
}

func writeOutputs(cfg Config, fsys fsutil.FileSystem, stdout io.Writer, res *pipeline.Result, logger *log.Logger) error {
	var errs []error

	if cfg.OutputDir != "" {
		paths, err := report.PlotPNG(fsys, cfg.OutputDir, res)
		if err != nil {
			errs = append(errs, fmt.Errorf("plots: %w", err))
		}
		for _, p := range paths {
			logger.Printf("Saved plot: %s", p)
		}
	}

	if cfg.HTMLPath != "" {
		if err := writeFile(fsys, cfg.HTMLPath, func(w io.Writer) error { return report.RenderHTML(w, res) }); err != nil {
			errs = append(errs, fmt.Errorf("html report: %w", err))
		} else {
			logger.Printf("HTML report written to: %s", cfg.HTMLPath)
		}
	}

	switch cfg.JSONPath {
	case "":
	case "-":
		if err := report.WriteJSON(stdout, res); err != nil {
			errs = append(errs, fmt.Errorf("json export: %w", err))
		}
	default:
		if err := writeFile(fsys, cfg.JSONPath, func(w io.Writer) error { return report.WriteJSON(w, res) }); err != nil {
			errs = append(errs, fmt.Errorf("json export: %w", err))
		} else {
			logger.Printf("Results exported to: %s", cfg.JSONPath)
		}
	}

	return errors.Join(errs...)
}

func writeFile(fsys fsutil.FileSystem, path string, render func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := fsys.Create(path)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func storeRun(cfg Config, res *pipeline.Result, analysisCfg *config.AnalysisConfig) (string, error) {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return "", err
	}
	defer database.Close()

	store := sqlite.NewAnalysisRunStore(database.DB, nil)
	return store.SaveResult(cfg.InputCSV, res, analysisCfg)
}
