// Command eis-convert turns a camera capture directory holding EIS logs
// into a Gyroflow gcsv gyro log and a lens profile.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/banshee-data/eis-convert/internal/convert"
	"github.com/banshee-data/eis-convert/internal/db"
	"github.com/banshee-data/eis-convert/internal/eis"
	"github.com/banshee-data/eis-convert/internal/fsutil"
	"github.com/banshee-data/eis-convert/internal/gcsv"
	"github.com/banshee-data/eis-convert/internal/lensprofile"
	"github.com/banshee-data/eis-convert/internal/monitoring"
	"github.com/banshee-data/eis-convert/internal/security"
	"github.com/banshee-data/eis-convert/internal/units"
	"github.com/banshee-data/eis-convert/internal/version"
)

// Exit codes.
const (
	exitOK = iota
	exitError
	exitUsage
	exitMissingFiles
	exitNoSamples
	exitMalformed
)

// errUsage marks command-line mistakes.
var errUsage = errors.New("usage error")

type config struct {
	dir         string
	calibration string
	orientation string
	unit        string
	report      bool
	plot        string
	chart       string
	ledger      string
	history     int
	logLevel    string
	logFormat   string
	showVersion bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func parseFlags(args []string, stderr io.Writer) (config, error) {
	env := monitoring.OptionsFromEnv()

	var cfg config
	fs := flag.NewFlagSet("eis-convert", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.calibration, "calibration", "", "Lens calibration YAML (default: embedded RayNeo V3 IMX681)")
	fs.StringVar(&cfg.orientation, "orientation", gcsv.DefaultOrientation, "Axis-order label written to the gcsv header")
	fs.StringVar(&cfg.unit, "units", units.RadPerSec, "Angular rate unit for diagnostics ("+units.GetValidUnitsString()+")")
	fs.BoolVar(&cfg.report, "report", false, "Log gyro sample statistics")
	fs.StringVar(&cfg.plot, "plot", "", "Write a plot of the gyro axes (.png, .svg, .pdf)")
	fs.StringVar(&cfg.chart, "chart", "", "Write an interactive HTML chart of the gyro axes")
	fs.StringVar(&cfg.ledger, "ledger", "", "Record the run in this sqlite database")
	fs.IntVar(&cfg.history, "history", 0, "Print the last N runs from -ledger and exit")
	fs.StringVar(&cfg.logLevel, "log-level", env.Level, "Log level: trace, debug, info, warn, error, off")
	fs.StringVar(&cfg.logFormat, "log-format", env.Format, "Log format: console or json")
	fs.BoolVar(&cfg.showVersion, "version", false, "Print version and exit")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: eis-convert [flags] <capture directory>\n\nFlags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return cfg, err
		}
		return cfg, fmt.Errorf("%w: %v", errUsage, err)
	}
	if cfg.showVersion {
		return cfg, nil
	}

	if cfg.history > 0 {
		if cfg.ledger == "" {
			return cfg, fmt.Errorf("%w: -history requires -ledger", errUsage)
		}
		if fs.NArg() != 0 {
			return cfg, fmt.Errorf("%w: -history takes no directory", errUsage)
		}
		return cfg, nil
	}
	if cfg.history < 0 {
		return cfg, fmt.Errorf("%w: -history must be positive", errUsage)
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return cfg, fmt.Errorf("%w: expected exactly one capture directory, got %d arguments", errUsage, fs.NArg())
	}
	cfg.dir = fs.Arg(0)

	if err := gcsv.ValidateOrientation(cfg.orientation); err != nil {
		return cfg, fmt.Errorf("%w: %v", errUsage, err)
	}
	if !units.IsValid(cfg.unit) {
		return cfg, fmt.Errorf("%w: invalid -units %q (valid: %s)", errUsage, cfg.unit, units.GetValidUnitsString())
	}
	return cfg, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	monitoring.Init(monitoring.Options{Level: cfg.logLevel, Format: cfg.logFormat, Writer: stderr})
	log := monitoring.Logger()
	if err != nil {
		log.Error().Err(err).Msg("invalid arguments")
		return exitUsage
	}

	if cfg.showVersion {
		fmt.Fprintln(stdout, version.String())
		return exitOK
	}
	if cfg.history > 0 {
		if err := printHistory(stdout, cfg.ledger, cfg.history); err != nil {
			log.Error().Err(err).Msg("history failed")
			return exitError
		}
		return exitOK
	}

	opts, cleanup, err := buildOptions(cfg)
	defer cleanup()
	if err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return exitCode(err)
	}

	res, err := convert.Run(ctx, opts)
	if err != nil {
		log.Error().Err(err).Str("dir", cfg.dir).Msg("conversion failed")
		return exitCode(err)
	}

	if cfg.report {
		log.Info().Object("stats", res.Stats).Msg("gyro statistics")
	}
	log.Info().Str("run_id", res.RunID).Str("gcsv", res.GcsvPath).Str("lens_profile", res.ProfilePath).Msg("conversion complete")
	return exitOK
}

// buildOptions resolves flags into convert options. cleanup is always safe
// to call.
func buildOptions(cfg config) (convert.Options, func(), error) {
	cleanup := func() {}
	fsys := fsutil.OSFileSystem{}
	opts := convert.Options{
		Dir:         cfg.dir,
		FS:          fsys,
		Orientation: cfg.orientation,
		Unit:        cfg.unit,
	}

	if cfg.calibration != "" {
		cal, err := lensprofile.LoadCalibration(fsys, cfg.calibration)
		if err != nil {
			return opts, cleanup, fmt.Errorf("%w: %v", errUsage, err)
		}
		opts.Calibration = &cal
	}

	for _, p := range []struct {
		flag string
		path string
		dst  *string
	}{
		{"plot", cfg.plot, &opts.PlotPath},
		{"chart", cfg.chart, &opts.ChartPath},
	} {
		if p.path == "" {
			continue
		}
		if err := security.ValidateArtifactPath(p.path, cfg.dir); err != nil {
			return opts, cleanup, fmt.Errorf("%w: -%s: %v", errUsage, p.flag, err)
		}
		*p.dst = filepath.Clean(p.path)
	}

	if cfg.ledger != "" {
		ledger, err := db.Open(cfg.ledger)
		if err != nil {
			return opts, cleanup, err
		}
		opts.Ledger = ledger
		cleanup = func() { ledger.Close() }
	}
	return opts, cleanup, nil
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	var missing *eis.MissingFileError
	var malformed *eis.MalformedInputError
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUsage):
		return exitUsage
	case errors.As(err, &missing):
		return exitMissingFiles
	case errors.Is(err, eis.ErrNoSampleData):
		return exitNoSamples
	case errors.As(err, &malformed):
		return exitMalformed
	default:
		return exitError
	}
}

func printHistory(w io.Writer, path string, limit int) error {
	ledger, err := db.Open(path)
	if err != nil {
		return err
	}
	defer ledger.Close()

	runs, err := ledger.RecentRuns(limit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tRUN\tSTATUS\tSAMPLES\tRATE_HZ\tDIR\tERROR")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.1f\t%s\t%s\n",
			r.StartedAt.Local().Format(time.DateTime), r.ID, r.Status, r.SampleCount, r.RateHz, r.CaptureDir, r.Error)
	}
	return tw.Flush()
}
