// Package convert runs one capture directory through the full pipeline:
// locate the inputs, parse and merge their metadata, then write the gcsv
// log, the lens profile and any requested diagnostics.
package convert

import (
	"context"
	"fmt"
	"time"

	"github.com/banshee-data/eis-convert/internal/db"
	"github.com/banshee-data/eis-convert/internal/eis"
	"github.com/banshee-data/eis-convert/internal/fsutil"
	"github.com/banshee-data/eis-convert/internal/gcsv"
	"github.com/banshee-data/eis-convert/internal/lensprofile"
	"github.com/banshee-data/eis-convert/internal/monitoring"
	"github.com/banshee-data/eis-convert/internal/report"
	"github.com/banshee-data/eis-convert/internal/security"
	"github.com/banshee-data/eis-convert/internal/timeutil"
	"github.com/banshee-data/eis-convert/internal/units"
)

// Output name suffixes appended to the capture's base name.
const (
	GcsvSuffix    = ".gcsv"
	ProfileSuffix = "_final_lens_profile.json"
)

// Options configures a Run. Only Dir is required.
type Options struct {
	Dir string

	FS          fsutil.FileSystem        // default OSFileSystem
	Calibration *lensprofile.Calibration // default embedded calibration
	Orientation string                   // default gcsv.DefaultOrientation
	Clock       timeutil.Clock           // default RealClock
	Unit        string                   // diagnostics unit, default rads

	// Optional diagnostics, written only when a path is set.
	PlotPath  string
	ChartPath string

	// Ledger, when set, receives one row per run, failed runs included.
	Ledger *db.DB
}

// Result describes what a successful Run produced.
type Result struct {
	RunID       string
	Inputs      eis.Inputs
	GcsvPath    string
	ProfilePath string
	PlotPath    string
	ChartPath   string
	Meta        eis.Metadata
	Stats       report.Stats
	Elapsed     time.Duration
}

func (o Options) withDefaults() Options {
	if o.FS == nil {
		o.FS = fsutil.OSFileSystem{}
	}
	if o.Calibration == nil {
		cal := lensprofile.DefaultCalibration()
		o.Calibration = &cal
	}
	if o.Orientation == "" {
		o.Orientation = gcsv.DefaultOrientation
	}
	if o.Clock == nil {
		o.Clock = timeutil.RealClock{}
	}
	if o.Unit == "" {
		o.Unit = units.RadPerSec
	}
	return o
}

// Validate checks the options before any file is touched.
func (o Options) Validate() error {
	if o.Dir == "" {
		return fmt.Errorf("capture directory is required")
	}
	if o.Orientation != "" {
		if err := gcsv.ValidateOrientation(o.Orientation); err != nil {
			return err
		}
	}
	if o.Unit != "" && !units.IsValid(o.Unit) {
		return fmt.Errorf("invalid unit %q (valid: %s)", o.Unit, units.GetValidUnitsString())
	}
	if o.Calibration != nil {
		if err := o.Calibration.Validate(); err != nil {
			return fmt.Errorf("invalid calibration: %w", err)
		}
	}
	return nil
}

// Run converts the capture in opts.Dir. Outputs are written in order and
// not rolled back: a failure while writing the lens profile leaves the gcsv
// in place. ctx is checked between stages.
func Run(ctx context.Context, opts Options) (_ *Result, err error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	log := monitoring.Named("convert")

	res := &Result{RunID: db.NewRunID()}
	started := opts.Clock.Now()
	if opts.Ledger != nil {
		defer func() {
			if rerr := recordRun(opts, res, started, err); rerr != nil {
				log.Warn().Err(rerr).Str("run_id", res.RunID).Msg("ledger write failed")
			}
		}()
	}

	in, err := eis.Locate(opts.FS, opts.Dir)
	if err != nil {
		return nil, err
	}
	res.Inputs = in
	log.Debug().Str("gyro_log", in.GyroLog).Str("base_log", in.BaseLog).Str("settings", in.Settings).Msg("inputs located")

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	gyro, err := eis.ParseGyroLogFile(opts.FS, in.GyroLog)
	if err != nil {
		return nil, err
	}
	log.Info().Int("samples", len(gyro.Samples)).Int("frames", gyro.Frames).
		Float64("rate_hz", gyro.SampleRate()).Msg("gyro log parsed")

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	aux, err := eis.ParseAuxiliary(opts.FS, in.BaseLog, in.Settings)
	if err != nil {
		return nil, err
	}
	res.Meta = eis.Merge(gyro.Meta, aux)

	res.Stats, err = report.Compute(gyro.Samples, opts.Unit)
	if err != nil {
		return nil, err
	}

	base := in.OutputBase()
	if res.GcsvPath, err = security.JoinWithin(in.Dir, base+GcsvSuffix); err != nil {
		return nil, err
	}
	if res.ProfilePath, err = security.JoinWithin(in.Dir, base+ProfileSuffix); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := gcsv.WriteFile(opts.FS, res.GcsvPath, gyro.Samples, res.Meta, opts.Orientation); err != nil {
		return nil, err
	}
	log.Info().Str("path", res.GcsvPath).Msg("gyro log written")

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	profile := lensprofile.Build(*opts.Calibration, res.Meta, opts.Clock)
	if err := lensprofile.WriteFile(opts.FS, res.ProfilePath, profile); err != nil {
		return nil, err
	}
	log.Info().Str("path", res.ProfilePath).Msg("lens profile written")

	if opts.PlotPath != "" {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := report.WritePlotFile(opts.FS, opts.PlotPath, gyro.Samples, opts.Unit, base); err != nil {
			return nil, err
		}
		res.PlotPath = opts.PlotPath
		log.Info().Str("path", res.PlotPath).Msg("plot written")
	}
	if opts.ChartPath != "" {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := report.WriteChartFile(opts.FS, opts.ChartPath, gyro.Samples, opts.Unit, base); err != nil {
			return nil, err
		}
		res.ChartPath = opts.ChartPath
		log.Info().Str("path", res.ChartPath).Msg("chart written")
	}

	res.Elapsed = opts.Clock.Since(started)
	log.Info().Str("run_id", res.RunID).Dur("elapsed", res.Elapsed).Msg("conversion complete")
	return res, nil
}

func recordRun(opts Options, res *Result, started time.Time, runErr error) error {
	r := &db.Run{
		ID:            res.RunID,
		StartedAt:     started,
		FinishedAt:    started.Add(opts.Clock.Since(started)),
		CaptureDir:    opts.Dir,
		GyroLog:       res.Inputs.GyroLog,
		GcsvPath:      res.GcsvPath,
		ProfilePath:   res.ProfilePath,
		Status:        db.StatusOK,
		SampleCount:   res.Stats.Samples,
		DurationSec:   res.Stats.DurationSec,
		RateHz:        res.Stats.RateHz,
		ShutterSkewNs: res.Meta.ShutterSkew,
		FocalLength:   res.Meta.FocalLength,
		FPS:           res.Meta.FPS,
		Orientation:   opts.Orientation,
		Calibration:   opts.Calibration.Name,
	}
	if runErr != nil {
		r.Status = db.StatusError
		r.Error = runErr.Error()
	}
	return opts.Ledger.RecordRun(r)
}
