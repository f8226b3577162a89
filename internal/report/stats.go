// Package report computes diagnostics over parsed gyro samples and renders
// them as a static PNG plot or an interactive HTML chart.
package report

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/eis-convert/internal/eis"
	"github.com/banshee-data/eis-convert/internal/units"
)

// AxisStats summarises one gyro axis in the report unit.
type AxisStats struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// Stats summarises a sample sequence. Intervals are in milliseconds.
type Stats struct {
	Samples      int       `json:"samples"`
	DurationSec  float64   `json:"duration_sec"`
	RateHz       float64   `json:"rate_hz"`
	IntervalMean float64   `json:"interval_mean_ms"`
	IntervalStd  float64   `json:"interval_std_ms"`
	IntervalMin  float64   `json:"interval_min_ms"`
	IntervalMax  float64   `json:"interval_max_ms"`
	Unit         string    `json:"unit"`
	X            AxisStats `json:"x"`
	Y            AxisStats `json:"y"`
	Z            AxisStats `json:"z"`
}

// Compute summarises samples, which must be sorted by timestamp. Axis
// values are converted to unit first.
func Compute(samples []eis.GyroSample, unit string) (Stats, error) {
	if !units.IsValid(unit) {
		return Stats{}, fmt.Errorf("invalid unit %q (valid: %s)", unit, units.GetValidUnitsString())
	}
	if len(samples) == 0 {
		return Stats{}, eis.ErrNoSampleData
	}

	s := Stats{Samples: len(samples), Unit: unit}
	s.DurationSec = units.NanosToSeconds(samples[len(samples)-1].TimestampNs - samples[0].TimestampNs)
	if s.DurationSec > 0 {
		s.RateHz = float64(len(samples)) / s.DurationSec
	}

	if len(samples) > 1 {
		intervals := make([]float64, len(samples)-1)
		for i := 1; i < len(samples); i++ {
			intervals[i-1] = units.NanosToMillis(samples[i].TimestampNs - samples[i-1].TimestampNs)
		}
		s.IntervalMean, s.IntervalStd = meanStd(intervals)
		s.IntervalMin = floats.Min(intervals)
		s.IntervalMax = floats.Max(intervals)
	}

	xs, ys, zs := Axes(samples, unit)
	s.X = axisStats(xs)
	s.Y = axisStats(ys)
	s.Z = axisStats(zs)
	return s, nil
}

// Axes splits samples into per-axis slices converted to unit.
func Axes(samples []eis.GyroSample, unit string) (xs, ys, zs []float64) {
	xs = make([]float64, len(samples))
	ys = make([]float64, len(samples))
	zs = make([]float64, len(samples))
	for i, s := range samples {
		xs[i] = units.ConvertAngularRate(s.Gx, unit)
		ys[i] = units.ConvertAngularRate(s.Gy, unit)
		zs[i] = units.ConvertAngularRate(s.Gz, unit)
	}
	return xs, ys, zs
}

func axisStats(v []float64) AxisStats {
	mean, std := meanStd(v)
	return AxisStats{Mean: mean, Std: std, Min: floats.Min(v), Max: floats.Max(v)}
}

// meanStd returns the mean and sample standard deviation. A single value
// has zero spread.
func meanStd(v []float64) (mean, std float64) {
	if len(v) == 1 {
		return v[0], 0
	}
	mean, std = stat.MeanStdDev(v, nil)
	if math.IsNaN(std) {
		std = 0
	}
	return mean, std
}

// MarshalZerologObject lets Stats be attached to a log event with
// Object("stats", s).
func (s Stats) MarshalZerologObject(e *zerolog.Event) {
	e.Int("samples", s.Samples).
		Float64("duration_sec", s.DurationSec).
		Float64("rate_hz", s.RateHz).
		Float64("interval_mean_ms", s.IntervalMean).
		Float64("interval_std_ms", s.IntervalStd).
		Float64("interval_min_ms", s.IntervalMin).
		Float64("interval_max_ms", s.IntervalMax).
		Str("unit", s.Unit).
		Object("x", s.X).
		Object("y", s.Y).
		Object("z", s.Z)
}

func (a AxisStats) MarshalZerologObject(e *zerolog.Event) {
	e.Float64("mean", a.Mean).Float64("std", a.Std).Float64("min", a.Min).Float64("max", a.Max)
}
