package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/eis-convert/internal/eis"
	"github.com/banshee-data/eis-convert/internal/fsutil"
	"github.com/banshee-data/eis-convert/internal/units"
)

// steady returns n samples 5 ms apart with a constant rate on each axis.
func steady(n int) []eis.GyroSample {
	out := make([]eis.GyroSample, n)
	for i := range out {
		out[i] = eis.GyroSample{TimestampNs: int64(i) * 5_000_000, Gx: 0.5, Gy: -0.25, Gz: float64(i % 2)}
	}
	return out
}

func TestCompute(t *testing.T) {
	s, err := Compute(steady(201), units.RadPerSec)
	require.NoError(t, err)

	assert.Equal(t, 201, s.Samples)
	assert.InDelta(t, 1.0, s.DurationSec, 1e-12)
	assert.InDelta(t, 201.0, s.RateHz, 1e-9)
	assert.InDelta(t, 5.0, s.IntervalMean, 1e-12)
	assert.InDelta(t, 0.0, s.IntervalStd, 1e-12)
	assert.Equal(t, 5.0, s.IntervalMin)
	assert.Equal(t, 5.0, s.IntervalMax)

	assert.Equal(t, AxisStats{Mean: 0.5, Std: 0, Min: 0.5, Max: 0.5}, s.X)
	assert.Equal(t, -0.25, s.Y.Mean)
	assert.Equal(t, 0.0, s.Z.Min)
	assert.Equal(t, 1.0, s.Z.Max)
	assert.InDelta(t, 100.0/201.0, s.Z.Mean, 1e-12)
}

func TestCompute_Degrees(t *testing.T) {
	s, err := Compute([]eis.GyroSample{{Gx: math.Pi}}, units.DegPerSec)
	require.NoError(t, err)
	assert.InDelta(t, 180.0, s.X.Mean, 1e-9)
	assert.Equal(t, "degs", s.Unit)

	// One sample: no interval, no spread, no rate.
	assert.Zero(t, s.IntervalMean)
	assert.Zero(t, s.X.Std)
	assert.Zero(t, s.RateHz)
}

func TestCompute_Errors(t *testing.T) {
	_, err := Compute(nil, units.RadPerSec)
	assert.True(t, errors.Is(err, eis.ErrNoSampleData))

	_, err = Compute(steady(3), "rpm")
	assert.ErrorContains(t, err, "rads, degs")
}

func TestStats_ZerologObject(t *testing.T) {
	s, err := Compute(steady(3), units.RadPerSec)
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	logger.Info().Object("stats", s).Msg("gyro stats")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	stats := entry["stats"].(map[string]any)
	assert.Equal(t, 3.0, stats["samples"])
	assert.Equal(t, "rads", stats["unit"])
	assert.Equal(t, 0.5, stats["x"].(map[string]any)["mean"])
}

func TestChartStride(t *testing.T) {
	assert.Equal(t, 1, ChartStride(0))
	assert.Equal(t, 1, ChartStride(MaxChartPoints))
	assert.Equal(t, 2, ChartStride(MaxChartPoints+1))
	assert.Equal(t, 3, ChartStride(3*MaxChartPoints))
}

func TestWriteChart(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteChart(&buf, steady(12_000), units.DegPerSec, "EIS_0001"))

	html := buf.String()
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "EIS_0001")
	assert.Contains(t, html, "stride=3")
	for _, name := range []string{"gx", "gy", "gz"} {
		assert.Contains(t, html, `"`+name+`"`)
	}
}

func TestWriteChart_NoSamples(t *testing.T) {
	var buf bytes.Buffer
	assert.True(t, errors.Is(WriteChart(&buf, nil, units.RadPerSec, "x"), eis.ErrNoSampleData))
}

func TestWritePlotFile(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	mfs.Mkdir("/out")

	require.NoError(t, WritePlotFile(mfs, "/out/gyro.png", steady(50), units.RadPerSec, "gyro"))
	data, err := mfs.ReadFile("/out/gyro.png")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))

	require.NoError(t, WritePlotFile(mfs, "/out/gyro.svg", steady(50), units.RadPerSec, "gyro"))
	data, err = mfs.ReadFile("/out/gyro.svg")
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "<svg"))

	assert.Error(t, WritePlotFile(mfs, "/out/gyro", steady(5), units.RadPerSec, "gyro"))
	assert.Error(t, WritePlotFile(mfs, "/out/gyro.bmp", steady(5), units.RadPerSec, "gyro"))
}

func TestWriteChartFile(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	mfs.Mkdir("/out")

	require.NoError(t, WriteChartFile(mfs, "/out/gyro.html", steady(10), units.RadPerSec, "gyro"))
	assert.True(t, mfs.Exists("/out/gyro.html"))
	assert.Error(t, WriteChartFile(mfs, "/nodir/gyro.html", steady(10), units.RadPerSec, "gyro"))
}
