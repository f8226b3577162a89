package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/eis-convert/internal/eis"
	"github.com/banshee-data/eis-convert/internal/fsutil"
	"github.com/banshee-data/eis-convert/internal/units"
)

// MaxChartPoints caps the points per series; longer logs are decimated by
// a fixed stride.
const MaxChartPoints = 5000

// ChartStride returns the decimation stride for n samples.
func ChartStride(n int) int {
	if n <= MaxChartPoints {
		return 1
	}
	return (n + MaxChartPoints - 1) / MaxChartPoints
}

// NewChart builds an interactive line chart of the three gyro axes. X is
// milliseconds since the first sample.
func NewChart(samples []eis.GyroSample, unit, title string) (*charts.Line, error) {
	if len(samples) == 0 {
		return nil, eis.ErrNoSampleData
	}

	stride := ChartStride(len(samples))
	first := samples[0].TimestampNs
	xs, ys, zs := Axes(samples, unit)

	n := (len(samples) + stride - 1) / stride
	xAxis := make([]string, 0, n)
	series := [3][]opts.LineData{
		make([]opts.LineData, 0, n),
		make([]opts.LineData, 0, n),
		make([]opts.LineData, 0, n),
	}
	for i := 0; i < len(samples); i += stride {
		xAxis = append(xAxis, strconv.FormatFloat(units.NanosToMillis(samples[i].TimestampNs-first), 'f', 3, 64))
		series[0] = append(series[0], opts.LineData{Value: xs[i]})
		series[1] = append(series[1], opts.LineData{Value: ys[i]})
		series[2] = append(series[2], opts.LineData{Value: zs[i]})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "100%", Height: "640px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("samples=%d points=%d stride=%d", len(samples), len(xAxis), stride)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "t (ms)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: units.Label(unit), NameLocation: "middle", NameGap: 40}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}, opts.DataZoom{Type: "slider"}),
	)
	line.SetXAxis(xAxis)
	for i, name := range axisNames {
		line.AddSeries(name, series[i])
	}
	return line, nil
}

// WriteChart renders the chart page to w.
func WriteChart(w io.Writer, samples []eis.GyroSample, unit, title string) error {
	line, err := NewChart(samples, unit, title)
	if err != nil {
		return err
	}
	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// WriteChartFile writes the chart page to path on fsys.
func WriteChartFile(fsys fsutil.FileSystem, path string, samples []eis.GyroSample, unit, title string) (err error) {
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return WriteChart(f, samples, unit, title)
}
