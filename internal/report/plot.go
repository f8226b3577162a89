package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/eis-convert/internal/eis"
	"github.com/banshee-data/eis-convert/internal/fsutil"
	"github.com/banshee-data/eis-convert/internal/units"
)

var axisNames = [3]string{"gx", "gy", "gz"}

// NewPlot builds a time-series plot of the three gyro axes. X is seconds
// since the first sample.
func NewPlot(samples []eis.GyroSample, unit, title string) (*plot.Plot, error) {
	if len(samples) == 0 {
		return nil, eis.ErrNoSampleData
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Angular rate (" + units.Label(unit) + ")"

	xs, ys, zs := Axes(samples, unit)
	first := samples[0].TimestampNs
	for i, vals := range [3][]float64{xs, ys, zs} {
		pts := make(plotter.XYs, len(samples))
		for j, s := range samples {
			pts[j].X = units.NanosToSeconds(s.TimestampNs - first)
			pts[j].Y = vals[j]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s line: %w", axisNames[i], err)
		}
		line.Width = vg.Points(1)
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(axisNames[i], line)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// WritePlot renders the plot to w. format is an image extension gonum/plot
// understands, such as "png" or "svg".
func WritePlot(w io.Writer, samples []eis.GyroSample, unit, title, format string) error {
	p, err := NewPlot(samples, unit, title)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(14*vg.Inch, 6*vg.Inch, format)
	if err != nil {
		return fmt.Errorf("failed to prepare %s plot: %w", format, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write plot: %w", err)
	}
	return nil
}

// WritePlotFile writes the plot to path on fsys, taking the image format
// from the file extension.
func WritePlotFile(fsys fsutil.FileSystem, path string, samples []eis.GyroSample, unit, title string) (err error) {
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if format == "" {
		return fmt.Errorf("plot path %q has no image extension", path)
	}

	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return WritePlot(f, samples, unit, title, format)
}
