package eis

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/banshee-data/eis-convert/internal/fsutil"
	"github.com/banshee-data/eis-convert/internal/units"
)

// LineKind is the classification of one gyro log line.
type LineKind int

const (
	LineOther LineKind = iota // ignored
	LineGyro                  // TimeStamp:<ns>,value:<x;y;z;...>,SensorType:4
	LineFrame                 // FrameIndex:<n>,TimeStamp:<ns>[,ShutterSkew:<ns>][,FocalLength:<f>]
)

func (k LineKind) String() string {
	switch k {
	case LineGyro:
		return "gyro"
	case LineFrame:
		return "frame"
	default:
		return "other"
	}
}

var (
	gyroLineRe    = regexp.MustCompile(`TimeStamp:(\d+),value:([^,]+),SensorType:4\b`)
	frameLineRe   = regexp.MustCompile(`FrameIndex:\d+,TimeStamp:(\d+)`)
	shutterSkewRe = regexp.MustCompile(`ShutterSkew:(\d+)`)
	focalLengthRe = regexp.MustCompile(`FocalLength:([\d.]+)`)
)

// maxLineBytes bounds a single log line.
const maxLineBytes = 1 << 20

// ClassifyLine reports the primary kind of a line. Gyro records take
// precedence; a gyro line may also carry a frame record, which IsFrameLine
// detects.
func ClassifyLine(line string) LineKind {
	switch {
	case gyroLineRe.MatchString(line):
		return LineGyro
	case frameLineRe.MatchString(line):
		return LineFrame
	default:
		return LineOther
	}
}

// IsFrameLine reports whether line holds a frame record, whatever else it
// carries.
func IsFrameLine(line string) bool {
	return frameLineRe.MatchString(line)
}

// ExtractGyroSample reads the timestamp and the first three value fields of
// a LineGyro line.
func ExtractGyroSample(line string) (GyroSample, error) {
	m := gyroLineRe.FindStringSubmatch(line)
	if m == nil {
		return GyroSample{}, fmt.Errorf("not a gyro record")
	}
	ts, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return GyroSample{}, fmt.Errorf("timestamp %q: %w", m[1], err)
	}

	fields := strings.Split(m[2], ";")
	if len(fields) < 3 {
		return GyroSample{}, fmt.Errorf("value field %q has %d components, need 3", m[2], len(fields))
	}
	var axes [3]float64
	for i := range axes {
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
		if err != nil {
			return GyroSample{}, fmt.Errorf("value component %d %q: %w", i, fields[i], err)
		}
		axes[i] = v
	}
	return GyroSample{TimestampNs: ts, Gx: axes[0], Gy: axes[1], Gz: axes[2]}, nil
}

// FrameFields is what a frame record may carry besides its index.
type FrameFields struct {
	ShutterSkew *int64
	FocalLength *float64
}

// ExtractFrameFields reads the optional ShutterSkew and FocalLength of a
// LineFrame line.
func ExtractFrameFields(line string) (FrameFields, error) {
	var ff FrameFields
	if m := shutterSkewRe.FindStringSubmatch(line); m != nil {
		v, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return ff, fmt.Errorf("shutter skew %q: %w", m[1], err)
		}
		ff.ShutterSkew = &v
	}
	if m := focalLengthRe.FindStringSubmatch(line); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return ff, fmt.Errorf("focal length %q: %w", m[1], err)
		}
		ff.FocalLength = &v
	}
	return ff, nil
}

// GyroLog is the parsed content of an eis_*_d.txt file.
type GyroLog struct {
	Samples []GyroSample // sorted by TimestampNs
	Meta    Metadata     // ShutterSkew and FocalLength only
	Lines   int
	Frames  int
}

// Duration returns the span between the first and last sample in seconds.
func (g GyroLog) Duration() float64 {
	if len(g.Samples) < 2 {
		return 0
	}
	return units.NanosToSeconds(g.Samples[len(g.Samples)-1].TimestampNs - g.Samples[0].TimestampNs)
}

// SampleRate estimates the gyro rate in Hz as count/duration, or 0 when the
// samples span no time.
func (g GyroLog) SampleRate() float64 {
	d := g.Duration()
	if d <= 0 {
		return 0
	}
	return float64(len(g.Samples)) / d
}

// ParseGyroLog scans r line by line. ShutterSkew and FocalLength are taken
// from the first frame record that carries each and never overwritten.
// name is used in error messages only.
func ParseGyroLog(r io.Reader, name string) (GyroLog, error) {
	var out GyroLog

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	for sc.Scan() {
		out.Lines++
		line := sc.Text()

		if !utf8.ValidString(line) {
			return GyroLog{}, malformed(name, out.Lines, fmt.Errorf("invalid UTF-8"))
		}

		if ClassifyLine(line) == LineGyro {
			s, err := ExtractGyroSample(line)
			if err != nil {
				return GyroLog{}, malformed(name, out.Lines, err)
			}
			out.Samples = append(out.Samples, s)
		}
		if !IsFrameLine(line) {
			continue
		}

		out.Frames++
		if out.Meta.ShutterSkew != nil && out.Meta.FocalLength != nil {
			continue
		}
		ff, err := ExtractFrameFields(line)
		if err != nil {
			return GyroLog{}, malformed(name, out.Lines, err)
		}
		if out.Meta.ShutterSkew == nil {
			out.Meta.ShutterSkew = ff.ShutterSkew
		}
		if out.Meta.FocalLength == nil {
			out.Meta.FocalLength = ff.FocalLength
		}
	}
	if err := sc.Err(); err != nil {
		return GyroLog{}, malformed(name, 0, err)
	}

	if len(out.Samples) == 0 {
		return GyroLog{}, fmt.Errorf("%s: %w", name, ErrNoSampleData)
	}

	sort.SliceStable(out.Samples, func(i, j int) bool {
		return out.Samples[i].TimestampNs < out.Samples[j].TimestampNs
	})
	return out, nil
}

// ParseGyroLogFile opens path on fsys and parses it. An unreadable file is
// malformed input.
func ParseGyroLogFile(fsys fsutil.FileSystem, path string) (GyroLog, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return GyroLog{}, malformed(path, 0, err)
	}
	defer f.Close()
	return ParseGyroLog(f, path)
}
