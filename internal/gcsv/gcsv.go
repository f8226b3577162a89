// Package gcsv reads and writes the Gyroflow IMU log text format.
//
// A document is a magic line, "key,value" header lines, the column header
// "t,gx,gy,gz" and one data row per sample, all CRLF terminated:
//
//	GYROFLOW IMU LOG
//	version,1.3
//	id,CustomEISLogger
//	orientation,YxZ
//	frame_readout_time,5.0000
//	gscale,1.0
//	tscale,0.001
//	t,gx,gy,gz
//	0.000,0.010000,-0.020000,0.005000
package gcsv

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/banshee-data/eis-convert/internal/eis"
	"github.com/banshee-data/eis-convert/internal/fsutil"
	"github.com/banshee-data/eis-convert/internal/units"
)

const (
	Magic              = "GYROFLOW IMU LOG"
	FormatVersion      = "1.3"
	LoggerID           = "CustomEISLogger"
	DefaultOrientation = "YxZ"
	ColumnHeader       = "t,gx,gy,gz"

	// Samples are written in rad/s, so no gyro scaling is needed.
	GyroScale = "1.0"
	// Rows carry milliseconds; the consumer multiplies by tscale to get
	// seconds.
	TimeScale = "0.001"

	eol = "\r\n"
)

// ValidateOrientation checks an axis-order label: three characters naming
// x, y and z once each, upper case meaning the axis is inverted.
func ValidateOrientation(s string) error {
	if len(s) != 3 {
		return fmt.Errorf("orientation %q must be 3 characters", s)
	}
	seen := map[byte]bool{}
	for i := 0; i < 3; i++ {
		c := s[i] | 0x20 // lower-case ASCII letters
		if c != 'x' && c != 'y' && c != 'z' {
			return fmt.Errorf("orientation %q: %q is not an axis", s, s[i])
		}
		if seen[c] {
			return fmt.Errorf("orientation %q repeats axis %q", s, c)
		}
		seen[c] = true
	}
	return nil
}

// Write emits samples, already sorted by timestamp, as a gcsv document.
// Row times are milliseconds since the first sample; gyro values are
// written unrotated. The frame_readout_time line is present only when meta
// carries a non-zero shutter skew.
func Write(w io.Writer, samples []eis.GyroSample, meta eis.Metadata, orientation string) error {
	if err := ValidateOrientation(orientation); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	line := func(s string) {
		bw.WriteString(s)
		bw.WriteString(eol)
	}

	line(Magic)
	line("version," + FormatVersion)
	line("id," + LoggerID)
	line("orientation," + orientation)
	if ms, ok := meta.FrameReadoutMillis(); ok && *meta.ShutterSkew != 0 {
		line("frame_readout_time," + ftoa(ms, 4))
	}
	line("gscale," + GyroScale)
	line("tscale," + TimeScale)
	line(ColumnHeader)

	if len(samples) > 0 {
		first := samples[0].TimestampNs
		var row []byte
		for _, s := range samples {
			row = row[:0]
			row = strconv.AppendFloat(row, units.NanosToMillis(s.TimestampNs-first), 'f', 3, 64)
			row = append(row, ',')
			row = strconv.AppendFloat(row, s.Gx, 'f', 6, 64)
			row = append(row, ',')
			row = strconv.AppendFloat(row, s.Gy, 'f', 6, 64)
			row = append(row, ',')
			row = strconv.AppendFloat(row, s.Gz, 'f', 6, 64)
			row = append(row, eol...)
			bw.Write(row)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write gcsv: %w", err)
	}
	return nil
}

// WriteFile writes a gcsv document to path on fsys.
func WriteFile(fsys fsutil.FileSystem, path string, samples []eis.GyroSample, meta eis.Metadata, orientation string) (err error) {
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return Write(f, samples, meta, orientation)
}

func ftoa(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}

// Header holds the key,value lines between the magic line and the column
// header, in file order.
type Header struct {
	Keys   []string
	Values map[string]string
}

// Get returns the value for key and whether it was present.
func (h Header) Get(key string) (string, bool) {
	v, ok := h.Values[key]
	return v, ok
}

// Row is one data line.
type Row struct {
	T, Gx, Gy, Gz float64
}

// Document is a parsed gcsv file.
type Document struct {
	Header Header
	Rows   []Row
}

// Read parses a gcsv document. Lines may end in CRLF or LF.
func Read(r io.Reader) (*Document, error) {
	sc := bufio.NewScanner(r)
	lineNo := 0
	next := func() (string, bool) {
		if !sc.Scan() {
			return "", false
		}
		lineNo++
		return strings.TrimRight(sc.Text(), "\r"), true
	}

	first, ok := next()
	if !ok || first != Magic {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read gcsv: %w", err)
		}
		return nil, fmt.Errorf("gcsv: missing %q magic line", Magic)
	}

	doc := &Document{Header: Header{Values: map[string]string{}}}
	inData := false
	for {
		text, ok := next()
		if !ok {
			break
		}
		if text == "" {
			continue
		}
		if !inData {
			if text == ColumnHeader {
				inData = true
				continue
			}
			key, value, found := strings.Cut(text, ",")
			if !found {
				return nil, fmt.Errorf("gcsv line %d: header %q has no value", lineNo, text)
			}
			doc.Header.Keys = append(doc.Header.Keys, key)
			doc.Header.Values[key] = value
			continue
		}

		fields := strings.Split(text, ",")
		if len(fields) != 4 {
			return nil, fmt.Errorf("gcsv line %d: expected 4 fields, got %d", lineNo, len(fields))
		}
		var vals [4]float64
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("gcsv line %d field %d: %w", lineNo, i+1, err)
			}
			vals[i] = v
		}
		doc.Rows = append(doc.Rows, Row{T: vals[0], Gx: vals[1], Gy: vals[2], Gz: vals[3]})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read gcsv: %w", err)
	}
	if !inData {
		return nil, fmt.Errorf("gcsv: missing %q column header", ColumnHeader)
	}
	return doc, nil
}
