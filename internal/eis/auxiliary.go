package eis

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"unicode/utf8"

	"github.com/banshee-data/eis-convert/internal/config"
	"github.com/banshee-data/eis-convert/internal/fsutil"
)

var (
	physicalSizeRe = regexp.MustCompile(`PhysicalSize:\[([\d.]+)-([\d.]+)\]`)
	pixelArrayRe   = regexp.MustCompile(`PixelArraySize:\[(\d+)-(\d+)\]`)
)

// ParseBaseLog searches the whole of r, which must be valid UTF-8, for the sensor's physical size and
// pixel array size. Either pattern may be absent, which leaves the
// corresponding fields nil.
func ParseBaseLog(r io.Reader, name string) (Metadata, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Metadata{}, malformed(name, 0, err)
	}
	if !utf8.Valid(data) {
		return Metadata{}, malformed(name, 0, fmt.Errorf("invalid UTF-8"))
	}
	content := string(data)

	var meta Metadata
	if m := physicalSizeRe.FindStringSubmatch(content); m != nil {
		w, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return Metadata{}, malformed(name, 0, fmt.Errorf("physical width %q: %w", m[1], err))
		}
		h, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return Metadata{}, malformed(name, 0, fmt.Errorf("physical height %q: %w", m[2], err))
		}
		meta.SensorWidth, meta.SensorHeight = ptrFloat64(w), ptrFloat64(h)
	}
	if m := pixelArrayRe.FindStringSubmatch(content); m != nil {
		w, err := strconv.Atoi(m[1])
		if err != nil {
			return Metadata{}, malformed(name, 0, fmt.Errorf("pixel array width %q: %w", m[1], err))
		}
		h, err := strconv.Atoi(m[2])
		if err != nil {
			return Metadata{}, malformed(name, 0, fmt.Errorf("pixel array height %q: %w", m[2], err))
		}
		meta.ImageWidth, meta.ImageHeight = ptrInt(w), ptrInt(h)
	}
	return meta, nil
}

// SettingsMetadata turns capture settings into a metadata fragment with the
// defaults applied, so FPS, CalibWidth and CalibHeight are always set.
func SettingsMetadata(s *config.CaptureSettings) Metadata {
	return Metadata{
		FPS:         ptrFloat64(s.GetFPS()),
		CalibWidth:  ptrInt(s.GetWidth()),
		CalibHeight: ptrInt(s.GetHeight()),
	}
}

// ParseAuxiliary reads the base log and info.json and merges them, the
// settings taking precedence.
func ParseAuxiliary(fsys fsutil.FileSystem, basePath, settingsPath string) (Metadata, error) {
	f, err := fsys.Open(basePath)
	if err != nil {
		return Metadata{}, malformed(basePath, 0, err)
	}
	defer f.Close()

	base, err := ParseBaseLog(f, basePath)
	if err != nil {
		return Metadata{}, err
	}

	settings, err := config.LoadCaptureSettings(fsys, settingsPath)
	if err != nil {
		return Metadata{}, malformed(settingsPath, 0, err)
	}
	return Merge(base, SettingsMetadata(settings)), nil
}
