package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/banshee-data/eis-convert/internal/fsutil"
)

// Defaults applied when info.json omits a field.
const (
	DefaultFPS         = 29.97
	DefaultCalibWidth  = 2400
	DefaultCalibHeight = 1344
)

// maxSettingsSize caps info.json; real files are a few hundred bytes.
const maxSettingsSize = 1 * 1024 * 1024

// CaptureSettings is the recording-side info.json written next to the EIS
// logs. Every field is optional.
type CaptureSettings struct {
	FPS    *float64 `json:"fps,omitempty"`
	Width  *int     `json:"width,omitempty"`
	Height *int     `json:"height,omitempty"`
}

// LoadCaptureSettings reads and validates info.json from fsys.
func LoadCaptureSettings(fsys fsutil.FileSystem, path string) (*CaptureSettings, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); !strings.EqualFold(ext, ".json") {
		return nil, fmt.Errorf("settings file must have .json extension, got %q", ext)
	}

	info, err := fsys.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat settings file: %w", err)
	}
	if info.Size() > maxSettingsSize {
		return nil, fmt.Errorf("settings file too large: %d bytes (max %d)", info.Size(), maxSettingsSize)
	}

	data, err := fsys.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}
	return ParseCaptureSettings(data)
}

// ParseCaptureSettings decodes and validates an info.json document. The
// document must be a JSON object; unknown keys are ignored.
func ParseCaptureSettings(data []byte) (*CaptureSettings, error) {
	cfg := &CaptureSettings{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse settings JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}

// Validate checks that any values present are usable.
func (c *CaptureSettings) Validate() error {
	if c.FPS != nil && *c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %g", *c.FPS)
	}
	if c.Width != nil && *c.Width <= 0 {
		return fmt.Errorf("width must be positive, got %d", *c.Width)
	}
	if c.Height != nil && *c.Height <= 0 {
		return fmt.Errorf("height must be positive, got %d", *c.Height)
	}
	return nil
}

// GetFPS returns fps or the default.
func (c *CaptureSettings) GetFPS() float64 {
	if c.FPS == nil {
		return DefaultFPS
	}
	return *c.FPS
}

// GetWidth returns the calibration width or the default.
func (c *CaptureSettings) GetWidth() int {
	if c.Width == nil {
		return DefaultCalibWidth
	}
	return *c.Width
}

// GetHeight returns the calibration height or the default.
func (c *CaptureSettings) GetHeight() int {
	if c.Height == nil {
		return DefaultCalibHeight
	}
	return *c.Height
}
