package lensprofile

import (
	"bytes"
	"embed"
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/eis-convert/internal/fsutil"
)

//go:embed calibrations/*.yaml
var embeddedCalibrations embed.FS

// DefaultCalibrationFile is the embedded calibration used when none is
// supplied.
const DefaultCalibrationFile = "calibrations/rayneo_v3_imx681.yaml"

// Calibration is the fixed optical description of one camera and lens. It
// is a value type; arrays keep copies independent of the source.
type Calibration struct {
	Name              string        `yaml:"name"`
	Note              string        `yaml:"note"`
	CalibratedBy      string        `yaml:"calibrated_by"`
	CameraBrand       string        `yaml:"camera_brand"`
	CameraModel       string        `yaml:"camera_model"`
	LensModel         string        `yaml:"lens_model"`
	CalibratorVersion string        `yaml:"calibrator_version"`
	ReadoutDirection  string        `yaml:"frame_readout_direction"`
	NumImages         int           `yaml:"num_images"`
	RMSError          float64       `yaml:"rms_error"`
	CameraMatrix      [3][3]float64 `yaml:"camera_matrix"`
	DistortionCoeffs  [4]float64    `yaml:"distortion_coeffs"`
}

var readoutDirections = map[string]bool{
	"TopToBottom": true,
	"BottomToTop": true,
	"LeftToRight": true,
	"RightToLeft": true,
}

// Validate checks the fields the profile writer depends on.
func (c Calibration) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("calibration name is required")
	}
	if !readoutDirections[c.ReadoutDirection] {
		return fmt.Errorf("unknown frame_readout_direction %q", c.ReadoutDirection)
	}
	if c.NumImages < 0 {
		return fmt.Errorf("num_images must be non-negative, got %d", c.NumImages)
	}
	if c.CameraMatrix[2] != [3]float64{0, 0, 1} {
		return fmt.Errorf("camera_matrix last row must be [0, 0, 1], got %v", c.CameraMatrix[2])
	}
	return nil
}

// ParseCalibration decodes a YAML calibration document. Unknown keys are
// rejected.
func ParseCalibration(data []byte) (Calibration, error) {
	var c Calibration
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return Calibration{}, fmt.Errorf("failed to parse calibration YAML: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Calibration{}, fmt.Errorf("invalid calibration: %w", err)
	}
	return c, nil
}

// LoadCalibration reads a calibration file from fsys.
func LoadCalibration(fsys fsutil.FileSystem, path string) (Calibration, error) {
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
	default:
		return Calibration{}, fmt.Errorf("calibration file must be .yaml or .yml, got %q", ext)
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		return Calibration{}, fmt.Errorf("failed to read calibration file: %w", err)
	}
	return ParseCalibration(data)
}

// DefaultCalibration returns the embedded calibration. It panics if the
// embedded file is unreadable, which only a broken build can cause.
func DefaultCalibration() Calibration {
	data, err := embeddedCalibrations.ReadFile(DefaultCalibrationFile)
	if err != nil {
		panic("lensprofile: " + err.Error())
	}
	c, err := ParseCalibration(data)
	if err != nil {
		panic("lensprofile: " + err.Error())
	}
	return c
}
