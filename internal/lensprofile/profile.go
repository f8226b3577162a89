// Package lensprofile builds the Gyroflow lens-calibration JSON document
// from a Calibration and the metadata extracted from a capture.
package lensprofile

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/banshee-data/eis-convert/internal/config"
	"github.com/banshee-data/eis-convert/internal/eis"
	"github.com/banshee-data/eis-convert/internal/fsutil"
	"github.com/banshee-data/eis-convert/internal/timeutil"
)

// Dimension is a pixel size.
type Dimension struct {
	W int `json:"w"`
	H int `json:"h"`
}

// FisheyeParams is the distortion model block.
type FisheyeParams struct {
	RMSError              float64       `json:"RMS_error"`
	CameraMatrix          [3][3]float64 `json:"camera_matrix"`
	DistortionCoeffs      [4]float64    `json:"distortion_coeffs"`
	RadialDistortionLimit *float64      `json:"radial_distortion_limit"`
}

// Profile is the lens profile document. Field order is the key order of
// the written JSON. Fields typed any are placeholders the consumer expects
// to be present and null.
type Profile struct {
	Name                   string        `json:"name"`
	Note                   string        `json:"note"`
	CalibratedBy           string        `json:"calibrated_by"`
	CameraBrand            string        `json:"camera_brand"`
	CameraModel            string        `json:"camera_model"`
	LensModel              string        `json:"lens_model"`
	CameraSetting          string        `json:"camera_setting"`
	CalibDimension         Dimension     `json:"calib_dimension"`
	OrigDimension          Dimension     `json:"orig_dimension"`
	OutputDimension        Dimension     `json:"output_dimension"`
	FrameReadoutTime       float64       `json:"frame_readout_time"`
	FrameReadoutDirection  string        `json:"frame_readout_direction"`
	GyroLPF                any           `json:"gyro_lpf"`
	InputHorizontalStretch float64       `json:"input_horizontal_stretch"`
	InputVerticalStretch   float64       `json:"input_vertical_stretch"`
	NumImages              int           `json:"num_images"`
	FPS                    *float64      `json:"fps"`
	Crop                   any           `json:"crop"`
	Official               bool          `json:"official"`
	Asymmetrical           bool          `json:"asymmetrical"`
	FisheyeParams          FisheyeParams `json:"fisheye_params"`
	Identifier             string        `json:"identifier"`
	CalibratorVersion      string        `json:"calibrator_version"`
	Date                   string        `json:"date"`
	CompatibleSettings     []any         `json:"compatible_settings"`
	SyncSettings           any           `json:"sync_settings"`
	DistortionModel        any           `json:"distortion_model"`
	DigitalLens            any           `json:"digital_lens"`
	DigitalLensParams      any           `json:"digital_lens_params"`
	Interpolations         any           `json:"interpolations"`
	FocalLength            *float64      `json:"focal_length"`
	CropFactor             any           `json:"crop_factor"`
	GlobalShutter          bool          `json:"global_shutter"`
}

// Build combines cal with the capture metadata. Missing dimensions fall
// back to the default calibration resolution, a missing shutter skew to a
// zero readout time. fps and focal length stay null when absent.
func Build(cal Calibration, meta eis.Metadata, clock timeutil.Clock) Profile {
	calib := Dimension{
		W: intOr(meta.CalibWidth, config.DefaultCalibWidth),
		H: intOr(meta.CalibHeight, config.DefaultCalibHeight),
	}
	orig := Dimension{
		W: intOr(meta.ImageWidth, config.DefaultCalibWidth),
		H: intOr(meta.ImageHeight, config.DefaultCalibHeight),
	}
	readout, _ := meta.FrameReadoutMillis()

	return Profile{
		Name:                   cal.Name,
		Note:                   cal.Note,
		CalibratedBy:           cal.CalibratedBy,
		CameraBrand:            cal.CameraBrand,
		CameraModel:            cal.CameraModel,
		LensModel:              cal.LensModel,
		CalibDimension:         calib,
		OrigDimension:          orig,
		OutputDimension:        calib,
		FrameReadoutTime:       readout,
		FrameReadoutDirection:  cal.ReadoutDirection,
		InputHorizontalStretch: 1.0,
		InputVerticalStretch:   1.0,
		NumImages:              cal.NumImages,
		FPS:                    copyFloat(meta.FPS),
		FisheyeParams: FisheyeParams{
			RMSError:         cal.RMSError,
			CameraMatrix:     cal.CameraMatrix,
			DistortionCoeffs: cal.DistortionCoeffs,
		},
		CalibratorVersion:  cal.CalibratorVersion,
		Date:               timeutil.Date(clock),
		CompatibleSettings: []any{},
		FocalLength:        copyFloat(meta.FocalLength),
	}
}

// Write encodes p as 2-space indented JSON. Whole floats are written without
// a fraction, so 1.0 appears as 1.
func Write(w io.Writer, p Profile) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encode lens profile: %w", err)
	}
	return nil
}

// WriteFile writes p to path on fsys.
func WriteFile(fsys fsutil.FileSystem, path string, p Profile) (err error) {
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return Write(f, p)
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
