package lensprofile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/eis-convert/internal/fsutil"
)

const minimalCalibration = `
name: test-lens
frame_readout_direction: LeftToRight
num_images: 3
rms_error: 0.5
camera_matrix:
  - [1000, 0, 960]
  - [0, 1000, 540]
  - [0, 0, 1]
distortion_coeffs: [0.1, 0.2, 0.3, 0.4]
`

func TestDefaultCalibration(t *testing.T) {
	c := DefaultCalibration()
	assert.Equal(t, "RayNeo", c.CameraBrand)
	assert.Equal(t, "V3", c.CameraModel)
	assert.Equal(t, "IMX681", c.LensModel)
	assert.Equal(t, "1.6.1", c.CalibratorVersion)
	assert.Equal(t, 1146.6817864492118, c.CameraMatrix[0][0])
	assert.Equal(t, 683.1106735346044, c.CameraMatrix[1][2])
	assert.Equal(t, [4]float64{0.25042637237421467, 0.561834527611872, -1.4730620460566122, 1.835199944737525}, c.DistortionCoeffs)
}

func TestDefaultCalibration_IsACopy(t *testing.T) {
	c := DefaultCalibration()
	c.CameraMatrix[0][0] = 1
	assert.NotEqual(t, 1.0, DefaultCalibration().CameraMatrix[0][0])
}

func TestParseCalibration(t *testing.T) {
	c, err := ParseCalibration([]byte(minimalCalibration))
	require.NoError(t, err)
	assert.Equal(t, "test-lens", c.Name)
	assert.Equal(t, 960.0, c.CameraMatrix[0][2])
}

func TestParseCalibration_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown key", minimalCalibration + "lense_model: typo\n", "parse"},
		{"no name", "frame_readout_direction: TopToBottom\ncamera_matrix: [[1,0,0],[0,1,0],[0,0,1]]\n", "name is required"},
		{"bad direction", "name: x\nframe_readout_direction: Sideways\ncamera_matrix: [[1,0,0],[0,1,0],[0,0,1]]\n", "frame_readout_direction"},
		{"bad matrix", "name: x\nframe_readout_direction: TopToBottom\ncamera_matrix: [[1,0,0],[0,1,0],[0,1,1]]\n", "last row"},
		{"negative images", "name: x\nframe_readout_direction: TopToBottom\nnum_images: -1\ncamera_matrix: [[1,0,0],[0,1,0],[0,0,1]]\n", "num_images"},
		{"not yaml", "name: [", "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCalibration([]byte(tt.yaml))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoadCalibration(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, mfs.WriteFile("/cal/lens.yml", []byte(minimalCalibration), 0644))
	require.NoError(t, mfs.WriteFile("/cal/lens.json", []byte(`{}`), 0644))

	c, err := LoadCalibration(mfs, "/cal/lens.yml")
	require.NoError(t, err)
	assert.Equal(t, "LeftToRight", c.ReadoutDirection)

	_, err = LoadCalibration(mfs, "/cal/lens.json")
	assert.ErrorContains(t, err, ".yaml or .yml")

	_, err = LoadCalibration(mfs, "/cal/missing.yaml")
	assert.ErrorContains(t, err, "read calibration")
}
