package lensprofile

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/eis-convert/internal/eis"
	"github.com/banshee-data/eis-convert/internal/fsutil"
	"github.com/banshee-data/eis-convert/internal/timeutil"
)

func fixedClock() timeutil.Clock {
	return timeutil.NewMockClock(time.Date(2024, 3, 9, 23, 59, 0, 0, time.UTC))
}

func i(v int) *int         { return &v }
func f(v float64) *float64 { return &v }
func i64(v int64) *int64   { return &v }

// jsonKeys returns the top-level keys of a JSON object in document order.
func jsonKeys(t *testing.T, data []byte) []string {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	require.NoError(t, err)
	require.Equal(t, json.Delim('{'), tok)

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		require.NoError(t, err)
		keys = append(keys, tok.(string))
		var skip json.RawMessage
		require.NoError(t, dec.Decode(&skip))
	}
	return keys
}

func TestBuild_FullMetadata(t *testing.T) {
	meta := eis.Metadata{
		ShutterSkew: i64(5000000),
		FocalLength: f(2.95),
		ImageWidth:  i(4032),
		ImageHeight: i(3024),
		FPS:         f(30),
		CalibWidth:  i(2400),
		CalibHeight: i(1344),
	}
	p := Build(DefaultCalibration(), meta, fixedClock())

	assert.Equal(t, "RayNeo_V3_IMX681__2k_16by9_2400x1344-29.97fps", p.Name)
	assert.Equal(t, Dimension{W: 2400, H: 1344}, p.CalibDimension)
	assert.Equal(t, Dimension{W: 4032, H: 3024}, p.OrigDimension)
	assert.Equal(t, p.CalibDimension, p.OutputDimension)
	assert.Equal(t, 5.0, p.FrameReadoutTime)
	assert.Equal(t, "TopToBottom", p.FrameReadoutDirection)
	assert.Equal(t, 30.0, *p.FPS)
	assert.Equal(t, 2.95, *p.FocalLength)
	assert.Equal(t, "2024-03-09", p.Date)
	assert.Equal(t, 15, p.NumImages)
	assert.Equal(t, 0.4294243819710179, p.FisheyeParams.RMSError)
}

func TestBuild_Defaults(t *testing.T) {
	p := Build(DefaultCalibration(), eis.Metadata{}, fixedClock())

	assert.Equal(t, Dimension{W: 2400, H: 1344}, p.CalibDimension)
	assert.Equal(t, Dimension{W: 2400, H: 1344}, p.OrigDimension)
	assert.Zero(t, p.FrameReadoutTime)
	assert.Nil(t, p.FPS)
	assert.Nil(t, p.FocalLength)
}

func TestBuild_DoesNotAliasMetadata(t *testing.T) {
	meta := eis.Metadata{FPS: f(24)}
	p := Build(DefaultCalibration(), meta, fixedClock())
	*meta.FPS = 60
	assert.Equal(t, 24.0, *p.FPS)
}

func TestWrite_KeyOrderAndPlaceholders(t *testing.T) {
	var buf bytes.Buffer
	p := Build(DefaultCalibration(), eis.Metadata{ShutterSkew: i64(5000000)}, fixedClock())
	require.NoError(t, Write(&buf, p))

	want := []string{
		"name", "note", "calibrated_by", "camera_brand", "camera_model", "lens_model",
		"camera_setting", "calib_dimension", "orig_dimension", "output_dimension",
		"frame_readout_time", "frame_readout_direction", "gyro_lpf",
		"input_horizontal_stretch", "input_vertical_stretch", "num_images", "fps",
		"crop", "official", "asymmetrical", "fisheye_params", "identifier",
		"calibrator_version", "date", "compatible_settings", "sync_settings",
		"distortion_model", "digital_lens", "digital_lens_params", "interpolations",
		"focal_length", "crop_factor", "global_shutter",
	}
	if diff := cmp.Diff(jsonKeys(t, buf.Bytes()), want); diff != "" {
		t.Errorf("key order mismatch (-got +want):\n%s", diff)
	}

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	for _, k := range []string{"gyro_lpf", "crop", "sync_settings", "distortion_model",
		"digital_lens", "digital_lens_params", "interpolations", "crop_factor", "fps", "focal_length"} {
		assert.Contains(t, doc, k)
		assert.Nil(t, doc[k], k)
	}
	assert.Equal(t, false, doc["official"])
	assert.Equal(t, false, doc["global_shutter"])
	assert.Equal(t, []any{}, doc["compatible_settings"])
	assert.Equal(t, 5.0, doc["frame_readout_time"])

	fp := doc["fisheye_params"].(map[string]any)
	assert.Nil(t, fp["radial_distortion_limit"])
	assert.Len(t, fp["camera_matrix"], 3)
	assert.Len(t, fp["distortion_coeffs"], 4)

	assert.True(t, strings.HasPrefix(buf.String(), "{\n  \"name\": "))
	assert.Contains(t, buf.String(), `"input_horizontal_stretch": 1,`)
}

func TestWriteFile(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	mfs.Mkdir("/out")
	p := Build(DefaultCalibration(), eis.Metadata{}, fixedClock())

	require.NoError(t, WriteFile(mfs, "/out/x_final_lens_profile.json", p))
	data, err := mfs.ReadFile("/out/x_final_lens_profile.json")
	require.NoError(t, err)

	var back Profile
	require.NoError(t, json.Unmarshal(data, &back))
	if diff := cmp.Diff(back, p); diff != "" {
		t.Errorf("profile mismatch (-got +want):\n%s", diff)
	}

	assert.Error(t, WriteFile(mfs, "/nodir/x.json", p))
}
