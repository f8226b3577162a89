package eis

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/eis-convert/internal/fsutil"
)

func TestParseBaseLog(t *testing.T) {
	meta, err := ParseBaseLog(strings.NewReader("a\nPhysicalSize:[5.645-4.234]\nPixelArraySize:[4032-3024]\n"), "base")
	require.NoError(t, err)

	want := Metadata{
		SensorWidth:  ptrFloat64(5.645),
		SensorHeight: ptrFloat64(4.234),
		ImageWidth:   ptrInt(4032),
		ImageHeight:  ptrInt(3024),
	}
	if diff := cmp.Diff(meta, want); diff != "" {
		t.Errorf("metadata mismatch (-got +want):\n%s", diff)
	}
}

func TestParseBaseLog_PatternsOptional(t *testing.T) {
	meta, err := ParseBaseLog(strings.NewReader("PixelArraySize:[100-50]"), "base")
	require.NoError(t, err)
	assert.Nil(t, meta.SensorWidth)
	assert.Equal(t, 100, *meta.ImageWidth)

	meta, err = ParseBaseLog(strings.NewReader("nothing here"), "base")
	require.NoError(t, err)
	assert.Equal(t, Metadata{}, meta)
}

func TestParseBaseLog_BadNumber(t *testing.T) {
	_, err := ParseBaseLog(strings.NewReader("PhysicalSize:[1.2.3-4]"), "base")
	var mal *MalformedInputError
	assert.True(t, errors.As(err, &mal))
}

func TestParseBaseLog_InvalidUTF8(t *testing.T) {
	_, err := ParseBaseLog(strings.NewReader("\xc3\x28PixelArraySize:[1-2]"), "base")
	var mal *MalformedInputError
	require.True(t, errors.As(err, &mal))
	assert.ErrorContains(t, err, "UTF-8")
}

func writeAux(t *testing.T, info string) *fsutil.MemoryFileSystem {
	t.Helper()
	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, mfs.WriteFile("/cap/eis_1_base.txt", []byte("PixelArraySize:[4032-3024]\n"), 0644))
	require.NoError(t, mfs.WriteFile("/cap/info.json", []byte(info), 0644))
	return mfs
}

func TestParseAuxiliary_EmptySettingsUseDefaults(t *testing.T) {
	mfs := writeAux(t, `{}`)

	meta, err := ParseAuxiliary(mfs, "/cap/eis_1_base.txt", "/cap/info.json")
	require.NoError(t, err)

	assert.Equal(t, 29.97, *meta.FPS)
	assert.Equal(t, 2400, *meta.CalibWidth)
	assert.Equal(t, 1344, *meta.CalibHeight)
	assert.Equal(t, 4032, *meta.ImageWidth)
}

func TestParseAuxiliary_Values(t *testing.T) {
	mfs := writeAux(t, `{"fps": 60, "width": 1920, "height": 1080}`)

	meta, err := ParseAuxiliary(mfs, "/cap/eis_1_base.txt", "/cap/info.json")
	require.NoError(t, err)
	assert.Equal(t, 60.0, *meta.FPS)
	assert.Equal(t, 1920, *meta.CalibWidth)
	assert.Equal(t, 1080, *meta.CalibHeight)
}

func TestParseAuxiliary_BadSettings(t *testing.T) {
	mfs := writeAux(t, `{"fps": "fast"}`)

	_, err := ParseAuxiliary(mfs, "/cap/eis_1_base.txt", "/cap/info.json")
	var mal *MalformedInputError
	require.True(t, errors.As(err, &mal))
	assert.Equal(t, "/cap/info.json", mal.Path)
}

func TestParseAuxiliary_MissingBase(t *testing.T) {
	mfs := writeAux(t, `{}`)
	_, err := ParseAuxiliary(mfs, "/cap/nope.txt", "/cap/info.json")
	var mal *MalformedInputError
	require.True(t, errors.As(err, &mal))
	assert.Equal(t, "/cap/nope.txt", mal.Path)
}

func TestParseAuxiliary_OnDisk(t *testing.T) {
	meta, err := ParseAuxiliary(fsutil.OSFileSystem{}, "testdata/capture/eis_0001_base.txt", "testdata/capture/info.json")
	require.NoError(t, err)

	assert.Equal(t, 5.645, *meta.SensorWidth)
	assert.Equal(t, 4.234, *meta.SensorHeight)
	assert.Equal(t, 3024, *meta.ImageHeight)
	assert.Equal(t, 30.0, *meta.FPS)
}

func TestLocate_OnDisk(t *testing.T) {
	in, err := Locate(fsutil.OSFileSystem{}, "testdata/capture")
	require.NoError(t, err)
	assert.Equal(t, "EIS_0001", in.OutputBase())
	assert.Equal(t, "testdata/capture/eis_0001_base.txt", in.BaseLog)
}
