// Package testutil provides shared capture fixtures and assertions for
// package tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/banshee-data/eis-convert/internal/fsutil"
)

// Fixture file names, as a camera writes them.
const (
	GyroLogName  = "EIS_0001_D.txt"
	BaseLogName  = "EIS_0001_BASE.txt"
	SettingsName = "info.json"
)

// GyroLogFixture has three gyro samples out of order, one accelerometer
// record and three frame records. The first frame carrying ShutterSkew has
// 5000000 ns and focal length 2.95.
const GyroLogFixture = "camera boot\r\n" +
	"FrameIndex:0,TimeStamp:1000000000,ExposureTime:8000000\r\n" +
	"FrameIndex:1,TimeStamp:1033366666,ShutterSkew:5000000,FocalLength:2.95\r\n" +
	"TimeStamp:1000002000,value:0.010000;-0.020000;0.030000;1,SensorType:4\r\n" +
	"TimeStamp:1000000000,value:0.001000;0.002000;0.003000;1,SensorType:4\r\n" +
	"TimeStamp:1000001000,value:0.004000;0.005000;0.006000;1,SensorType:4\r\n" +
	"TimeStamp:1000001500,value:9.8;0.0;0.0,SensorType:1\r\n" +
	"FrameIndex:2,TimeStamp:1066733333,ShutterSkew:7000000,FocalLength:3.10\r\n"

// BaseLogFixture carries both sensor size patterns.
const BaseLogFixture = "SensorName:IMX681\nPhysicalSize:[5.645-4.234]\nPixelArraySize:[4032-3024]\n"

// SettingsFixture is an info.json with every field set.
const SettingsFixture = `{"fps": 30.0, "width": 2400, "height": 1344}`

// CaptureFiles returns the fixture capture keyed by file name. Callers may
// modify the map before writing it.
func CaptureFiles() map[string]string {
	return map[string]string{
		GyroLogName:  GyroLogFixture,
		BaseLogName:  BaseLogFixture,
		SettingsName: SettingsFixture,
	}
}

// NewCaptureFS writes files into dir on a fresh in-memory filesystem.
func NewCaptureFS(t *testing.T, dir string, files map[string]string) *fsutil.MemoryFileSystem {
	t.Helper()
	mfs := fsutil.NewMemoryFileSystem()
	mfs.Mkdir(dir)
	for name, content := range files {
		AssertNoError(t, mfs.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return mfs
}

// WriteCaptureDir writes files into a fresh temporary directory on disk and
// returns its path.
func WriteCaptureDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		AssertNoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
