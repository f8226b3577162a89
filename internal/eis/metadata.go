package eis

import "github.com/banshee-data/eis-convert/internal/units"

// GyroSample is one gyroscope reading. Angular velocity is in rad/s as
// logged by the camera; TimestampNs is on the camera's monotonic clock.
type GyroSample struct {
	TimestampNs int64
	Gx, Gy, Gz  float64
}

// Metadata collects the scalar values pulled from the three inputs. A nil
// field means no source provided it; writers fall back to fixed defaults.
type Metadata struct {
	ShutterSkew  *int64   // ns, from frame records
	FocalLength  *float64 // from frame records
	SensorWidth  *float64 // physical size, from the base log
	SensorHeight *float64
	ImageWidth   *int // pixel array, from the base log
	ImageHeight  *int
	FPS          *float64 // from info.json
	CalibWidth   *int
	CalibHeight  *int
}

// Merge returns base with every field that over sets replacing the
// corresponding field of base. Neither argument is modified.
func Merge(base, over Metadata) Metadata {
	out := base
	if over.ShutterSkew != nil {
		out.ShutterSkew = over.ShutterSkew
	}
	if over.FocalLength != nil {
		out.FocalLength = over.FocalLength
	}
	if over.SensorWidth != nil {
		out.SensorWidth = over.SensorWidth
	}
	if over.SensorHeight != nil {
		out.SensorHeight = over.SensorHeight
	}
	if over.ImageWidth != nil {
		out.ImageWidth = over.ImageWidth
	}
	if over.ImageHeight != nil {
		out.ImageHeight = over.ImageHeight
	}
	if over.FPS != nil {
		out.FPS = over.FPS
	}
	if over.CalibWidth != nil {
		out.CalibWidth = over.CalibWidth
	}
	if over.CalibHeight != nil {
		out.CalibHeight = over.CalibHeight
	}
	return out
}

// FrameReadoutMillis converts the shutter skew to milliseconds. ok is false
// when no skew was captured.
func (m Metadata) FrameReadoutMillis() (ms float64, ok bool) {
	if m.ShutterSkew == nil {
		return 0, false
	}
	return units.NanosToMillis(*m.ShutterSkew), true
}

func ptrInt64(v int64) *int64       { return &v }
func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }
