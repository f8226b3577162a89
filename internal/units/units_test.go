package units

import (
	"math"
	"testing"
)

func TestConvertAngularRate(t *testing.T) {
	tests := []struct {
		name     string
		rate     float64
		units    string
		expected float64
	}{
		{"pi rad/s to deg/s", math.Pi, DegPerSec, 180.0},
		{"1 rad/s to deg/s", 1.0, DegPerSec, 57.29578},
		{"negative rate", -0.5, DegPerSec, -28.64789},
		{"rad/s passthrough", 0.25, RadPerSec, 0.25},
		{"unknown units default to rad/s", 0.25, "unknown", 0.25},
		{"zero", 0.0, DegPerSec, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertAngularRate(tt.rate, tt.units)
			if math.Abs(result-tt.expected) > 1e-4 {
				t.Errorf("ConvertAngularRate(%f, %s) = %f, want %f", tt.rate, tt.units, result, tt.expected)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name     string
		unit     string
		expected bool
	}{
		{"valid rads", RadPerSec, true},
		{"valid degs", DegPerSec, true},
		{"invalid unit", "invalid", false},
		{"empty string", "", false},
		{"case sensitive", "RADS", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValid(tt.unit)
			if result != tt.expected {
				t.Errorf("IsValid(%s) = %v, want %v", tt.unit, result, tt.expected)
			}
		})
	}
}

func TestGetValidUnitsString(t *testing.T) {
	expected := "rads, degs"
	result := GetValidUnitsString()
	if result != expected {
		t.Errorf("GetValidUnitsString() = %s, want %s", result, expected)
	}
}

func TestLabel(t *testing.T) {
	if Label(DegPerSec) != "deg/s" || Label(RadPerSec) != "rad/s" || Label("") != "rad/s" {
		t.Error("unexpected unit labels")
	}
}

func TestTimeConversions(t *testing.T) {
	if got := NanosToMillis(5_000_000); got != 5.0 {
		t.Errorf("NanosToMillis(5e6) = %f, want 5", got)
	}
	if got := NanosToMillis(1_500); got != 0.0015 {
		t.Errorf("NanosToMillis(1500) = %f, want 0.0015", got)
	}
	if got := NanosToSeconds(2_500_000_000); got != 2.5 {
		t.Errorf("NanosToSeconds(2.5e9) = %f, want 2.5", got)
	}
}
