// Package eis reads the three inputs a camera EIS capture leaves behind:
// the gyro/frame log (eis_*_d.txt), the sensor descriptor log
// (eis_*_base.txt) and the capture settings (info.json).
//
// Locate finds the inputs in a directory, ParseGyroLog extracts gyroscope
// samples and per-frame metadata, ParseAuxiliary extracts sensor geometry
// and capture settings, and Merge layers the metadata fragments.
package eis
