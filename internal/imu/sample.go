// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package imu holds the inertial sample model shared by the sensor drivers,
// the calibration code and the orientation filters.
package imu

import (
	"github.com/golang/geo/r3"
)

// Sample is a single physical-unit IMU reading.
type Sample struct {
	Accel       r3.Vector `json:"accel"`  // g
	Gyro        r3.Vector `json:"gyro"`   // deg/s
	Temperature float64   `json:"temp_c"` // °C
}

// Source is anything that can provide IMU samples on demand.
//
// Read blocks until one sample is available. Samples are already scaled to
// g and deg/s but carry no calibration offsets; the tracker applies those.
type Source interface {
	Read() (Sample, error)
}

// SourceFunc adapts a plain function to Source.
type SourceFunc func() (Sample, error)

// Read calls f.
func (f SourceFunc) Read() (Sample, error) {
	return f()
}
