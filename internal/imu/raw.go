// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// Raw represents a single raw IMU sample in device counts.
type Raw struct {
	Ax int16 `json:"ax"` // accel
	Ay int16 `json:"ay"`
	Az int16 `json:"az"`

	Gx int16 `json:"gx"` // gyro
	Gy int16 `json:"gy"`
	Gz int16 `json:"gz"`

	Temp int16 `json:"temp"`
}

// Full-scale tables for MPU-60x0 / MPU-9250 class devices, indexed by the
// FS_SEL / AFS_SEL register value.
var (
	accelLSBPerG   = [4]float64{16384.0, 8192.0, 4096.0, 2048.0} // ±2g, ±4g, ±8g, ±16g
	gyroLSBPerDPS  = [4]float64{131.0, 65.5, 32.8, 16.4}         // ±250, ±500, ±1000, ±2000 °/s
	accelRangeG    = [4]int{2, 4, 8, 16}
	gyroRangeDPS   = [4]int{250, 500, 1000, 2000}
	tempLSBPerDegC = 340.0
	tempOffsetDegC = 36.53
)

// Scale converts device counts to physical units.
type Scale struct {
	AccelLSBPerG  float64
	GyroLSBPerDPS float64
}

// ScaleForRange returns the scale for the given accel and gyro range
// selectors (0-3).
func ScaleForRange(accelRange, gyroRange byte) (Scale, error) {
	if accelRange > 3 {
		return Scale{}, fmt.Errorf("imu: accel range must be 0-3, got %d", accelRange)
	}
	if gyroRange > 3 {
		return Scale{}, fmt.Errorf("imu: gyro range must be 0-3, got %d", gyroRange)
	}
	return Scale{
		AccelLSBPerG:  accelLSBPerG[accelRange],
		GyroLSBPerDPS: gyroLSBPerDPS[gyroRange],
	}, nil
}

// RangeString describes the selected ranges for logging, e.g. "±2g, ±250°/s".
func RangeString(accelRange, gyroRange byte) string {
	if accelRange > 3 || gyroRange > 3 {
		return "invalid range"
	}
	return fmt.Sprintf("±%dg, ±%d°/s", accelRangeG[accelRange], gyroRangeDPS[gyroRange])
}

// Apply scales a raw reading. Temperature uses the datasheet formula
// raw/340 + 36.53.
func (s Scale) Apply(r Raw) Sample {
	return Sample{
		Accel: r3.Vector{
			X: float64(r.Ax) / s.AccelLSBPerG,
			Y: float64(r.Ay) / s.AccelLSBPerG,
			Z: float64(r.Az) / s.AccelLSBPerG,
		},
		Gyro: r3.Vector{
			X: float64(r.Gx) / s.GyroLSBPerDPS,
			Y: float64(r.Gy) / s.GyroLSBPerDPS,
			Z: float64(r.Gz) / s.GyroLSBPerDPS,
		},
		Temperature: float64(r.Temp)/tempLSBPerDegC + tempOffsetDegC,
	}
}
