// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package orientation turns IMU samples into a pitch/roll/yaw estimate.
//
// Pitch, roll and yaw are treated as three loosely coupled scalar channels:
// pitch and roll are corrected against the gravity reference measured by the
// accelerometer, yaw is integrated from the gyro only and drifts.
package orientation

import (
	"math"

	"github.com/golang/geo/r3"
)

// Pose is the canonical representation of orientation for the app, in degrees.
//
// Yaw is kept in [-180, 180). Pitch and roll come from the tilt estimate and
// nominally stay within [-90, 90], but the gyro term of a filter may push them
// past that transiently. No clamping is applied here.
type Pose struct {
	Pitch float64 `json:"pitch"`
	Roll  float64 `json:"roll"`
	Yaw   float64 `json:"yaw"`
}

// Tilt computes pitch and roll in degrees from an acceleration vector:
//
//	pitch = atan2(ay, sqrt(ax² + az²))
//	roll  = atan2(-ax, az)
//
// The result is only meaningful when the vector is dominated by gravity.
// Linear acceleration of the body (a head turning quickly, walking) bends the
// measured vector and shows up as transient tilt error; nothing here can
// detect that.
func Tilt(accel r3.Vector) (pitch, roll float64) {
	pitch = degrees(math.Atan2(accel.Y, math.Sqrt(accel.X*accel.X+accel.Z*accel.Z)))
	roll = degrees(math.Atan2(-accel.X, accel.Z))
	return pitch, roll
}

// NormalizeYaw wraps an angle into [-180, 180). NaN and ±Inf are returned
// unchanged.
func NormalizeYaw(deg float64) float64 {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return deg
	}
	r := math.Mod(deg+180, 360)
	if r < 0 {
		r += 360
	}
	// r+360 rounds up to 360 for tiny negative r.
	if r >= 360 {
		r -= 360
	}
	return r - 180
}

func degrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}
