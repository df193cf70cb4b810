// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"time"

	"github.com/relabs-tech/headtracker/internal/imu"
)

// ComplementaryFilter blends the integrated gyro rate (good short term) with
// the accelerometer tilt (good long term) using a fixed weight.
type ComplementaryFilter struct {
	alpha float64
	pose  Pose
	clock stepClock
}

// NewComplementary returns a complementary filter with gyro weight alpha.
func NewComplementary(alpha float64) *ComplementaryFilter {
	return &ComplementaryFilter{alpha: alpha}
}

// Alpha returns the gyro weight.
func (f *ComplementaryFilter) Alpha() float64 { return f.alpha }

// Name implements Filter.
func (f *ComplementaryFilter) Name() string { return "Complementary" }

// Rejected implements Filter.
func (f *ComplementaryFilter) Rejected() uint64 { return f.clock.rejected }

// Update implements Filter.
//
// The first update after construction or Reset seeds pitch and roll from the
// tilt estimate and leaves yaw alone. Yaw has no absolute reference and
// drifts without bound over long sessions.
func (f *ComplementaryFilter) Update(s imu.Sample, now time.Time) Pose {
	dt, res := f.clock.advance(now)
	switch res {
	case stepSeed:
		f.pose.Pitch, f.pose.Roll = Tilt(s.Accel)
		return f.pose
	case stepRejected:
		return f.pose
	}

	accelPitch, accelRoll := Tilt(s.Accel)

	gyroPitch := f.pose.Pitch + s.Gyro.X*dt
	gyroRoll := f.pose.Roll + s.Gyro.Y*dt
	gyroYaw := f.pose.Yaw + s.Gyro.Z*dt

	f.pose.Pitch = f.alpha*gyroPitch + (1-f.alpha)*accelPitch
	f.pose.Roll = f.alpha*gyroRoll + (1-f.alpha)*accelRoll
	f.pose.Yaw = NormalizeYaw(gyroYaw)

	return f.pose
}

// Reset implements Filter. The next Update reseeds from tilt.
func (f *ComplementaryFilter) Reset() {
	f.pose = Pose{}
	f.clock.reset()
}
