// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"time"

	"github.com/relabs-tech/headtracker/internal/imu"
)

// InitialErrorCovariance is the starting P of a scalar Kalman filter.
const InitialErrorCovariance = 1.0

// Kalman1D estimates one angle from a measured angle and an angular rate.
//
// Bias is reserved for gyro bias tracking and stays at zero; nothing updates
// it yet.
type Kalman1D struct {
	Angle float64
	Bias  float64
	P     float64 // error covariance
	Q     float64 // process noise
	R     float64 // measurement noise
	K     float64 // last gain
}

// NewKalman1D returns a scalar filter with P = InitialErrorCovariance.
func NewKalman1D(processNoise, measurementNoise float64) *Kalman1D {
	return &Kalman1D{
		P: InitialErrorCovariance,
		Q: processNoise,
		R: measurementNoise,
	}
}

// Update runs one predict/correct cycle and returns the new angle.
//
// For P, Q >= 0 and R > 0 the gain stays in [0, 1). R must be positive: with
// R == 0 and P == 0 the gain is 0/0 and the angle becomes NaN. No wrap-around
// is applied; callers integrating yaw-like angles must normalize.
func (k *Kalman1D) Update(measuredAngle, rate, dt float64) float64 {
	// Predict.
	k.Angle += dt * (rate - k.Bias)
	k.P += k.Q

	// Gain.
	k.K = k.P / (k.P + k.R)

	// Correct.
	k.Angle += k.K * (measuredAngle - k.Angle)
	k.P = (1 - k.K) * k.P

	return k.Angle
}

// KalmanFilter runs independent scalar filters for pitch and roll and plain
// gyro integration for yaw. It ignores cross-axis coupling, which is small
// for the head-motion range it targets.
type KalmanFilter struct {
	q, r  float64
	pitch *Kalman1D
	roll  *Kalman1D
	yaw   float64
	clock stepClock
}

// NewKalman returns a Kalman orientation filter. measurementNoise must be > 0.
func NewKalman(processNoise, measurementNoise float64) *KalmanFilter {
	return &KalmanFilter{
		q:     processNoise,
		r:     measurementNoise,
		pitch: NewKalman1D(processNoise, measurementNoise),
		roll:  NewKalman1D(processNoise, measurementNoise),
	}
}

// Name implements Filter.
func (f *KalmanFilter) Name() string { return "Kalman" }

// Rejected implements Filter.
func (f *KalmanFilter) Rejected() uint64 { return f.clock.rejected }

// Update implements Filter. The first update only records the time.
func (f *KalmanFilter) Update(s imu.Sample, now time.Time) Pose {
	dt, res := f.clock.advance(now)
	if res != stepOK {
		return f.current()
	}

	accelPitch, accelRoll := Tilt(s.Accel)

	f.pitch.Update(accelPitch, s.Gyro.X, dt)
	f.roll.Update(accelRoll, s.Gyro.Y, dt)

	// No accelerometer reference for yaw.
	f.yaw = NormalizeYaw(f.yaw + s.Gyro.Z*dt)

	return f.current()
}

// Reset implements Filter.
func (f *KalmanFilter) Reset() {
	f.pitch = NewKalman1D(f.q, f.r)
	f.roll = NewKalman1D(f.q, f.r)
	f.yaw = 0
	f.clock.reset()
}

func (f *KalmanFilter) current() Pose {
	return Pose{Pitch: f.pitch.Angle, Roll: f.roll.Angle, Yaw: f.yaw}
}
