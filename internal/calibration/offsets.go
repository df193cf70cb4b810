// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package calibration estimates per-axis sensor offsets from stationary
// samples.
package calibration

import (
	"errors"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/stat"

	"github.com/relabs-tech/headtracker/internal/imu"
)

// ErrNoSamples is returned when a calibration has nothing to average.
var ErrNoSamples = errors.New("calibration: no samples")

// Gravity is the accel Z reading expected when the device rests flat.
const Gravity = 1.0

// MaxSamples bounds a single calibration run.
const MaxSamples = 10000

// Offsets are per-axis biases subtracted from every sample.
type Offsets struct {
	Accel r3.Vector `json:"accel_offset" yaml:"accel_offset"`
	Gyro  r3.Vector `json:"gyro_offset" yaml:"gyro_offset"`
}

// Apply subtracts the offsets from s. Temperature passes through.
func (o Offsets) Apply(s imu.Sample) imu.Sample {
	return imu.Sample{
		Accel:       s.Accel.Sub(o.Accel),
		Gyro:        s.Gyro.Sub(o.Gyro),
		Temperature: s.Temperature,
	}
}

// Result is the outcome of averaging a batch of stationary samples.
type Result struct {
	Offsets
	AccelStdDev r3.Vector
	GyroStdDev  r3.Vector
	N           int
}

// Compute averages samples into offsets. The device is assumed to rest flat
// with Z aligned to gravity, so the accel Z offset is mean(az) - 1 g.
func Compute(samples []imu.Sample) (Result, error) {
	n := len(samples)
	if n == 0 {
		return Result{}, ErrNoSamples
	}

	var axes [6][]float64
	for i := range axes {
		axes[i] = make([]float64, n)
	}
	for i, s := range samples {
		axes[0][i] = s.Accel.X
		axes[1][i] = s.Accel.Y
		axes[2][i] = s.Accel.Z
		axes[3][i] = s.Gyro.X
		axes[4][i] = s.Gyro.Y
		axes[5][i] = s.Gyro.Z
	}

	var mean, std [6]float64
	for i, xs := range axes {
		mean[i], std[i] = stat.MeanStdDev(xs, nil)
		if n < 2 || math.IsNaN(std[i]) {
			std[i] = 0
		}
	}

	return Result{
		Offsets: Offsets{
			Accel: r3.Vector{X: mean[0], Y: mean[1], Z: mean[2] - Gravity},
			Gyro:  r3.Vector{X: mean[3], Y: mean[4], Z: mean[5]},
		},
		AccelStdDev: r3.Vector{X: std[0], Y: std[1], Z: std[2]},
		GyroStdDev:  r3.Vector{X: std[3], Y: std[4], Z: std[5]},
		N:           n,
	}, nil
}

// Motion thresholds for Still. A resting MPU-6050 shows well under 0.1°/s
// and a few mg of noise.
const (
	DefaultGyroTolerance  = 0.5  // deg/s
	DefaultAccelTolerance = 0.02 // g
)

// Still reports whether every axis stayed within the given standard
// deviations, i.e. whether the device plausibly did not move.
func (r Result) Still(gyroTol, accelTol float64) bool {
	return maxAbs(r.GyroStdDev) <= gyroTol && maxAbs(r.AccelStdDev) <= accelTol
}

func maxAbs(v r3.Vector) float64 {
	return math.Max(math.Abs(v.X), math.Max(math.Abs(v.Y), math.Abs(v.Z)))
}
