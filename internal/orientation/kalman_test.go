// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/headtracker/internal/imu"
)

func TestKalman1D_FirstGain(t *testing.T) {
	t.Parallel()

	k := NewKalman1D(0.001, 0.03)
	assert.Equal(t, 1.0, k.P)
	assert.Equal(t, 0.0, k.Bias)

	k.Update(0, 0, 0)
	// P = 1.0 + 0.001 after predict.
	assert.InDelta(t, 1.001/1.031, k.K, 1e-12)
	assert.InDelta(t, (1-k.K)*1.001, k.P, 1e-12)
}

func TestKalman1D_GainWithoutProcessNoise(t *testing.T) {
	t.Parallel()

	k := &Kalman1D{P: 1.0, Q: 0, R: 0.03}
	k.Update(0, 0, 0)
	assert.InDelta(t, 0.9709, k.K, 1e-4)
}

func TestKalman1D_PredictCorrect(t *testing.T) {
	t.Parallel()

	k := NewKalman1D(0, 1)
	// Predict: 0 + 0.5*10 = 5. P = 1, K = 0.5. Correct toward 9: 5 + 0.5*4 = 7.
	got := k.Update(9, 10, 0.5)
	assert.InDelta(t, 7.0, got, 1e-12)
	assert.InDelta(t, 0.5, k.P, 1e-12)
}

func TestKalman1D_GainBounds(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(3, 5))
	for i := 0; i < 1000; i++ {
		k := &Kalman1D{
			P: rng.Float64() * 10,
			Q: 1e-4 + rng.Float64(),
			R: 1e-3 + rng.Float64(),
		}
		k.Update(rng.Float64()*180-90, rng.Float64()*200-100, rng.Float64())
		require.True(t, k.K >= 0 && k.K < 1, "K=%v for %+v", k.K, k)
		require.True(t, k.P >= 0, "P=%v", k.P)
	}
}

func TestKalman1D_ZeroMeasurementNoiseIsNotGuarded(t *testing.T) {
	t.Parallel()

	k := &Kalman1D{P: 0, Q: 0, R: 0}
	assert.True(t, math.IsNaN(k.Update(1, 0, 0.01)))
}

func TestKalman1D_NoWrap(t *testing.T) {
	t.Parallel()

	k := NewKalman1D(0.001, 0.03)
	k.Angle = 170
	got := k.Update(200, 100, 0.5)
	assert.Greater(t, got, 180.0)
}

func TestKalman_FirstUpdateRecordsTime(t *testing.T) {
	t.Parallel()

	f := NewKalman(0.001, 0.03)
	got := f.Update(imu.Sample{Accel: accelFor(20, 10), Gyro: r3.Vector{Z: 90}}, epoch)
	assert.Equal(t, Pose{}, got)

	got = f.Update(imu.Sample{Accel: accelFor(20, 10), Gyro: r3.Vector{Z: 90}}, epoch.Add(100*time.Millisecond))
	assert.InDelta(t, 9.0, got.Yaw, 1e-9)
	// One step with K ~ 0.97 pulls most of the way to the tilt angle.
	assert.InDelta(t, 20*1.001/1.031, got.Pitch, 1e-9)
	assert.InDelta(t, 10*1.001/1.031, got.Roll, 1e-9)
}

func TestKalman_ConvergesToTilt(t *testing.T) {
	t.Parallel()

	f := NewKalman(0.001, 0.03)
	now := epoch
	var p Pose
	for i := 0; i < 200; i++ {
		now = now.Add(20 * time.Millisecond)
		p = f.Update(imu.Sample{Accel: accelFor(-25, 35)}, now)
	}
	assert.InDelta(t, -25, p.Pitch, 1e-6)
	assert.InDelta(t, 35, p.Roll, 1e-6)
}

func TestKalman_DegenerateStepReturnsCurrent(t *testing.T) {
	t.Parallel()

	f := NewKalman(0.001, 0.03)
	f.Update(imu.Sample{Accel: accelFor(5, 5)}, epoch)
	prev := f.Update(imu.Sample{Accel: accelFor(5, 5), Gyro: r3.Vector{Z: 10}}, epoch.Add(50*time.Millisecond))
	pBefore := *f.pitch

	got := f.Update(imu.Sample{Accel: accelFor(60, 60), Gyro: r3.Vector{X: 100, Z: 100}}, epoch.Add(1550*time.Millisecond))
	assert.Equal(t, prev, got)
	assert.Equal(t, pBefore, *f.pitch, "no state mutation on rejected step")
	assert.Equal(t, uint64(1), f.Rejected())
}

func TestKalman_YawWraps(t *testing.T) {
	t.Parallel()

	f := NewKalman(0.001, 0.03)
	f.Update(imu.Sample{Accel: accelFor(0, 0)}, epoch)
	f.yaw = 179
	got := f.Update(imu.Sample{Accel: accelFor(0, 0), Gyro: r3.Vector{Z: 50}}, epoch.Add(100*time.Millisecond))
	assert.InDelta(t, -176, got.Yaw, 1e-9)

	rng := rand.New(rand.NewPCG(9, 9))
	now := epoch.Add(100 * time.Millisecond)
	for i := 0; i < 2000; i++ {
		now = now.Add(time.Duration(rng.IntN(1200)) * time.Millisecond)
		p := f.Update(imu.Sample{Accel: accelFor(0, 0), Gyro: r3.Vector{Z: rng.Float64()*4000 - 2000}}, now)
		require.True(t, p.Yaw >= -180 && p.Yaw < 180, "yaw %v", p.Yaw)
	}
}

func TestKalman_ResetRestoresDefaults(t *testing.T) {
	t.Parallel()

	f := NewKalman(0.002, 0.05)
	f.Update(imu.Sample{Accel: accelFor(10, 10)}, epoch)
	f.Update(imu.Sample{Accel: accelFor(10, 10), Gyro: r3.Vector{Z: 40}}, epoch.Add(time.Second))
	f.Update(imu.Sample{Accel: accelFor(10, 10)}, epoch.Add(3*time.Second))
	require.Equal(t, uint64(1), f.Rejected())

	f.Reset()
	assert.Equal(t, *NewKalman1D(0.002, 0.05), *f.pitch)
	assert.Equal(t, *NewKalman1D(0.002, 0.05), *f.roll)
	assert.Equal(t, 0.0, f.yaw)
	assert.Equal(t, uint64(0), f.Rejected())
	assert.Equal(t, Pose{}, f.Update(imu.Sample{Accel: accelFor(10, 10)}, epoch.Add(time.Hour)))
}
