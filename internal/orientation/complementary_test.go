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
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/headtracker/internal/imu"
)

func TestComplementary_FirstUpdateSeedsFromTilt(t *testing.T) {
	t.Parallel()

	f := NewComplementary(0.96)
	got := f.Update(imu.Sample{
		Accel: accelFor(12, -7),
		Gyro:  r3.Vector{X: 100, Y: 100, Z: 100},
	}, epoch)

	want := Pose{Pitch: 12, Roll: -7, Yaw: 0}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Fatalf("first update mismatch (-want +got):\n%s", diff)
	}
}

func TestComplementary_BlendScenario(t *testing.T) {
	t.Parallel()

	f := NewComplementary(0.98)
	f.Update(imu.Sample{Accel: accelFor(10, 0)}, epoch)

	got := f.Update(imu.Sample{
		Accel: accelFor(9, 0),
		Gyro:  r3.Vector{X: 5},
	}, epoch.Add(20*time.Millisecond))

	// gyro pitch 10 + 5*0.02 = 10.1; 0.98*10.1 + 0.02*9 = 10.078
	assert.InDelta(t, 10.078, got.Pitch, 1e-9)
	assert.InDelta(t, 0.0, got.Roll, 1e-9)
	assert.InDelta(t, 0.0, got.Yaw, 1e-9)
}

func TestComplementary_YawWraps(t *testing.T) {
	t.Parallel()

	f := NewComplementary(0.96)
	f.Update(imu.Sample{Accel: accelFor(0, 0)}, epoch)
	f.pose.Yaw = 179

	got := f.Update(imu.Sample{
		Accel: accelFor(0, 0),
		Gyro:  r3.Vector{Z: 50},
	}, epoch.Add(100*time.Millisecond))

	assert.InDelta(t, -176, got.Yaw, 1e-9)
}

func TestComplementary_DegenerateStepReturnsPrevious(t *testing.T) {
	t.Parallel()

	now := epoch.Add(20 * time.Millisecond)
	cases := []struct {
		name string
		at   time.Time
	}{
		{"stall", now.Add(1500 * time.Millisecond)},
		{"same instant", now},
		{"backwards", now.Add(-time.Millisecond)},
	}
	for _, tc := range cases {
		f := NewComplementary(0.96)
		f.Update(imu.Sample{Accel: accelFor(3, 4)}, epoch)
		prev := f.Update(imu.Sample{Accel: accelFor(5, 6), Gyro: r3.Vector{X: 10, Y: -5, Z: 30}}, now)

		got := f.Update(imu.Sample{Accel: accelFor(40, 40), Gyro: r3.Vector{X: 90, Y: 90, Z: 90}}, tc.at)
		require.Equal(t, prev, got, tc.name)
		assert.Equal(t, uint64(1), f.Rejected(), tc.name)
	}
}

func TestComplementary_ResetReseeds(t *testing.T) {
	t.Parallel()

	sample := imu.Sample{Accel: accelFor(-20, 15), Gyro: r3.Vector{X: 3, Y: 2, Z: 1}}

	fresh := NewComplementary(0.96).Update(sample, epoch)

	f := NewComplementary(0.96)
	f.Update(imu.Sample{Accel: accelFor(1, 1)}, epoch)
	for i := 1; i <= 10; i++ {
		f.Update(imu.Sample{Accel: accelFor(30, 30), Gyro: r3.Vector{X: 20, Y: 20, Z: 20}}, epoch.Add(time.Duration(i)*20*time.Millisecond))
	}
	f.Reset()
	assert.Equal(t, Pose{}, f.pose)
	assert.Equal(t, uint64(0), f.Rejected())

	got := f.Update(sample, epoch.Add(time.Hour))
	assert.Equal(t, fresh, got)
}

func TestComplementary_OutputIsConvexCombination(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 500; i++ {
		alpha := 0.01 + 0.98*rng.Float64()
		f := NewComplementary(alpha)
		f.Update(imu.Sample{Accel: accelFor(rng.Float64()*160-80, rng.Float64()*160-80)}, epoch)
		prev := f.pose

		dt := time.Duration(1+rng.IntN(999)) * time.Millisecond
		s := imu.Sample{
			Accel: accelFor(rng.Float64()*160-80, rng.Float64()*160-80),
			Gyro:  r3.Vector{X: rng.Float64()*400 - 200, Y: rng.Float64()*400 - 200, Z: rng.Float64()*400 - 200},
		}
		got := f.Update(s, epoch.Add(dt))

		accelPitch, accelRoll := Tilt(s.Accel)
		gyroPitch := prev.Pitch + s.Gyro.X*dt.Seconds()
		gyroRoll := prev.Roll + s.Gyro.Y*dt.Seconds()

		assertBetween(t, got.Pitch, gyroPitch, accelPitch)
		assertBetween(t, got.Roll, gyroRoll, accelRoll)
		assert.True(t, got.Yaw >= -180 && got.Yaw < 180, "yaw %v", got.Yaw)
	}
}

func TestComplementary_YawStaysInRange(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(7, 11))
	f := NewComplementary(0.96)
	now := epoch
	for i := 0; i < 2000; i++ {
		now = now.Add(time.Duration(rng.IntN(1200)) * time.Millisecond)
		p := f.Update(imu.Sample{
			Accel: accelFor(0, 0),
			Gyro:  r3.Vector{Z: rng.Float64()*4000 - 2000},
		}, now)
		require.True(t, p.Yaw >= -180 && p.Yaw < 180, "step %d yaw %v", i, p.Yaw)
	}
}

func TestComplementary_HugeYawRateStaysInRange(t *testing.T) {
	t.Parallel()

	f := NewComplementary(0.96)
	f.Update(imu.Sample{Accel: accelFor(0, 0)}, epoch)
	p := f.Update(imu.Sample{Accel: accelFor(0, 0), Gyro: r3.Vector{Z: 1e30}}, epoch.Add(20*time.Millisecond))
	assert.True(t, p.Yaw >= -180 && p.Yaw < 180, "yaw %v", p.Yaw)
}

func assertBetween(t *testing.T, got, a, b float64) {
	t.Helper()
	lo, hi := math.Min(a, b), math.Max(a, b)
	const eps = 1e-9
	assert.True(t, got >= lo-eps && got <= hi+eps, "%v not within [%v, %v]", got, lo, hi)
}
