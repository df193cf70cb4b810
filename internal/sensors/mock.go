// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"math"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r3"

	"github.com/relabs-tech/headtracker/internal/imu"
	"github.com/relabs-tech/headtracker/internal/orientation"
)

// Mock head motion: amplitude in degrees, angular frequency in rad/s.
const (
	mockPitchAmp, mockPitchFreq = 15.0, 0.7
	mockRollAmp, mockRollFreq   = 20.0, 1.0
	mockYawAmp, mockYawFreq     = 45.0, 0.3
	mockTemperature             = 25.0
)

// MockSource synthesizes a head slowly nodding, tilting and turning. The
// accelerometer sees gravity projected into the body frame and the gyro sees
// the exact angular rates, plus an optional constant bias on both.
//
// A MockSource is not safe for concurrent use.
type MockSource struct {
	clock     clock.Clock
	start     time.Time
	still     bool
	accelBias r3.Vector
	gyroBias  r3.Vector
}

// MockOption configures a MockSource.
type MockOption func(*MockSource)

// WithMockClock drives the motion from c instead of the wall clock.
func WithMockClock(c clock.Clock) MockOption {
	return func(m *MockSource) { m.clock = c }
}

// WithMockBias adds a constant offset to every sample, as an uncalibrated
// sensor would show.
func WithMockBias(accel, gyro r3.Vector) MockOption {
	return func(m *MockSource) { m.accelBias, m.gyroBias = accel, gyro }
}

// NewMockSource creates a mock IMU whose motion starts now.
func NewMockSource(opts ...MockOption) *MockSource {
	m := &MockSource{clock: clock.New()}
	for _, opt := range opts {
		opt(m)
	}
	m.start = m.clock.Now()
	return m
}

// SetMoving starts or stops the motion. A stopped mock rests flat with zero
// rates, which is what calibration expects. Restarting begins a new cycle
// from the flat pose.
func (m *MockSource) SetMoving(moving bool) {
	if moving && m.still {
		m.start = m.clock.Now()
	}
	m.still = !moving
}

// Truth returns the orientation the mock is currently simulating.
func (m *MockSource) Truth() orientation.Pose {
	if m.still {
		return orientation.Pose{}
	}
	return mockPose(m.clock.Since(m.start).Seconds())
}

// Read implements imu.Source.
func (m *MockSource) Read() (imu.Sample, error) {
	var accel, gyro r3.Vector
	if m.still {
		accel = r3.Vector{Z: 1}
	} else {
		t := m.clock.Since(m.start).Seconds()
		p := mockPose(t)

		pr, rr := p.Pitch*math.Pi/180, p.Roll*math.Pi/180
		accel = r3.Vector{
			X: -math.Cos(pr) * math.Sin(rr),
			Y: math.Sin(pr),
			Z: math.Cos(pr) * math.Cos(rr),
		}
		gyro = r3.Vector{
			X: mockPitchAmp * mockPitchFreq * math.Cos(mockPitchFreq*t),
			Y: mockRollAmp * mockRollFreq * math.Cos(mockRollFreq*t),
			Z: mockYawAmp * mockYawFreq * math.Cos(mockYawFreq*t),
		}
	}

	return imu.Sample{
		Accel:       accel.Add(m.accelBias),
		Gyro:        gyro.Add(m.gyroBias),
		Temperature: mockTemperature,
	}, nil
}

func mockPose(t float64) orientation.Pose {
	return orientation.Pose{
		Pitch: mockPitchAmp * math.Sin(mockPitchFreq*t),
		Roll:  mockRollAmp * math.Sin(mockRollFreq*t),
		Yaw:   mockYawAmp * math.Sin(mockYawFreq*t),
	}
}
