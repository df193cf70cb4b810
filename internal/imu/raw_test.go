// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaleForRange(t *testing.T) {
	t.Parallel()

	cases := []struct {
		accel, gyro byte
		wantA       float64
		wantG       float64
	}{
		{0, 0, 16384, 131},
		{1, 1, 8192, 65.5},
		{2, 2, 4096, 32.8},
		{3, 3, 2048, 16.4},
	}
	for _, tc := range cases {
		s, err := ScaleForRange(tc.accel, tc.gyro)
		require.NoError(t, err)
		assert.Equal(t, tc.wantA, s.AccelLSBPerG)
		assert.Equal(t, tc.wantG, s.GyroLSBPerDPS)
	}

	_, err := ScaleForRange(4, 0)
	assert.Error(t, err)
	_, err = ScaleForRange(0, 4)
	assert.Error(t, err)
}

func TestScaleApply(t *testing.T) {
	t.Parallel()

	s, err := ScaleForRange(0, 0)
	require.NoError(t, err)

	got := s.Apply(Raw{Ax: 0, Ay: -8192, Az: 16384, Gx: 131, Gy: -262, Gz: 0, Temp: 0})
	assert.InDelta(t, 0.0, got.Accel.X, 1e-12)
	assert.InDelta(t, -0.5, got.Accel.Y, 1e-12)
	assert.InDelta(t, 1.0, got.Accel.Z, 1e-12)
	assert.InDelta(t, 1.0, got.Gyro.X, 1e-12)
	assert.InDelta(t, -2.0, got.Gyro.Y, 1e-12)
	assert.InDelta(t, 36.53, got.Temperature, 1e-12)
}

func TestRangeString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "±4g, ±1000°/s", RangeString(1, 2))
	assert.Equal(t, "invalid range", RangeString(9, 0))
}

func TestSourceFunc(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	var src Source = SourceFunc(func() (Sample, error) { return Sample{}, boom })
	_, err := src.Read()
	assert.ErrorIs(t, err, boom)
}
