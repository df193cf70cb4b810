// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeRegs emulates the register file of an MPU-6050 behind I2C.
type fakeRegs struct {
	regs   [256]byte
	writes [][2]byte
	err    error
}

func newFakeRegs() *fakeRegs {
	f := &fakeRegs{}
	f.regs[regWhoAmI] = whoAmIMPU6050
	f.regs[regPwrMgmt1] = 0x40 // sleeping after power-up
	return f
}

func (f *fakeRegs) Tx(w, r []byte) error {
	if f.err != nil {
		return f.err
	}
	if len(r) == 0 {
		f.regs[w[0]] = w[1]
		f.writes = append(f.writes, [2]byte{w[0], w[1]})
		return nil
	}
	copy(r, f.regs[w[0]:])
	return nil
}

func (f *fakeRegs) setBurst(words ...int16) {
	for i, v := range words {
		f.regs[regAccelXoutH+2*i] = byte(uint16(v) >> 8)
		f.regs[regAccelXoutH+2*i+1] = byte(uint16(v))
	}
}

func TestMPU6050_Init(t *testing.T) {
	t.Parallel()

	regs := newFakeRegs()
	_, err := newMPU6050(regs, 1, 2, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)

	assert.Equal(t, [][2]byte{
		{regPwrMgmt1, 0x00},
		{regSmplrtDiv, 0x07},
		{regConfig, 0x06},
		{regGyroConfig, 2 << 3},
		{regAccelConfig, 1 << 3},
	}, regs.writes)
}

func TestMPU6050_InvalidRange(t *testing.T) {
	t.Parallel()

	_, err := newMPU6050(newFakeRegs(), 4, 0, nil)
	assert.ErrorContains(t, err, "accel range must be 0-3")
}

func TestMPU6050_Read(t *testing.T) {
	t.Parallel()

	regs := newFakeRegs()
	m, err := newMPU6050(regs, 0, 0, nil)
	require.NoError(t, err)

	// ±2g / ±250°/s: 16384 LSB/g, 131 LSB/(°/s).
	regs.setBurst(8192, -16384, 16384, -3653, 131, -262, 0)
	s, err := m.Read()
	require.NoError(t, err)

	assert.InDelta(t, 0.5, s.Accel.X, 1e-12)
	assert.InDelta(t, -1.0, s.Accel.Y, 1e-12)
	assert.InDelta(t, 1.0, s.Accel.Z, 1e-12)
	assert.InDelta(t, 25.786, s.Temperature, 1e-3)
	assert.InDelta(t, 1.0, s.Gyro.X, 1e-12)
	assert.InDelta(t, -2.0, s.Gyro.Y, 1e-12)
	assert.InDelta(t, 0.0, s.Gyro.Z, 1e-12)
}

func TestMPU6050_ReadError(t *testing.T) {
	t.Parallel()

	regs := newFakeRegs()
	m, err := newMPU6050(regs, 0, 0, nil)
	require.NoError(t, err)

	boom := errors.New("i2c: NACK")
	regs.err = boom
	_, err = m.Read()
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, m.Close())
}

func TestMPU6050_InitError(t *testing.T) {
	t.Parallel()

	regs := newFakeRegs()
	regs.err = errors.New("no device")
	_, err := newMPU6050(regs, 0, 0, nil)
	assert.ErrorContains(t, err, "WHO_AM_I")
}

func TestMPU6050_Registers(t *testing.T) {
	t.Parallel()

	regs := newFakeRegs()
	m, err := newMPU6050(regs, 3, 1, nil)
	require.NoError(t, err)

	values, err := m.Registers()
	require.NoError(t, err)
	require.Len(t, values, len(mpu6050Registers))

	got := map[string]string{}
	for _, v := range values {
		got[v.Name] = v.String()
	}
	assert.Equal(t, "0x19 SMPLRT_DIV   = 0x07 125 Hz", got["SMPLRT_DIV"])
	assert.Equal(t, "0x1A CONFIG       = 0x06 DLPF_CFG=6 (5Hz)", got["CONFIG"])
	assert.Equal(t, "0x1B GYRO_CONFIG  = 0x08 FS_SEL=1 (±500°/s)", got["GYRO_CONFIG"])
	assert.Equal(t, "0x1C ACCEL_CONFIG = 0x18 AFS_SEL=3 (±16g)", got["ACCEL_CONFIG"])
	assert.Equal(t, "0x6B PWR_MGMT_1   = 0x00 awake, CLKSEL=0", got["PWR_MGMT_1"])
	assert.Equal(t, "0x75 WHO_AM_I     = 0x68", got["WHO_AM_I"])
}
