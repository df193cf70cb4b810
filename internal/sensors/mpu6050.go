// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"encoding/binary"
	"fmt"
	"io"

	"go.uber.org/zap"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/headtracker/internal/imu"
)

// regIO is the register transport of the MPU-6050. *i2c.Dev implements it.
type regIO interface {
	Tx(w, r []byte) error
}

// MPU6050 reads an InvenSense MPU-6050 over I2C.
type MPU6050 struct {
	dev    regIO
	bus    io.Closer
	scale  imu.Scale
	buf    [burstLen]byte
	logger *zap.SugaredLogger
}

// OpenMPU6050 opens the I2C bus (empty name selects the default bus) and
// initializes the sensor at addr with the given full-scale ranges.
func OpenMPU6050(busName string, addr uint16, accelRange, gyroRange byte, logger *zap.SugaredLogger) (*MPU6050, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("mpu6050: periph host init: %w", err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("mpu6050: open I2C bus %q: %w", busName, err)
	}
	if addr == 0 {
		addr = defaultI2CAddr
	}

	m, err := newMPU6050(&i2c.Dev{Bus: bus, Addr: addr}, accelRange, gyroRange, logger)
	if err != nil {
		bus.Close()
		return nil, err
	}
	m.bus = bus
	m.logger.Infof("mpu6050: ready on %s at 0x%02X", bus, addr)
	return m, nil
}

func newMPU6050(dev regIO, accelRange, gyroRange byte, logger *zap.SugaredLogger) (*MPU6050, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	scale, err := imu.ScaleForRange(accelRange, gyroRange)
	if err != nil {
		return nil, fmt.Errorf("mpu6050: %w", err)
	}
	m := &MPU6050{dev: dev, scale: scale, logger: logger}

	who, err := m.readReg(regWhoAmI)
	if err != nil {
		return nil, fmt.Errorf("mpu6050: read WHO_AM_I: %w", err)
	}
	if who != whoAmIMPU6050 {
		// Clones and the MPU-6500 family answer differently but share the
		// register layout used here.
		logger.Warnf("mpu6050: unexpected WHO_AM_I 0x%02X, continuing", who)
	}

	writes := []struct {
		reg, val byte
		name     string
	}{
		{regPwrMgmt1, pwrWake, "PWR_MGMT_1"},
		{regSmplrtDiv, smplrtDiv125Hz, "SMPLRT_DIV"},
		{regConfig, dlpf5Hz, "CONFIG"},
		{regGyroConfig, gyroRange << fsSelShift, "GYRO_CONFIG"},
		{regAccelConfig, accelRange << fsSelShift, "ACCEL_CONFIG"},
	}
	for _, w := range writes {
		if err := m.writeReg(w.reg, w.val); err != nil {
			return nil, fmt.Errorf("mpu6050: write %s: %w", w.name, err)
		}
	}
	logger.Infof("mpu6050: range set to %s", imu.RangeString(accelRange, gyroRange))
	return m, nil
}

// Read implements imu.Source with one 14-byte burst read.
func (m *MPU6050) Read() (imu.Sample, error) {
	if err := m.dev.Tx([]byte{regAccelXoutH}, m.buf[:]); err != nil {
		return imu.Sample{}, fmt.Errorf("mpu6050: burst read: %w", err)
	}
	return m.scale.Apply(decodeBurst(m.buf[:])), nil
}

// Registers reads back the configuration registers.
func (m *MPU6050) Registers() ([]RegisterValue, error) {
	out := make([]RegisterValue, 0, len(mpu6050Registers))
	for _, info := range mpu6050Registers {
		v, err := m.readReg(info.Address)
		if err != nil {
			return nil, fmt.Errorf("mpu6050: read %s: %w", info.Name, err)
		}
		out = append(out, RegisterValue{RegisterInfo: info, Value: v})
	}
	return out, nil
}

// Close releases the I2C bus.
func (m *MPU6050) Close() error {
	if m.bus == nil {
		return nil
	}
	return m.bus.Close()
}

func (m *MPU6050) readReg(reg byte) (byte, error) {
	var b [1]byte
	if err := m.dev.Tx([]byte{reg}, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (m *MPU6050) writeReg(reg, val byte) error {
	return m.dev.Tx([]byte{reg, val}, nil)
}

// decodeBurst decodes the big-endian ACCEL_XOUT_H..GYRO_ZOUT_L block.
func decodeBurst(b []byte) imu.Raw {
	word := func(i int) int16 { return int16(binary.BigEndian.Uint16(b[i:])) }
	return imu.Raw{
		Ax: word(0), Ay: word(2), Az: word(4),
		Temp: word(6),
		Gx: word(8), Gy: word(10), Gz: word(12),
	}
}
