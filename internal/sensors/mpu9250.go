// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"

	"go.uber.org/zap"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/headtracker/internal/imu"
)

// MPU9250 reads accel and gyro from an MPU-9250 over SPI. The magnetometer
// is not used.
type MPU9250 struct {
	dev    *mpu9250.MPU9250
	scale  imu.Scale
	logger *zap.SugaredLogger
}

// OpenMPU9250 initializes the MPU-9250 on spiDev with chip select csPin.
func OpenMPU9250(spiDev, csPin string, accelRange, gyroRange byte, logger *zap.SugaredLogger) (*MPU9250, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	scale, err := imu.ScaleForRange(accelRange, gyroRange)
	if err != nil {
		return nil, fmt.Errorf("mpu9250: %w", err)
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("mpu9250: periph host init: %w", err)
	}

	cs := gpioreg.ByName(csPin)
	if cs == nil {
		return nil, fmt.Errorf("mpu9250: CS pin %q not found", csPin)
	}

	tr, err := mpu9250.NewSpiTransport(spiDev, cs)
	if err != nil {
		return nil, fmt.Errorf("mpu9250: SPI transport (%s): %w", spiDev, err)
	}

	dev, err := mpu9250.New(*tr)
	if err != nil {
		return nil, fmt.Errorf("mpu9250: device creation: %w", err)
	}

	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("mpu9250: initialization: %w", err)
	}

	if err := dev.SetAccelRange(accelRange); err != nil {
		return nil, fmt.Errorf("mpu9250: set accel range: %w", err)
	}
	if err := dev.SetGyroRange(gyroRange); err != nil {
		return nil, fmt.Errorf("mpu9250: set gyro range: %w", err)
	}
	logger.Infof("mpu9250: range set to %s", imu.RangeString(accelRange, gyroRange))

	testResult, err := dev.SelfTest()
	if err != nil {
		logger.Warnf("mpu9250: self-test failed: %v", err)
	} else {
		logger.Infof("mpu9250: self-test accel deviation X=%.2f%% Y=%.2f%% Z=%.2f%%, gyro deviation X=%.2f%% Y=%.2f%% Z=%.2f%%",
			testResult.AccelDeviation.X, testResult.AccelDeviation.Y, testResult.AccelDeviation.Z,
			testResult.GyroDeviation.X, testResult.GyroDeviation.Y, testResult.GyroDeviation.Z)
	}

	return &MPU9250{dev: dev, scale: scale, logger: logger}, nil
}

// Read implements imu.Source. Temperature is not read and stays 0.
func (s *MPU9250) Read() (imu.Sample, error) {
	var raw imu.Raw
	reads := []struct {
		dst  *int16
		get  func() (int16, error)
		name string
	}{
		{&raw.Ax, s.dev.GetAccelerationX, "accel X"},
		{&raw.Ay, s.dev.GetAccelerationY, "accel Y"},
		{&raw.Az, s.dev.GetAccelerationZ, "accel Z"},
		{&raw.Gx, s.dev.GetRotationX, "gyro X"},
		{&raw.Gy, s.dev.GetRotationY, "gyro Y"},
		{&raw.Gz, s.dev.GetRotationZ, "gyro Z"},
	}
	for _, r := range reads {
		v, err := r.get()
		if err != nil {
			return imu.Sample{}, fmt.Errorf("mpu9250: %s: %w", r.name, err)
		}
		*r.dst = v
	}

	sample := s.scale.Apply(raw)
	sample.Temperature = 0
	return sample, nil
}
