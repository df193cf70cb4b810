// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package sensors provides the imu.Source implementations: MPU-6050 over
// I2C, MPU-9250 over SPI, a serial IMU bridge and a synthetic mock.
package sensors

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/relabs-tech/headtracker/internal/config"
	"github.com/relabs-tech/headtracker/internal/imu"
)

var (
	_ imu.Source = (*MPU6050)(nil)
	_ imu.Source = (*MPU9250)(nil)
	_ imu.Source = (*SerialSource)(nil)
	_ imu.Source = (*MockSource)(nil)
)

// Open creates the source selected by cfg.Sensor.
func Open(cfg *config.Config, logger *zap.SugaredLogger) (imu.Source, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	switch cfg.Sensor {
	case config.SensorMPU6050:
		return source(OpenMPU6050(cfg.MPU6050I2CBus, cfg.MPU6050I2CAddr, cfg.IMUAccelRange, cfg.IMUGyroRange, logger))
	case config.SensorMPU9250:
		return source(OpenMPU9250(cfg.MPU9250SPIDevice, cfg.MPU9250CSPin, cfg.IMUAccelRange, cfg.IMUGyroRange, logger))
	case config.SensorSerial:
		return source(OpenSerial(cfg.SerialPort, cfg.SerialBaudRate, logger))
	case config.SensorMock:
		logger.Infof("sensors: using synthetic mock IMU")
		return NewMockSource(), nil
	default:
		return nil, fmt.Errorf("sensors: unknown sensor %q", cfg.Sensor)
	}
}

// source drops the concrete type so a failed open yields a nil interface.
func source[T imu.Source](s T, err error) (imu.Source, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}
