// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/relabs-tech/headtracker/internal/config"
	"github.com/relabs-tech/headtracker/internal/sensors"
)

// RunRegisterDump opens the MPU-6050, reads back its configuration registers
// and prints them with one sample.
func RunRegisterDump(cfg *config.Config, w io.Writer, logger *zap.SugaredLogger) error {
	if cfg.Sensor != config.SensorMPU6050 {
		return fmt.Errorf("register dump: only supported for SENSOR=%s, got %s", config.SensorMPU6050, cfg.Sensor)
	}
	dev, err := sensors.OpenMPU6050(cfg.MPU6050I2CBus, cfg.MPU6050I2CAddr, cfg.IMUAccelRange, cfg.IMUGyroRange, logger)
	if err != nil {
		return err
	}
	defer dev.Close()

	regs, err := dev.Registers()
	if err != nil {
		return err
	}
	for _, r := range regs {
		fmt.Fprintln(w, r)
	}

	s, err := dev.Read()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, formatSample(s))
	return nil
}
