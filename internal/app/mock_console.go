// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/golang/geo/r3"
	"go.uber.org/zap"

	"github.com/relabs-tech/headtracker/internal/config"
	"github.com/relabs-tech/headtracker/internal/sensors"
	"github.com/relabs-tech/headtracker/internal/tracker"
)

// Bias of the simulated sensor, so calibration has something to remove.
var (
	mockAccelBias = r3.Vector{X: 0.02, Y: -0.01, Z: 0.03}
	mockGyroBias  = r3.Vector{X: 1.5, Y: -0.8, Z: 0.4}
)

// RunMockConsole runs the configured filter on the synthetic IMU and prints
// the estimate next to the simulated truth every CONSOLE_LOG_INTERVAL. No
// broker or hardware is needed.
func RunMockConsole(ctx context.Context, cfg *config.Config, w io.Writer, logger *zap.SugaredLogger) error {
	src := sensors.NewMockSource(sensors.WithMockBias(mockAccelBias, mockGyroBias))
	t := tracker.New(src, cfg.FilterSpec(), tracker.WithLogger(logger))
	defer t.Close()

	if err := calibrate(t, src, cfg, 0, "", logger); err != nil {
		return err
	}

	ticker := time.NewTicker(cfg.SampleIntervalDuration())
	defer ticker.Stop()
	logEvery := max(1, cfg.ConsoleLogInterval/cfg.SampleInterval)

	for n := 1; ; n++ {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		pose, err := t.Orientation()
		if err != nil {
			return err
		}
		if n%logEvery != 0 {
			continue
		}
		truth := src.Truth()
		fmt.Fprintf(w, "%s  truth ROLL=%6.2f PITCH=%6.2f YAW=%7.2f\n",
			formatPose(pose), truth.Roll, truth.Pitch, truth.Yaw)
	}
}
